package grpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/turtacn/mhtech-dashboard/internal/config"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/prometheus"
)

func startServer(t *testing.T, opts ...Option) (*Server, *grpc.ClientConn) {
	t.Helper()
	s, err := NewServer(config.GRPCConfig{Port: 0}, append([]Option{WithHost("127.0.0.1")}, opts...)...)
	require.NoError(t, err)

	go func() { _ = s.Start() }()
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	conn, err := grpc.Dial(s.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return s, conn
}

func TestNewServer_BindsFreePort(t *testing.T) {
	s, err := NewServer(config.GRPCConfig{Port: 0}, WithHost("127.0.0.1"))
	require.NoError(t, err)
	defer s.Stop(context.Background())

	assert.True(t, strings.HasPrefix(s.Addr(), "127.0.0.1:"))
	assert.NotEqual(t, "127.0.0.1:0", s.Addr())
}

func TestNewServer_PortInUse(t *testing.T) {
	s, err := NewServer(config.GRPCConfig{Port: 0}, WithHost("127.0.0.1"))
	require.NoError(t, err)
	defer s.Stop(context.Background())

	_, portStr, _ := strings.Cut(s.Addr(), ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	_, err = NewServer(config.GRPCConfig{Port: port}, WithHost("127.0.0.1"))
	assert.Error(t, err)
}

func TestServer_HealthCheck(t *testing.T) {
	_, conn := startServer(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestServer_RegisterServiceMarksServing(t *testing.T) {
	s, err := NewServer(config.GRPCConfig{Port: 0}, WithHost("127.0.0.1"))
	require.NoError(t, err)

	desc := &grpc.ServiceDesc{ServiceName: "test.Echo", HandlerType: (*interface{})(nil)}
	s.RegisterService(desc, struct{}{})
	go func() { _ = s.Start() }()
	defer s.Stop(context.Background())

	conn, err := grpc.Dial(s.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: "test.Echo"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestServer_StartTwice(t *testing.T) {
	s, _ := startServer(t)
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.started
	}, time.Second, 10*time.Millisecond)
	assert.Error(t, s.Start())
}

func TestServer_StopWithoutStart(t *testing.T) {
	s, err := NewServer(config.GRPCConfig{Port: 0}, WithHost("127.0.0.1"))
	require.NoError(t, err)
	assert.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, s.Start(), "start after stop returns without serving")
}

func TestRecoveryUnaryInterceptor(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	interceptor := recoveryUnaryInterceptor(logging.NewLoggerFromCore(core))

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Boom"},
		func(context.Context, interface{}) (interface{}, error) { panic("boom") })

	assert.Equal(t, codes.Internal, status.Code(err))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "grpc panic recovered", logs.All()[0].Message)
}

func TestLoggingUnaryInterceptor_SkipsHealth(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	interceptor := loggingUnaryInterceptor(logging.NewLoggerFromCore(core))
	ok := func(context.Context, interface{}) (interface{}, error) { return "ok", nil }

	_, _ = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, ok)
	assert.Equal(t, 0, logs.Len())

	_, _ = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/mhdash.v1.Dashboard/ListViews"}, ok)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "OK", logs.All()[0].ContextMap()["code"])
}

func TestMetricsUnaryInterceptor(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "grpctest"}, logging.NewNopLogger())
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	interceptor := metricsUnaryInterceptor(metrics)
	_, _ = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/mhdash.v1.Dashboard/GetView"},
		func(context.Context, interface{}) (interface{}, error) { return nil, status.Error(codes.NotFound, "x") })

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `grpctest_grpc_requests_total{code="NotFound",method="GetView",service="mhdash.v1.Dashboard"} 1`)

	assert.NotPanics(t, func() {
		_, _ = metricsUnaryInterceptor(nil)(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/a/b"},
			func(context.Context, interface{}) (interface{}, error) { return nil, nil })
	})
}

func TestSplitMethodName(t *testing.T) {
	svc, method := splitMethodName("/mhdash.v1.Dashboard/GetView")
	assert.Equal(t, "mhdash.v1.Dashboard", svc)
	assert.Equal(t, "GetView", method)

	svc, method = splitMethodName("bare")
	assert.Equal(t, "unknown", svc)
	assert.Equal(t, "bare", method)
}
