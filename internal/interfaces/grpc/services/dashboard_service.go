// Package services holds the gRPC service implementations. Messages are
// google.protobuf.Struct values so clients need no generated stubs beyond the
// well-known types.
package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/turtacn/mhtech-dashboard/internal/application/dashboard"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// DashboardServiceName is the fully qualified gRPC service name.
const DashboardServiceName = "mhdash.v1.Dashboard"

// Full method names.
const (
	MethodListViews   = "/" + DashboardServiceName + "/ListViews"
	MethodGetView     = "/" + DashboardServiceName + "/GetView"
	MethodGetDataset  = "/" + DashboardServiceName + "/GetDataset"
	MethodRenderChart = "/" + DashboardServiceName + "/RenderChart"
)

// DashboardServer is the server API of the Dashboard service.
type DashboardServer interface {
	ListViews(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetView(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetDataset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RenderChart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// DashboardServiceServer serves dashboard.Service over gRPC.
type DashboardServiceServer struct {
	svc    dashboard.Service
	logger logging.Logger
}

func NewDashboardServiceServer(svc dashboard.Service, logger logging.Logger) *DashboardServiceServer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DashboardServiceServer{svc: svc, logger: logger}
}

// ListViews returns {"views": [{label, slug, kind}...]} in sidebar order.
func (s *DashboardServiceServer) ListViews(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(map[string]interface{}{"views": s.svc.Views(ctx)})
}

// GetView accepts {"view", "theme"} and returns the page payload.
func (s *DashboardServiceServer) GetView(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	page, err := s.svc.Page(ctx, &dashboard.PageInput{
		View:  stringField(req, "view"),
		Theme: stringField(req, "theme"),
	})
	if err != nil {
		return nil, s.toStatus(err)
	}
	return toStruct(page)
}

// GetDataset accepts {"id"} and returns {"id", "len", "data"}.
func (s *DashboardServiceServer) GetDataset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := stringField(req, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	ds, err := s.svc.Dataset(ctx, id)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return toStruct(map[string]interface{}{"id": id, "len": ds.Len(), "data": ds})
}

// RenderChart accepts {"view", "theme", "format"} and returns the image as
// base64 under "data".
func (s *DashboardServiceServer) RenderChart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	chart, err := s.svc.Chart(ctx, &dashboard.ChartInput{
		View:   stringField(req, "view"),
		Theme:  stringField(req, "theme"),
		Format: stringField(req, "format"),
	})
	if err != nil {
		return nil, s.toStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"view":         string(chart.View),
		"theme":        string(chart.Theme),
		"format":       string(chart.Image.Format),
		"content_type": chart.Image.ContentType(),
		"cached":       chart.Cached,
		"data":         base64.StdEncoding.EncodeToString(chart.Image.Data),
	})
}

func (s *DashboardServiceServer) toStatus(err error) error {
	code := errors.GetCode(err)
	var grpcCode codes.Code
	switch errors.HTTPStatusForCode(code) {
	case http.StatusBadRequest:
		grpcCode = codes.InvalidArgument
	case http.StatusNotFound:
		grpcCode = codes.NotFound
	case http.StatusServiceUnavailable:
		grpcCode = codes.Unavailable
	case http.StatusGatewayTimeout:
		grpcCode = codes.DeadlineExceeded
	default:
		grpcCode = codes.Internal
	}
	if grpcCode == codes.Internal {
		s.logger.Error("grpc dashboard call failed", logging.String("code", string(code)), logging.Err(err))
		return status.Error(grpcCode, errors.DefaultMessageForCode(code))
	}
	return status.Error(grpcCode, err.Error())
}

func stringField(req *structpb.Struct, key string) string {
	if req == nil {
		return ""
	}
	if v, ok := req.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

// toStruct converts v through its JSON form, so struct tags shape the message.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func unaryHandler(method string, call func(DashboardServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DashboardServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + DashboardServiceName + "/" + method}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(DashboardServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// DashboardServiceDesc describes the Dashboard service for grpc.Server.
var DashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: DashboardServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("ListViews", DashboardServer.ListViews),
		unaryHandler("GetView", DashboardServer.GetView),
		unaryHandler("GetDataset", DashboardServer.GetDataset),
		unaryHandler("RenderChart", DashboardServer.RenderChart),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mhdash/v1/dashboard.proto",
}

// DashboardClient calls the Dashboard service.
type DashboardClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardClient(cc grpc.ClientConnInterface) *DashboardClient {
	return &DashboardClient{cc: cc}
}

func (c *DashboardClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardClient) ListViews(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListViews, in, opts...)
}

func (c *DashboardClient) GetView(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetView, in, opts...)
}

func (c *DashboardClient) GetDataset(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetDataset, in, opts...)
}

func (c *DashboardClient) RenderChart(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodRenderChart, in, opts...)
}
