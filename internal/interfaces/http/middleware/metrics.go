package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/prometheus"
)

// MetricsMiddleware records request count, latency and response size. Paths
// are labelled by chi route pattern to keep cardinality bounded.
type MetricsMiddleware struct {
	metrics *prometheus.AppMetrics
}

func NewMetricsMiddleware(m *prometheus.AppMetrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

func (m *MetricsMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newWrappedResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		prometheus.RecordHTTPRequest(m.metrics, r.Method, routePattern(r), wrapped.statusCode,
			time.Since(start), wrapped.bytesWritten)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
