package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics groups every metric the dashboard records.
type AppMetrics struct {
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	ViewDispatchTotal   CounterVec
	ChartRenderTotal    CounterVec
	ChartRenderDuration HistogramVec
	ChartSizeBytes      HistogramVec

	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	ExportTotal       CounterVec
	SnapshotDuration  HistogramVec
	EventsPublished   CounterVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultRenderDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2}
	DefaultSizeBuckets           = []float64{1000, 10000, 50000, 100000, 500000, 1000000, 5000000}
)

// NewAppMetrics registers the dashboard metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC requests", "service", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC request duration", DefaultHTTPDurationBuckets, "service", "method")

	m.ViewDispatchTotal = collector.RegisterCounter("view_dispatch_total", "View dispatches", "view", "status")
	m.ChartRenderTotal = collector.RegisterCounter("chart_render_total", "Chart renders", "view", "format", "status")
	m.ChartRenderDuration = collector.RegisterHistogram("chart_render_duration_seconds", "Chart render duration", DefaultRenderDurationBuckets, "view", "format")
	m.ChartSizeBytes = collector.RegisterHistogram("chart_size_bytes", "Rendered chart size", DefaultSizeBuckets, "format")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	m.ExportTotal = collector.RegisterCounter("export_total", "Workbook and snapshot exports", "kind", "status")
	m.SnapshotDuration = collector.RegisterHistogram("snapshot_duration_seconds", "Snapshot duration", nil)
	m.EventsPublished = collector.RegisterCounter("events_published_total", "Render events published", "status")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_code")

	return m
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, respSize int64) {
	if metrics == nil {
		return
	}
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

func RecordGRPCRequest(metrics *AppMetrics, service, method, code string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.GRPCRequestsTotal.WithLabelValues(service, method, code).Inc()
	metrics.GRPCRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

func RecordDispatch(metrics *AppMetrics, view string, err error) {
	if metrics == nil {
		return
	}
	metrics.ViewDispatchTotal.WithLabelValues(view, status(err)).Inc()
}

func RecordRender(metrics *AppMetrics, view, format string, duration time.Duration, size int, err error) {
	if metrics == nil {
		return
	}
	metrics.ChartRenderTotal.WithLabelValues(view, format, status(err)).Inc()
	if err != nil {
		return
	}
	metrics.ChartRenderDuration.WithLabelValues(view, format).Observe(duration.Seconds())
	metrics.ChartSizeBytes.WithLabelValues(format).Observe(float64(size))
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if metrics == nil {
		return
	}
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordExport(metrics *AppMetrics, kind string, err error) {
	if metrics == nil {
		return
	}
	metrics.ExportTotal.WithLabelValues(kind, status(err)).Inc()
}

func RecordEvent(metrics *AppMetrics, err error) {
	if metrics == nil {
		return
	}
	metrics.EventsPublished.WithLabelValues(status(err)).Inc()
}

func RecordError(metrics *AppMetrics, component, code string) {
	if metrics == nil {
		return
	}
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}
