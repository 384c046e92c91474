package config

import "time"

const (
	DefaultHTTPHost        = "0.0.0.0"
	DefaultHTTPPort        = 8080
	DefaultGRPCPort        = 9090
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultSeed         = 42
	DefaultTheme        = "dark"
	DefaultHeatmapRange = HeatmapRangeFull
	DefaultChartWidth   = 900

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisTTL       = 10 * time.Minute
	DefaultRedisKeyPrefix = "mhdash:"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "mhdash-snapshots"
	DefaultPresignedTTL  = time.Hour

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "mhdash.view.rendered"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "mhdash"
)

// ApplyDefaults fills zero-value fields in cfg. Explicit values always win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	h := &cfg.Server.HTTP
	if h.Host == "" {
		h.Host = DefaultHTTPHost
	}
	if h.Port == 0 {
		h.Port = DefaultHTTPPort
	}
	if h.ReadTimeout == 0 {
		h.ReadTimeout = DefaultReadTimeout
	}
	if h.WriteTimeout == 0 {
		h.WriteTimeout = DefaultWriteTimeout
	}
	if h.ShutdownTimeout == 0 {
		h.ShutdownTimeout = DefaultShutdownTimeout
	}
	if len(h.AllowedOrigins) == 0 {
		h.AllowedOrigins = []string{"*"}
	}

	d := &cfg.Dashboard
	if d.Seed == 0 {
		d.Seed = DefaultSeed
	}
	if d.DefaultTheme == "" {
		d.DefaultTheme = DefaultTheme
	}
	if d.HeatmapRange == "" {
		d.HeatmapRange = DefaultHeatmapRange
	}
	if d.ChartWidth == 0 {
		d.ChartWidth = DefaultChartWidth
	}

	r := &cfg.Redis
	if r.Addr == "" {
		r.Addr = DefaultRedisAddr
	}
	if r.PoolSize == 0 {
		r.PoolSize = DefaultRedisPoolSize
	}
	if r.DialTimeout == 0 {
		r.DialTimeout = 5 * time.Second
	}
	if r.ReadTimeout == 0 {
		r.ReadTimeout = 3 * time.Second
	}
	if r.WriteTimeout == 0 {
		r.WriteTimeout = 3 * time.Second
	}
	if r.DefaultTTL == 0 {
		r.DefaultTTL = DefaultRedisTTL
	}
	if r.KeyPrefix == "" {
		r.KeyPrefix = DefaultRedisKeyPrefix
	}

	m := &cfg.MinIO
	if m.Endpoint == "" {
		m.Endpoint = DefaultMinIOEndpoint
	}
	if m.Bucket == "" {
		m.Bucket = DefaultMinIOBucket
	}
	if m.PresignedTTL == 0 {
		m.PresignedTTL = DefaultPresignedTTL
	}

	k := &cfg.Kafka
	if len(k.Brokers) == 0 {
		k.Brokers = []string{DefaultKafkaBroker}
	}
	if k.Topic == "" {
		k.Topic = DefaultKafkaTopic
	}
	if k.BatchTimeout == 0 {
		k.BatchTimeout = 50 * time.Millisecond
	}
	if k.WriteTimeout == 0 {
		k.WriteTimeout = 5 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Default returns a fully defaulted Config.
func Default() *Config {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)
	return cfg
}
