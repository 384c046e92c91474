// Package config defines the configuration structures for the dashboard.
// Loading lives in loader.go, defaults in defaults.go.
package config

import (
	"fmt"
	"time"
)

// HTTPConfig holds HTTP listener tunables.
type HTTPConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// GRPCConfig holds gRPC listener tunables. Port 0 disables the listener.
type GRPCConfig struct {
	Port int `mapstructure:"port"`
}

type ServerConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	GRPC GRPCConfig `mapstructure:"grpc"`
}

// Heatmap color range modes.
const (
	HeatmapRangeFull   = "full"
	HeatmapRangeParity = "parity"
)

// MaxSeed is the largest dataset seed; seeds are 32-bit.
const MaxSeed = 1<<32 - 1

// DashboardConfig controls dataset generation and chart output.
type DashboardConfig struct {
	Seed         int64  `mapstructure:"seed"`
	DefaultTheme string `mapstructure:"default_theme"`
	// HeatmapRange is "full" for [-1,1] or "parity" for the fixed [0,1] display.
	HeatmapRange string `mapstructure:"heatmap_range"`
	ChartWidth   int    `mapstructure:"chart_width"`
}

// RedisConfig holds parameters for the rendered-chart cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds the snapshot object store parameters.
type MinIOConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Endpoint     string        `mapstructure:"endpoint"`
	AccessKey    string        `mapstructure:"access_key"`
	SecretKey    string        `mapstructure:"secret_key"`
	UseSSL       bool          `mapstructure:"use_ssl"`
	Region       string        `mapstructure:"region"`
	Bucket       string        `mapstructure:"bucket"`
	PresignedTTL time.Duration `mapstructure:"presigned_ttl"`
}

// KafkaConfig holds the render-event producer parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// Config is the root configuration object.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// Validate performs semantic validation of a defaulted Config and returns the
// first problem found.
func (c *Config) Validate() error {
	if c.Server.HTTP.Port < 1 || c.Server.HTTP.Port > 65535 {
		return fmt.Errorf("server.http.port %d is out of range [1, 65535]", c.Server.HTTP.Port)
	}
	if c.Server.GRPC.Port < 0 || c.Server.GRPC.Port > 65535 {
		return fmt.Errorf("server.grpc.port %d is out of range [0, 65535]", c.Server.GRPC.Port)
	}
	if c.Server.GRPC.Port != 0 && c.Server.GRPC.Port == c.Server.HTTP.Port {
		return fmt.Errorf("server.grpc.port must differ from server.http.port")
	}

	switch c.Dashboard.DefaultTheme {
	case "light", "dark", "auto":
	default:
		return fmt.Errorf("dashboard.default_theme %q is invalid; expected light|dark|auto", c.Dashboard.DefaultTheme)
	}
	switch c.Dashboard.HeatmapRange {
	case HeatmapRangeFull, HeatmapRangeParity:
	default:
		return fmt.Errorf("dashboard.heatmap_range %q is invalid; expected full|parity", c.Dashboard.HeatmapRange)
	}
	if c.Dashboard.Seed < 0 || c.Dashboard.Seed > MaxSeed {
		return fmt.Errorf("dashboard.seed %d is out of range [0, %d]", c.Dashboard.Seed, int64(MaxSeed))
	}
	if c.Dashboard.ChartWidth < 200 {
		return fmt.Errorf("dashboard.chart_width must be >= 200, got %d", c.Dashboard.ChartWidth)
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required when redis is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("minio.endpoint and minio.bucket are required when minio is enabled")
		}
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers must contain at least one broker when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka is enabled")
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q is invalid; expected json|console", c.Log.Format)
	}
	return nil
}
