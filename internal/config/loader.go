package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "MHDASH"

// envKeys lists every leaf key so that AutomaticEnv overrides reach Unmarshal
// even when the key is absent from the file.
var envKeys = []string{
	"server.http.host", "server.http.port", "server.http.read_timeout",
	"server.http.write_timeout", "server.http.shutdown_timeout", "server.http.allowed_origins",
	"server.grpc.port",
	"dashboard.seed", "dashboard.default_theme", "dashboard.heatmap_range", "dashboard.chart_width",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.pool_size",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout", "redis.default_ttl", "redis.key_prefix",
	"minio.enabled", "minio.endpoint", "minio.access_key", "minio.secret_key", "minio.use_ssl",
	"minio.region", "minio.bucket", "minio.presigned_ttl",
	"kafka.enabled", "kafka.brokers", "kafka.topic", "kafka.batch_timeout", "kafka.write_timeout",
	"log.level", "log.format",
	"metrics.enabled", "metrics.namespace",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	v.SetDefault("metrics.enabled", true)
	return v
}

// Load reads configPath, overlays MHDASH_* environment variables, applies
// defaults and validates.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from environment variables and defaults only.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOrDefault loads configPath when non-empty, otherwise falls back to env.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch re-reads configPath on change and hands every valid result to
// onChange. Invalid edits are reported through onError and otherwise ignored.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is Load that panics on error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
