// API server entry point for the mental-health-in-tech dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/mhtech-dashboard/internal/application/dashboard"
	"github.com/turtacn/mhtech-dashboard/internal/application/export"
	"github.com/turtacn/mhtech-dashboard/internal/config"
	"github.com/turtacn/mhtech-dashboard/internal/domain/dataset"
	"github.com/turtacn/mhtech-dashboard/internal/domain/theme"
	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
	redisinfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/database/redis"
	kafkainfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/render"
	minioinfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/storage/minio"
	grpcserver "github.com/turtacn/mhtech-dashboard/internal/interfaces/grpc"
	"github.com/turtacn/mhtech-dashboard/internal/interfaces/grpc/services"
	httpserver "github.com/turtacn/mhtech-dashboard/internal/interfaces/http"
	"github.com/turtacn/mhtech-dashboard/internal/interfaces/http/handlers"
	"github.com/turtacn/mhtech-dashboard/internal/interfaces/http/middleware"
)

// Set by -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: MHDASH_* environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	grpcPort := flag.Int("grpc-port", -1, "gRPC server port, 0 disables (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.HTTP.Port = *httpPort
	}
	if *grpcPort >= 0 {
		cfg.Server.GRPC.Port = *grpcPort
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *configPath, logger); err != nil {
		logger.Error("apiserver exited", logging.Err(err))
		os.Exit(1)
	}
}

// app holds the assembled servers and the clients they own.
type app struct {
	http    *httpserver.Server
	grpc    *grpcserver.Server
	closers []func() error
}

func (a *app) close(logger logging.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("close failed", logging.Err(err))
		}
	}
}

func run(ctx context.Context, cfg *config.Config, configPath string, logger logging.Logger) error {
	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close(logger)

	if configPath != "" {
		err := config.Watch(configPath, func(next *config.Config) {
			logger.Info("config file changed; restart to apply",
				logging.Int64("seed", next.Dashboard.Seed),
				logging.String("default_theme", next.Dashboard.DefaultTheme),
				logging.String("heatmap_range", next.Dashboard.HeatmapRange))
		}, func(err error) {
			logger.Warn("config reload rejected", logging.Err(err))
		})
		if err != nil {
			logger.Warn("config watch unavailable", logging.Err(err))
		}
	}

	logger.Info("starting dashboard API server",
		logging.String("version", Version),
		logging.String("commit", GitCommit),
		logging.String("http_addr", a.http.Addr()),
		logging.Int("grpc_port", cfg.Server.GRPC.Port),
		logging.Int64("seed", cfg.Dashboard.Seed))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.http.Start)
	if a.grpc != nil {
		g.Go(a.grpc.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if a.grpc != nil {
			if err := a.grpc.Stop(stopCtx); err != nil {
				logger.Error("gRPC server shutdown error", logging.Err(err))
			}
		}
		return a.http.Stop(stopCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("servers stopped")
	return nil
}

// buildApp wires the dashboard and its optional backends from cfg. Disabled
// backends are left out entirely.
func buildApp(cfg *config.Config, logger logging.Logger) (*app, error) {
	a := &app{}
	fail := func(err error) (*app, error) {
		a.close(logger)
		return nil, err
	}

	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.AppMetrics
	)
	if cfg.Metrics.Enabled {
		c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return fail(err)
		}
		collector = c
		metrics = prometheus.NewAppMetrics(c)
	}

	defaultTheme, err := theme.Parse(cfg.Dashboard.DefaultTheme, theme.Dark)
	if err != nil {
		return fail(err)
	}
	dispatcher := view.NewDispatcher(
		dataset.NewProvider(cfg.Dashboard.Seed),
		view.WithHeatmapRange(view.HeatmapRange(cfg.Dashboard.HeatmapRange)),
	)
	renderer := render.NewChartRenderer(render.WithWidth(cfg.Dashboard.ChartWidth), render.WithLogger(logger))

	var checkers []handlers.HealthChecker
	dashOpts := []dashboard.Option{
		dashboard.WithLogger(logger),
		dashboard.WithMetrics(metrics),
		dashboard.WithDefaultTheme(defaultTheme),
	}

	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(cfg.Redis, logger)
		if err != nil {
			return fail(err)
		}
		a.closers = append(a.closers, client.Close)
		cache := redisinfra.NewRedisCache(client, logger,
			redisinfra.WithPrefix(cfg.Redis.KeyPrefix),
			redisinfra.WithDefaultTTL(cfg.Redis.DefaultTTL),
			redisinfra.WithJitter(true))
		dashOpts = append(dashOpts, dashboard.WithCache(cache, cfg.Redis.DefaultTTL))
		checkers = append(checkers, redisHealthChecker(cache))
	}

	var publisher kafkainfra.EventPublisher = kafkainfra.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, logger)
		if err != nil {
			return fail(err)
		}
		a.closers = append(a.closers, producer.Close)
		publisher = kafkainfra.NewEnvelopePublisher(producer, cfg.Kafka.Topic, "mhdash-apiserver")
		dashOpts = append(dashOpts, dashboard.WithEvents(publisher))
		checkers = append(checkers, kafkaHealthChecker(producer))
	}

	svc := dashboard.NewService(dispatcher, renderer, dashOpts...)

	// A nil *SnapshotService must not reach the handler as a non-nil interface.
	var snapshots handlers.SnapshotCreator
	if cfg.MinIO.Enabled {
		client, err := minioinfra.NewMinIOClient(cfg.MinIO, logger)
		if err != nil {
			return fail(err)
		}
		a.closers = append(a.closers, client.Close)
		snapshots = export.NewSnapshotService(dispatcher, renderer, minioinfra.NewSnapshotRepository(client, logger),
			export.WithSnapshotEvents(publisher),
			export.WithSnapshotMetrics(metrics),
			export.WithSnapshotLogger(logger),
			export.WithPresignTTL(cfg.MinIO.PresignedTTL))
		checkers = append(checkers, minioHealthChecker(client))
	}

	dashHandler, err := handlers.NewDashboardHandler(svc, logger)
	if err != nil {
		return fail(err)
	}
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Server.HTTP.AllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.Server.HTTP.AllowedOrigins
	}
	router := httpserver.NewRouter(httpserver.RouterConfig{
		DashboardHandler:  dashHandler,
		ExportHandler:     handlers.NewExportHandler(export.NewWorkbookExporter(dispatcher.Provider(), logger), snapshots, metrics, logger),
		HealthHandler:     handlers.NewHealthHandler(Version, checkers...),
		CORSMiddleware:    middleware.NewCORSMiddleware(corsCfg),
		LoggingMiddleware: middleware.NewLoggingMiddleware(logger, middleware.DefaultLoggingConfig()),
		MetricsMiddleware: middleware.NewMetricsMiddleware(metrics),
		MetricsCollector:  collector,
	})
	a.http = httpserver.NewServer(cfg.Server.HTTP, router, logger)

	if cfg.Server.GRPC.Port > 0 {
		srv, err := grpcserver.NewServer(cfg.Server.GRPC,
			grpcserver.WithLogger(logger),
			grpcserver.WithMetrics(metrics))
		if err != nil {
			return fail(err)
		}
		srv.RegisterService(&services.DashboardServiceDesc, services.NewDashboardServiceServer(svc, logger))
		a.grpc = srv
	}

	return a, nil
}
