// Package http assembles the dashboard's HTTP route tree and server.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/render"
	"github.com/turtacn/mhtech-dashboard/internal/interfaces/http/handlers"
	"github.com/turtacn/mhtech-dashboard/internal/interfaces/http/middleware"
)

// RouterConfig carries the handlers and middleware of the route tree. Nil
// handlers leave their routes unregistered.
type RouterConfig struct {
	DashboardHandler *handlers.DashboardHandler
	ExportHandler    *handlers.ExportHandler
	HealthHandler    *handlers.HealthHandler

	CORSMiddleware    *middleware.CORSMiddleware
	LoggingMiddleware *middleware.LoggingMiddleware
	MetricsMiddleware *middleware.MetricsMiddleware

	MetricsCollector prometheus.MetricsCollector
}

// NewRouter builds the route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.MetricsMiddleware != nil {
		r.Use(cfg.MetricsMiddleware.Handler)
	}
	if cfg.CORSMiddleware != nil {
		r.Use(cfg.CORSMiddleware.Handler)
	}
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}
	if cfg.DashboardHandler != nil {
		r.Get("/", cfg.DashboardHandler.Page)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerViewRoutes(api, cfg.DashboardHandler)
		registerExportRoutes(api, cfg.ExportHandler)
	})
	return r
}

func registerViewRoutes(r chi.Router, h *handlers.DashboardHandler) {
	if h == nil {
		return
	}
	r.Route("/views", func(vr chi.Router) {
		vr.Get("/", h.ListViews)
		vr.Route("/{view}", func(item chi.Router) {
			item.Get("/", h.GetView)
			item.Get("/chart.png", h.Chart(render.PNG))
			item.Get("/chart.svg", h.Chart(render.SVG))
		})
	})
	r.Route("/datasets", func(dr chi.Router) {
		dr.Get("/", h.ListDatasets)
		dr.Get("/{dataset}", h.GetDataset)
	})
}

func registerExportRoutes(r chi.Router, h *handlers.ExportHandler) {
	if h == nil {
		return
	}
	r.Get("/export.xlsx", h.Workbook)
	r.Post("/snapshots", h.CreateSnapshot)
}
