// Package dashboard is the application service behind every surface of the
// dashboard. HTTP, gRPC and the CLI all resolve views, pages, charts and
// datasets through Service.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/mhtech-dashboard/internal/domain/dataset"
	"github.com/turtacn/mhtech-dashboard/internal/domain/theme"
	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
	kafkainfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/render"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// Service defines the dashboard application operations.
type Service interface {
	Views(ctx context.Context) []view.Descriptor
	View(ctx context.Context, name string) (*view.Result, error)
	Page(ctx context.Context, input *PageInput) (*Page, error)
	Chart(ctx context.Context, input *ChartInput) (*Chart, error)
	Dataset(ctx context.Context, id string) (dataset.Dataset, error)
}

// ChartCache stores rendered chart bytes. The Redis cache satisfies it.
type ChartCache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) ([]byte, error)) ([]byte, bool, error)
}

// PageInput selects a view and theme. Empty fields fall back to Home and the
// configured default theme.
type PageInput struct {
	View  string
	Theme string
}

// ChartInput selects a chart image.
type ChartInput struct {
	View   string
	Theme  string
	Format string
}

// Page is everything the HTML page needs for one view.
type Page struct {
	Title   string             `json:"title"`
	Views   []view.Descriptor  `json:"views"`
	Current view.Result        `json:"current"`
	Home    *view.HomeContent  `json:"home,omitempty"`
	Theme   theme.Name         `json:"theme"`
	Themes  []theme.Name       `json:"themes"`
	Palette theme.Palette      `json:"palette"`
	Footer  string             `json:"footer"`
	Stats   *view.SummaryStats `json:"stats,omitempty"`
}

// Chart is a rendered chart image.
type Chart struct {
	View   view.Label    `json:"view"`
	Theme  theme.Name    `json:"theme"`
	Image  *render.Image `json:"image"`
	Cached bool          `json:"cached"`
}

type service struct {
	dispatcher   *view.Dispatcher
	renderer     render.Renderer
	cache        ChartCache
	cacheTTL     time.Duration
	events       kafkainfra.EventPublisher
	metrics      *prometheus.AppMetrics
	logger       logging.Logger
	defaultTheme theme.Name
}

// Option configures the service.
type Option func(*service)

// WithCache enables the rendered-chart cache.
func WithCache(c ChartCache, ttl time.Duration) Option {
	return func(s *service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithEvents publishes a view.rendered event after every chart.
func WithEvents(p kafkainfra.EventPublisher) Option {
	return func(s *service) {
		if p != nil {
			s.events = p
		}
	}
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *service) { s.metrics = m }
}

func WithLogger(l logging.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultTheme sets the theme used when a request names none.
func WithDefaultTheme(t theme.Name) Option {
	return func(s *service) { s.defaultTheme = t }
}

// NewService wires the dispatcher and renderer into a Service.
func NewService(dispatcher *view.Dispatcher, renderer render.Renderer, opts ...Option) Service {
	if dispatcher == nil {
		dispatcher = view.NewDispatcher(nil)
	}
	if renderer == nil {
		renderer = render.NewChartRenderer()
	}
	s := &service{
		dispatcher:   dispatcher,
		renderer:     renderer,
		events:       kafkainfra.NopPublisher{},
		logger:       logging.NewNopLogger(),
		defaultTheme: theme.Dark,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Views(_ context.Context) []view.Descriptor {
	return view.All()
}

func (s *service) View(_ context.Context, name string) (*view.Result, error) {
	label, err := view.Parse(name)
	if err != nil {
		prometheus.RecordDispatch(s.metrics, name, err)
		return nil, err
	}
	res, err := s.dispatcher.Dispatch(label)
	prometheus.RecordDispatch(s.metrics, label.Slug(), err)
	if err != nil {
		s.logger.Error("view dispatch failed", logging.String("view", label.Slug()), logging.Err(err))
		return nil, err
	}
	return &res, nil
}

func (s *service) Page(ctx context.Context, input *PageInput) (*Page, error) {
	if input == nil {
		input = &PageInput{}
	}
	t, err := theme.Parse(input.Theme, s.defaultTheme)
	if err != nil {
		return nil, err
	}
	res, err := s.View(ctx, input.View)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Title:   view.PageTitle,
		Views:   view.All(),
		Current: *res,
		Theme:   t,
		Themes:  theme.Names(),
		Palette: t.Palette(),
		Footer:  view.Footer,
	}
	if res.Label == view.Home {
		home := view.HomePage()
		page.Home = &home
	}
	page.Stats = view.Summarize(res.Chart)
	return page, nil
}

func (s *service) Chart(ctx context.Context, input *ChartInput) (*Chart, error) {
	if input == nil {
		return nil, errors.InvalidParam("chart input is required")
	}
	t, err := theme.Parse(input.Theme, s.defaultTheme)
	if err != nil {
		return nil, err
	}
	format, err := render.ParseFormat(input.Format)
	if err != nil {
		return nil, err
	}
	res, err := s.View(ctx, input.View)
	if err != nil {
		return nil, err
	}
	if !res.Chart.HasChart() {
		return nil, errors.New(errors.ErrCodeViewHasNoChart, "view has no chart").WithDetail(res.Slug)
	}

	start := time.Now()
	load := func(ctx context.Context) ([]byte, error) {
		img, err := s.renderer.Render(ctx, res.Chart, t.Static(), format)
		if err != nil {
			return nil, err
		}
		return img.Data, nil
	}

	var (
		data   []byte
		cached bool
	)
	if s.cache != nil {
		data, cached, err = s.cache.GetOrSet(ctx, s.cacheKey(res.Slug, t, format), s.cacheTTL, load)
		prometheus.RecordCacheAccess(s.metrics, "chart", cached)
	} else {
		data, err = load(ctx)
	}
	elapsed := time.Since(start)
	prometheus.RecordRender(s.metrics, res.Slug, string(format), elapsed, len(data), err)
	if err != nil {
		prometheus.RecordError(s.metrics, "render", string(errors.GetCode(err)))
		return nil, err
	}

	s.logger.Info("chart served",
		logging.String("view", res.Slug),
		logging.String("theme", string(t.Static())),
		logging.String("format", string(format)),
		logging.Int("bytes", len(data)),
		logging.Bool("cached", cached),
		logging.Duration("elapsed", elapsed))

	s.publishRendered(ctx, kafkainfra.ViewRenderedPayload{
		View:       res.Slug,
		Theme:      string(t.Static()),
		Format:     string(format),
		Bytes:      len(data),
		Cached:     cached,
		DurationMs: elapsed.Milliseconds(),
		RenderedAt: time.Now().UTC(),
	})

	return &Chart{
		View:   res.Label,
		Theme:  t,
		Image:  &render.Image{Format: format, Data: data},
		Cached: cached,
	}, nil
}

// publishRendered never fails the request; event loss is only logged.
func (s *service) publishRendered(ctx context.Context, payload kafkainfra.ViewRenderedPayload) {
	err := s.events.PublishEvent(ctx, kafkainfra.EventViewRendered, payload)
	if _, nop := s.events.(kafkainfra.NopPublisher); !nop {
		prometheus.RecordEvent(s.metrics, err)
	}
	if err != nil {
		s.logger.Warn("failed to publish render event", logging.String("view", payload.View), logging.Err(err))
	}
}

func (s *service) Dataset(_ context.Context, id string) (dataset.Dataset, error) {
	return s.dispatcher.Provider().Get(dataset.ID(id))
}

// cacheKey covers every input that changes the image bytes.
func (s *service) cacheKey(slug string, t theme.Name, f render.Format) string {
	lo, hi := s.dispatcher.HeatmapRange().Bounds()
	return fmt.Sprintf("chart:%s:s%d:r%g_%g:%s.%s", slug, s.dispatcher.Provider().Seed(), lo, hi, t.Static(), f)
}
