package dashboard

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/mhtech-dashboard/internal/config"
	"github.com/turtacn/mhtech-dashboard/internal/domain/dataset"
	"github.com/turtacn/mhtech-dashboard/internal/domain/theme"
	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
	redisinfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/database/redis"
	kafkainfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/render"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, eventType string, payload interface{}) error {
	args := m.Called(ctx, eventType, payload)
	return args.Error(0)
}

// countingRenderer returns fixed bytes and counts calls.
type countingRenderer struct {
	calls atomic.Int32
	err   error
}

func (r *countingRenderer) Render(_ context.Context, spec view.ChartSpec, t theme.Name, f render.Format) (*render.Image, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &render.Image{Format: f, Data: []byte(string(spec.Kind) + ":" + string(t) + ":" + string(f))}, nil
}

func newTestMetrics(t *testing.T) *prometheus.AppMetrics {
	t.Helper()
	c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "dashtest"}, logging.NewNopLogger())
	require.NoError(t, err)
	return prometheus.NewAppMetrics(c)
}

func newMiniCache(t *testing.T) redisinfra.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := config.Default().Redis
	cfg.Addr = mr.Addr()
	client, err := redisinfra.NewClient(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return redisinfra.NewRedisCache(client, logging.NewNopLogger(), redisinfra.WithPrefix("svc:"))
}

func newTestService(opts ...Option) Service {
	d := view.NewDispatcher(dataset.NewProvider(dataset.DefaultSeed))
	return NewService(d, render.NewChartRenderer(render.WithWidth(480)), opts...)
}

func TestService_Views(t *testing.T) {
	views := newTestService().Views(context.Background())
	require.Len(t, views, 6)
	assert.Equal(t, view.Home, views[0].Label)
}

func TestService_View(t *testing.T) {
	svc := newTestService(WithMetrics(newTestMetrics(t)))

	res, err := svc.View(context.Background(), "country-counts")
	require.NoError(t, err)
	assert.Equal(t, view.CountryCounts, res.Label)
	assert.Equal(t, view.KindBar, res.Chart.Kind)

	_, err = svc.View(context.Background(), "nope")
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownView))
}

func TestService_Page_Home(t *testing.T) {
	page, err := newTestService().Page(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, view.PageTitle, page.Title)
	assert.Equal(t, view.Footer, page.Footer)
	assert.Equal(t, theme.Dark, page.Theme)
	assert.Equal(t, theme.Dark.Palette(), page.Palette)
	require.NotNil(t, page.Home)
	assert.NotEmpty(t, page.Home.Authors)
	assert.Nil(t, page.Stats)
	assert.Len(t, page.Views, 6)
}

func TestService_Page_ChartView(t *testing.T) {
	svc := newTestService(WithDefaultTheme(theme.Light))

	page, err := svc.Page(context.Background(), &PageInput{View: "gender-distribution"})
	require.NoError(t, err)
	assert.Equal(t, theme.Light, page.Theme)
	assert.Nil(t, page.Home)
	require.NotNil(t, page.Stats)
	assert.Equal(t, "Male", page.Stats.Top)
}

func TestService_Page_UnknownTheme(t *testing.T) {
	_, err := newTestService().Page(context.Background(), &PageInput{Theme: "sepia"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownTheme))
}

func TestService_Chart_RendersEveryChartView(t *testing.T) {
	svc := newTestService()
	for _, l := range view.Labels() {
		if l == view.Home {
			continue
		}
		t.Run(l.Slug(), func(t *testing.T) {
			chart, err := svc.Chart(context.Background(), &ChartInput{View: l.Slug(), Format: "png"})
			require.NoError(t, err)
			assert.Equal(t, l, chart.View)
			assert.Equal(t, "image/png", chart.Image.ContentType())
			assert.True(t, strings.HasPrefix(string(chart.Image.Data), "\x89PNG"))
			assert.False(t, chart.Cached)
		})
	}
}

func TestService_Chart_Errors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Chart(ctx, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))

	_, err = svc.Chart(ctx, &ChartInput{View: "home"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeViewHasNoChart))

	_, err = svc.Chart(ctx, &ChartInput{View: "age-distribution", Format: "gif"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnsupportedFormat))

	_, err = svc.Chart(ctx, &ChartInput{View: "age-distribution", Theme: "neon"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownTheme))
}

func TestService_Chart_RenderFailure(t *testing.T) {
	r := &countingRenderer{err: errors.New(errors.ErrCodeRenderFailed, "boom")}
	pub := new(mockPublisher)
	svc := NewService(view.NewDispatcher(nil), r, WithEvents(pub), WithMetrics(newTestMetrics(t)))

	_, err := svc.Chart(context.Background(), &ChartInput{View: "age-distribution"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeRenderFailed))
	pub.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Chart_CachesByThemeAndFormat(t *testing.T) {
	r := &countingRenderer{}
	svc := NewService(view.NewDispatcher(nil), r,
		WithCache(newMiniCache(t), time.Minute),
		WithMetrics(newTestMetrics(t)))
	ctx := context.Background()

	first, err := svc.Chart(ctx, &ChartInput{View: "country-counts", Theme: "dark"})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Chart(ctx, &ChartInput{View: "country-counts", Theme: "dark"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Image.Data, second.Image.Data)
	assert.Equal(t, int32(1), r.calls.Load())

	// Auto renders with the light palette, so it reuses the light entry.
	_, err = svc.Chart(ctx, &ChartInput{View: "country-counts", Theme: "light"})
	require.NoError(t, err)
	auto, err := svc.Chart(ctx, &ChartInput{View: "country-counts", Theme: "auto"})
	require.NoError(t, err)
	assert.True(t, auto.Cached)
	assert.Equal(t, theme.Auto, auto.Theme)

	svgChart, err := svc.Chart(ctx, &ChartInput{View: "country-counts", Theme: "dark", Format: "svg"})
	require.NoError(t, err)
	assert.False(t, svgChart.Cached)
	assert.Equal(t, int32(3), r.calls.Load())
}

func TestService_Chart_PublishesRenderedEvent(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishEvent", mock.Anything, kafkainfra.EventViewRendered, mock.MatchedBy(func(p kafkainfra.ViewRenderedPayload) bool {
		return p.View == "age-vs-treatment" && p.Theme == "light" && p.Format == "svg" && p.Bytes > 0 && !p.Cached
	})).Return(nil).Once()

	svc := NewService(view.NewDispatcher(nil), &countingRenderer{}, WithEvents(pub))
	_, err := svc.Chart(context.Background(), &ChartInput{View: "age-vs-treatment", Theme: "light", Format: "svg"})
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestService_Chart_PublishFailureIsNotFatal(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New(errors.ErrCodeExternalService, "broker down"))

	svc := NewService(view.NewDispatcher(nil), &countingRenderer{}, WithEvents(pub), WithMetrics(newTestMetrics(t)))
	chart, err := svc.Chart(context.Background(), &ChartInput{View: "gender-distribution"})
	require.NoError(t, err)
	assert.NotEmpty(t, chart.Image.Data)
	pub.AssertNumberOfCalls(t, "PublishEvent", 1)
}

func TestService_Dataset(t *testing.T) {
	svc := newTestService()

	ds, err := svc.Dataset(context.Background(), string(dataset.IDAgeSample))
	require.NoError(t, err)
	assert.Equal(t, dataset.AgeSampleSize, ds.Len())

	_, err = svc.Dataset(context.Background(), "nope")
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownDataset))
}

func TestService_CacheKey(t *testing.T) {
	full := NewService(view.NewDispatcher(dataset.NewProvider(7)), nil).(*service)
	parity := NewService(view.NewDispatcher(dataset.NewProvider(7), view.WithHeatmapRange(view.RangeParity)), nil).(*service)

	assert.Equal(t, "chart:correlation-heatmap:s7:r-1_1:light.png", full.cacheKey("correlation-heatmap", theme.Auto, render.PNG))
	assert.Equal(t, "chart:correlation-heatmap:s7:r0_1:dark.svg", parity.cacheKey("correlation-heatmap", theme.Dark, render.SVG))
}
