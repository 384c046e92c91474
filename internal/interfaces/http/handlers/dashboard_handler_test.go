package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/mhtech-dashboard/internal/application/dashboard"
	"github.com/turtacn/mhtech-dashboard/internal/domain/theme"
	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/render"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

type fakeRenderer struct{}

func (fakeRenderer) Render(_ context.Context, spec view.ChartSpec, t theme.Name, f render.Format) (*render.Image, error) {
	return &render.Image{Format: f, Data: []byte(string(spec.Kind) + "|" + string(t))}, nil
}

func newDashboardRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := dashboard.NewService(view.NewDispatcher(nil), fakeRenderer{})
	h, err := NewDashboardHandler(svc, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/", h.Page)
	r.Get("/api/v1/views", h.ListViews)
	r.Get("/api/v1/views/{view}", h.GetView)
	r.Get("/api/v1/views/{view}/chart.png", h.Chart(render.PNG))
	r.Get("/api/v1/views/{view}/chart.svg", h.Chart(render.SVG))
	r.Get("/api/v1/datasets", h.ListDatasets)
	r.Get("/api/v1/datasets/{dataset}", h.GetDataset)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestDashboardHandler_PageHome(t *testing.T) {
	w := get(t, newDashboardRouter(t), "/")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "<title>"+view.PageTitle+"</title>")
	assert.Contains(t, body, "Sabrina Marliani")
	assert.Contains(t, body, theme.Dark.Palette().Sidebar)
	assert.NotContains(t, body, "<img")
	for _, d := range view.All() {
		assert.Contains(t, body, "view="+d.Slug)
	}
}

func TestDashboardHandler_PageChartView(t *testing.T) {
	w := get(t, newDashboardRouter(t), "/?view=country-counts&theme=auto")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `src="/api/v1/views/country-counts/chart.svg?theme=auto"`)
	assert.Contains(t, body, "prefers-color-scheme: dark")
	// Indonesian grouping in the stats panel.
	assert.Contains(t, body, "1.318,00")
	assert.Contains(t, body, "United States")
}

func TestDashboardHandler_PageErrors(t *testing.T) {
	r := newDashboardRouter(t)

	w := get(t, r, "/?view=unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(errors.ErrCodeUnknownView), resp.Code)
	assert.Equal(t, "unknown", resp.Detail)

	w = get(t, r, "/?theme=sepia")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardHandler_ListViews(t *testing.T) {
	w := get(t, newDashboardRouter(t), "/api/v1/views")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ViewListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Views, 6)
	assert.Equal(t, "correlation-heatmap", resp.Views[4].Slug)
	assert.Equal(t, view.KindPie, resp.Views[5].Kind)
	assert.Equal(t, theme.Names(), resp.Themes)
}

func TestDashboardHandler_GetView(t *testing.T) {
	w := get(t, newDashboardRouter(t), "/api/v1/views/correlation-heatmap?theme=light")
	require.Equal(t, http.StatusOK, w.Code)

	var page dashboard.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, view.CorrelationHeatmap, page.Current.Label)
	assert.Equal(t, view.KindHeatmap, page.Current.Chart.Kind)
	require.NotNil(t, page.Current.Chart.Matrix)
	assert.Equal(t, [][]string{{"1.00", "0.13"}, {"0.13", "1.00"}}, page.Current.Chart.Matrix.Text)
	assert.Equal(t, theme.Light, page.Theme)
}

func TestDashboardHandler_Chart(t *testing.T) {
	r := newDashboardRouter(t)

	w := get(t, r, "/api/v1/views/gender-distribution/chart.svg?theme=dark")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "MISS", w.Header().Get(ChartCacheHeader))
	assert.Equal(t, "pie|dark", w.Body.String())

	w = get(t, r, "/api/v1/views/home/chart.png")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), string(errors.ErrCodeViewHasNoChart))
}

func TestDashboardHandler_Datasets(t *testing.T) {
	r := newDashboardRouter(t)

	w := get(t, r, "/api/v1/datasets")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"datasets":["countryCounts","ageSample","ageTreatmentPairs","genderShares"]}`, w.Body.String())

	w = get(t, r, "/api/v1/datasets/genderShares")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		ID   string `json:"id"`
		Len  int    `json:"len"`
		Data []struct {
			Label   string  `json:"label"`
			Percent float64 `json:"percent"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "genderShares", resp.ID)
	assert.Equal(t, 3, resp.Len)
	assert.Equal(t, "Male", resp.Data[0].Label)

	w = get(t, r, "/api/v1/datasets/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChartPath(t *testing.T) {
	assert.Equal(t, "/api/v1/views/age-distribution/chart.png", ChartPath("age-distribution", render.PNG, ""))
	assert.True(t, strings.HasSuffix(ChartPath("x", render.SVG, theme.Dark), "chart.svg?theme=dark"))
}

func TestWriteAppError_MasksServerErrors(t *testing.T) {
	w := httptest.NewRecorder()
	writeAppError(w, errors.New(errors.ErrCodeRenderFailed, "gonum exploded").WithDetail("secret"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(errors.ErrCodeRenderFailed), resp.Code)
	assert.NotContains(t, resp.Message, "gonum")
	assert.Empty(t, resp.Detail)

	w = httptest.NewRecorder()
	writeAppError(w, context.Canceled)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), string(errors.ErrCodeInternal))
}
