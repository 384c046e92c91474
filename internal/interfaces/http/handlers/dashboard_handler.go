package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/mhtech-dashboard/internal/application/dashboard"
	"github.com/turtacn/mhtech-dashboard/internal/domain/dataset"
	"github.com/turtacn/mhtech-dashboard/internal/domain/theme"
	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/render"
	"github.com/turtacn/mhtech-dashboard/internal/interfaces/format"
)

//go:embed templates/page.html
var templateFS embed.FS

// ChartCacheHeader reports whether a chart came from the cache.
const ChartCacheHeader = "X-Chart-Cache"

// DashboardHandler serves the HTML page and the view/chart/dataset API.
type DashboardHandler struct {
	svc    dashboard.Service
	page   *template.Template
	logger logging.Logger
}

func NewDashboardHandler(svc dashboard.Service, logger logging.Logger) (*DashboardHandler, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	nums := format.Indonesian()
	tmpl, err := template.New("page.html").Funcs(template.FuncMap{
		"int":   nums.Int,
		"float": func(v interface{}) string { return formatFloat(nums, v) },
	}).ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, err
	}
	return &DashboardHandler{svc: svc, page: tmpl, logger: logger}, nil
}

func formatFloat(n *format.Numbers, v interface{}) string {
	switch f := v.(type) {
	case float64:
		return n.Float(f)
	case *float64:
		if f != nil {
			return n.Float(*f)
		}
	}
	return ""
}

type pageView struct {
	*dashboard.Page
	Auto        bool
	DarkPalette theme.Palette
	ChartURL    string
}

// ChartPath returns the API path of a chart image.
func ChartPath(slug string, f render.Format, t theme.Name) string {
	u := url.URL{Path: "/api/v1/views/" + slug + "/chart." + string(f)}
	if t != "" {
		u.RawQuery = url.Values{"theme": {string(t)}}.Encode()
	}
	return u.String()
}

// Page handles GET /?view=&theme=.
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.Page(r.Context(), &dashboard.PageInput{View: q.Get("view"), Theme: q.Get("theme")})
	if err != nil {
		writeAppError(w, err)
		return
	}

	pv := pageView{
		Page:        page,
		Auto:        page.Theme == theme.Auto,
		DarkPalette: theme.Dark.Palette(),
	}
	if page.Current.Chart.HasChart() {
		pv.ChartURL = ChartPath(page.Current.Slug, render.SVG, page.Theme)
	}

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, pv); err != nil {
		h.logger.Error("page template failed", logging.String("view", page.Current.Slug), logging.Err(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// ViewListResponse is the body of GET /api/v1/views.
type ViewListResponse struct {
	Views  []view.Descriptor `json:"views"`
	Themes []theme.Name      `json:"themes"`
}

// ListViews handles GET /api/v1/views.
func (h *DashboardHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ViewListResponse{Views: h.svc.Views(r.Context()), Themes: theme.Names()})
}

// GetView handles GET /api/v1/views/{view}.
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Page(r.Context(), &dashboard.PageInput{
		View:  chi.URLParam(r, "view"),
		Theme: r.URL.Query().Get("theme"),
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Chart returns the handler for GET /api/v1/views/{view}/chart.<f>.
func (h *DashboardHandler) Chart(f render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chart, err := h.svc.Chart(r.Context(), &dashboard.ChartInput{
			View:   chi.URLParam(r, "view"),
			Theme:  r.URL.Query().Get("theme"),
			Format: string(f),
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		cache := "MISS"
		if chart.Cached {
			cache = "HIT"
		}
		w.Header().Set("Content-Type", chart.Image.ContentType())
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.Header().Set(ChartCacheHeader, cache)
		_, _ = w.Write(chart.Image.Data)
	}
}

// DatasetResponse is the body of GET /api/v1/datasets/{dataset}.
type DatasetResponse struct {
	ID   dataset.ID      `json:"id"`
	Len  int             `json:"len"`
	Data dataset.Dataset `json:"data"`
}

// DatasetListResponse is the body of GET /api/v1/datasets.
type DatasetListResponse struct {
	Datasets []dataset.ID `json:"datasets"`
}

// ListDatasets handles GET /api/v1/datasets.
func (h *DashboardHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DatasetListResponse{Datasets: dataset.IDs()})
}

// GetDataset handles GET /api/v1/datasets/{dataset}.
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.Dataset(r.Context(), chi.URLParam(r, "dataset"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DatasetResponse{ID: ds.ID(), Len: ds.Len(), Data: ds})
}
