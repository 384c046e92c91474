package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ViewDescriptor is one sidebar entry.
type ViewDescriptor struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
	Kind  string `json:"kind"`
}

type ViewList struct {
	Views  []ViewDescriptor `json:"views"`
	Themes []string         `json:"themes"`
}

// ViewResult is a dispatched view. Chart is the raw chart specification.
type ViewResult struct {
	Label   string          `json:"label"`
	Slug    string          `json:"slug"`
	Heading string          `json:"heading"`
	Caption string          `json:"caption"`
	Chart   json.RawMessage `json:"chart"`
}

type Author struct {
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
}

type HomeContent struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Authors  []Author `json:"authors"`
	Intro    string   `json:"intro"`
}

// Stats summarises the dataset behind a view. Pointer fields are absent for
// views where they do not apply.
type Stats struct {
	Count       int      `json:"count"`
	Total       float64  `json:"total"`
	Mean        *float64 `json:"mean"`
	StdDev      *float64 `json:"std_dev"`
	Top         string   `json:"top"`
	Correlation *float64 `json:"correlation"`
}

// Page is the full payload of one view.
type Page struct {
	Title   string           `json:"title"`
	Views   []ViewDescriptor `json:"views"`
	Current ViewResult       `json:"current"`
	Home    *HomeContent     `json:"home,omitempty"`
	Theme   string           `json:"theme"`
	Themes  []string         `json:"themes"`
	Footer  string           `json:"footer"`
	Stats   *Stats           `json:"stats,omitempty"`
}

// ChartOptions selects the theme and image format. Empty fields use the
// server defaults and PNG.
type ChartOptions struct {
	Theme  string
	Format string
}

// ChartImage is a rendered chart.
type ChartImage struct {
	ContentType string
	Cached      bool
	Data        []byte
}

// ViewsClient reads views and charts.
type ViewsClient struct {
	client *Client
}

func (vc *ViewsClient) List(ctx context.Context) (*ViewList, error) {
	var out ViewList
	if err := vc.client.getJSON(ctx, "/api/v1/views", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a view by label or slug. An empty view is home and an empty
// theme uses the server default.
func (vc *ViewsClient) Get(ctx context.Context, view, theme string) (*Page, error) {
	var out Page
	if err := vc.client.getJSON(ctx, viewPath(view, "", theme), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chart downloads the chart image of a view.
func (vc *ViewsClient) Chart(ctx context.Context, view string, opts ChartOptions) (*ChartImage, error) {
	format := opts.Format
	if format == "" {
		format = "png"
	}
	resp, err := vc.client.do(ctx, http.MethodGet, viewPath(view, "/chart."+format, opts.Theme), nil)
	if err != nil {
		return nil, err
	}
	return &ChartImage{
		ContentType: resp.header.Get("Content-Type"),
		Cached:      resp.header.Get("X-Chart-Cache") == "HIT",
		Data:        resp.body,
	}, nil
}

// viewPath builds a view URL. An empty view selects home.
func viewPath(view, suffix, theme string) string {
	if view == "" {
		view = "home"
	}
	p := "/api/v1/views/" + url.PathEscape(view) + suffix
	if theme != "" {
		p += "?" + url.Values{"theme": {theme}}.Encode()
	}
	return p
}
