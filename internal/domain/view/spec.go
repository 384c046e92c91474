package view

import "github.com/turtacn/mhtech-dashboard/internal/domain/dataset"

// ChartKind names the chart a view produces.
type ChartKind string

const (
	KindNone      ChartKind = "none"
	KindBar       ChartKind = "bar"
	KindHistogram ChartKind = "histogram"
	KindScatter   ChartKind = "scatter"
	KindHeatmap   ChartKind = "heatmap"
	KindPie       ChartKind = "pie"
)

// Named color scales understood by the renderers.
const (
	ScaleTeal   = "Teal"
	ScalePlasma = "Plasma"
	ScaleRdBu   = "RdBu"
	ScaleSet3   = "Set3"
)

// Axis describes one chart axis.
type Axis struct {
	Title     string `json:"title,omitempty"`
	TickAngle int    `json:"tick_angle,omitempty"`
}

// ColorSpec describes how marks are colored. Either Scale (optionally bounded
// by Min/Max) or Discrete is set.
type ColorSpec struct {
	Scale    string   `json:"scale,omitempty"`
	Field    string   `json:"field,omitempty"`
	Discrete []string `json:"discrete,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// Bar is one category of a bar chart.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Point is one scatter mark; Group selects its color.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Group string  `json:"group"`
}

// Matrix is a labelled heatmap grid. Text holds the per-cell annotation.
type Matrix struct {
	Rows   []string    `json:"rows"`
	Cols   []string    `json:"cols"`
	Values [][]float64 `json:"values"`
	Text   [][]string  `json:"text"`
}

// Shape returns the number of rows and columns.
func (m *Matrix) Shape() (int, int) {
	if m == nil || len(m.Values) == 0 {
		return 0, 0
	}
	return len(m.Values), len(m.Values[0])
}

// Slice is one pie wedge. Text is the rendered "label percent" annotation.
type Slice struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
	Text    string  `json:"text"`
}

// ChartSpec is a backend-neutral chart description. Only the series matching
// Kind is populated.
type ChartSpec struct {
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title,omitempty"`
	Height int       `json:"height,omitempty"`
	XAxis  Axis      `json:"x_axis"`
	YAxis  Axis      `json:"y_axis"`
	Color  ColorSpec `json:"color"`

	Bars     []Bar         `json:"bars,omitempty"`
	Bins     []dataset.Bin `json:"bins,omitempty"`
	Points   []Point       `json:"points,omitempty"`
	Matrix   *Matrix       `json:"matrix,omitempty"`
	Slices   []Slice       `json:"slices,omitempty"`
	TextInfo string        `json:"text_info,omitempty"`
}

// HasChart reports whether the spec describes something to draw.
func (c ChartSpec) HasChart() bool { return c.Kind != KindNone && c.Kind != "" }

// Result is the outcome of dispatching one view.
type Result struct {
	Label   Label     `json:"label"`
	Slug    string    `json:"slug"`
	Heading string    `json:"heading"`
	Caption string    `json:"caption"`
	Chart   ChartSpec `json:"chart"`
}
