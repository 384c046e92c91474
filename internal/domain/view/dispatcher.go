package view

import (
	"fmt"
	"strconv"

	"github.com/turtacn/mhtech-dashboard/internal/domain/dataset"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// HeatmapRange selects the color domain of the correlation heatmap. The
// default is RangeFull; RangeParity reproduces the original dashboard's fixed
// [0, 1] display.
type HeatmapRange string

const (
	// RangeFull maps colors over the whole Pearson domain [-1, 1].
	RangeFull HeatmapRange = "full"
	// RangeParity pins colors to [0, 1] like the original dashboard.
	RangeParity HeatmapRange = "parity"
)

// Bounds returns the color domain for r. Unknown values fall back to RangeFull.
func (r HeatmapRange) Bounds() (float64, float64) {
	if r == RangeParity {
		return 0, 1
	}
	return -1, 1
}

// Chart layout constants.
const (
	HistogramBins   = 30
	BarHeight       = 600
	HistogramHeight = 500
	ScatterHeight   = 500
	HeatmapHeight   = 400
	PieHeight       = 450
)

// Discrete colors shared with the renderers.
const (
	HistogramColor = "#26a69a"
)

// Dispatcher turns a view label into its caption and chart.
type Dispatcher struct {
	provider     *dataset.Provider
	heatmapRange HeatmapRange
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHeatmapRange sets the heatmap color domain.
func WithHeatmapRange(r HeatmapRange) Option {
	return func(d *Dispatcher) { d.heatmapRange = r }
}

// NewDispatcher returns a Dispatcher reading data from provider.
func NewDispatcher(provider *dataset.Provider, opts ...Option) *Dispatcher {
	if provider == nil {
		provider = dataset.NewProvider(dataset.DefaultSeed)
	}
	d := &Dispatcher{provider: provider, heatmapRange: RangeFull}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Provider returns the dataset provider behind d.
func (d *Dispatcher) Provider() *dataset.Provider { return d.provider }

// HeatmapRange returns the heatmap color domain in use.
func (d *Dispatcher) HeatmapRange() HeatmapRange { return d.heatmapRange }

// Dispatch builds the view for label. Every call regenerates its data.
func (d *Dispatcher) Dispatch(label Label) (Result, error) {
	desc, ok := lookup(label)
	if !ok {
		return Result{}, unknownView(string(label))
	}

	var (
		chart ChartSpec
		err   error
	)
	switch label {
	case Home:
		chart = ChartSpec{Kind: KindNone}
	case CountryCounts:
		chart = d.countryChart()
	case AgeDistribution:
		chart, err = d.ageChart()
	case AgeVsTreatment:
		chart = d.scatterChart()
	case CorrelationHeatmap:
		chart, err = d.heatmapChart()
	case GenderDistribution:
		chart = d.pieChart()
	}
	if err != nil {
		return Result{}, err
	}

	return Result{
		Label:   label,
		Slug:    desc.Slug,
		Heading: headings[label],
		Caption: captions[label],
		Chart:   chart,
	}, nil
}

func (d *Dispatcher) countryChart() ChartSpec {
	rows := d.provider.CountryCounts()
	bars := make([]Bar, len(rows))
	for i, r := range rows {
		bars[i] = Bar{Label: r.Country, Value: float64(r.Count)}
	}
	return ChartSpec{
		Kind:   KindBar,
		Title:  "Jumlah Responden per Negara",
		Height: BarHeight,
		XAxis:  Axis{Title: "Negara", TickAngle: -90},
		YAxis:  Axis{Title: "Jumlah"},
		Color:  ColorSpec{Scale: ScaleTeal, Field: "Jumlah"},
		Bars:   bars,
	}
}

func (d *Dispatcher) ageChart() (ChartSpec, error) {
	ages := d.provider.AgeSample()
	bins, err := dataset.Histogram(ages.Float64s(), HistogramBins)
	if err != nil {
		return ChartSpec{}, errors.Wrap(err, errors.ErrCodeDatasetGenerate, "bin age sample")
	}
	return ChartSpec{
		Kind:   KindHistogram,
		Title:  "Usia Responden",
		Height: HistogramHeight,
		XAxis:  Axis{Title: "Usia"},
		YAxis:  Axis{Title: "count"},
		Color:  ColorSpec{Discrete: []string{HistogramColor}},
		Bins:   bins,
	}, nil
}

func (d *Dispatcher) scatterChart() ChartSpec {
	pairs := d.provider.AgeTreatmentPairs()
	points := make([]Point, len(pairs))
	for i, p := range pairs {
		points[i] = Point{
			X:     float64(p.Age),
			Y:     float64(p.SoughtTreatment),
			Group: strconv.Itoa(p.SoughtTreatment),
		}
	}
	return ChartSpec{
		Kind:   KindScatter,
		Title:  "Usia vs Keputusan Mencari Pengobatan",
		Height: ScatterHeight,
		XAxis:  Axis{Title: "Usia"},
		YAxis:  Axis{Title: "Pengobatan (0=Tidak, 1=Ya)"},
		Color:  ColorSpec{Scale: ScalePlasma, Field: "Pengobatan (0=Tidak, 1=Ya)", Min: float64Ptr(0), Max: float64Ptr(1)},
		Points: points,
	}
}

func (d *Dispatcher) heatmapChart() (ChartSpec, error) {
	corr, err := dataset.TreatmentCorrelation(d.provider.AgeTreatmentPairs())
	if err != nil {
		return ChartSpec{}, err
	}
	text := make([][]string, len(corr))
	for i, row := range corr {
		text[i] = make([]string, len(row))
		for j, v := range row {
			text[i][j] = fmt.Sprintf("%.2f", v)
		}
	}
	lo, hi := d.heatmapRange.Bounds()
	columns := []string{"Usia", "Pengobatan"}
	return ChartSpec{
		Kind:   KindHeatmap,
		Title:  "Korelasi Usia & Pengobatan",
		Height: HeatmapHeight,
		Color:  ColorSpec{Scale: ScaleRdBu, Min: float64Ptr(lo), Max: float64Ptr(hi)},
		Matrix: &Matrix{Rows: columns, Cols: columns, Values: corr, Text: text},
	}, nil
}

func (d *Dispatcher) pieChart() ChartSpec {
	shares := d.provider.GenderShares()
	total := shares.Total()
	slices := make([]Slice, len(shares))
	for i, s := range shares {
		pct := 0.0
		if total > 0 {
			pct = s.Percent / total * 100
		}
		slices[i] = Slice{
			Label:   s.Label,
			Value:   s.Percent,
			Percent: pct,
			Text:    fmt.Sprintf("%s %.1f%%", s.Label, pct),
		}
	}
	return ChartSpec{
		Kind:     KindPie,
		Title:    "Distribusi Jenis Kelamin",
		Height:   PieHeight,
		Color:    ColorSpec{Scale: ScaleSet3},
		Slices:   slices,
		TextInfo: "percent+label",
	}
}

func float64Ptr(v float64) *float64 { return &v }
