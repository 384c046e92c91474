package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
)

func provider(f Format) chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

func (s style) background() chart.Style {
	return chart.Style{
		FillColor: hexColor(s.palette.ChartBackground),
		Padding:   chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
	}
}

func (s style) canvas() chart.Style {
	return chart.Style{FillColor: hexColor(s.palette.ChartBackground)}
}

func (s style) text() chart.Style {
	return chart.Style{FontColor: hexColor(s.palette.ChartText), StrokeColor: hexColor(s.palette.GridLine)}
}

func (s style) title() chart.Style {
	return chart.Style{FontColor: hexColor(s.palette.ChartText), FontSize: 14}
}

// barLayout fits n bars into the canvas width.
func barLayout(width, n int) (barWidth, spacing int) {
	slot := (width - 120) / n
	if slot < 3 {
		slot = 3
	}
	spacing = int(math.Max(1, float64(slot)/5))
	return slot - spacing, spacing
}

func yRange(max float64) *chart.ContinuousRange {
	if max <= 0 {
		max = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: max * 1.05}
}

func renderBar(spec view.ChartSpec, s style, f Format) ([]byte, error) {
	if len(spec.Bars) == 0 {
		return nil, fmt.Errorf("bar chart has no bars")
	}
	scale, ok := ScaleByName(spec.Color.Scale)
	if !ok {
		scale = TealScale
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range spec.Bars {
		lo, hi = math.Min(lo, b.Value), math.Max(hi, b.Value)
	}

	values := make([]chart.Value, len(spec.Bars))
	for i, b := range spec.Bars {
		c := toDrawing(scale.Between(b.Value, lo, hi))
		values[i] = chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{FillColor: c, StrokeColor: c},
		}
	}

	xAxis := s.text()
	xAxis.TextRotationDegrees = float64(spec.XAxis.TickAngle)
	barWidth, spacing := barLayout(s.width, len(values))

	bc := chart.BarChart{
		Title:      spec.Title,
		TitleStyle: s.title(),
		Width:      s.width,
		Height:     s.height,
		Background: s.background(),
		Canvas:     s.canvas(),
		BarWidth:   barWidth,
		BarSpacing: spacing,
		XAxis:      xAxis,
		YAxis: chart.YAxis{
			Name:      spec.YAxis.Title,
			NameStyle: s.text(),
			Style:     s.text(),
			Range:     yRange(hi),
		},
		Bars: values,
	}
	var buf bytes.Buffer
	if err := bc.Render(provider(f), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderHistogram(spec view.ChartSpec, s style, f Format) ([]byte, error) {
	if len(spec.Bins) == 0 {
		return nil, fmt.Errorf("histogram has no bins")
	}
	fill := hexColor(view.HistogramColor)
	if len(spec.Color.Discrete) > 0 {
		fill = hexColor(spec.Color.Discrete[0])
	}

	var max float64
	values := make([]chart.Value, len(spec.Bins))
	for i, b := range spec.Bins {
		label := ""
		if i%3 == 0 {
			label = fmt.Sprintf("%.0f", b.Lower)
		}
		values[i] = chart.Value{
			Label: label,
			Value: float64(b.Count),
			Style: chart.Style{FillColor: fill, StrokeColor: hexColor(s.palette.ChartBackground), StrokeWidth: 1},
		}
		max = math.Max(max, float64(b.Count))
	}
	barWidth, _ := barLayout(s.width, len(values))

	bc := chart.BarChart{
		Title:      spec.Title,
		TitleStyle: s.title(),
		Width:      s.width,
		Height:     s.height,
		Background: s.background(),
		Canvas:     s.canvas(),
		BarWidth:   barWidth + 1,
		BarSpacing: 1,
		XAxis:      s.text(),
		YAxis: chart.YAxis{
			Name:      spec.YAxis.Title,
			NameStyle: s.text(),
			Style:     s.text(),
			Range:     yRange(max),
		},
		Bars: values,
	}
	var buf bytes.Buffer
	if err := bc.Render(provider(f), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderScatter(spec view.ChartSpec, s style, f Format) ([]byte, error) {
	if len(spec.Points) == 0 {
		return nil, fmt.Errorf("scatter has no points")
	}
	scale, ok := ScaleByName(spec.Color.Scale)
	if !ok {
		scale = PlasmaScale
	}
	lo, hi := 0.0, 1.0
	if spec.Color.Min != nil && spec.Color.Max != nil {
		lo, hi = *spec.Color.Min, *spec.Color.Max
	}

	// One series per group keeps the legend readable.
	type group struct{ xs, ys []float64 }
	groups := map[string]*group{}
	var order []string
	xMin, xMax := math.Inf(1), math.Inf(-1)
	for _, p := range spec.Points {
		g, ok := groups[p.Group]
		if !ok {
			g = &group{}
			groups[p.Group] = g
			order = append(order, p.Group)
		}
		g.xs = append(g.xs, p.X)
		g.ys = append(g.ys, p.Y)
		xMin, xMax = math.Min(xMin, p.X), math.Max(xMax, p.X)
	}

	series := make([]chart.Series, 0, len(order))
	for _, name := range order {
		g := groups[name]
		c := toDrawing(scale.Between(g.ys[0], lo, hi))
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: g.xs,
			YValues: g.ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    4,
				DotColor:    c,
			},
		})
	}

	ch := chart.Chart{
		Title:      spec.Title,
		TitleStyle: s.title(),
		Width:      s.width,
		Height:     s.height,
		Background: s.background(),
		Canvas:     s.canvas(),
		XAxis: chart.XAxis{
			Name:      spec.XAxis.Title,
			NameStyle: s.text(),
			Style:     s.text(),
			Range:     &chart.ContinuousRange{Min: xMin - 2, Max: xMax + 2},
		},
		YAxis: chart.YAxis{
			Name:      spec.YAxis.Title,
			NameStyle: s.text(),
			Style:     s.text(),
			Range:     &chart.ContinuousRange{Min: -0.25, Max: 1.25},
			Ticks:     []chart.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch, s.text())}

	var buf bytes.Buffer
	if err := ch.Render(provider(f), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPie(spec view.ChartSpec, s style, f Format) ([]byte, error) {
	if len(spec.Slices) == 0 {
		return nil, fmt.Errorf("pie has no slices")
	}
	values := make([]chart.Value, len(spec.Slices))
	for i, sl := range spec.Slices {
		c := hexColor(Set3[i%len(Set3)])
		values[i] = chart.Value{
			Label: sl.Text,
			Value: sl.Value,
			Style: chart.Style{FillColor: c, StrokeColor: hexColor(s.palette.ChartBackground), FontColor: hexColor("#212121")},
		}
	}
	pc := chart.PieChart{
		Title:      spec.Title,
		TitleStyle: s.title(),
		Width:      s.width,
		Height:     s.height,
		Background: s.background(),
		Canvas:     s.canvas(),
		Values:     values,
	}
	var buf bytes.Buffer
	if err := pc.Render(provider(f), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
