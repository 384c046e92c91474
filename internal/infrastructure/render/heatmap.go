package render

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
)

// heatmapColors is the number of discrete steps sampled from the scale.
const heatmapColors = 64

// pixelsPerInch matches the vgimg default DPI so lengths map 1:1 to pixels.
const pixelsPerInch = 96

// matrixGrid adapts a view.Matrix to plotter.GridXYZ. Row 0 is drawn on top.
type matrixGrid struct {
	m *view.Matrix
}

func (g matrixGrid) Dims() (c, r int) {
	rows, cols := g.m.Shape()
	return cols, rows
}

func (g matrixGrid) Z(c, r int) float64 {
	rows, _ := g.m.Shape()
	return g.m.Values[rows-1-r][c]
}

func (g matrixGrid) X(c int) float64 { return float64(c) }
func (g matrixGrid) Y(r int) float64 { return float64(r) }

// scalePalette satisfies palette.Palette.
type scalePalette []color.Color

func (p scalePalette) Colors() []color.Color { return p }

func renderHeatmap(spec view.ChartSpec, s style, f Format) ([]byte, error) {
	m := spec.Matrix
	rows, cols := m.Shape()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("heatmap matrix is empty")
	}
	if len(m.Rows) != rows || len(m.Cols) != cols {
		return nil, fmt.Errorf("heatmap labels do not match a %dx%d matrix", rows, cols)
	}

	scale, ok := ScaleByName(spec.Color.Scale)
	if !ok {
		scale = RdBuScale
	}
	lo, hi := -1.0, 1.0
	if spec.Color.Min != nil && spec.Color.Max != nil {
		lo, hi = *spec.Color.Min, *spec.Color.Max
	}

	bg, err := ParseHex(s.palette.ChartBackground)
	if err != nil {
		return nil, err
	}
	fg, err := ParseHex(s.palette.ChartText)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.BackgroundColor = bg
	p.Title.Text = spec.Title
	p.Title.TextStyle.Color = fg
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Color = fg
		ax.Label.TextStyle.Color = fg
		ax.Tick.Label.Color = fg
		ax.Tick.Color = fg
	}

	hm := plotter.NewHeatMap(matrixGrid{m: m}, scalePalette(scale.Sample(heatmapColors)))
	hm.Min, hm.Max = lo, hi
	// Values outside the color domain take the end colors.
	hm.Underflow = scale.At(0)
	hm.Overflow = scale.At(1)
	p.Add(hm)

	labels, err := cellLabels(m, scale, lo, hi)
	if err != nil {
		return nil, err
	}
	p.Add(labels)

	p.NominalX(m.Cols...)
	yNames := make([]string, rows)
	for i, name := range m.Rows {
		yNames[rows-1-i] = name
	}
	p.NominalY(yNames...)

	w := vg.Length(float64(s.width)/pixelsPerInch) * vg.Inch
	h := vg.Length(float64(s.height)/pixelsPerInch) * vg.Inch
	wt, err := p.WriterTo(w, h, string(f))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellLabels(m *view.Matrix, scale Scale, lo, hi float64) (*plotter.Labels, error) {
	rows, cols := m.Shape()
	xys := make(plotter.XYs, 0, rows*cols)
	texts := make([]string, 0, rows*cols)
	cells := make([]color.RGBA, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			xys = append(xys, plotter.XY{X: float64(j), Y: float64(rows - 1 - i)})
			text := fmt.Sprintf("%.2f", m.Values[i][j])
			if i < len(m.Text) && j < len(m.Text[i]) {
				text = m.Text[i][j]
			}
			texts = append(texts, text)
			cells = append(cells, scale.Between(m.Values[i][j], lo, hi))
		}
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = contrast(cells[i])
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	return labels, nil
}

// contrast picks black or white text for a cell background.
func contrast(c color.RGBA) color.Color {
	lum := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if lum > 140 {
		return color.Black
	}
	return color.White
}
