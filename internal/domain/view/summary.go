package view

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SummaryStats are the key figures shown next to a chart.
type SummaryStats struct {
	Count       int      `json:"count"`
	Total       float64  `json:"total,omitempty"`
	Mean        *float64 `json:"mean,omitempty"`
	StdDev      *float64 `json:"std_dev,omitempty"`
	Top         string   `json:"top,omitempty"`
	Correlation *float64 `json:"correlation,omitempty"`
}

// Summarize derives SummaryStats from a chart. It returns nil for charts
// without data. Histogram moments are estimated from bin midpoints.
func Summarize(c ChartSpec) *SummaryStats {
	switch c.Kind {
	case KindBar:
		if len(c.Bars) == 0 {
			return nil
		}
		values := make([]float64, len(c.Bars))
		for i, b := range c.Bars {
			values[i] = b.Value
		}
		return &SummaryStats{
			Count: len(values),
			Total: floats.Sum(values),
			Top:   c.Bars[floats.MaxIdx(values)].Label,
		}

	case KindHistogram:
		mids := make([]float64, 0, len(c.Bins))
		weights := make([]float64, 0, len(c.Bins))
		total := 0
		for _, b := range c.Bins {
			mids = append(mids, (b.Lower+b.Upper)/2)
			weights = append(weights, float64(b.Count))
			total += b.Count
		}
		if total == 0 {
			return nil
		}
		mean, std := stat.MeanStdDev(mids, weights)
		return &SummaryStats{Count: total, Mean: &mean, StdDev: &std}

	case KindScatter:
		if len(c.Points) < 2 {
			return nil
		}
		xs := make([]float64, len(c.Points))
		ys := make([]float64, len(c.Points))
		for i, p := range c.Points {
			xs[i], ys[i] = p.X, p.Y
		}
		mean, std := stat.MeanStdDev(xs, nil)
		r := stat.Correlation(xs, ys, nil)
		return &SummaryStats{Count: len(xs), Mean: &mean, StdDev: &std, Correlation: &r}

	case KindHeatmap:
		rows, cols := c.Matrix.Shape()
		if rows < 2 || cols < 2 {
			return nil
		}
		r := c.Matrix.Values[0][1]
		return &SummaryStats{Count: rows, Correlation: &r}

	case KindPie:
		if len(c.Slices) == 0 {
			return nil
		}
		values := make([]float64, len(c.Slices))
		for i, s := range c.Slices {
			values[i] = s.Value
		}
		return &SummaryStats{
			Count: len(values),
			Total: floats.Sum(values),
			Top:   c.Slices[floats.MaxIdx(values)].Label,
		}
	}
	return nil
}
