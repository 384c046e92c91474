package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// Bin is one fixed-width histogram bucket covering [Lower, Upper).
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram splits values into n equal-width bins spanning the observed
// minimum and maximum. The maximum falls into the last bin.
func Histogram(values []float64, n int) ([]Bin, error) {
	if n < 1 {
		return nil, errors.InvalidParam("histogram needs at least one bin")
	}
	if len(values) == 0 {
		return nil, errors.InvalidParam("histogram needs at least one value")
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		hi = lo + 1
	}
	dividers := floats.Span(make([]float64, n+1), lo, hi)
	// stat.Histogram bins are half-open, so nudge the top edge past the maximum.
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	bins := make([]Bin, n)
	for i := range bins {
		upper := dividers[i+1]
		if i == n-1 {
			upper = hi
		}
		bins[i] = Bin{Lower: dividers[i], Upper: upper, Count: int(counts[i])}
	}
	return bins, nil
}

// CorrelationMatrix returns the Pearson correlation matrix of the columns.
// The result is square with len(columns) rows.
func CorrelationMatrix(columns ...[]float64) ([][]float64, error) {
	if len(columns) == 0 {
		return nil, errors.InvalidParam("correlation needs at least one column")
	}
	rows := len(columns[0])
	if rows < 2 {
		return nil, errors.New(errors.ErrCodeCorrelationFault, "correlation needs at least two observations")
	}
	data := mat.NewDense(rows, len(columns), nil)
	for j, col := range columns {
		if len(col) != rows {
			return nil, errors.New(errors.ErrCodeCorrelationFault, "columns differ in length")
		}
		data.SetCol(j, col)
	}

	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, data, nil)

	n := len(columns)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = corr.At(i, j)
		}
	}
	return out, nil
}

// TreatmentCorrelation is the 2x2 Pearson matrix of (age, flag).
func TreatmentCorrelation(pairs AgeTreatmentPairs) ([][]float64, error) {
	ages, flags := pairs.Columns()
	return CorrelationMatrix(ages, flags)
}
