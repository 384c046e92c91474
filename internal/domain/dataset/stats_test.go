package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram_AgeSample(t *testing.T) {
	ages := NewProvider(DefaultSeed).AgeSample()

	bins, err := Histogram(ages.Float64s(), 30)
	require.NoError(t, err)
	require.Len(t, bins, 30)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, AgeSampleSize, total)

	assert.Equal(t, 18.0, bins[0].Lower)
	assert.Equal(t, 68.0, bins[29].Upper)
	// Everything clamped to 18 plus the 19s land in the first bin.
	assert.Equal(t, 192, bins[0].Count)
	assert.Equal(t, 1, bins[29].Count)

	width := bins[0].Upper - bins[0].Lower
	for _, b := range bins[:29] {
		assert.InDelta(t, width, b.Upper-b.Lower, 1e-9)
	}
}

func TestHistogram_ConstantInput(t *testing.T) {
	bins, err := Histogram([]float64{5, 5, 5}, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, bins[0].Count)
}

func TestHistogram_InvalidInput(t *testing.T) {
	_, err := Histogram(nil, 30)
	assert.Error(t, err)
	_, err = Histogram([]float64{1}, 0)
	assert.Error(t, err)
}

func TestTreatmentCorrelation(t *testing.T) {
	m, err := TreatmentCorrelation(NewProvider(DefaultSeed).AgeTreatmentPairs())
	require.NoError(t, err)

	require.Len(t, m, 2)
	require.Len(t, m[0], 2)
	assert.InDelta(t, 1.0, m[0][0], 1e-12)
	assert.InDelta(t, 1.0, m[1][1], 1e-12)
	assert.InDelta(t, 0.1292522193, m[0][1], 1e-9)
	assert.Equal(t, m[0][1], m[1][0])
}

func TestCorrelationMatrix_Errors(t *testing.T) {
	_, err := CorrelationMatrix()
	assert.Error(t, err)

	_, err = CorrelationMatrix([]float64{1})
	assert.Error(t, err)

	_, err = CorrelationMatrix([]float64{1, 2, 3}, []float64{1, 2})
	assert.Error(t, err)
}

func TestCorrelationMatrix_PerfectlyNegative(t *testing.T) {
	m, err := CorrelationMatrix([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, m[0][1], 1e-12)
}
