package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Name
	}{
		{"", Dark},
		{"light", Light},
		{"DARK", Dark},
		{"Dark Mode", Dark},
		{"Light Mode", Light},
		{"auto", Auto},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in, Dark)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParse_Unknown(t *testing.T) {
	_, err := Parse("sepia", Light)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownTheme))
	assert.True(t, errors.IsValidation(err))
}

func TestPalette(t *testing.T) {
	assert.Equal(t, "#80cbc4", Dark.Palette().Heading)
	assert.Equal(t, "#ffffff", Dark.Palette().Caption)
	assert.Equal(t, "#004d40", Light.Palette().Heading)
	assert.Equal(t, "#000000", Light.Palette().Caption)
	assert.Equal(t, Light.Palette(), Auto.Palette())
}

func TestStatic(t *testing.T) {
	assert.Equal(t, Dark, Dark.Static())
	assert.Equal(t, Light, Light.Static())
	assert.Equal(t, Light, Auto.Static())
}

func TestNames(t *testing.T) {
	assert.Equal(t, []Name{Light, Dark, Auto}, Names())
}
