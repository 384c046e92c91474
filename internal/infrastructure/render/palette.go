package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Scale is a continuous color scale defined by evenly spaced stops.
type Scale []color.RGBA

var (
	// TealScale follows the CARTO "Teal" sequential scale.
	TealScale = mustScale("#d1eeea", "#a8dbd9", "#85c4c9", "#68abb8", "#4f90a6", "#3b738f", "#2a5674")
	// PlasmaScale is reduced to its two ends; the scatter only colors 0 and 1.
	PlasmaScale = mustScale("#0d0887", "#f0f921")
	// RdBuScale is the ColorBrewer diverging scale, red for low values.
	RdBuScale = mustScale("#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7", "#f7f7f7",
		"#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061")
	// Set3 is the ColorBrewer qualitative palette.
	Set3 = []string{"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462",
		"#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f"}
)

// ScaleByName resolves a named scale.
func ScaleByName(name string) (Scale, bool) {
	switch strings.ToLower(name) {
	case "teal":
		return TealScale, true
	case "plasma":
		return PlasmaScale, true
	case "rdbu":
		return RdBuScale, true
	}
	return nil, false
}

// At returns the color at t in [0, 1]. Values outside are clamped.
func (s Scale) At(t float64) color.RGBA {
	if len(s) == 0 {
		return color.RGBA{A: 0xff}
	}
	if len(s) == 1 || math.IsNaN(t) || t <= 0 {
		return s[0]
	}
	if t >= 1 {
		return s[len(s)-1]
	}
	pos := t * float64(len(s)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := s[i], s[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*frac))
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 0xff}
}

// Between maps v from [lo, hi] onto the scale.
func (s Scale) Between(v, lo, hi float64) color.RGBA {
	if hi <= lo {
		return s.At(0)
	}
	return s.At((v - lo) / (hi - lo))
}

// Sample returns n evenly spaced colors from the scale.
func (s Scale) Sample(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = s.At(t)
	}
	return out
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("render: invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("render: invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func mustScale(hex ...string) Scale {
	s := make(Scale, len(hex))
	for i, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			panic(err)
		}
		s[i] = c
	}
	return s
}

func toDrawing(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// hexColor converts a hex string for go-chart, falling back to black.
func hexColor(s string) drawing.Color {
	c, err := ParseHex(s)
	if err != nil {
		return drawing.ColorBlack
	}
	return toDrawing(c)
}
