// Package theme holds the dashboard color themes. A theme is always passed
// explicitly to whatever renders; there is no process-wide current theme.
package theme

import (
	"strings"

	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// Name identifies a theme.
type Name string

const (
	Light Name = "light"
	Dark  Name = "dark"
	// Auto follows the browser's prefers-color-scheme. Server-side renderers
	// treat it as Light.
	Auto Name = "auto"
)

// Palette is the set of colors a theme applies.
type Palette struct {
	BackgroundFrom string `json:"background_from"`
	BackgroundTo   string `json:"background_to"`
	Text           string `json:"text"`
	Heading        string `json:"heading"`
	Sidebar        string `json:"sidebar"`
	SidebarText    string `json:"sidebar_text"`
	Border         string `json:"border"`
	Caption        string `json:"caption"`
	// ChartBackground and ChartText are used by the image renderers.
	ChartBackground string `json:"chart_background"`
	ChartText       string `json:"chart_text"`
	GridLine        string `json:"grid_line"`
}

var palettes = map[Name]Palette{
	Light: {
		BackgroundFrom:  "#f0f0f0",
		BackgroundTo:    "#ffffff",
		Text:            "#212121",
		Heading:         "#004d40",
		Sidebar:         "#ffffff",
		SidebarText:     "#004d40",
		Border:          "#cccccc",
		Caption:         "#000000",
		ChartBackground: "#ffffff",
		ChartText:       "#212121",
		GridLine:        "#e0e0e0",
	},
	Dark: {
		BackgroundFrom:  "#0d0d0d",
		BackgroundTo:    "#1c1c1c",
		Text:            "#e0f2f1",
		Heading:         "#80cbc4",
		Sidebar:         "#1f2c2c",
		SidebarText:     "#e0f2f1",
		Border:          "#37474f",
		Caption:         "#ffffff",
		ChartBackground: "#1c1c1c",
		ChartText:       "#e0f2f1",
		GridLine:        "#37474f",
	},
}

// Names returns the selectable themes.
func Names() []Name { return []Name{Light, Dark, Auto} }

// Parse resolves s case-insensitively. An empty string yields fallback.
// "Light Mode" and "Dark Mode" are accepted as aliases.
func Parse(s string, fallback Name) (Name, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, " mode")
	if s == "" {
		return fallback, nil
	}
	switch n := Name(s); n {
	case Light, Dark, Auto:
		return n, nil
	}
	return "", errors.New(errors.ErrCodeUnknownTheme, "unknown theme").WithDetail(s)
}

// Palette returns the colors for n. Auto and unknown names get the light
// palette; the page overrides it with a media query.
func (n Name) Palette() Palette {
	if p, ok := palettes[n]; ok {
		return p
	}
	return palettes[Light]
}

// Static returns the concrete theme used when rendering images.
func (n Name) Static() Name {
	if n == Dark {
		return Dark
	}
	return Light
}
