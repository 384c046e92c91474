// Package render draws view.ChartSpec values as PNG or SVG images. Bar,
// histogram, scatter and pie charts use go-chart; the correlation heatmap uses
// gonum/plot, which has a native heat map plotter.
package render

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/mhtech-dashboard/internal/domain/theme"
	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// Formats lists the supported formats.
func Formats() []Format { return []Format{PNG, SVG} }

// ParseFormat resolves a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")) {
	case PNG, "":
		return PNG, nil
	case SVG:
		return SVG, nil
	}
	return "", errors.New(errors.ErrCodeUnsupportedFormat, "unsupported image format").WithDetail(s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Image is a rendered chart.
type Image struct {
	Format Format `json:"format"`
	Data   []byte `json:"-"`
}

// ContentType returns the MIME type of the image.
func (i *Image) ContentType() string { return i.Format.ContentType() }

// Renderer draws chart specifications.
type Renderer interface {
	Render(ctx context.Context, spec view.ChartSpec, t theme.Name, format Format) (*Image, error)
}

// Option configures a ChartRenderer.
type Option func(*ChartRenderer)

// WithWidth sets the image width in pixels.
func WithWidth(px int) Option {
	return func(r *ChartRenderer) {
		if px > 0 {
			r.width = px
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *ChartRenderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// DefaultWidth is the image width used when none is configured.
const DefaultWidth = 900

// ChartRenderer is the production Renderer.
type ChartRenderer struct {
	width  int
	logger logging.Logger
}

// NewChartRenderer returns a ChartRenderer.
func NewChartRenderer(opts ...Option) *ChartRenderer {
	r := &ChartRenderer{width: DefaultWidth, logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws spec for theme t.
func (r *ChartRenderer) Render(ctx context.Context, spec view.ChartSpec, t theme.Name, format Format) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "render cancelled")
	}
	if format != PNG && format != SVG {
		return nil, errors.New(errors.ErrCodeUnsupportedFormat, "unsupported image format").WithDetail(string(format))
	}

	st := newStyle(t, r.width, spec.Height)
	start := time.Now()

	var (
		data []byte
		err  error
	)
	switch spec.Kind {
	case view.KindBar:
		data, err = renderBar(spec, st, format)
	case view.KindHistogram:
		data, err = renderHistogram(spec, st, format)
	case view.KindScatter:
		data, err = renderScatter(spec, st, format)
	case view.KindPie:
		data, err = renderPie(spec, st, format)
	case view.KindHeatmap:
		data, err = renderHeatmap(spec, st, format)
	default:
		return nil, errors.New(errors.ErrCodeViewHasNoChart, "view has no chart").WithDetail(string(spec.Kind))
	}
	if err != nil {
		r.logger.Error("chart render failed",
			logging.String("kind", string(spec.Kind)),
			logging.String("format", string(format)),
			logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeRenderFailed, "render "+string(spec.Kind)+" chart")
	}

	r.logger.Debug("chart rendered",
		logging.String("kind", string(spec.Kind)),
		logging.String("format", string(format)),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", time.Since(start)))
	return &Image{Format: format, Data: data}, nil
}

// style carries the resolved theme colors and size for one render.
type style struct {
	width, height int
	palette       theme.Palette
}

func newStyle(t theme.Name, width, height int) style {
	if height <= 0 {
		height = 450
	}
	return style{width: width, height: height, palette: t.Static().Palette()}
}
