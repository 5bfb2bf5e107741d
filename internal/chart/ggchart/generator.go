// Package ggchart renders charts with the fogleman/gg immediate-mode canvas.
package ggchart

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/theme"
)

// EngineKey is the factory key for this backend.
const EngineKey = "gg"

// Generator implements chart.Generator on an immediate-mode canvas.
type Generator struct {
	theme  theme.Provider
	mgr    *scale.Manager
	logger *zap.Logger
}

// New creates a gg-backed generator.
func New(tp theme.Provider, mgr *scale.Manager, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{theme: tp, mgr: mgr, logger: logger}
}

// Name returns the engine key.
func (g *Generator) Name() string { return EngineKey }

// NewSurface allocates a canvas of the given pixel size.
func (g *Generator) NewSurface(width, height int) chart.Surface {
	return &surface{dc: gg.NewContext(width, height), w: width, h: height}
}

type surface struct {
	dc   *gg.Context
	w, h int
}

func (s *surface) Bounds() (int, int) { return s.w, s.h }

func (s *surface) Image() (image.Image, error) {
	return s.dc.Image(), nil
}

// plot margins as fractions of the surface
const (
	marginLeft   = 0.09
	marginRight  = 0.04
	marginTop    = 0.12
	marginBottom = 0.12
)

type frame struct {
	x0, y0, x1, y1 float64
}

func (f frame) width() float64  { return f.x1 - f.x0 }
func (f frame) height() float64 { return f.y1 - f.y0 }

// begin validates the surface, paints the background and title, and returns
// the drawable plot frame.
func (g *Generator) begin(s chart.Surface, mode theme.Mode, title string) (*surface, theme.ModeColors, frame, error) {
	sf, ok := s.(*surface)
	if !ok {
		return nil, theme.ModeColors{}, frame{}, core.WrapError(core.ErrRenderFailed,
			fmt.Errorf("surface was not created by the %s engine", EngineKey))
	}

	colors := g.theme.Colors(mode)
	sf.dc.SetColor(colors.Background)
	sf.dc.Clear()

	if title != "" {
		sf.dc.SetColor(colors.Text)
		sf.dc.DrawStringAnchored(title, float64(sf.w)/2, float64(sf.h)*marginTop/2, 0.5, 0.5)
	}

	fr := frame{
		x0: float64(sf.w) * marginLeft,
		y0: float64(sf.h) * marginTop,
		x1: float64(sf.w) * (1 - marginRight),
		y1: float64(sf.h) * (1 - marginBottom),
	}
	return sf, colors, fr, nil
}

// emptyState renders the shared no-data placeholder.
func (g *Generator) emptyState(sf *surface, colors theme.ModeColors, what string) {
	sf.dc.SetColor(colors.MutedText)
	sf.dc.DrawStringAnchored("No "+what+" available", float64(sf.w)/2, float64(sf.h)/2, 0.5, 0.5)
}
