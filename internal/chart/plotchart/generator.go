// Package plotchart renders charts with the gonum/plot retained
// figure/plotter model.
package plotchart

import (
	"bytes"
	"fmt"
	"image"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/theme"
)

// EngineKey is the factory key for this backend.
const EngineKey = "gonumplot"

// Generator implements chart.Generator on gonum/plot figures.
type Generator struct {
	theme  theme.Provider
	mgr    *scale.Manager
	logger *zap.Logger
}

// New creates a gonum/plot-backed generator.
func New(tp theme.Provider, mgr *scale.Manager, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{theme: tp, mgr: mgr, logger: logger}
}

// Name returns the engine key.
func (g *Generator) Name() string { return EngineKey }

// NewSurface allocates a figure of the given pixel size.
func (g *Generator) NewSurface(width, height int) chart.Surface {
	return &surface{w: width, h: height, plt: plot.New()}
}

// surface retains the figure until rasterized. Rendering at 72 DPI keeps
// one vg point equal to one pixel so both engines agree on geometry.
type surface struct {
	w, h int
	plt  *plot.Plot
}

func (s *surface) Bounds() (int, int) { return s.w, s.h }

func (s *surface) Image() (image.Image, error) {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(s.w), vg.Length(s.h)),
		vgimg.UseDPI(72),
	)
	s.plt.Draw(draw.New(c))
	return c.Image(), nil
}

// SVG emits the retained figure as vector output.
func (s *surface) SVG() ([]byte, error) {
	c := vgsvg.New(vg.Length(s.w), vg.Length(s.h))
	s.plt.Draw(draw.New(c))

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, core.WrapError(core.ErrExportFailed, err)
	}
	return buf.Bytes(), nil
}

var _ chart.SVGSurface = (*surface)(nil)

// begin validates the surface and resets its figure with themed styling.
func (g *Generator) begin(s chart.Surface, mode theme.Mode, title string) (*surface, theme.ModeColors, error) {
	sf, ok := s.(*surface)
	if !ok {
		return nil, theme.ModeColors{}, core.WrapError(core.ErrRenderFailed,
			fmt.Errorf("surface was not created by the %s engine", EngineKey))
	}

	colors := g.theme.Colors(mode)

	p := plot.New()
	p.BackgroundColor = colors.Background
	p.Title.Text = title
	p.Title.TextStyle.Color = colors.Text

	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = colors.Border
		ax.Label.TextStyle.Color = colors.MutedText
		ax.Tick.LineStyle.Color = colors.Border
		ax.Tick.Label.Color = colors.MutedText
	}

	sf.plt = p
	return sf, colors, nil
}

// emptyState replaces the figure with the shared no-data placeholder.
func (g *Generator) emptyState(sf *surface, colors theme.ModeColors, what string) {
	sf.plt.HideAxes()
	sf.plt.Add(&textPlotter{
		x: 0.5, y: 0.5, normalized: true,
		text:  "No " + what + " available",
		color: colors.MutedText,
	})
}
