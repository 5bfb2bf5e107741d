package plotchart

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/theme"
)

// EnhancedScatter renders duration vs. return. High density delegates to
// the clustered rendering path.
func (g *Generator) EnhancedScatter(s chart.Surface, trades []core.TradeRecord, mode theme.Mode) (chart.Surface, error) {
	sf, colors, err := g.begin(s, mode, "Duration vs. Return")
	if err != nil {
		return s, err
	}
	if len(trades) == 0 {
		g.emptyState(sf, colors, "trade data")
		return sf, nil
	}

	sf.plt.X.Label.Text = "days held"
	sf.plt.Y.Label.Text = "Return (%)"

	cat := g.mgr.ScatterDensityCategory(trades)
	g.logger.Debug("scatter", zap.String("density", string(cat)), zap.Int("trades", len(trades)))

	if cat == scale.DensityHigh {
		return sf, g.clusteredScatter(sf, colors, trades)
	}

	opacity := chart.ScatterOpacity(cat)
	maxAbs := chart.MaxAbsReturn(trades)

	xys := make(plotter.XYs, len(trades))
	sizes := make([]float64, len(trades))
	for i, t := range trades {
		xys[i] = plotter.XY{X: float64(t.DurationDays), Y: t.ReturnPct}
		sizes[i] = chart.MarkerSize(t.ReturnPct, maxAbs)
	}

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return sf, core.WrapError(core.ErrRenderFailed, err)
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  theme.WithAlpha(g.theme.CategoryColor(trades[i].Quality), opacity),
			Radius: vg.Length(sizes[i] / 2),
			Shape:  draw.CircleGlyph{},
		}
	}
	sf.plt.Add(sc)

	// Least-squares trend, skipped only on the clustered path.
	if slope, intercept, ok := chart.TrendLine(trades); ok {
		maxDur := 0.0
		for _, t := range trades {
			maxDur = math.Max(maxDur, float64(t.DurationDays))
		}
		trend, err := plotter.NewLine(plotter.XYs{
			{X: 0, Y: intercept},
			{X: maxDur, Y: intercept + slope*maxDur},
		})
		if err != nil {
			return sf, core.WrapError(core.ErrRenderFailed, err)
		}
		trend.LineStyle = draw.LineStyle{
			Color:  theme.WithAlpha(colors.MutedText, 0.9),
			Width:  1.5,
			Dashes: []vg.Length{6, 4},
		}
		sf.plt.Add(trend)
	}

	return sf, g.annotateScatter(sf, colors, trades, sizes)
}

func (g *Generator) annotateScatter(sf *surface, colors theme.ModeColors, trades []core.TradeRecord, sizes []float64) error {
	picked := chart.ScatterAnnotations(trades, sizes)
	if len(picked) == 0 {
		return nil
	}

	// Collision spacing works in data units here; the gaps mirror the
	// pixel gaps the immediate-mode engine uses, scaled to the extent.
	maxDur, loRet, hiRet := 0.0, 0.0, 0.0
	for _, t := range trades {
		maxDur = math.Max(maxDur, float64(t.DurationDays))
		loRet = math.Min(loRet, t.ReturnPct)
		hiRet = math.Max(hiRet, t.ReturnPct)
	}
	xGap := math.Max(maxDur*0.06, 1)
	yGap := math.Max((hiRet-loRet)*0.05, 0.5)

	xs := make([]float64, len(picked))
	ys := make([]float64, len(picked))
	positive := make([]bool, len(picked))
	for i, idx := range picked {
		xs[i] = float64(trades[idx].DurationDays)
		ys[i] = trades[idx].ReturnPct
		positive[i] = trades[idx].ReturnPct >= 0
	}
	levels := chart.AnnotationLevels(xs, ys, positive, xGap, yGap)

	xys := make(plotter.XYs, len(picked))
	texts := make([]string, len(picked))
	for i, idx := range picked {
		dy := float64(levels[i]) * yGap
		if !positive[i] {
			dy = -dy
		}
		xys[i] = plotter.XY{X: xs[i], Y: ys[i] + dy}
		texts[i] = trades[idx].Ticker
	}
	lbls, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return core.WrapError(core.ErrRenderFailed, err)
	}
	for i := range lbls.TextStyle {
		lbls.TextStyle[i].Color = colors.Text
		lbls.TextStyle[i].XAlign = draw.XCenter
	}
	sf.plt.Add(lbls)
	return nil
}

// clusteredScatter draws centroids sized by membership with count overlays,
// noise points at reduced size, and a corner summary.
func (g *Generator) clusteredScatter(sf *surface, colors theme.ModeColors, trades []core.TradeRecord) error {
	res := g.mgr.ClusterScatterPoints(trades)

	if len(res.Noise) > 0 {
		xys := make(plotter.XYs, len(res.Noise))
		for i, n := range res.Noise {
			xys[i] = plotter.XY{X: float64(n.DurationDays), Y: n.ReturnPct}
		}
		noise, err := plotter.NewScatter(xys)
		if err != nil {
			return core.WrapError(core.ErrRenderFailed, err)
		}
		noisePts := res.Noise
		noise.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{
				Color:  theme.WithAlpha(g.theme.CategoryColor(noisePts[i].Quality), 0.5),
				Radius: 2,
				Shape:  draw.CircleGlyph{},
			}
		}
		sf.plt.Add(noise)
	}

	if len(res.Clusters) > 0 {
		xys := make(plotter.XYs, len(res.Clusters))
		counts := make([]string, len(res.Clusters))
		for i, c := range res.Clusters {
			xys[i] = plotter.XY{X: c.CentroidDuration, Y: c.CentroidReturn}
			counts[i] = fmt.Sprintf("%d", c.Size)
		}
		centroids, err := plotter.NewScatter(xys)
		if err != nil {
			return core.WrapError(core.ErrRenderFailed, err)
		}
		clusters := res.Clusters
		centroids.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			radius := math.Min(8+math.Sqrt(float64(clusters[i].Size))*3, 36)
			return draw.GlyphStyle{
				Color:  theme.WithAlpha(g.theme.Accent(), 0.75),
				Radius: vg.Length(radius),
				Shape:  draw.CircleGlyph{},
			}
		}
		sf.plt.Add(centroids)

		lbls, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: counts})
		if err != nil {
			return core.WrapError(core.ErrRenderFailed, err)
		}
		for i := range lbls.TextStyle {
			lbls.TextStyle[i].Color = colors.Background
			lbls.TextStyle[i].XAlign = draw.XCenter
			lbls.TextStyle[i].YAlign = draw.YCenter
		}
		sf.plt.Add(lbls)
	}

	sum := chart.SummarizeClusters(res)
	sf.plt.Add(&textPlotter{
		x: 0.98, y: 0.97, normalized: true,
		text:   fmt.Sprintf("%d clusters / %d grouped / %d individual", sum.Clusters, sum.Grouped, sum.Individual),
		color:  colors.MutedText,
		xAlign: draw.XRight,
	})

	return nil
}
