package ggchart

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/theme"
)

// EnhancedScatter renders duration vs. return. High density delegates to
// the clustered rendering path.
func (g *Generator) EnhancedScatter(s chart.Surface, trades []core.TradeRecord, mode theme.Mode) (chart.Surface, error) {
	sf, colors, fr, err := g.begin(s, mode, "Duration vs. Return")
	if err != nil {
		return s, err
	}
	if len(trades) == 0 {
		g.emptyState(sf, colors, "trade data")
		return sf, nil
	}

	cat := g.mgr.ScatterDensityCategory(trades)
	g.logger.Debug("scatter", zap.String("density", string(cat)), zap.Int("trades", len(trades)))

	maxDur, loRet, hiRet := scatterExtent(trades)
	toX := func(d float64) float64 { return fr.x0 + d/maxDur*fr.width() }
	toY := func(r float64) float64 { return fr.y1 - (r-loRet)/(hiRet-loRet)*fr.height() }

	g.scatterAxes(sf, colors, fr, maxDur, loRet, hiRet)

	if cat == scale.DensityHigh {
		g.clusteredScatter(sf, colors, fr, trades, toX, toY)
		return sf, nil
	}

	opacity := chart.ScatterOpacity(cat)
	maxAbs := chart.MaxAbsReturn(trades)

	sizes := make([]float64, len(trades))
	for i, t := range trades {
		sizes[i] = chart.MarkerSize(t.ReturnPct, maxAbs)
		sf.dc.SetColor(theme.WithAlpha(g.theme.CategoryColor(t.Quality), opacity))
		sf.dc.DrawCircle(toX(float64(t.DurationDays)), toY(t.ReturnPct), sizes[i]/2)
		sf.dc.Fill()
	}

	// Least-squares trend, skipped only on the clustered path.
	if slope, intercept, ok := chart.TrendLine(trades); ok {
		sf.dc.SetColor(theme.WithAlpha(colors.MutedText, 0.9))
		sf.dc.SetLineWidth(1.5)
		sf.dc.SetDash(6, 4)
		y0 := math.Min(math.Max(intercept, loRet), hiRet)
		y1 := math.Min(math.Max(intercept+slope*maxDur, loRet), hiRet)
		sf.dc.DrawLine(toX(0), toY(y0), toX(maxDur), toY(y1))
		sf.dc.Stroke()
		sf.dc.SetDash()
	}

	g.annotateScatter(sf, colors, trades, sizes, toX, toY)
	return sf, nil
}

func scatterExtent(trades []core.TradeRecord) (maxDur, loRet, hiRet float64) {
	for _, t := range trades {
		maxDur = math.Max(maxDur, float64(t.DurationDays))
		loRet = math.Min(loRet, t.ReturnPct)
		hiRet = math.Max(hiRet, t.ReturnPct)
	}
	maxDur = math.Max(maxDur*1.05, 1)
	pad := math.Max((hiRet-loRet)*0.1, 1)
	return maxDur, loRet - pad, hiRet + pad
}

func (g *Generator) scatterAxes(sf *surface, colors theme.ModeColors, fr frame, maxDur, loRet, hiRet float64) {
	sf.dc.SetLineWidth(1)
	sf.dc.SetColor(colors.Border)
	sf.dc.DrawLine(fr.x0, fr.y0, fr.x0, fr.y1)
	sf.dc.DrawLine(fr.x0, fr.y1, fr.x1, fr.y1)
	sf.dc.Stroke()

	sf.dc.SetColor(colors.MutedText)
	sf.dc.DrawStringAnchored("days held", (fr.x0+fr.x1)/2, fr.y1+24, 0.5, 0.5)
	sf.dc.DrawStringAnchored(fmt.Sprintf("%.0f", maxDur), fr.x1, fr.y1+12, 1, 0.5)
	sf.dc.DrawStringAnchored(fmt.Sprintf("%.0f%%", hiRet), fr.x0-6, fr.y0, 1, 0.5)
	sf.dc.DrawStringAnchored(fmt.Sprintf("%.0f%%", loRet), fr.x0-6, fr.y1, 1, 0.5)
}

func (g *Generator) annotateScatter(sf *surface, colors theme.ModeColors, trades []core.TradeRecord, sizes []float64, toX, toY func(float64) float64) {
	picked := chart.ScatterAnnotations(trades, sizes)
	if len(picked) == 0 {
		return
	}

	xs := make([]float64, len(picked))
	ys := make([]float64, len(picked))
	positive := make([]bool, len(picked))
	for i, idx := range picked {
		xs[i] = toX(float64(trades[idx].DurationDays))
		ys[i] = toY(trades[idx].ReturnPct)
		positive[i] = trades[idx].ReturnPct >= 0
	}
	levels := chart.AnnotationLevels(xs, ys, positive, 48, 14)

	sf.dc.SetColor(colors.Text)
	for i, idx := range picked {
		dy := float64(levels[i]) * 14
		if positive[i] {
			dy = -dy
		}
		sf.dc.DrawStringAnchored(trades[idx].Ticker, xs[i], ys[i]+dy, 0.5, 0.5)
	}
}

// clusteredScatter draws centroids sized by membership with count overlays,
// noise points at reduced size, and a corner summary.
func (g *Generator) clusteredScatter(sf *surface, colors theme.ModeColors, fr frame, trades []core.TradeRecord, toX, toY func(float64) float64) {
	res := g.mgr.ClusterScatterPoints(trades)

	for _, n := range res.Noise {
		sf.dc.SetColor(theme.WithAlpha(g.theme.CategoryColor(n.Quality), 0.5))
		sf.dc.DrawCircle(toX(float64(n.DurationDays)), toY(n.ReturnPct), 2)
		sf.dc.Fill()
	}

	for _, c := range res.Clusters {
		x, y := toX(c.CentroidDuration), toY(c.CentroidReturn)
		radius := math.Min(8+math.Sqrt(float64(c.Size))*3, 36)

		sf.dc.SetColor(theme.WithAlpha(g.theme.Accent(), 0.75))
		sf.dc.DrawCircle(x, y, radius)
		sf.dc.Fill()
		sf.dc.SetColor(colors.Background)
		sf.dc.DrawStringAnchored(fmt.Sprintf("%d", c.Size), x, y, 0.5, 0.5)
	}

	sum := chart.SummarizeClusters(res)
	sf.dc.SetColor(colors.MutedText)
	sf.dc.DrawStringAnchored(
		fmt.Sprintf("%d clusters / %d grouped / %d individual", sum.Clusters, sum.Grouped, sum.Individual),
		fr.x1, fr.y0+4, 1, 0.5)
}
