package plotchart

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/theme"
)

// Waterfall renders per-trade cumulative bars at small volume. Medium and
// large volumes render the banded horizontal substitute instead; that
// decision belongs to the scalability manager, not this backend.
func (g *Generator) Waterfall(s chart.Surface, trades []core.TradeRecord, mode theme.Mode) (chart.Surface, error) {
	sf, colors, err := g.begin(s, mode, "Trade Performance")
	if err != nil {
		return s, err
	}
	if len(trades) == 0 {
		g.emptyState(sf, colors, "trade data")
		return sf, nil
	}

	cat := g.mgr.TradeVolumeCategory(trades)
	g.logger.Debug("waterfall", zap.String("volume", string(cat)), zap.Int("trades", len(trades)))
	if cat != scale.VolumeSmall {
		return sf, g.performanceBands(sf, colors, trades)
	}

	sf.plt.HideX()
	sf.plt.Y.Label.Text = "Cumulative Return (%)"
	sf.plt.Add(&waterfallPlotter{
		steps:     chart.BuildWaterfall(trades),
		pos:       g.theme.SignColor(true),
		neg:       g.theme.SignColor(false),
		line:      colors.Text,
		textColor: colors.Text,
		zeroLine:  colors.MutedText,
	})

	return sf, nil
}

// performanceBands draws the horizontal band bars, best-performing first,
// count-labeled per bar.
func (g *Generator) performanceBands(sf *surface, colors theme.ModeColors, trades []core.TradeRecord) error {
	stats := scale.BandSummary(g.mgr.PerformanceBands(trades))

	// NominalY indexes bottom-up; reverse so the best band lands on top.
	display := make([]scale.BandStats, len(stats))
	names := make([]string, len(stats))
	for i, b := range stats {
		j := len(stats) - 1 - i
		display[j] = b
		names[j] = b.Name
	}
	maxCount := scale.MaxBandCount(stats)
	barH := vg.Length(float64(sf.h) / float64(len(stats)) * 0.5)

	for i, b := range display {
		vals := make(plotter.Values, len(display))
		vals[i] = float64(b.Count)
		bars, err := plotter.NewBarChart(vals, barH)
		if err != nil {
			return core.WrapError(core.ErrRenderFailed, err)
		}
		bars.Horizontal = true
		bars.Color = g.theme.SignColor(b.AvgReturn >= 0)
		bars.LineStyle.Width = 0
		sf.plt.Add(bars)
	}
	sf.plt.NominalY(names...)
	sf.plt.X.Min, sf.plt.X.Max = 0, float64(maxCount)*1.2
	sf.plt.X.Label.Text = "Trades"

	// Count labels beside each bar.
	xys := make(plotter.XYs, len(display))
	texts := make([]string, len(display))
	for i, b := range display {
		xys[i] = plotter.XY{X: float64(b.Count) + float64(maxCount)*0.03, Y: float64(i)}
		texts[i] = fmt.Sprintf("%d", b.Count)
	}
	lbls, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return core.WrapError(core.ErrRenderFailed, err)
	}
	for i := range lbls.TextStyle {
		lbls.TextStyle[i].Color = colors.Text
		lbls.TextStyle[i].YAlign = draw.YCenter
	}
	sf.plt.Add(lbls)

	return nil
}
