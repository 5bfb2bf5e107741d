package ggchart

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/theme"
)

// Waterfall renders per-trade cumulative bars at small volume. Medium and
// large volumes render the banded horizontal substitute instead; that
// decision belongs to the scalability manager, not this backend.
func (g *Generator) Waterfall(s chart.Surface, trades []core.TradeRecord, mode theme.Mode) (chart.Surface, error) {
	sf, colors, fr, err := g.begin(s, mode, "Trade Performance")
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
		g.performanceBands(sf, colors, fr, trades)
		return sf, nil
	}

	steps := chart.BuildWaterfall(trades)
	lo, hi := chart.WaterfallRange(steps)
	toY := func(v float64) float64 {
		return fr.y1 - (v-lo)/(hi-lo)*fr.height()
	}

	// Breakeven reference, only when the running total actually crosses it.
	if chart.CrossesZero(steps) {
		sf.dc.SetDash(4, 4)
		sf.dc.SetLineWidth(1)
		sf.dc.SetColor(colors.MutedText)
		sf.dc.DrawLine(fr.x0, toY(0), fr.x1, toY(0))
		sf.dc.Stroke()
		sf.dc.SetDash()
	}

	slot := fr.width() / float64(len(steps))
	barW := slot * 0.72

	for i, st := range steps {
		cx := fr.x0 + slot*(float64(i)+0.5)
		yStart, yEnd := toY(st.Start), toY(st.End)
		top, height := yEnd, yStart-yEnd
		if height < 0 {
			top, height = yStart, -height
		}

		sf.dc.SetColor(g.theme.SignColor(st.Trade.ReturnPct >= 0))
		sf.dc.DrawRectangle(cx-barW/2, top, barW, height)
		sf.dc.Fill()

		if st.Annotate {
			label := chart.WaterfallLabel(st)
			sf.dc.SetColor(colors.Text)
			if st.Trade.ReturnPct >= 0 {
				sf.dc.DrawStringAnchored(label, cx, top-8, 0.5, 0.5)
			} else {
				sf.dc.DrawStringAnchored(label, cx, top+height+10, 0.5, 0.5)
			}
		}
	}

	// Cumulative connector with markers at post-trade values.
	sf.dc.SetColor(colors.Text)
	sf.dc.SetLineWidth(1.5)
	for i, st := range steps {
		cx := fr.x0 + slot*(float64(i)+0.5)
		if i > 0 {
			prev := fr.x0 + slot*(float64(i)-0.5)
			sf.dc.DrawLine(prev, toY(steps[i-1].Cumulative), cx, toY(st.Cumulative))
			sf.dc.Stroke()
		}
		sf.dc.DrawCircle(cx, toY(st.Cumulative), 2.5)
		sf.dc.Fill()
	}

	return sf, nil
}

// performanceBands draws the horizontal band bars, best-performing first,
// count-labeled per bar.
func (g *Generator) performanceBands(sf *surface, colors theme.ModeColors, fr frame, trades []core.TradeRecord) {
	stats := scale.BandSummary(g.mgr.PerformanceBands(trades))
	if len(stats) == 0 {
		g.emptyState(sf, colors, "trade data")
		return
	}
	maxCount := scale.MaxBandCount(stats)

	slot := fr.height() / float64(len(stats))
	barH := slot * 0.6

	for i, b := range stats {
		cy := fr.y0 + slot*(float64(i)+0.5)
		barW := float64(b.Count) / float64(maxCount) * fr.width() * 0.7
		x := fr.x0 + fr.width()*0.22

		sf.dc.SetColor(g.theme.SignColor(b.AvgReturn >= 0))
		sf.dc.DrawRectangle(x, cy-barH/2, barW, barH)
		sf.dc.Fill()

		sf.dc.SetColor(colors.Text)
		sf.dc.DrawStringAnchored(b.Name, x-8, cy, 1, 0.5)
		sf.dc.DrawStringAnchored(fmt.Sprintf("%d", b.Count), x+barW+8, cy, 0, 0.5)
	}
}
