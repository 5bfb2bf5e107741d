package ggchart

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/theme"
)

// EnhancedMonthlyBars renders one win-rate bar per month with the adaptive
// label treatment and a signed average-return annotation inside each bar.
func (g *Generator) EnhancedMonthlyBars(s chart.Surface, months []core.MonthlyAggregate, mode theme.Mode) (chart.Surface, error) {
	sf, colors, fr, err := g.begin(s, mode, "Monthly Performance")
	if err != nil {
		return s, err
	}
	if len(months) == 0 {
		g.emptyState(sf, colors, "monthly data")
		return sf, nil
	}

	cat := g.mgr.MonthlyTimelineCategory(months)
	labels := g.mgr.OptimizeMonthlyLabels(months, cat)
	labels = chart.ThinLabels(labels, g.mgr.AdaptiveLabelFrequency(len(months), 0))
	g.logger.Debug("monthly bars", zap.String("timeline", string(cat)), zap.Int("months", len(months)))

	// Win rate axis is fixed 0-100 with quarter grid lines.
	sf.dc.SetLineWidth(1)
	for _, tick := range []float64{0, 25, 50, 75, 100} {
		y := fr.y1 - tick/100*fr.height()
		sf.dc.SetColor(colors.Grid)
		sf.dc.DrawLine(fr.x0, y, fr.x1, y)
		sf.dc.Stroke()
		sf.dc.SetColor(colors.MutedText)
		sf.dc.DrawStringAnchored(fmt.Sprintf("%.0f%%", tick), fr.x0-8, y, 1, 0.5)
	}

	slot := fr.width() / float64(len(months))
	barW := slot * chart.BarWidthFraction(cat)

	for i, m := range months {
		cx := fr.x0 + slot*(float64(i)+0.5)
		barH := math.Min(math.Max(m.WinRate, 0), 100) / 100 * fr.height()
		x := cx - barW/2
		y := fr.y1 - barH

		sf.dc.SetColor(g.theme.Accent())
		sf.dc.DrawRectangle(x, y, barW, barH)
		sf.dc.Fill()

		// Signed average return centered inside the bar.
		if chart.ShowBarLabel(m.WinRate, sf.h) {
			sf.dc.SetColor(g.theme.SignColor(m.AverageReturn >= 0))
			sf.dc.DrawStringAnchored(fmt.Sprintf("%+.1f%%", m.AverageReturn), cx, y+barH/2, 0.5, 0.5)
		}

		if labels[i] != "" {
			sf.dc.SetColor(colors.Text)
			sf.dc.DrawStringAnchored(labels[i], cx, fr.y1+14, 0.5, 0.5)
		}
	}

	return sf, nil
}

// EnhancedGauge renders a semicircular value gauge.
func (g *Generator) EnhancedGauge(s chart.Surface, value float64, title string, maxValue float64, mode theme.Mode) (chart.Surface, error) {
	sf, colors, fr, err := g.begin(s, mode, title)
	if err != nil {
		return s, err
	}

	cx := fr.x0 + fr.width()/2
	cy := fr.y1 - fr.height()*0.1
	radius := math.Min(fr.width()/2, fr.height()*0.8)
	thickness := radius * 0.22

	// Track.
	sf.dc.SetLineWidth(thickness)
	sf.dc.SetColor(colors.Grid)
	sf.dc.DrawArc(cx, cy, radius-thickness/2, math.Pi, 2*math.Pi)
	sf.dc.Stroke()

	// Value sweep.
	frac := chart.GaugeFraction(value, maxValue)
	if frac > 0 {
		sf.dc.SetColor(g.theme.Accent())
		sf.dc.DrawArc(cx, cy, radius-thickness/2, math.Pi, math.Pi+frac*math.Pi)
		sf.dc.Stroke()
	}

	sf.dc.SetColor(colors.Text)
	sf.dc.DrawStringAnchored(fmt.Sprintf("%.1f", value), cx, cy-radius*0.35, 0.5, 0.5)
	sf.dc.SetColor(colors.MutedText)
	sf.dc.DrawStringAnchored(fmt.Sprintf("of %.0f", maxValue), cx, cy-radius*0.35+16, 0.5, 0.5)

	return sf, nil
}
