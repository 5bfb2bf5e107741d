package plotchart

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/theme"
)

// EnhancedMonthlyBars renders one win-rate bar per month with the adaptive
// label treatment and a signed average-return annotation inside each bar.
func (g *Generator) EnhancedMonthlyBars(s chart.Surface, months []core.MonthlyAggregate, mode theme.Mode) (chart.Surface, error) {
	sf, colors, err := g.begin(s, mode, "Monthly Performance")
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

	vals := make(plotter.Values, len(months))
	for i, m := range months {
		vals[i] = m.WinRate
	}
	barW := vg.Length(float64(sf.w) / float64(len(months)) * chart.BarWidthFraction(cat) * 0.8)
	bars, err := plotter.NewBarChart(vals, barW)
	if err != nil {
		return sf, core.WrapError(core.ErrRenderFailed, err)
	}
	bars.Color = g.theme.Accent()
	bars.LineStyle.Width = 0
	sf.plt.Add(bars)
	sf.plt.NominalX(labels...)
	sf.plt.Y.Min, sf.plt.Y.Max = 0, 100
	sf.plt.Y.Label.Text = "Win Rate (%)"

	// Signed average return centered inside each bar. Bars too short to
	// hold the text stay clean.
	var xys plotter.XYs
	var texts []string
	var positive []bool
	for i, m := range months {
		if !chart.ShowBarLabel(m.WinRate, sf.h) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(i), Y: m.WinRate / 2})
		texts = append(texts, fmt.Sprintf("%+.1f%%", m.AverageReturn))
		positive = append(positive, m.AverageReturn >= 0)
	}
	if len(xys) > 0 {
		lbls, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
		if err != nil {
			return sf, core.WrapError(core.ErrRenderFailed, err)
		}
		for i := range lbls.TextStyle {
			lbls.TextStyle[i].Color = g.theme.SignColor(positive[i])
			lbls.TextStyle[i].XAlign = draw.XCenter
			lbls.TextStyle[i].YAlign = draw.YCenter
		}
		sf.plt.Add(lbls)
	}

	return sf, nil
}

// EnhancedGauge renders a semicircular value gauge.
func (g *Generator) EnhancedGauge(s chart.Surface, value float64, title string, maxValue float64, mode theme.Mode) (chart.Surface, error) {
	sf, colors, err := g.begin(s, mode, title)
	if err != nil {
		return s, err
	}

	sf.plt.HideAxes()
	sf.plt.Add(&gaugePlotter{
		fraction:   chart.GaugeFraction(value, maxValue),
		value:      value,
		max:        maxValue,
		track:      colors.Grid,
		sweep:      g.theme.Accent(),
		textColor:  colors.Text,
		mutedColor: colors.MutedText,
	})

	return sf, nil
}
