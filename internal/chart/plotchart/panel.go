package plotchart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/vg/draw"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/theme"
)

// PerformanceSummaryPanel renders the headline stats grid computed from the
// same records the other charts consume.
func (g *Generator) PerformanceSummaryPanel(s chart.Surface, trades []core.TradeRecord, months []core.MonthlyAggregate, mode theme.Mode) (chart.Surface, error) {
	sf, colors, err := g.begin(s, mode, "Performance Summary")
	if err != nil {
		return s, err
	}
	if len(trades) == 0 && len(months) == 0 {
		g.emptyState(sf, colors, "performance data")
		return sf, nil
	}

	sum := chart.BuildSummary(trades, months)

	sf.plt.HideAxes()
	sf.plt.Add(&cardPlotter{fill: colors.CardBackground, border: colors.Border})

	type cell struct {
		label, value string
		valueColor   color.Color
	}
	cells := []cell{
		{label: "Total Trades", value: fmt.Sprintf("%d", sum.TotalTrades), valueColor: colors.Text},
		{label: "Win Rate", value: fmt.Sprintf("%.1f%%", sum.WinRate), valueColor: colors.Text},
		{label: "Avg Return", value: fmt.Sprintf("%+.2f%%", sum.AvgReturn), valueColor: g.theme.SignColor(sum.AvgReturn >= 0)},
		{label: "Avg Duration", value: fmt.Sprintf("%.1f days", sum.AvgDuration), valueColor: colors.Text},
		{label: "Best", value: fmt.Sprintf("%s %+.1f%%", sum.Best.Ticker, sum.Best.ReturnPct), valueColor: g.theme.SignColor(true)},
		{label: "Worst", value: fmt.Sprintf("%s %+.1f%%", sum.Worst.Ticker, sum.Worst.ReturnPct), valueColor: g.theme.SignColor(false)},
	}
	if sum.TotalTrades == 0 {
		cells = cells[:1]
	}

	cols := 3
	rows := (len(cells) + cols - 1) / cols
	for i, c := range cells {
		col, row := i%cols, i/cols
		cx := (float64(col) + 0.5) / float64(cols)
		cy := 1 - (float64(row)+0.5)/float64(rows)

		sf.plt.Add(&textPlotter{
			x: cx, y: cy + 0.06, normalized: true,
			text:  c.label,
			color: colors.MutedText,
		})
		sf.plt.Add(&textPlotter{
			x: cx, y: cy - 0.06, normalized: true,
			text:  c.value,
			color: c.valueColor,
		})
	}

	if sum.Months > 0 {
		sf.plt.Add(&textPlotter{
			x: 0.98, y: 0.03, normalized: true,
			text:   fmt.Sprintf("%d months covered", sum.Months),
			color:  colors.MutedText,
			xAlign: draw.XRight,
		})
	}

	return sf, nil
}
