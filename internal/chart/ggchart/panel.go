package ggchart

import (
	"fmt"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/theme"
)

// PerformanceSummaryPanel renders the headline stats grid computed from the
// same records the other charts consume.
func (g *Generator) PerformanceSummaryPanel(s chart.Surface, trades []core.TradeRecord, months []core.MonthlyAggregate, mode theme.Mode) (chart.Surface, error) {
	sf, colors, fr, err := g.begin(s, mode, "Performance Summary")
	if err != nil {
		return s, err
	}
	if len(trades) == 0 && len(months) == 0 {
		g.emptyState(sf, colors, "performance data")
		return sf, nil
	}

	sum := chart.BuildSummary(trades, months)

	sf.dc.SetColor(colors.CardBackground)
	sf.dc.DrawRectangle(fr.x0, fr.y0, fr.width(), fr.height())
	sf.dc.Fill()
	sf.dc.SetColor(colors.Border)
	sf.dc.SetLineWidth(1)
	sf.dc.DrawRectangle(fr.x0, fr.y0, fr.width(), fr.height())
	sf.dc.Stroke()

	type cell struct {
		label, value string
		signed       bool
		positive     bool
	}
	cells := []cell{
		{label: "Total Trades", value: fmt.Sprintf("%d", sum.TotalTrades)},
		{label: "Win Rate", value: fmt.Sprintf("%.1f%%", sum.WinRate)},
		{label: "Avg Return", value: fmt.Sprintf("%+.2f%%", sum.AvgReturn), signed: true, positive: sum.AvgReturn >= 0},
		{label: "Avg Duration", value: fmt.Sprintf("%.1f days", sum.AvgDuration)},
		{label: "Best", value: fmt.Sprintf("%s %+.1f%%", sum.Best.Ticker, sum.Best.ReturnPct), signed: true, positive: true},
		{label: "Worst", value: fmt.Sprintf("%s %+.1f%%", sum.Worst.Ticker, sum.Worst.ReturnPct), signed: true, positive: false},
	}
	if sum.TotalTrades == 0 {
		cells = cells[:1]
	}

	cols := 3
	rows := (len(cells) + cols - 1) / cols
	cellW := fr.width() / float64(cols)
	cellH := fr.height() / float64(rows)

	for i, c := range cells {
		col, row := i%cols, i/cols
		cx := fr.x0 + cellW*(float64(col)+0.5)
		cy := fr.y0 + cellH*(float64(row)+0.5)

		sf.dc.SetColor(colors.MutedText)
		sf.dc.DrawStringAnchored(c.label, cx, cy-10, 0.5, 0.5)

		if c.signed {
			sf.dc.SetColor(g.theme.SignColor(c.positive))
		} else {
			sf.dc.SetColor(colors.Text)
		}
		sf.dc.DrawStringAnchored(c.value, cx, cy+10, 0.5, 0.5)
	}

	if sum.Months > 0 {
		sf.dc.SetColor(colors.MutedText)
		sf.dc.DrawStringAnchored(fmt.Sprintf("%d months covered", sum.Months), fr.x1-8, fr.y1-10, 1, 0.5)
	}

	return sf, nil
}
