package ggchart

import (
	"fmt"
	"math"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/theme"
)

// EnhancedDonut renders the quality distribution ring: category and
// percentage labels outside, win-rate mini labels inside each wedge, and a
// static caption in the hole.
func (g *Generator) EnhancedDonut(s chart.Surface, quality []core.QualityBucket, mode theme.Mode) (chart.Surface, error) {
	sf, colors, fr, err := g.begin(s, mode, "Trade Quality Distribution")
	if err != nil {
		return s, err
	}

	wedges := chart.BuildWedges(quality)
	if len(wedges) == 0 {
		g.emptyState(sf, colors, "quality data")
		return sf, nil
	}

	cx := fr.x0 + fr.width()/2
	cy := fr.y0 + fr.height()/2
	outer := math.Min(fr.width(), fr.height()) * 0.36
	inner := outer * 0.55

	// Fractions start at twelve o'clock.
	angle := func(frac float64) float64 { return -math.Pi/2 + frac*2*math.Pi }

	for _, w := range wedges {
		a0, a1 := angle(w.StartFrac), angle(w.EndFrac)

		sf.dc.NewSubPath()
		sf.dc.DrawArc(cx, cy, outer, a0, a1)
		sf.dc.DrawArc(cx, cy, inner, a1, a0)
		sf.dc.ClosePath()
		sf.dc.SetColor(g.theme.CategoryColor(w.Bucket.Category))
		sf.dc.Fill()

		mid := angle(w.LabelFrac)

		// Outside: category + percentage.
		lx := cx + math.Cos(mid)*(outer+18)
		ly := cy + math.Sin(mid)*(outer+18)
		sf.dc.SetColor(colors.Text)
		sf.dc.DrawStringAnchored(
			fmt.Sprintf("%s %.1f%%", w.Bucket.Category, w.Bucket.Percentage), lx, ly, 0.5, 0.5)

		// Inside: win-rate mini label, only when the wedge has room.
		if w.EndFrac-w.StartFrac > 0.04 {
			mx := cx + math.Cos(mid)*(inner+outer)/2
			my := cy + math.Sin(mid)*(inner+outer)/2
			sf.dc.SetColor(colors.Background)
			sf.dc.DrawStringAnchored(fmt.Sprintf("%.0f%%", w.Bucket.WinRate), mx, my, 0.5, 0.5)
		}
	}

	sf.dc.SetColor(colors.MutedText)
	sf.dc.DrawStringAnchored("by quality", cx, cy, 0.5, 0.5)

	return sf, nil
}
