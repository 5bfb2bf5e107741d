package plotchart

import (
	"image/color"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/theme"
)

// EnhancedDonut renders the quality distribution ring: category and
// percentage labels outside, win-rate mini labels inside each wedge, and a
// static caption in the hole.
func (g *Generator) EnhancedDonut(s chart.Surface, quality []core.QualityBucket, mode theme.Mode) (chart.Surface, error) {
	sf, colors, err := g.begin(s, mode, "Trade Quality Distribution")
	if err != nil {
		return s, err
	}

	wedges := chart.BuildWedges(quality)
	if len(wedges) == 0 {
		g.emptyState(sf, colors, "quality data")
		return sf, nil
	}

	sf.plt.HideAxes()
	sf.plt.Add(&wedgePlotter{
		wedges: wedges,
		colorFor: func(w chart.Wedge) color.Color {
			return g.theme.CategoryColor(w.Bucket.Category)
		},
		textColor:    colors.Text,
		holeColor:    colors.Background,
		captionColor: colors.MutedText,
		caption:      "by quality",
	})

	return sf, nil
}
