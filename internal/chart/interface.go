// Package chart defines the rendering-backend-neutral chart contract and the
// shared geometry every backend must encode identically.
package chart

import (
	"image"

	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/theme"
)

// Surface is a drawing target owned by one backend. Operations mutate the
// surface and return the handle; callers must use the returned value rather
// than relying on in-place mutation.
type Surface interface {
	// Bounds returns the surface size in pixels.
	Bounds() (w, h int)

	// Image rasterizes the current surface contents.
	Image() (image.Image, error)
}

// SVGSurface is implemented by surfaces that can emit vector output.
type SVGSurface interface {
	Surface
	SVG() ([]byte, error)
}

// Generator is the one-operation-per-chart-type contract. Implementations
// must render an empty-state placeholder for empty input rather than
// failing, and must follow the scalability manager's strategy decision for
// non-empty input.
type Generator interface {
	// Name returns the engine key this generator was created under.
	Name() string

	// NewSurface allocates a backend-specific drawing surface.
	NewSurface(width, height int) Surface

	// EnhancedGauge renders a value/max gauge with a title.
	EnhancedGauge(s Surface, value float64, title string, maxValue float64, mode theme.Mode) (Surface, error)

	// EnhancedMonthlyBars renders win-rate bars with adaptive month labels
	// and signed average-return annotations inside each bar.
	EnhancedMonthlyBars(s Surface, months []core.MonthlyAggregate, mode theme.Mode) (Surface, error)

	// EnhancedDonut renders the quality distribution ring.
	EnhancedDonut(s Surface, quality []core.QualityBucket, mode theme.Mode) (Surface, error)

	// Waterfall renders per-trade cumulative bars for small volumes and
	// delegates to banded horizontal bars for medium/large volumes.
	Waterfall(s Surface, trades []core.TradeRecord, mode theme.Mode) (Surface, error)

	// EnhancedScatter renders duration-vs-return markers, switching to
	// clustered rendering at high density.
	EnhancedScatter(s Surface, trades []core.TradeRecord, mode theme.Mode) (Surface, error)

	// PerformanceSummaryPanel renders the headline stats grid.
	PerformanceSummaryPanel(s Surface, trades []core.TradeRecord, months []core.MonthlyAggregate, mode theme.Mode) (Surface, error)
}

// Types enumerates the chart types the pipeline renders, in dashboard order.
var Types = []string{
	"gauge",
	"monthly_bars",
	"donut",
	"waterfall",
	"scatter",
	"summary_panel",
}
