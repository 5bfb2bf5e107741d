// Package scale decides how a dataset should be visually encoded, independent
// of the rendering backend. Both chart engines consult the same Manager so
// they can never disagree on which strategy to use, only on how to draw it.
package scale

import (
	"fmt"

	"github.com/quantfolio/tapestry/internal/config"
	"github.com/quantfolio/tapestry/internal/core"
)

// VolumeCategory classifies trade counts for bar/waterfall clutter.
type VolumeCategory string

const (
	VolumeSmall  VolumeCategory = "small"
	VolumeMedium VolumeCategory = "medium"
	VolumeLarge  VolumeCategory = "large"
)

// TimelineCategory classifies month counts for axis-label width.
type TimelineCategory string

const (
	TimelineCompact   TimelineCategory = "compact"
	TimelineMedium    TimelineCategory = "medium"
	TimelineCondensed TimelineCategory = "condensed"
)

// DensityCategory classifies trade counts for scatter clutter. Thresholds
// are independent of VolumeCategory because scatter clutter scales
// differently than bar clutter.
type DensityCategory string

const (
	DensityLow    DensityCategory = "low"
	DensityMedium DensityCategory = "medium"
	DensityHigh   DensityCategory = "high"
)

// Recommendation is the composed strategy decision consumed by chart
// generators.
type Recommendation struct {
	TradePerformance string // "waterfall", "performance_bands", "histogram"
	MonthlyTimeline  string // "full_bars", "medium_bars", "thin_bars"
	ScatterPlot      string // "standard_scatter", "reduced_opacity", "clustered_scatter"
}

// Manager is the pure decision engine. All classification methods are total
// over well-formed input; threshold validation happens at config load, not
// here.
type Manager struct {
	volume    config.Tier
	timeline  config.Tier
	density   config.Tier
	cluster   config.ClusterConfig
	maxLabels int
}

// NewManager builds a Manager from validated configuration.
func NewManager(cfg config.ScalabilityConfig) *Manager {
	return &Manager{
		volume:    cfg.Volume,
		timeline:  cfg.Timeline,
		density:   cfg.Density,
		cluster:   cfg.Cluster,
		maxLabels: cfg.MaxLabels,
	}
}

// ClusterParams exposes the configured DBSCAN tuning.
func (m *Manager) ClusterParams() config.ClusterConfig {
	return m.cluster
}

// TradeVolumeCategory classifies the trade count. Empty input is small.
func (m *Manager) TradeVolumeCategory(trades []core.TradeRecord) VolumeCategory {
	switch n := len(trades); {
	case n <= m.volume.Low:
		return VolumeSmall
	case n <= m.volume.High:
		return VolumeMedium
	default:
		return VolumeLarge
	}
}

// MonthlyTimelineCategory classifies the month count.
func (m *Manager) MonthlyTimelineCategory(months []core.MonthlyAggregate) TimelineCategory {
	switch n := len(months); {
	case n <= m.timeline.Low:
		return TimelineCompact
	case n <= m.timeline.High:
		return TimelineMedium
	default:
		return TimelineCondensed
	}
}

// ScatterDensityCategory classifies the trade count for scatter rendering.
func (m *Manager) ScatterDensityCategory(trades []core.TradeRecord) DensityCategory {
	switch n := len(trades); {
	case n <= m.density.Low:
		return DensityLow
	case n <= m.density.High:
		return DensityMedium
	default:
		return DensityHigh
	}
}

// OptimizeMonthlyLabels formats month axis labels for the given timeline
// category. Input order is preserved; it is assumed chronological.
func (m *Manager) OptimizeMonthlyLabels(months []core.MonthlyAggregate, cat TimelineCategory) []string {
	labels := make([]string, len(months))
	for i, mo := range months {
		switch cat {
		case TimelineCompact:
			labels[i] = fmt.Sprintf("%s %d", mo.Month, mo.Year)
		case TimelineMedium:
			labels[i] = fmt.Sprintf("%s '%02d", abbrevMonth(mo.Month), mo.Year%100)
		default: // condensed
			labels[i] = fmt.Sprintf("%s%02d", initialMonth(mo.Month), mo.Year%100)
		}
	}
	return labels
}

func abbrevMonth(name string) string {
	if len(name) > 3 {
		return name[:3]
	}
	return name
}

func initialMonth(name string) string {
	if name == "" {
		return "?"
	}
	return name[:1]
}

// AdaptiveLabelFrequency returns the stride k such that showing every k-th
// label of n keeps the displayed count at or below maxLabels. maxLabels <= 0
// falls back to the configured maximum.
func (m *Manager) AdaptiveLabelFrequency(n, maxLabels int) int {
	if maxLabels <= 0 {
		maxLabels = m.maxLabels
	}
	if n <= maxLabels {
		return 1
	}
	return (n + maxLabels - 1) / maxLabels
}

// ChartRecommendation composes the three classifiers into the single
// strategy decision chart generators act on.
func (m *Manager) ChartRecommendation(trades []core.TradeRecord, months []core.MonthlyAggregate) Recommendation {
	rec := Recommendation{}

	switch m.TradeVolumeCategory(trades) {
	case VolumeSmall:
		rec.TradePerformance = "waterfall"
	case VolumeMedium:
		rec.TradePerformance = "performance_bands"
	default:
		rec.TradePerformance = "histogram"
	}

	switch m.MonthlyTimelineCategory(months) {
	case TimelineCompact:
		rec.MonthlyTimeline = "full_bars"
	case TimelineMedium:
		rec.MonthlyTimeline = "medium_bars"
	default:
		rec.MonthlyTimeline = "thin_bars"
	}

	switch m.ScatterDensityCategory(trades) {
	case DensityLow:
		rec.ScatterPlot = "standard_scatter"
	case DensityMedium:
		rec.ScatterPlot = "reduced_opacity"
	default:
		rec.ScatterPlot = "clustered_scatter"
	}

	return rec
}
