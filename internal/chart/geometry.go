package chart

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/scale"
)

// Marker sizing and annotation tuning shared by both engines. These must
// not be overridden per backend or the engines drift apart visually.
const (
	BaseMarkerSize   = 6.0
	MarkerSizeScale  = 14.0
	OutlierBoost     = 6.0
	OutlierReturnPct = 5.0

	LongDurationDays  = 45
	ShortDurationDays = 3

	AnnotationSizeLimit   = 16.0
	MaxScatterAnnotations = 8

	WaterfallAnnotationPct = 2.0

	// MinBarLabelHeight is the smallest bar height, in pixels, that still
	// fits the in-bar average-return annotation.
	MinBarLabelHeight = 14.0

	// PlotFrameFraction is the share of the surface height left for the
	// plot frame once the title band and axis labels are taken out.
	PlotFrameFraction = 0.76
)

// WaterfallStep is one bar of the waterfall: the trade's contribution drawn
// from Start to End, with Cumulative the running total after the trade.
type WaterfallStep struct {
	Trade      core.TradeRecord
	Start      float64
	End        float64
	Cumulative float64
	Annotate   bool
}

// BuildWaterfall sorts trades descending by return and computes the running
// cumulative geometry. Bars whose |return| exceeds the annotation threshold
// are flagged for labeling.
func BuildWaterfall(trades []core.TradeRecord) []WaterfallStep {
	sorted := append([]core.TradeRecord(nil), trades...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReturnPct > sorted[j].ReturnPct
	})

	steps := make([]WaterfallStep, len(sorted))
	running := 0.0
	for i, t := range sorted {
		start := running
		running += t.ReturnPct
		steps[i] = WaterfallStep{
			Trade:      t,
			Start:      start,
			End:        running,
			Cumulative: running,
			Annotate:   math.Abs(t.ReturnPct) > WaterfallAnnotationPct,
		}
	}
	return steps
}

// WaterfallLabel is the annotation text for a flagged waterfall bar. Both
// engines must draw the same string.
func WaterfallLabel(st WaterfallStep) string {
	return fmt.Sprintf("%s %+.1f%%", st.Trade.Ticker, st.Trade.ReturnPct)
}

// ShowBarLabel reports whether a monthly bar of the given win rate is tall
// enough, on a surface of the given pixel height, to hold its in-bar
// annotation. Both engines must apply the same visibility rule.
func ShowBarLabel(winRate float64, surfaceHeight int) bool {
	barH := math.Min(math.Max(winRate, 0), 100) / 100 * float64(surfaceHeight) * PlotFrameFraction
	return barH > MinBarLabelHeight
}

// CrossesZero reports whether the cumulative series changes sign, which is
// when the breakeven reference line is worth drawing.
func CrossesZero(steps []WaterfallStep) bool {
	for _, s := range steps {
		if s.Start > 0 && s.End < 0 || s.Start < 0 && s.End > 0 {
			return true
		}
	}
	return false
}

// WaterfallRange returns the value extent covered by the steps, padded so
// annotations have room.
func WaterfallRange(steps []WaterfallStep) (lo, hi float64) {
	for _, s := range steps {
		lo = math.Min(lo, math.Min(s.Start, s.End))
		hi = math.Max(hi, math.Max(s.Start, s.End))
	}
	pad := (hi - lo) * 0.08
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

// MarkerSize computes the scatter marker radius for a return, given the
// dataset's maximum absolute return.
func MarkerSize(returnPct, maxAbsReturn float64) float64 {
	magnitude := math.Abs(returnPct) / math.Max(maxAbsReturn, 1)
	size := BaseMarkerSize + magnitude*MarkerSizeScale
	if math.Abs(returnPct) > OutlierReturnPct {
		size += OutlierBoost
	}
	return size
}

// MaxAbsReturn scans the dataset maximum |return|.
func MaxAbsReturn(trades []core.TradeRecord) float64 {
	max := 0.0
	for _, t := range trades {
		if a := math.Abs(t.ReturnPct); a > max {
			max = a
		}
	}
	return max
}

// ScatterOpacity maps the density classification to marker alpha. The
// clustered path does not use per-point opacity.
func ScatterOpacity(cat scale.DensityCategory) float64 {
	switch cat {
	case scale.DensityLow:
		return 1.0
	case scale.DensityMedium:
		return 0.55
	default:
		return 0.35
	}
}

// TrendLine fits return = intercept + slope*duration by least squares.
// ok is false when there are fewer than two points or no duration spread.
func TrendLine(trades []core.TradeRecord) (slope, intercept float64, ok bool) {
	if len(trades) < 2 {
		return 0, 0, false
	}
	xs := make([]float64, len(trades))
	ys := make([]float64, len(trades))
	spread := false
	for i, t := range trades {
		xs[i] = float64(t.DurationDays)
		ys[i] = t.ReturnPct
		if xs[i] != xs[0] {
			spread = true
		}
	}
	if !spread {
		return 0, 0, false
	}
	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	return slope, intercept, true
}

// ScatterAnnotations selects the trades worth a ticker label: extreme
// durations, outsized returns, or oversized markers. The result is capped
// and ordered by |return| descending so the most interesting labels win.
func ScatterAnnotations(trades []core.TradeRecord, sizes []float64) []int {
	var idx []int
	for i, t := range trades {
		oversized := i < len(sizes) && sizes[i] > AnnotationSizeLimit
		if t.DurationDays > LongDurationDays || t.DurationDays < ShortDurationDays ||
			math.Abs(t.ReturnPct) > OutlierReturnPct || oversized {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(trades[idx[a]].ReturnPct) > math.Abs(trades[idx[b]].ReturnPct)
	})
	if len(idx) > MaxScatterAnnotations {
		idx = idx[:MaxScatterAnnotations]
	}
	return idx
}

// AnnotationLevels spaces labels vertically. Each entry is the number of
// gap-steps to displace the i-th label from its marker; the level grows
// while the placement collides with an earlier label.
func AnnotationLevels(xs, ys []float64, positive []bool, xGap, yGap float64) []int {
	levels := make([]int, len(xs))
	placedX := make([]float64, 0, len(xs))
	placedY := make([]float64, 0, len(xs))

	for i := range xs {
		level := 1
		for {
			dy := float64(level) * yGap
			if !positive[i] {
				dy = -dy
			}
			y := ys[i] + dy
			collides := false
			for j := range placedX {
				if math.Abs(xs[i]-placedX[j]) < xGap && math.Abs(y-placedY[j]) < yGap {
					collides = true
					break
				}
			}
			if !collides || level > 6 {
				levels[i] = level
				placedX = append(placedX, xs[i])
				placedY = append(placedY, y)
				break
			}
			level++
		}
	}
	return levels
}

// ClusterSummary is the corner annotation for the clustered scatter path.
type ClusterSummary struct {
	Clusters   int
	Grouped    int
	Individual int
}

// SummarizeClusters counts what the clustered rendering shows.
func SummarizeClusters(res scale.ClusterResult) ClusterSummary {
	return ClusterSummary{
		Clusters:   len(res.Clusters),
		Grouped:    res.ClusteredPoints(),
		Individual: res.NoisePoints(),
	}
}

// Wedge is one donut slice in ring order. Angles are fractions of a full
// turn starting at twelve o'clock.
type Wedge struct {
	Bucket    core.QualityBucket
	StartFrac float64
	EndFrac   float64
	LabelFrac float64 // midpoint, for label placement
}

// BuildWedges converts quality buckets into wedge geometry. Buckets with
// zero percentage are skipped. Percentages are renormalized so rounding
// noise in the source never leaves a gap in the ring.
func BuildWedges(quality []core.QualityBucket) []Wedge {
	total := 0.0
	for _, q := range quality {
		if q.Percentage > 0 {
			total += q.Percentage
		}
	}
	if total <= 0 {
		return nil
	}

	wedges := make([]Wedge, 0, len(quality))
	at := 0.0
	for _, q := range quality {
		if q.Percentage <= 0 {
			continue
		}
		frac := q.Percentage / total
		w := Wedge{
			Bucket:    q,
			StartFrac: at,
			EndFrac:   at + frac,
		}
		w.LabelFrac = (w.StartFrac + w.EndFrac) / 2
		wedges = append(wedges, w)
		at = w.EndFrac
	}
	return wedges
}

// BarWidthFraction narrows monthly bars as the timeline grows so dense
// months stay separated. Both engines must use the same fraction.
func BarWidthFraction(cat scale.TimelineCategory) float64 {
	switch cat {
	case scale.TimelineCompact:
		return 0.7
	case scale.TimelineMedium:
		return 0.55
	default:
		return 0.4
	}
}

// ThinLabels blanks all but every k-th label so dense axes stay readable.
func ThinLabels(labels []string, k int) []string {
	if k <= 1 {
		return labels
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		if i%k == 0 {
			out[i] = l
		}
	}
	return out
}

// GaugeFraction clamps value/max into [0, 1].
func GaugeFraction(value, max float64) float64 {
	if max <= 0 {
		return 0
	}
	f := value / max
	return math.Max(0, math.Min(1, f))
}

// Summary is the headline stats grid data for the performance panel.
type Summary struct {
	TotalTrades int
	WinRate     float64
	AvgReturn   float64
	AvgDuration float64
	Best        core.TradeRecord
	Worst       core.TradeRecord
	Months      int
}

// BuildSummary computes the panel stats from the raw records.
func BuildSummary(trades []core.TradeRecord, months []core.MonthlyAggregate) Summary {
	s := Summary{TotalTrades: len(trades), Months: len(months)}
	if len(trades) == 0 {
		return s
	}

	wins := 0
	var sumReturn, sumDuration float64
	s.Best = trades[0]
	s.Worst = trades[0]
	for _, t := range trades {
		if t.IsWin() {
			wins++
		}
		sumReturn += t.ReturnPct
		sumDuration += float64(t.DurationDays)
		if t.ReturnPct > s.Best.ReturnPct {
			s.Best = t
		}
		if t.ReturnPct < s.Worst.ReturnPct {
			s.Worst = t
		}
	}
	s.WinRate = float64(wins) / float64(len(trades)) * 100
	s.AvgReturn = sumReturn / float64(len(trades))
	s.AvgDuration = sumDuration / float64(len(trades))
	return s
}
