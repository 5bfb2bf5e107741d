package scale

import (
	"math"

	"github.com/quantfolio/tapestry/internal/core"
)

// Band names in best-performing-first order. The banded horizontal bar
// chart renders in this order.
var BandOrder = []string{
	"Large Winners (>10%)",
	"Winners (2-10%)",
	"Small Winners (0-2%)",
	"Small Losers (0 to -2%)",
	"Losers (-2 to -10%)",
	"Large Losers (<-10%)",
}

// BandFor places a return in its performance band. Intervals are open
// below and closed above throughout, so the partition is exhaustive and
// non-overlapping: a trade at exactly +10.0 is a Winner, one at exactly
// -10.0 is a Large Loser.
func BandFor(returnPct float64) string {
	switch {
	case returnPct > 10:
		return BandOrder[0]
	case returnPct > 2:
		return BandOrder[1]
	case returnPct > 0:
		return BandOrder[2]
	case returnPct > -2:
		return BandOrder[3]
	case returnPct > -10:
		return BandOrder[4]
	default:
		return BandOrder[5]
	}
}

// PerformanceBands partitions trades into the fixed six-band return
// buckets. Every trade lands in exactly one band; empty bands are omitted.
// This is the medium/large-volume substitute for a per-trade waterfall.
func (m *Manager) PerformanceBands(trades []core.TradeRecord) map[string][]core.TradeRecord {
	bands := make(map[string][]core.TradeRecord)
	for _, t := range trades {
		name := BandFor(t.ReturnPct)
		bands[name] = append(bands[name], t)
	}
	return bands
}

// BandStats summarizes one non-empty band for rendering.
type BandStats struct {
	Name      string
	Count     int
	AvgReturn float64
}

// BandSummary flattens a band mapping into best-first ordered stats.
func BandSummary(bands map[string][]core.TradeRecord) []BandStats {
	out := make([]BandStats, 0, len(bands))
	for _, name := range BandOrder {
		members, ok := bands[name]
		if !ok || len(members) == 0 {
			continue
		}
		var sum float64
		for _, t := range members {
			sum += t.ReturnPct
		}
		out = append(out, BandStats{
			Name:      name,
			Count:     len(members),
			AvgReturn: sum / float64(len(members)),
		})
	}
	return out
}

// MaxBandCount returns the largest member count, used to scale bar widths.
func MaxBandCount(stats []BandStats) int {
	max := 0
	for _, s := range stats {
		if s.Count > max {
			max = s.Count
		}
	}
	return int(math.Max(float64(max), 1))
}
