package scale

import (
	"math"
	"testing"

	"github.com/quantfolio/tapestry/internal/config"
	"github.com/quantfolio/tapestry/internal/core"
)

func clusterManager(eps float64, minSamples int) *Manager {
	cfg := config.Defaults().Scalability
	cfg.Cluster = config.ClusterConfig{Eps: eps, MinSamples: minSamples}
	return NewManager(cfg)
}

func TestClusterScatterPoints_Conservation(t *testing.T) {
	m := testManager()

	for _, n := range []int{0, 1, 4, 5, 50, 220} {
		trades := makeTrades(n)
		res := m.ClusterScatterPoints(trades)
		if got := res.ClusteredPoints() + res.NoisePoints(); got != n {
			t.Errorf("n=%d: clustered(%d) + noise(%d) = %d, want %d",
				n, res.ClusteredPoints(), res.NoisePoints(), got, n)
		}
	}
}

func TestClusterScatterPoints_BelowMinSamples(t *testing.T) {
	m := clusterManager(0.5, 5)
	trades := makeTrades(4)

	res := m.ClusterScatterPoints(trades)

	if len(res.Clusters) != 0 {
		t.Errorf("got %d clusters for 4 trades with min_samples=5, want 0", len(res.Clusters))
	}
	if len(res.Noise) != 4 {
		t.Errorf("got %d noise points, want 4", len(res.Noise))
	}
}

func TestClusterScatterPoints_DenseGroup(t *testing.T) {
	// Two tight groups far apart plus one outlier.
	var trades []core.TradeRecord
	for i := 0; i < 10; i++ {
		trades = append(trades, core.TradeRecord{
			Ticker: "A", DurationDays: 5 + i%2, ReturnPct: 3 + 0.1*float64(i%3),
		})
	}
	for i := 0; i < 10; i++ {
		trades = append(trades, core.TradeRecord{
			Ticker: "B", DurationDays: 50 + i%2, ReturnPct: -6 + 0.1*float64(i%3),
		})
	}
	trades = append(trades, core.TradeRecord{Ticker: "OUT", DurationDays: 25, ReturnPct: 40})

	m := clusterManager(0.5, 4)
	res := m.ClusterScatterPoints(trades)

	if len(res.Clusters) < 2 {
		t.Fatalf("got %d clusters, want at least 2", len(res.Clusters))
	}
	if res.ClusteredPoints()+res.NoisePoints() != len(trades) {
		t.Errorf("conservation violated: %d + %d != %d",
			res.ClusteredPoints(), res.NoisePoints(), len(trades))
	}
	for _, n := range res.Noise {
		if n.Ticker == "A" || n.Ticker == "B" {
			t.Errorf("dense-group member %s ended up as noise", n.Ticker)
		}
	}
}

func TestClusterScatterPoints_CentroidInOriginalUnits(t *testing.T) {
	// All members identical, so the centroid must equal them exactly.
	var trades []core.TradeRecord
	for i := 0; i < 8; i++ {
		trades = append(trades, core.TradeRecord{DurationDays: 12, ReturnPct: 4.5})
	}
	// Spread points so normalization has nonzero variance.
	trades = append(trades,
		core.TradeRecord{DurationDays: 100, ReturnPct: -30},
		core.TradeRecord{DurationDays: 90, ReturnPct: 28},
	)

	m := clusterManager(0.5, 4)
	res := m.ClusterScatterPoints(trades)

	if len(res.Clusters) == 0 {
		t.Fatal("expected at least one cluster")
	}
	found := false
	for _, c := range res.Clusters {
		if c.Size >= 8 {
			found = true
			if math.Abs(c.CentroidDuration-12) > 1e-9 {
				t.Errorf("centroid duration = %f, want 12 (original units)", c.CentroidDuration)
			}
			if math.Abs(c.CentroidReturn-4.5) > 1e-9 {
				t.Errorf("centroid return = %f, want 4.5 (original units)", c.CentroidReturn)
			}
		}
	}
	if !found {
		t.Error("dense identical group did not form a cluster")
	}
}

func TestClusterScatterPoints_ConstantData(t *testing.T) {
	// Zero variance on both axes must not divide by zero.
	var trades []core.TradeRecord
	for i := 0; i < 20; i++ {
		trades = append(trades, core.TradeRecord{DurationDays: 7, ReturnPct: 1.0})
	}

	m := testManager()
	res := m.ClusterScatterPoints(trades)

	if res.ClusteredPoints()+res.NoisePoints() != 20 {
		t.Errorf("conservation violated on constant data")
	}
	if len(res.Clusters) != 1 {
		t.Errorf("constant data should form one cluster, got %d", len(res.Clusters))
	}
}

func TestClusterScatterPoints_Idempotent(t *testing.T) {
	m := testManager()
	trades := makeTrades(220)

	first := m.ClusterScatterPoints(trades)
	second := m.ClusterScatterPoints(trades)

	if len(first.Clusters) != len(second.Clusters) || len(first.Noise) != len(second.Noise) {
		t.Errorf("clustering not stable: %d/%d clusters, %d/%d noise",
			len(first.Clusters), len(second.Clusters), len(first.Noise), len(second.Noise))
	}
}
