package scale

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/quantfolio/tapestry/internal/config"
	"github.com/quantfolio/tapestry/internal/core"
)

func testManager() *Manager {
	return NewManager(config.Defaults().Scalability)
}

func makeTrades(n int) []core.TradeRecord {
	trades := make([]core.TradeRecord, n)
	for i := range trades {
		trades[i] = core.TradeRecord{
			Rank:         i + 1,
			Ticker:       fmt.Sprintf("T%03d", i),
			ReturnPct:    float64(i%21) - 10, // -10..10
			DurationDays: i%60 + 1,
			Quality:      core.Qualities[i%len(core.Qualities)],
		}
	}
	return trades
}

func makeMonths(n int) []core.MonthlyAggregate {
	names := []string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
	months := make([]core.MonthlyAggregate, n)
	for i := range months {
		months[i] = core.MonthlyAggregate{
			Month:         names[i%12],
			Year:          2024 + i/12,
			TradesClosed:  10,
			WinRate:       55,
			AverageReturn: 1.2,
		}
	}
	return months
}

func TestTradeVolumeCategory(t *testing.T) {
	m := testManager()

	cases := []struct {
		n    int
		want VolumeCategory
	}{
		{0, VolumeSmall},
		{15, VolumeSmall},
		{50, VolumeSmall},
		{51, VolumeMedium},
		{100, VolumeMedium},
		{101, VolumeLarge},
		{220, VolumeLarge},
	}
	for _, c := range cases {
		if got := m.TradeVolumeCategory(makeTrades(c.n)); got != c.want {
			t.Errorf("TradeVolumeCategory(%d trades) = %s, want %s", c.n, got, c.want)
		}
	}
}

func TestTradeVolumeCategory_Monotonic(t *testing.T) {
	m := testManager()
	order := map[VolumeCategory]int{VolumeSmall: 0, VolumeMedium: 1, VolumeLarge: 2}

	prev := VolumeSmall
	for n := 0; n <= 200; n++ {
		got := m.TradeVolumeCategory(makeTrades(n))
		if order[got] < order[prev] {
			t.Fatalf("category shrank from %s to %s at n=%d", prev, got, n)
		}
		prev = got
	}
}

func TestMonthlyTimelineCategory(t *testing.T) {
	m := testManager()

	cases := []struct {
		n    int
		want TimelineCategory
	}{
		{1, TimelineCompact},
		{3, TimelineCompact},
		{4, TimelineMedium},
		{8, TimelineMedium},
		{9, TimelineCondensed},
		{14, TimelineCondensed},
	}
	for _, c := range cases {
		if got := m.MonthlyTimelineCategory(makeMonths(c.n)); got != c.want {
			t.Errorf("MonthlyTimelineCategory(%d months) = %s, want %s", c.n, got, c.want)
		}
	}
}

func TestScatterDensityCategory(t *testing.T) {
	m := testManager()

	if got := m.ScatterDensityCategory(makeTrades(40)); got != DensityLow {
		t.Errorf("40 trades = %s, want low", got)
	}
	if got := m.ScatterDensityCategory(makeTrades(120)); got != DensityMedium {
		t.Errorf("120 trades = %s, want medium", got)
	}
	if got := m.ScatterDensityCategory(makeTrades(220)); got != DensityHigh {
		t.Errorf("220 trades = %s, want high", got)
	}
}

func TestOptimizeMonthlyLabels(t *testing.T) {
	m := testManager()
	months := []core.MonthlyAggregate{
		{Month: "January", Year: 2024},
		{Month: "February", Year: 2024},
		{Month: "March", Year: 2025},
	}

	compact := m.OptimizeMonthlyLabels(months, TimelineCompact)
	if want := []string{"January 2024", "February 2024", "March 2025"}; !reflect.DeepEqual(compact, want) {
		t.Errorf("compact labels = %v, want %v", compact, want)
	}

	medium := m.OptimizeMonthlyLabels(months, TimelineMedium)
	if want := []string{"Jan '24", "Feb '24", "Mar '25"}; !reflect.DeepEqual(medium, want) {
		t.Errorf("medium labels = %v, want %v", medium, want)
	}

	condensed := m.OptimizeMonthlyLabels(months, TimelineCondensed)
	if want := []string{"J24", "F24", "M25"}; !reflect.DeepEqual(condensed, want) {
		t.Errorf("condensed labels = %v, want %v", condensed, want)
	}
}

func TestOptimizeMonthlyLabels_ByCount(t *testing.T) {
	m := testManager()

	three := makeMonths(3)
	labels := m.OptimizeMonthlyLabels(three, m.MonthlyTimelineCategory(three))
	if labels[0] != "January 2024" {
		t.Errorf("3 months should use full labels, got %q", labels[0])
	}

	ten := makeMonths(10)
	labels = m.OptimizeMonthlyLabels(ten, m.MonthlyTimelineCategory(ten))
	if labels[0] != "J24" {
		t.Errorf("10 months should use condensed labels, got %q", labels[0])
	}

	six := makeMonths(6)
	labels = m.OptimizeMonthlyLabels(six, m.MonthlyTimelineCategory(six))
	if labels[0] != "Jan '24" {
		t.Errorf("6 months should use abbreviated labels, got %q", labels[0])
	}
}

func TestAdaptiveLabelFrequency(t *testing.T) {
	m := testManager()

	for _, n := range []int{0, 1, 5, 20, 21, 40, 41, 100, 999} {
		k := m.AdaptiveLabelFrequency(n, 20)
		if k < 1 {
			t.Fatalf("frequency for n=%d is %d, want >= 1", n, k)
		}
		shown := 0
		for i := 0; i < n; i += k {
			shown++
		}
		if shown > 20 {
			t.Errorf("n=%d k=%d shows %d labels, want <= 20", n, k, shown)
		}
		if n <= 20 && k != 1 {
			t.Errorf("n=%d should show every label, got k=%d", n, k)
		}
	}
}

func TestChartRecommendation(t *testing.T) {
	m := testManager()

	rec := m.ChartRecommendation(makeTrades(15), makeMonths(3))
	want := Recommendation{
		TradePerformance: "waterfall",
		MonthlyTimeline:  "full_bars",
		ScatterPlot:      "standard_scatter",
	}
	if rec != want {
		t.Errorf("small dataset recommendation = %+v, want %+v", rec, want)
	}

	rec = m.ChartRecommendation(makeTrades(120), makeMonths(10))
	want = Recommendation{
		TradePerformance: "histogram",
		MonthlyTimeline:  "thin_bars",
		ScatterPlot:      "reduced_opacity",
	}
	if rec != want {
		t.Errorf("large dataset recommendation = %+v, want %+v", rec, want)
	}

	rec = m.ChartRecommendation(makeTrades(220), makeMonths(6))
	if rec.ScatterPlot != "clustered_scatter" {
		t.Errorf("220 trades scatter = %s, want clustered_scatter", rec.ScatterPlot)
	}
}

func TestClassification_Idempotent(t *testing.T) {
	m := testManager()
	trades := makeTrades(75)

	first := m.TradeVolumeCategory(trades)
	for i := 0; i < 5; i++ {
		if got := m.TradeVolumeCategory(trades); got != first {
			t.Fatalf("classification changed on re-run: %s then %s", first, got)
		}
	}
}
