package plotchart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/config"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/theme"
)

func testGenerator() *Generator {
	cfg := config.Defaults()
	return New(theme.Default{}, scale.NewManager(cfg.Scalability), zap.NewNop())
}

func makeTrades(n int) []core.TradeRecord {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	trades := make([]core.TradeRecord, n)
	for i := range trades {
		trades[i] = core.TradeRecord{
			Rank:         i + 1,
			Ticker:       fmt.Sprintf("SYM%d", i),
			Strategy:     "Breakout",
			EntryDate:    base.AddDate(0, 0, i),
			ExitDate:     base.AddDate(0, 0, i+4+i%30),
			ReturnPct:    float64(i%25) - 12,
			DurationDays: 4 + i%30,
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
			TradesClosed:  5 + i,
			WinRate:       float64(30 + (i*13)%60),
			AverageReturn: float64(i%9) - 4,
			MarketContext: "Range",
		}
	}
	return months
}

func checkImage(t *testing.T, s chart.Surface) image.Image {
	t.Helper()
	img, err := s.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if img == nil {
		t.Fatal("nil image")
	}
	return img
}

func TestGenerator_Name(t *testing.T) {
	if got := testGenerator().Name(); got != "gonumplot" {
		t.Errorf("Name() = %q", got)
	}
}

func TestGenerator_RejectsForeignSurface(t *testing.T) {
	g := testGenerator()

	_, err := g.EnhancedGauge(foreignSurface{}, 50, "Win Rate", 100, theme.ModeLight)
	if err == nil {
		t.Fatal("expected error for foreign surface")
	}
	if !errors.Is(err, core.ErrRenderFailed) {
		t.Errorf("expected ErrRenderFailed, got %v", err)
	}
}

type foreignSurface struct{}

func (foreignSurface) Bounds() (int, int)          { return 0, 0 }
func (foreignSurface) Image() (image.Image, error) { return nil, nil }

func TestSurface_ImageMatchesRequestedSize(t *testing.T) {
	g := testGenerator()

	s, err := g.EnhancedGauge(g.NewSurface(480, 270), 62.5, "Win Rate", 100, theme.ModeLight)
	if err != nil {
		t.Fatalf("EnhancedGauge: %v", err)
	}
	img := checkImage(t, s)
	if img.Bounds().Dx() != 480 || img.Bounds().Dy() != 270 {
		t.Errorf("image bounds = %v", img.Bounds())
	}
}

func TestSurface_SVG(t *testing.T) {
	g := testGenerator()

	s, err := g.EnhancedMonthlyBars(g.NewSurface(480, 270), makeMonths(6), theme.ModeDark)
	if err != nil {
		t.Fatalf("EnhancedMonthlyBars: %v", err)
	}

	vs, ok := s.(chart.SVGSurface)
	if !ok {
		t.Fatal("surface does not implement SVGSurface")
	}
	b, err := vs.SVG()
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if !bytes.Contains(b, []byte("<svg")) {
		t.Error("output missing <svg element")
	}
}

func TestWaterfall_StrategySwitch(t *testing.T) {
	g := testGenerator()

	for _, n := range []int{0, 15, 80, 150} {
		s, err := g.Waterfall(g.NewSurface(640, 360), makeTrades(n), theme.ModeLight)
		if err != nil {
			t.Fatalf("%d trades: %v", n, err)
		}
		checkImage(t, s)
	}
}

func TestEnhancedScatter_StrategySwitch(t *testing.T) {
	g := testGenerator()

	for _, n := range []int{0, 30, 120, 220} {
		s, err := g.EnhancedScatter(g.NewSurface(640, 360), makeTrades(n), theme.ModeDark)
		if err != nil {
			t.Fatalf("%d trades: %v", n, err)
		}
		checkImage(t, s)
	}
}

func TestEnhancedDonut(t *testing.T) {
	g := testGenerator()

	quality := []core.QualityBucket{
		{Category: core.QualityExcellent, Count: 12, Percentage: 60, WinRate: 85, AverageReturn: 5.1},
		{Category: core.QualityPoor, Count: 8, Percentage: 40, WinRate: 25, AverageReturn: -2.2},
	}

	s, err := g.EnhancedDonut(g.NewSurface(480, 480), quality, theme.ModeLight)
	if err != nil {
		t.Fatalf("EnhancedDonut: %v", err)
	}
	checkImage(t, s)

	s, err = g.EnhancedDonut(g.NewSurface(480, 480), nil, theme.ModeLight)
	if err != nil {
		t.Fatalf("empty donut: %v", err)
	}
	checkImage(t, s)
}

func TestPerformanceSummaryPanel(t *testing.T) {
	g := testGenerator()

	s, err := g.PerformanceSummaryPanel(g.NewSurface(640, 360), makeTrades(25), makeMonths(6), theme.ModeLight)
	if err != nil {
		t.Fatalf("PerformanceSummaryPanel: %v", err)
	}
	checkImage(t, s)

	s, err = g.PerformanceSummaryPanel(g.NewSurface(640, 360), nil, nil, theme.ModeDark)
	if err != nil {
		t.Fatalf("empty panel: %v", err)
	}
	checkImage(t, s)
}
