package parity

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/chart/factory"
	"github.com/quantfolio/tapestry/internal/config"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/export"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/storage/artifact"
	"github.com/quantfolio/tapestry/internal/theme"
)

func testData(n int) *core.ReportData {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	trades := make([]core.TradeRecord, n)
	for i := range trades {
		ret := float64(i%21) - 10
		trades[i] = core.TradeRecord{
			Rank:         i + 1,
			Ticker:       fmt.Sprintf("SYM%d", i),
			Strategy:     "Breakout",
			EntryDate:    base.AddDate(0, 0, i),
			ExitDate:     base.AddDate(0, 0, i+5+i%20),
			ReturnPct:    ret,
			DurationDays: 5 + i%20,
			Quality:      core.Qualities[i%len(core.Qualities)],
		}
	}
	months := []core.MonthlyAggregate{
		{Month: "January", Year: 2024, TradesClosed: n / 3, WinRate: 58, AverageReturn: 1.4, MarketContext: "Risk-on"},
		{Month: "February", Year: 2024, TradesClosed: n / 3, WinRate: 41, AverageReturn: -0.8, MarketContext: "Choppy"},
		{Month: "March", Year: 2024, TradesClosed: n / 3, WinRate: 63, AverageReturn: 2.1, MarketContext: "Drift"},
	}
	quality := []core.QualityBucket{
		{Category: core.QualityExcellent, Count: n / 2, Percentage: 50, WinRate: 80, AverageReturn: 4.0},
		{Category: core.QualityGood, Count: n / 4, Percentage: 25, WinRate: 60, AverageReturn: 1.5},
		{Category: core.QualityPoor, Count: n / 4, Percentage: 25, WinRate: 20, AverageReturn: -2.5},
	}
	return &core.ReportData{Trades: trades, Monthly: months, Quality: quality}
}

func testRunner(t *testing.T, leftKey, rightKey string) (*Runner, artifact.Store) {
	t.Helper()
	cfg := config.Defaults()
	mgr := scale.NewManager(cfg.Scalability)
	log := zap.NewNop()

	left, err := factory.New(leftKey, theme.Default{}, mgr, log)
	if err != nil {
		t.Fatal(err)
	}
	right, err := factory.New(rightKey, theme.Default{}, mgr, log)
	if err != nil {
		t.Fatal(err)
	}
	store, err := artifact.NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exp := export.New(config.ExportConfig{Scale: 1})
	return NewRunner(left, right, mgr, store, exp, log, nil, 480, 270, theme.ModeLight), store
}

func TestCompare_SelfIsIdentical(t *testing.T) {
	r, _ := testRunner(t, "gg", "gg")

	report, err := r.Compare(context.Background(), testData(30))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if len(report.Entries) != len(chart.Types) {
		t.Fatalf("got %d entries, want %d", len(report.Entries), len(chart.Types))
	}
	for _, e := range report.Entries {
		if e.Err != nil {
			t.Errorf("%s: render failed: %v", e.ChartType, e.Err)
			continue
		}
		if e.Score < 99.99 {
			t.Errorf("%s: self-comparison scored %.2f, want 100", e.ChartType, e.Score)
		}
	}
	if report.Average < 99.99 {
		t.Errorf("average = %.2f, want 100", report.Average)
	}
}

func TestCompare_CrossEngineInRange(t *testing.T) {
	r, store := testRunner(t, "gg", "gonumplot")

	report, err := r.Compare(context.Background(), testData(30))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	for _, e := range report.Entries {
		if e.Err != nil {
			t.Errorf("%s: render failed: %v", e.ChartType, e.Err)
			continue
		}
		if e.Score < 0 || e.Score > 100 {
			t.Errorf("%s: score %.2f out of range", e.ChartType, e.Score)
		}
	}

	ctx := context.Background()
	for _, e := range report.Entries {
		if e.Err != nil {
			continue
		}
		for _, p := range []string{e.LeftPath, e.RightPath, e.SidePath} {
			ok, err := store.Exists(ctx, p)
			if err != nil || !ok {
				t.Errorf("artifact %s missing (err=%v)", p, err)
			}
		}
	}
	ok, _ := store.Exists(ctx, "parity/report.md")
	if !ok {
		t.Error("comparison report missing")
	}
}

func TestMonthlyBarsCrossEngineSimilarity(t *testing.T) {
	cfg := config.Defaults()
	mgr := scale.NewManager(cfg.Scalability)
	log := zap.NewNop()

	left, err := factory.New("gg", theme.Default{}, mgr, log)
	if err != nil {
		t.Fatal(err)
	}
	right, err := factory.New("gonumplot", theme.Default{}, mgr, log)
	if err != nil {
		t.Fatal(err)
	}

	data := testData(30)
	ls, err := left.EnhancedMonthlyBars(left.NewSurface(960, 540), data.Monthly, theme.ModeLight)
	if err != nil {
		t.Fatalf("gg render: %v", err)
	}
	rs, err := right.EnhancedMonthlyBars(right.NewSurface(960, 540), data.Monthly, theme.ModeLight)
	if err != nil {
		t.Fatalf("gonumplot render: %v", err)
	}

	li, err := ls.Image()
	if err != nil {
		t.Fatal(err)
	}
	ri, err := rs.Image()
	if err != nil {
		t.Fatal(err)
	}

	score := Similarity(li, ri)
	if score < AcceptableSimilarity {
		t.Errorf("monthly bars similarity = %.2f, want >= %.0f", score, AcceptableSimilarity)
	}
}

func TestCompare_ReportContents(t *testing.T) {
	r, store := testRunner(t, "gg", "gonumplot")

	_, err := r.Compare(context.Background(), testData(15))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	b, err := store.Read(context.Background(), "parity/report.md")
	if err != nil {
		t.Fatal(err)
	}
	md := string(b)

	if !strings.Contains(md, "# Backend Comparison Report") {
		t.Error("report missing title")
	}
	if !strings.Contains(md, "Overall average") {
		t.Error("report missing overall average")
	}
	for _, ct := range chart.Types {
		if !strings.Contains(md, "| "+ct+" |") {
			t.Errorf("report missing row for %s", ct)
		}
	}
}

func TestCompare_SchemaArtifacts(t *testing.T) {
	r, store := testRunner(t, "gg", "gonumplot")

	_, err := r.Compare(context.Background(), testData(120))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	ctx := context.Background()
	for _, ct := range chart.Types {
		ok, _ := store.Exists(ctx, fmt.Sprintf("parity/%s_schema.json", ct))
		if !ok {
			t.Errorf("schema artifact for %s missing", ct)
		}
	}
}

func TestReportMarkdown_FlagsDivergence(t *testing.T) {
	rep := &Report{
		Left:  "gg",
		Right: "gonumplot",
		Entries: []Entry{
			{ChartType: "gauge", Score: 97.3},
			{ChartType: "scatter", Score: 71.2},
		},
		Average: 84.25,
	}

	md := rep.Markdown()
	if !strings.Contains(md, "DIVERGED") {
		t.Error("sub-threshold entry not flagged")
	}
	if !strings.Contains(md, "| gauge | 97.30 | OK |") {
		t.Error("healthy entry not reported as OK")
	}
}
