package parity

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/export"
	"github.com/quantfolio/tapestry/internal/metrics"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/storage/artifact"
	"github.com/quantfolio/tapestry/internal/theme"
)

// Entry is the comparison outcome for one chart type.
type Entry struct {
	ChartType string
	Score     float64
	LeftPath  string
	RightPath string
	SidePath  string
	Err       error
}

// Flagged reports whether this pair diverged below the acceptable bound.
func (e Entry) Flagged() bool {
	return e.Err == nil && e.Score < AcceptableSimilarity
}

// Report aggregates per-chart comparisons for one dataset.
type Report struct {
	Left    string
	Right   string
	Entries []Entry
	Average float64
}

// Runner drives both backends over the same dataset and persists the
// comparison artifacts.
type Runner struct {
	left    chart.Generator
	right   chart.Generator
	mgr     *scale.Manager
	store   artifact.Store
	export  *export.Exporter
	logger  *zap.Logger
	metrics *metrics.Registry

	width, height int
	mode          theme.Mode
}

// NewRunner creates a comparison runner. The metrics registry may be nil.
func NewRunner(left, right chart.Generator, mgr *scale.Manager, store artifact.Store, exp *export.Exporter, logger *zap.Logger, reg *metrics.Registry, width, height int, mode theme.Mode) *Runner {
	return &Runner{
		left:    left,
		right:   right,
		mgr:     mgr,
		store:   store,
		export:  exp,
		logger:  logger,
		metrics: reg,
		width:   width,
		height:  height,
		mode:    mode,
	}
}

// Compare renders every chart type through both backends, scores each pair,
// writes the standalone and side-by-side images plus per-chart schema
// documents, and finally writes the aggregated markdown report. A render
// failure is recorded in that chart's entry and does not stop the run;
// artifact write failures do.
func (r *Runner) Compare(ctx context.Context, data *core.ReportData) (*Report, error) {
	report := &Report{Left: r.left.Name(), Right: r.right.Name()}
	rec := r.mgr.ChartRecommendation(data.Trades, data.Monthly)

	var scored int
	for _, chartType := range chart.Types {
		entry, err := r.compareOne(ctx, chartType, data, rec)
		if err != nil {
			return nil, err
		}
		report.Entries = append(report.Entries, entry)
		if entry.Err == nil {
			report.Average += entry.Score
			scored++
			if r.metrics != nil {
				r.metrics.SetParitySimilarity(chartType, entry.Score)
			}
		}
	}
	if scored > 0 {
		report.Average /= float64(scored)
	}

	if err := r.store.Write(ctx, "parity/report.md", []byte(report.Markdown())); err != nil {
		return nil, core.WrapError(core.ErrExportFailed, err)
	}
	return report, nil
}

func (r *Runner) compareOne(ctx context.Context, chartType string, data *core.ReportData, rec scale.Recommendation) (Entry, error) {
	entry := Entry{ChartType: chartType}

	leftImg, err := r.renderImage(r.left, chartType, data)
	if err != nil {
		entry.Err = fmt.Errorf("%s/%s: %w", r.left.Name(), chartType, err)
		r.logger.Warn("comparison render failed",
			zap.String("chart", chartType),
			zap.String("engine", r.left.Name()),
			zap.Error(err))
		return entry, nil
	}
	rightImg, err := r.renderImage(r.right, chartType, data)
	if err != nil {
		entry.Err = fmt.Errorf("%s/%s: %w", r.right.Name(), chartType, err)
		r.logger.Warn("comparison render failed",
			zap.String("chart", chartType),
			zap.String("engine", r.right.Name()),
			zap.Error(err))
		return entry, nil
	}

	entry.Score = Similarity(leftImg, rightImg)
	r.logger.Info("chart pair compared",
		zap.String("chart", chartType),
		zap.Float64("similarity", entry.Score))

	entry.LeftPath = fmt.Sprintf("parity/%s_%s.png", chartType, r.left.Name())
	entry.RightPath = fmt.Sprintf("parity/%s_%s.png", chartType, r.right.Name())
	entry.SidePath = fmt.Sprintf("parity/%s_side_by_side.png", chartType)

	if err := r.writePNG(ctx, entry.LeftPath, leftImg); err != nil {
		return entry, err
	}
	if err := r.writePNG(ctx, entry.RightPath, rightImg); err != nil {
		return entry, err
	}

	side, err := SideBySide(leftImg, rightImg, chartType, r.left.Name(), r.right.Name(), r.mode)
	if err != nil {
		return entry, core.WrapError(core.ErrRenderFailed, err)
	}
	if err := r.writePNG(ctx, entry.SidePath, side); err != nil {
		return entry, err
	}

	schema := r.export.BuildSchema(chartType,
		r.left.Name()+","+r.right.Name(), string(r.mode),
		r.width, r.height, rec, data)
	sb, err := r.export.EncodeSchema(schema)
	if err != nil {
		return entry, err
	}
	if err := r.store.Write(ctx, fmt.Sprintf("parity/%s_schema.json", chartType), sb); err != nil {
		return entry, core.WrapError(core.ErrExportFailed, err)
	}
	return entry, nil
}

func (r *Runner) renderImage(g chart.Generator, chartType string, data *core.ReportData) (image.Image, error) {
	s, err := Render(g, chartType, data, g.NewSurface(r.width, r.height), r.mode)
	if err != nil {
		return nil, err
	}
	return s.Image()
}

// Render dispatches one chart-type render on any backend.
func Render(g chart.Generator, chartType string, data *core.ReportData, s chart.Surface, mode theme.Mode) (chart.Surface, error) {
	switch chartType {
	case "gauge":
		sum := chart.BuildSummary(data.Trades, data.Monthly)
		return g.EnhancedGauge(s, sum.WinRate, "Win Rate", 100, mode)
	case "monthly_bars":
		return g.EnhancedMonthlyBars(s, data.Monthly, mode)
	case "donut":
		return g.EnhancedDonut(s, data.Quality, mode)
	case "waterfall":
		return g.Waterfall(s, data.Trades, mode)
	case "scatter":
		return g.EnhancedScatter(s, data.Trades, mode)
	case "summary_panel":
		return g.PerformanceSummaryPanel(s, data.Trades, data.Monthly, mode)
	default:
		return nil, core.WrapError(core.ErrRenderFailed,
			fmt.Errorf("unknown chart type: %s", chartType))
	}
}

func (r *Runner) writePNG(ctx context.Context, path string, img image.Image) error {
	b, err := encodePNG(img)
	if err != nil {
		return err
	}
	if err := r.store.Write(ctx, path, b); err != nil {
		return core.WrapError(core.ErrExportFailed, err)
	}
	return nil
}

// Markdown renders the aggregated comparison report.
func (r *Report) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# Backend Comparison Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Engines: %s vs %s\n\n", r.Left, r.Right))

	sb.WriteString("## Per-Chart Similarity\n\n")
	sb.WriteString("| Chart | Similarity | Status |\n")
	sb.WriteString("|-------|------------|--------|\n")
	for _, e := range r.Entries {
		switch {
		case e.Err != nil:
			sb.WriteString(fmt.Sprintf("| %s | - | FAILED: %v |\n", e.ChartType, e.Err))
		case e.Flagged():
			sb.WriteString(fmt.Sprintf("| %s | %.2f | DIVERGED (below %.0f) |\n", e.ChartType, e.Score, AcceptableSimilarity))
		default:
			sb.WriteString(fmt.Sprintf("| %s | %.2f | OK |\n", e.ChartType, e.Score))
		}
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("**Overall average: %.2f**\n", r.Average))
	return sb.String()
}
