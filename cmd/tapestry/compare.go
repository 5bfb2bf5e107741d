package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/chart/factory"
	"github.com/quantfolio/tapestry/internal/chart/ggchart"
	"github.com/quantfolio/tapestry/internal/chart/plotchart"
	"github.com/quantfolio/tapestry/internal/export"
	"github.com/quantfolio/tapestry/internal/logger"
	"github.com/quantfolio/tapestry/internal/metrics"
	"github.com/quantfolio/tapestry/internal/parity"
	"github.com/quantfolio/tapestry/internal/report"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/storage/artifact"
	"github.com/quantfolio/tapestry/internal/theme"
)

var compareMode string

var compareCmd = &cobra.Command{
	Use:   "compare [report.md]",
	Short: "Render through both engines and score their agreement",
	Long:  "Render every chart type through both backends, write standalone and side-by-side images, and aggregate per-chart similarity into a comparison report.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareMode, "mode", "", "theme mode (light or dark; defaults to config)")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	modeStr := cfg.Chart.Mode
	if compareMode != "" {
		modeStr = compareMode
	}
	mode := theme.ParseMode(modeStr)

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()

	data, err := report.NewParser(log).Parse(f)
	if err != nil {
		return fmt.Errorf("parsing report: %w", err)
	}

	mgr := scale.NewManager(cfg.Scalability)
	left, err := factory.New(ggchart.EngineKey, theme.Default{}, mgr, log)
	if err != nil {
		return err
	}
	right, err := factory.New(plotchart.EngineKey, theme.Default{}, mgr, log)
	if err != nil {
		return err
	}
	store, err := artifact.New(cfg.Artifacts)
	if err != nil {
		return fmt.Errorf("creating artifact store: %w", err)
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	runner := parity.NewRunner(left, right, mgr, store, export.New(cfg.Export), log, reg,
		cfg.Chart.Width, cfg.Chart.Height, mode)

	result, err := runner.Compare(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("comparison run: %w", err)
	}

	for _, e := range result.Entries {
		switch {
		case e.Err != nil:
			fmt.Printf("  %-14s FAILED: %v\n", e.ChartType, e.Err)
		case e.Flagged():
			fmt.Printf("  %-14s %6.2f  DIVERGED\n", e.ChartType, e.Score)
		default:
			fmt.Printf("  %-14s %6.2f\n", e.ChartType, e.Score)
		}
	}
	fmt.Printf("Overall average: %.2f\n", result.Average)

	log.Info("comparison finished",
		zap.Float64("average", result.Average),
		zap.Int("charts", len(result.Entries)))
	return nil
}
