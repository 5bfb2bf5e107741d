package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/export"
	"github.com/quantfolio/tapestry/internal/logger"
	"github.com/quantfolio/tapestry/internal/report"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/storage/artifact"
	"github.com/quantfolio/tapestry/internal/theme"
)

var schemaEngine string

var schemaCmd = &cobra.Command{
	Use:   "schema [report.md]",
	Short: "Write per-chart-type schema documents",
	Long:  "Classify the dataset and write a JSON schema document per chart type describing the strategy each chart would render with.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().StringVar(&schemaEngine, "engine", "", "engine key recorded in the documents (defaults to config)")

	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine := cfg.Chart.Engine
	if schemaEngine != "" {
		engine = schemaEngine
	}
	mode := theme.ParseMode(cfg.Chart.Mode)

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
	store, err := artifact.New(cfg.Artifacts)
	if err != nil {
		return fmt.Errorf("creating artifact store: %w", err)
	}
	exp := export.New(cfg.Export)

	rec := mgr.ChartRecommendation(data.Trades, data.Monthly)
	w, h := exp.SurfaceSize(cfg.Chart.Width, cfg.Chart.Height)

	for _, chartType := range chart.Types {
		schema := exp.BuildSchema(chartType, engine, string(mode), w, h, rec, data)
		b, err := exp.EncodeSchema(schema)
		if err != nil {
			return err
		}
		path := fmt.Sprintf("schemas/%s.json", chartType)
		if err := store.Write(cmd.Context(), path, b); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("  %s\n", path)
	}
	return nil
}
