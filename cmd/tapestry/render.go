package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/batch"
	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/chart/factory"
	"github.com/quantfolio/tapestry/internal/export"
	"github.com/quantfolio/tapestry/internal/logger"
	"github.com/quantfolio/tapestry/internal/metrics"
	"github.com/quantfolio/tapestry/internal/parity"
	"github.com/quantfolio/tapestry/internal/report"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/storage/artifact"
	"github.com/quantfolio/tapestry/internal/theme"
)

var (
	renderEngine string
	renderMode   string
)

var renderCmd = &cobra.Command{
	Use:   "render [report.md]",
	Short: "Render a performance report into dashboard charts",
	Long:  "Parse a markdown performance report, classify the dataset, and render the full chart set with the configured engine.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderEngine, "engine", "", "rendering engine (gg or gonumplot; defaults to config)")
	renderCmd.Flags().StringVar(&renderMode, "mode", "", "theme mode (light or dark; defaults to config)")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine := cfg.Chart.Engine
	if renderEngine != "" {
		engine = renderEngine
	}
	modeStr := cfg.Chart.Mode
	if renderMode != "" {
		modeStr = renderMode
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
	gen, err := factory.New(engine, theme.Default{}, mgr, log)
	if err != nil {
		return err
	}
	store, err := artifact.New(cfg.Artifacts)
	if err != nil {
		return fmt.Errorf("creating artifact store: %w", err)
	}
	exp := export.New(cfg.Export)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	rec := mgr.ChartRecommendation(data.Trades, data.Monthly)
	log.Info("dataset classified",
		zap.Int("trades", len(data.Trades)),
		zap.Int("months", len(data.Monthly)),
		zap.String("trade_performance", rec.TradePerformance),
		zap.String("monthly_timeline", rec.MonthlyTimeline),
		zap.String("scatter_plot", rec.ScatterPlot))

	w, h := exp.SurfaceSize(cfg.Chart.Width, cfg.Chart.Height)

	jobs := make([]batch.Job, 0, len(chart.Types))
	for _, chartType := range chart.Types {
		jobs = append(jobs, batch.Job{
			Name: chartType,
			Run: func(ctx context.Context) error {
				start := time.Now()
				s, err := parity.Render(gen, chartType, data, gen.NewSurface(w, h), mode)
				if err != nil {
					if reg != nil {
						reg.RecordRenderFailure(chartType, gen.Name())
					}
					return err
				}
				if reg != nil {
					reg.RecordRender(chartType, gen.Name(), string(mode), time.Since(start).Seconds())
				}
				for _, format := range exp.Formats() {
					var b []byte
					var encErr error
					switch format {
					case "png":
						b, encErr = exp.PNG(s)
					case "svg":
						b, encErr = exp.SVG(s)
					default:
						encErr = fmt.Errorf("unknown export format: %s", format)
					}
					if encErr == nil {
						path := fmt.Sprintf("charts/%s/%s.%s", mode, chartType, format)
						encErr = store.Write(ctx, path, b)
					}
					if reg != nil {
						status := "success"
						if encErr != nil {
							status = "failure"
						}
						reg.RecordExport(format, status)
					}
					if encErr != nil {
						return encErr
					}
				}
				return nil
			},
		})
	}

	pool := batch.NewPool(cfg.Batch, log, reg)
	results := pool.Run(cmd.Context(), jobs)

	failed := batch.Failed(results)
	for _, r := range failed {
		log.Error("chart render failed",
			zap.String("chart", r.Name),
			zap.String("engine", gen.Name()),
			zap.String("mode", string(mode)),
			zap.Error(r.Err))
	}

	if reg != nil {
		dump, err := reg.Export()
		if err == nil {
			err = store.Write(cmd.Context(), cfg.Metrics.Path, dump)
		}
		if err != nil {
			log.Warn("writing metrics artifact", zap.Error(err))
		}
	}

	fmt.Printf("Rendered %d/%d charts with %s (%s mode)\n",
		len(results)-len(failed), len(results), gen.Name(), mode)
	if len(failed) > 0 {
		return fmt.Errorf("%d chart(s) failed to render", len(failed))
	}
	return nil
}
