package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/chart/ggchart"
	"github.com/quantfolio/tapestry/internal/chart/plotchart"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/theme"
)

// New creates a chart generator based on the configured engine key.
// An empty key selects the immediate-mode backend.
func New(engine string, tp theme.Provider, mgr *scale.Manager, logger *zap.Logger) (chart.Generator, error) {
	switch engine {
	case "", ggchart.EngineKey:
		return ggchart.New(tp, mgr, logger), nil
	case plotchart.EngineKey:
		return plotchart.New(tp, mgr, logger), nil
	default:
		return nil, core.WrapError(core.ErrUnknownEngine,
			fmt.Errorf("engine %q (want %s or %s)", engine, ggchart.EngineKey, plotchart.EngineKey))
	}
}

// Engines lists the registered engine keys.
func Engines() []string {
	return []string{ggchart.EngineKey, plotchart.EngineKey}
}
