package factory

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/config"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/scale"
	"github.com/quantfolio/tapestry/internal/theme"
)

func testDeps() (theme.Provider, *scale.Manager, *zap.Logger) {
	cfg := config.Defaults()
	return theme.Default{}, scale.NewManager(cfg.Scalability), zap.NewNop()
}

func TestNew_GG(t *testing.T) {
	tp, mgr, log := testDeps()

	g, err := New("gg", tp, mgr, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Name() != "gg" {
		t.Errorf("expected gg engine, got %s", g.Name())
	}
}

func TestNew_GonumPlot(t *testing.T) {
	tp, mgr, log := testDeps()

	g, err := New("gonumplot", tp, mgr, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Name() != "gonumplot" {
		t.Errorf("expected gonumplot engine, got %s", g.Name())
	}
}

func TestNew_EmptyDefaultsToGG(t *testing.T) {
	tp, mgr, log := testDeps()

	g, err := New("", tp, mgr, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Name() != "gg" {
		t.Errorf("expected default gg engine, got %s", g.Name())
	}
}

func TestNew_Unknown(t *testing.T) {
	tp, mgr, log := testDeps()

	_, err := New("matplotlib", tp, mgr, log)
	if err == nil {
		t.Fatal("expected error for unknown engine")
	}
	if !errors.Is(err, core.ErrUnknownEngine) {
		t.Errorf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestEngines(t *testing.T) {
	keys := Engines()
	if len(keys) != 2 {
		t.Fatalf("expected 2 engines, got %d", len(keys))
	}
	tp, mgr, log := testDeps()
	for _, k := range keys {
		if _, err := New(k, tp, mgr, log); err != nil {
			t.Errorf("engine %s not constructible: %v", k, err)
		}
	}
}
