// Package export encodes rendered surfaces into distributable artifacts:
// scaled PNG rasters, vector SVG where the backend supports it, and JSON
// schema documents describing how a chart was produced.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"math"
	"time"

	"github.com/quantfolio/tapestry/internal/chart"
	"github.com/quantfolio/tapestry/internal/config"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/scale"
)

// Exporter encodes surfaces according to the export configuration.
type Exporter struct {
	scale   float64
	formats []string
}

func New(cfg config.ExportConfig) *Exporter {
	return &Exporter{scale: cfg.Scale, formats: cfg.Formats}
}

// SurfaceSize scales the base chart geometry to the configured export
// resolution. Callers allocate surfaces at this size so raster output
// carries the extra pixels natively instead of being upsampled.
func (e *Exporter) SurfaceSize(w, h int) (int, int) {
	return int(math.Round(float64(w) * e.scale)), int(math.Round(float64(h) * e.scale))
}

// Formats returns the configured output formats.
func (e *Exporter) Formats() []string { return e.formats }

// PNG rasterizes the surface and encodes it.
func (e *Exporter) PNG(s chart.Surface) ([]byte, error) {
	img, err := s.Image()
	if err != nil {
		return nil, core.WrapError(core.ErrExportFailed, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, core.WrapError(core.ErrExportFailed, err)
	}
	return buf.Bytes(), nil
}

// SVG emits vector output. Only the retained-figure backend can produce
// vectors; immediate-mode surfaces rasterize at draw time and have no
// geometry left to serialize.
func (e *Exporter) SVG(s chart.Surface) ([]byte, error) {
	vs, ok := s.(chart.SVGSurface)
	if !ok {
		return nil, core.WrapError(core.ErrExportFailed,
			fmt.Errorf("surface does not support vector output"))
	}
	b, err := vs.SVG()
	if err != nil {
		return nil, core.WrapError(core.ErrExportFailed, err)
	}
	return b, nil
}

// Schema is the machine-readable description of one rendered chart:
// which engine and theme produced it, at what geometry, and which
// scalability strategy drove the visual encoding.
type Schema struct {
	ChartType   string    `json:"chart_type"`
	Engine      string    `json:"engine"`
	Mode        string    `json:"mode"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Scale       float64   `json:"scale"`
	TradeCount  int       `json:"trade_count"`
	MonthCount  int       `json:"month_count"`
	Strategy    string    `json:"strategy,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// BuildSchema composes the schema document for one chart render.
func (e *Exporter) BuildSchema(chartType, engine, mode string, w, h int, rec scale.Recommendation, data *core.ReportData) Schema {
	s := Schema{
		ChartType:   chartType,
		Engine:      engine,
		Mode:        mode,
		Width:       w,
		Height:      h,
		Scale:       e.scale,
		GeneratedAt: time.Now().UTC(),
	}
	if data != nil {
		s.TradeCount = len(data.Trades)
		s.MonthCount = len(data.Monthly)
	}
	switch chartType {
	case "waterfall":
		s.Strategy = rec.TradePerformance
	case "monthly_bars":
		s.Strategy = rec.MonthlyTimeline
	case "scatter":
		s.Strategy = rec.ScatterPlot
	}
	return s
}

// EncodeSchema marshals the schema document with stable indentation.
func (e *Exporter) EncodeSchema(s Schema) ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, core.WrapError(core.ErrExportFailed, err)
	}
	return b, nil
}
