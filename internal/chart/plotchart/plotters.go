package plotchart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/quantfolio/tapestry/internal/chart"
)

// textPlotter places a single string, either at data coordinates or at a
// normalized position within the canvas.
type textPlotter struct {
	x, y       float64
	normalized bool
	text       string
	color      color.Color
	size       vg.Length
	xAlign     draw.XAlignment
}

func (t *textPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	sty := plt.Title.TextStyle
	sty.Color = t.color
	if t.size > 0 {
		sty.Font.Size = t.size
	}
	sty.XAlign = draw.XCenter
	if t.xAlign != 0 {
		sty.XAlign = t.xAlign
	}
	sty.YAlign = draw.YCenter

	var pt vg.Point
	if t.normalized {
		pt = vg.Point{
			X: c.Min.X + vg.Length(t.x)*(c.Max.X-c.Min.X),
			Y: c.Min.Y + vg.Length(t.y)*(c.Max.Y-c.Min.Y),
		}
	} else {
		trX, trY := plt.Transforms(&c)
		pt = vg.Point{X: trX(t.x), Y: trY(t.y)}
	}
	c.FillText(sty, pt, t.text)
}

// cardPlotter fills the canvas with a bordered card background.
type cardPlotter struct {
	fill   color.Color
	border color.Color
}

func (p *cardPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Min.X, Y: c.Max.Y},
	}
	c.FillPolygon(p.fill, pts)
	c.StrokeLines(draw.LineStyle{Color: p.border, Width: 1},
		append(pts, pts[0]))
}

// waterfallPlotter draws the cumulative bars, the connector line with
// markers, the conditional breakeven line, and the bar annotations.
type waterfallPlotter struct {
	steps     []chart.WaterfallStep
	pos, neg  color.Color
	line      color.Color
	textColor color.Color
	zeroLine  color.Color
}

func (w *waterfallPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	if chart.CrossesZero(w.steps) {
		c.StrokeLines(draw.LineStyle{
			Color:  w.zeroLine,
			Width:  1,
			Dashes: []vg.Length{4, 4},
		}, []vg.Point{
			{X: c.Min.X, Y: trY(0)},
			{X: c.Max.X, Y: trY(0)},
		})
	}

	sty := plt.Title.TextStyle
	sty.Color = w.textColor
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YCenter

	for i, st := range w.steps {
		x0 := trX(float64(i) + 0.14)
		x1 := trX(float64(i) + 0.86)
		y0 := trY(st.Start)
		y1 := trY(st.End)
		if y0 > y1 {
			y0, y1 = y1, y0
		}

		col := w.pos
		if st.Trade.ReturnPct < 0 {
			col = w.neg
		}
		c.FillPolygon(col, []vg.Point{
			{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
		})

		if st.Annotate {
			label := chart.WaterfallLabel(st)
			pt := vg.Point{X: (x0 + x1) / 2}
			if st.Trade.ReturnPct >= 0 {
				pt.Y = y1 + 8
			} else {
				pt.Y = y0 - 10
			}
			c.FillText(sty, pt, label)
		}
	}

	// Connector through post-trade cumulative values.
	pts := make([]vg.Point, len(w.steps))
	for i, st := range w.steps {
		pts[i] = vg.Point{X: trX(float64(i) + 0.5), Y: trY(st.Cumulative)}
	}
	c.StrokeLines(draw.LineStyle{Color: w.line, Width: 1.5}, pts)
	glyph := draw.GlyphStyle{Color: w.line, Radius: 2.5, Shape: draw.CircleGlyph{}}
	for _, pt := range pts {
		glyph.Shape.DrawGlyph(&c, glyph, pt)
	}
}

// DataRange sizes the axes to the waterfall extent.
func (w *waterfallPlotter) DataRange() (xmin, xmax, ymin, ymax float64) {
	lo, hi := chart.WaterfallRange(w.steps)
	return 0, float64(len(w.steps)), lo, hi
}

// wedgePlotter draws the quality donut.
type wedgePlotter struct {
	wedges       []chart.Wedge
	colorFor     func(chart.Wedge) color.Color
	textColor    color.Color
	holeColor    color.Color
	captionColor color.Color
	caption      string
}

func (w *wedgePlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	center := vg.Point{
		X: (c.Min.X + c.Max.X) / 2,
		Y: (c.Min.Y + c.Max.Y) / 2,
	}
	outer := vg.Length(math.Min(float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y))) * 0.36
	inner := outer * 0.55

	// Fractions start at twelve o'clock and run clockwise.
	angle := func(frac float64) float64 { return math.Pi/2 - frac*2*math.Pi }

	labelSty := plt.Title.TextStyle
	labelSty.Color = w.textColor
	labelSty.XAlign = draw.XCenter
	labelSty.YAlign = draw.YCenter

	miniSty := labelSty
	miniSty.Color = w.holeColor

	for _, wd := range w.wedges {
		a0, a1 := angle(wd.StartFrac), angle(wd.EndFrac)

		var path vg.Path
		path.Move(vg.Point{
			X: center.X + vg.Length(math.Cos(a0))*outer,
			Y: center.Y + vg.Length(math.Sin(a0))*outer,
		})
		path.Arc(center, outer, a0, a1-a0)
		path.Line(vg.Point{
			X: center.X + vg.Length(math.Cos(a1))*inner,
			Y: center.Y + vg.Length(math.Sin(a1))*inner,
		})
		path.Arc(center, inner, a1, a0-a1)
		path.Close()
		c.SetColor(w.colorFor(wd))
		c.Fill(path)

		mid := angle(wd.LabelFrac)

		lx := center.X + vg.Length(math.Cos(mid))*(outer+18)
		ly := center.Y + vg.Length(math.Sin(mid))*(outer+18)
		c.FillText(labelSty, vg.Point{X: lx, Y: ly},
			string(wd.Bucket.Category)+" "+formatPct(wd.Bucket.Percentage))

		if wd.EndFrac-wd.StartFrac > 0.04 {
			mx := center.X + vg.Length(math.Cos(mid))*(inner+outer)/2
			my := center.Y + vg.Length(math.Sin(mid))*(inner+outer)/2
			c.FillText(miniSty, vg.Point{X: mx, Y: my}, formatPct0(wd.Bucket.WinRate))
		}
	}

	capSty := labelSty
	capSty.Color = w.captionColor
	c.FillText(capSty, center, w.caption)
}

// gaugePlotter draws the semicircular gauge track and value sweep.
type gaugePlotter struct {
	fraction   float64
	value, max float64
	track      color.Color
	sweep      color.Color
	textColor  color.Color
	mutedColor color.Color
}

func (g *gaugePlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	center := vg.Point{
		X: (c.Min.X + c.Max.X) / 2,
		Y: c.Min.Y + (c.Max.Y-c.Min.Y)*0.2,
	}
	radius := vg.Length(math.Min(float64(c.Max.X-c.Min.X)/2, float64(c.Max.Y-c.Min.Y)*0.8))
	thickness := radius * 0.22
	r := radius - thickness/2

	arc := func(col color.Color, sweep float64) {
		var path vg.Path
		path.Move(vg.Point{X: center.X - r, Y: center.Y})
		path.Arc(center, r, math.Pi, sweep)
		c.SetLineWidth(thickness)
		c.SetColor(col)
		c.Stroke(path)
	}

	arc(g.track, -math.Pi)
	if g.fraction > 0 {
		arc(g.sweep, -g.fraction*math.Pi)
	}

	sty := plt.Title.TextStyle
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YCenter
	sty.Color = g.textColor
	c.FillText(sty, vg.Point{X: center.X, Y: center.Y + r*0.35 + 8}, formatFloat(g.value))
	sty.Color = g.mutedColor
	c.FillText(sty, vg.Point{X: center.X, Y: center.Y + r*0.35 - 8}, "of "+formatFloat0(g.max))
}

func formatPct(v float64) string    { return fmt.Sprintf("%.1f%%", v) }
func formatPct0(v float64) string   { return fmt.Sprintf("%.0f%%", v) }
func formatFloat(v float64) string  { return fmt.Sprintf("%.1f", v) }
func formatFloat0(v float64) string { return fmt.Sprintf("%.0f", v) }
