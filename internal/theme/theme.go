package theme

import (
	"image/color"

	"github.com/quantfolio/tapestry/internal/core"
)

// Mode selects the light or dark color scheme, applied uniformly across
// all chart types.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// ParseMode maps a config string to a Mode, defaulting to light.
func ParseMode(s string) Mode {
	if s == string(ModeDark) {
		return ModeDark
	}
	return ModeLight
}

// ModeColors are the structural colors for one mode.
type ModeColors struct {
	Background     color.Color
	CardBackground color.Color
	Text           color.Color
	MutedText      color.Color
	Border         color.Color
	Grid           color.Color
}

// Typography carries the font sizes charts use. Sizes are in surface
// pixels before export scaling.
type Typography struct {
	Title      float64
	Label      float64
	Annotation float64
}

// Provider supplies colors and typography by (category, mode) lookup.
// Chart generators never hardcode colors outside of this interface.
type Provider interface {
	CategoryColor(q core.Quality) color.Color
	SignColor(positive bool) color.Color
	Accent() color.Color
	Colors(m Mode) ModeColors
	Fonts() Typography
}

// Default is the built-in palette used by the report pipeline.
type Default struct{}

var _ Provider = Default{}

func (Default) CategoryColor(q core.Quality) color.Color {
	switch q {
	case core.QualityExcellent:
		return color.RGBA{R: 0x26, G: 0xa6, B: 0x5b, A: 0xff}
	case core.QualityGood:
		return color.RGBA{R: 0x7b, G: 0xc9, B: 0x6f, A: 0xff}
	case core.QualityPoor:
		return color.RGBA{R: 0xf3, G: 0x9c, B: 0x12, A: 0xff}
	case core.QualityFailed:
		return color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	default: // Poor Setup
		return color.RGBA{R: 0x95, G: 0xa5, B: 0xa6, A: 0xff}
	}
}

func (Default) SignColor(positive bool) color.Color {
	if positive {
		return color.RGBA{R: 0x26, G: 0xa6, B: 0x5b, A: 0xff}
	}
	return color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
}

func (Default) Accent() color.Color {
	return color.RGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0xff}
}

func (Default) Colors(m Mode) ModeColors {
	if m == ModeDark {
		return ModeColors{
			Background:     color.RGBA{R: 0x12, G: 0x16, B: 0x1d, A: 0xff},
			CardBackground: color.RGBA{R: 0x1c, G: 0x22, B: 0x2b, A: 0xff},
			Text:           color.RGBA{R: 0xec, G: 0xf0, B: 0xf1, A: 0xff},
			MutedText:      color.RGBA{R: 0x95, G: 0xa5, B: 0xa6, A: 0xff},
			Border:         color.RGBA{R: 0x33, G: 0x3c, B: 0x48, A: 0xff},
			Grid:           color.RGBA{R: 0x2a, G: 0x32, B: 0x3d, A: 0xff},
		}
	}
	return ModeColors{
		Background:     color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		CardBackground: color.RGBA{R: 0xf7, G: 0xf9, B: 0xfa, A: 0xff},
		Text:           color.RGBA{R: 0x2c, G: 0x3e, B: 0x50, A: 0xff},
		MutedText:      color.RGBA{R: 0x7f, G: 0x8c, B: 0x8d, A: 0xff},
		Border:         color.RGBA{R: 0xd5, G: 0xdb, B: 0xdb, A: 0xff},
		Grid:           color.RGBA{R: 0xe8, G: 0xec, B: 0xee, A: 0xff},
	}
}

func (Default) Fonts() Typography {
	return Typography{Title: 16, Label: 11, Annotation: 9}
}

// WithAlpha scales a color's alpha channel by f in [0, 1].
func WithAlpha(c color.Color, f float64) color.RGBA {
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	r, g, b, a := c.RGBA()
	return color.RGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(float64(a>>8) * f),
	}
}
