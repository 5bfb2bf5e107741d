package parity

import (
	"bytes"
	"image"
	"image/png"

	"github.com/fogleman/gg"

	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/theme"
)

const (
	sideGutter = 20
	sideHeader = 46
	sideFooter = 28
)

// SideBySide places the two rasters next to each other under a shared
// title, with the engine name captioned below each pane.
func SideBySide(left, right image.Image, title, leftLabel, rightLabel string, mode theme.Mode) (image.Image, error) {
	lb, rb := left.Bounds(), right.Bounds()
	w := lb.Dx() + rb.Dx() + 3*sideGutter
	h := max(lb.Dy(), rb.Dy()) + sideHeader + sideFooter

	colors := theme.Default{}.Colors(mode)

	dc := gg.NewContext(w, h)
	dc.SetColor(colors.Background)
	dc.Clear()

	dc.SetColor(colors.Text)
	dc.DrawStringAnchored(title, float64(w)/2, sideHeader/2, 0.5, 0.5)

	leftX := sideGutter
	rightX := 2*sideGutter + lb.Dx()
	dc.DrawImage(left, leftX, sideHeader)
	dc.DrawImage(right, rightX, sideHeader)

	dc.SetColor(colors.MutedText)
	captionY := float64(h) - sideFooter/2
	dc.DrawStringAnchored(leftLabel, float64(leftX+lb.Dx()/2), captionY, 0.5, 0.5)
	dc.DrawStringAnchored(rightLabel, float64(rightX+rb.Dx()/2), captionY, 0.5, 0.5)

	return dc.Image(), nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, core.WrapError(core.ErrExportFailed, err)
	}
	return buf.Bytes(), nil
}
