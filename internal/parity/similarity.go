// Package parity renders the same dataset through both chart backends and
// measures how closely their raster output agrees. Divergence below the
// acceptable bound is flagged in the comparison report rather than raised
// as an error: the data is deterministic, so a re-run would reproduce the
// same pixels.
package parity

import (
	"image"
)

// AcceptableSimilarity is the score below which a chart pair is flagged in
// the comparison report.
const AcceptableSimilarity = 90.0

// Similarity scores how closely two rasters agree, from 0 (maximally
// different) to 100 (identical). The score is 100 - mse/255^2*100, clamped
// at zero, where mse is the mean squared per-channel pixel difference.
// Mismatched images are cropped to their common top-left region first.
func Similarity(a, b image.Image) float64 {
	w := min(a.Bounds().Dx(), b.Bounds().Dx())
	h := min(a.Bounds().Dy(), b.Bounds().Dy())
	if w == 0 || h == 0 {
		return 0
	}

	ax, ay := a.Bounds().Min.X, a.Bounds().Min.Y
	bx, by := b.Bounds().Min.X, b.Bounds().Min.Y

	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ar, ag, ab, _ := a.At(ax+x, ay+y).RGBA()
			br, bg, bb, _ := b.At(bx+x, by+y).RGBA()
			dr := float64(ar>>8) - float64(br>>8)
			dg := float64(ag>>8) - float64(bg>>8)
			db := float64(ab>>8) - float64(bb>>8)
			sum += dr*dr + dg*dg + db*db
		}
	}
	mse := sum / float64(w*h*3)

	score := 100 - mse/(255*255)*100
	if score < 0 {
		return 0
	}
	return score
}
