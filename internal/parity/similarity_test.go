package parity

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSimilarity_Identical(t *testing.T) {
	a := solid(40, 30, color.RGBA{R: 10, G: 120, B: 240, A: 255})
	b := solid(40, 30, color.RGBA{R: 10, G: 120, B: 240, A: 255})

	if got := Similarity(a, b); got != 100 {
		t.Errorf("identical images scored %v, want 100", got)
	}
}

func TestSimilarity_MaximallyDifferent(t *testing.T) {
	a := solid(40, 30, color.RGBA{R: 0, G: 0, B: 0, A: 255})
	b := solid(40, 30, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	if got := Similarity(a, b); got != 0 {
		t.Errorf("black vs white scored %v, want 0", got)
	}
}

func TestSimilarity_SmallNoiseStaysHigh(t *testing.T) {
	a := solid(40, 30, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	b := solid(40, 30, color.RGBA{R: 103, G: 98, B: 101, A: 255})

	got := Similarity(a, b)
	if got < 99 {
		t.Errorf("near-identical images scored %v, want >= 99", got)
	}
	if got >= 100 {
		t.Errorf("non-identical images scored %v, want < 100", got)
	}
}

func TestSimilarity_CropsToCommonRegion(t *testing.T) {
	a := solid(40, 30, color.RGBA{R: 50, G: 50, B: 50, A: 255})
	b := solid(60, 20, color.RGBA{R: 50, G: 50, B: 50, A: 255})

	if got := Similarity(a, b); got != 100 {
		t.Errorf("matching common region scored %v, want 100", got)
	}
}

func TestSimilarity_EmptyImage(t *testing.T) {
	a := solid(0, 0, color.RGBA{})
	b := solid(40, 30, color.RGBA{R: 50, G: 50, B: 50, A: 255})

	if got := Similarity(a, b); got != 0 {
		t.Errorf("empty image scored %v, want 0", got)
	}
}
