package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
)

func TestFitInto(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"wide source letterboxes", 200, 100, 100, 100, 100, 50},
		{"tall source pillarboxes", 100, 200, 100, 100, 50, 100},
		{"exact fit", 160, 90, 1600, 900, 1600, 900},
		{"never collapses to zero", 1000, 1, 10, 10, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitInto(tt.srcW, tt.srcH, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("fitInto(%d,%d,%d,%d) = (%d,%d), want (%d,%d)",
					tt.srcW, tt.srcH, tt.maxW, tt.maxH, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCropRect(t *testing.T) {
	bounds := image.Rect(0, 0, 1000, 500)

	got := cropRect(bounds, model.Region{X: 10, Y: 20, Width: 50, Height: 40})
	want := image.Rect(100, 100, 600, 300)
	if got != want {
		t.Errorf("cropRect = %v, want %v", got, want)
	}

	// Out-of-range regions clamp to the image.
	got = cropRect(bounds, model.Region{X: 80, Y: 80, Width: 50, Height: 50})
	if !got.In(bounds) {
		t.Errorf("cropRect %v escapes bounds %v", got, bounds)
	}
}

// solidImage fills the left half red and the right half blue, so tests can
// tell which part of the source ended up where.
func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestComposeStageSizeAndLetterbox(t *testing.T) {
	src := solidImage(200, 100)
	out := Compose(src, model.Region{X: 0, Y: 0, Width: 100, Height: 100}, Options{Width: 100, Height: 100})

	if got := out.Bounds(); got.Dx() != 100 || got.Dy() != 100 {
		t.Fatalf("stage size = %v, want 100x100", got)
	}

	// 2:1 crop on a square stage: top and bottom bands stay black.
	r, g, b, _ := out.At(50, 5).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Error("letterbox band is not black")
	}
	// Center carries image content.
	r, _, b, _ = out.At(25, 50).RGBA()
	if r == 0 && b == 0 {
		t.Error("stage center is empty")
	}
}

func TestComposeMirror(t *testing.T) {
	src := solidImage(100, 100)
	region := model.Region{X: 0, Y: 0, Width: 100, Height: 100}

	plain := Compose(src, region, Options{Width: 100, Height: 100})
	mirrored := Compose(src, region, Options{Width: 100, Height: 100, Mirror: true})

	pr, _, _, _ := plain.At(10, 50).RGBA()
	mr, _, _, _ := mirrored.At(10, 50).RGBA()
	if pr == mr {
		t.Error("mirroring should swap the red and blue halves")
	}
}

func TestComposeDegenerateRegion(t *testing.T) {
	src := solidImage(100, 100)
	out := Compose(src, model.Region{X: 100, Y: 100, Width: 10, Height: 10}, Options{Width: 50, Height: 50})
	if got := out.Bounds(); got.Dx() != 50 || got.Dy() != 50 {
		t.Errorf("degenerate crop still yields a full stage, got %v", got)
	}
}
