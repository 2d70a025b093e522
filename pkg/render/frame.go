// Package render composes presentation frames. A frame is the active
// segment's region cropped out of its page image, aspect-fit onto a black
// stage, optionally mirrored for teleprompter glass.
package render

import (
	"image"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
)

// Options controls frame composition.
type Options struct {
	Width  int  // output stage width, px
	Height int  // output stage height, px
	Mirror bool // horizontal flip for prompter glass
}

// Compose crops region out of src and letterboxes it onto a black stage
// of the requested size. Region coordinates are percent of the source
// image, so the same segment renders identically at any page resolution.
func Compose(src image.Image, region model.Region, opts Options) image.Image {
	crop := cropRect(src.Bounds(), region)
	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	if crop.Dx() <= 0 || crop.Dy() <= 0 || opts.Width <= 0 || opts.Height <= 0 {
		return dc.Image()
	}

	dstW, dstH := fitInto(crop.Dx(), crop.Dy(), opts.Width, opts.Height)
	dstX := (opts.Width - dstW) / 2
	dstY := (opts.Height - dstH) / 2
	dst := image.Rect(dstX, dstY, dstX+dstW, dstY+dstH)

	xdraw.CatmullRom.Scale(dc.Image().(*image.RGBA), dst, src, crop, xdraw.Over, nil)

	if opts.Mirror {
		return mirrorHorizontal(dc.Image().(*image.RGBA))
	}
	return dc.Image()
}

// cropRect converts a percent region into source pixel space, clamped to
// the image bounds.
func cropRect(bounds image.Rectangle, r model.Region) image.Rectangle {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	crop := image.Rect(
		bounds.Min.X+int(r.X/100*w),
		bounds.Min.Y+int(r.Y/100*h),
		bounds.Min.X+int((r.X+r.Width)/100*w),
		bounds.Min.Y+int((r.Y+r.Height)/100*h),
	)
	return crop.Intersect(bounds)
}

// fitInto scales srcW x srcH to the largest size that fits in maxW x maxH
// while preserving aspect ratio.
func fitInto(srcW, srcH, maxW, maxH int) (int, int) {
	scaleW := float64(maxW) / float64(srcW)
	scaleH := float64(maxH) / float64(srcH)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	w := int(float64(srcW) * scale)
	h := int(float64(srcH) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func mirrorHorizontal(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(b.Max.X-1-(x-b.Min.X), y, img.At(x, y))
		}
	}
	return out
}
