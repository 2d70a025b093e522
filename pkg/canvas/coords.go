// Package canvas translates pointer gestures in device pixels into
// percentage-of-image region edits: drawing, dragging, resizing and view
// panning, with magnetic edge snapping.
package canvas

import "github.com/Burhanali2211/SegiTelep-sub000/pkg/model"

// Viewport describes where the page image currently sits on screen, in
// device pixels, after zoom and pan are applied.
type Viewport struct {
	ImageX      float64 `json:"imageX"`      // left edge of the displayed image
	ImageY      float64 `json:"imageY"`      // top edge of the displayed image
	ImageWidth  float64 `json:"imageWidth"`  // displayed width in device pixels
	ImageHeight float64 `json:"imageHeight"` // displayed height in device pixels
	ViewWidth   float64 `json:"viewWidth"`   // visible viewport width
	ViewHeight  float64 `json:"viewHeight"`  // visible viewport height
}

// ToPercent converts a device-pixel point into percent-of-image
// coordinates. Points outside the image map outside [0,100].
func (v Viewport) ToPercent(x, y float64) (px, py float64) {
	if v.ImageWidth <= 0 || v.ImageHeight <= 0 {
		return 0, 0
	}
	return (x - v.ImageX) / v.ImageWidth * 100, (y - v.ImageY) / v.ImageHeight * 100
}

// DeltaToPercent converts a device-pixel movement into a percent-of-image
// movement.
func (v Viewport) DeltaToPercent(dx, dy float64) (float64, float64) {
	if v.ImageWidth <= 0 || v.ImageHeight <= 0 {
		return 0, 0
	}
	return dx / v.ImageWidth * 100, dy / v.ImageHeight * 100
}

// rectFromPoints builds a normalized region from two corner points in
// percent coordinates.
func rectFromPoints(x1, y1, x2, y2 float64) model.Region {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return model.Region{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// clampRect pulls a region inside [0,100] without enforcing a minimum
// size; provisional rectangles may be arbitrarily small mid-gesture.
func clampRect(r model.Region) model.Region {
	if r.X < 0 {
		r.Width += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.Height += r.Y
		r.Y = 0
	}
	if r.X+r.Width > 100 {
		r.Width = 100 - r.X
	}
	if r.Y+r.Height > 100 {
		r.Height = 100 - r.Y
	}
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}

// constrainAspect adjusts the free corner of a provisional draw rectangle
// to the fixed ratio by changing whichever dimension yields the smaller
// derived delta.
func constrainAspect(anchorX, anchorY, x, y, ratio float64) (float64, float64) {
	dx := x - anchorX
	dy := y - anchorY
	// Candidate heights/widths derived from the other axis.
	derivedY := abs(dx) / ratio
	derivedX := abs(dy) * ratio
	if derivedY <= abs(dy) {
		y = anchorY + sign(dy)*derivedY
	} else {
		x = anchorX + sign(dx)*derivedX
	}
	return x, y
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
