package canvas

import (
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/history"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
)

// Kind identifies the active pointer gesture. Gestures are mutually
// exclusive; a new Begin while one is active is ignored.
type Kind int

const (
	KindNone Kind = iota
	KindPan
	KindDraw
	KindDrag
	KindResize
)

// Edge identifies a resize handle.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

// SnapState reports which image edges the last movement snapped to, for
// transient indicator UI. Cleared on gesture end.
type SnapState struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Top   bool `json:"top"`
}

// Config holds the snapping and size thresholds. The pan threshold is in
// viewport pixels and the edge threshold in percent of the image dimension;
// they operate in different coordinate spaces and stay separate.
type Config struct {
	SnapEdgePercent  float64 // segment edge snap, % of image (≈1.5)
	SnapPanPixels    float64 // pan release snap, viewport px
	MinDrawPercent   float64 // minimum committed draw size (3)
	MinResizePercent float64 // minimum dimension while resizing (5)
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		SnapEdgePercent:  1.5,
		SnapPanPixels:    24,
		MinDrawPercent:   model.MinRegionPercent,
		MinResizePercent: 5,
	}
}

// Controller runs the per-gesture state machine over the editor store.
// Provisional regions live here and in the store's overlay until pointer
// up; the committed segment is only written on gesture end.
type Controller struct {
	store   *editor.Store
	history *history.Manager
	cfg     Config

	kind      Kind
	viewport  Viewport
	snap      SnapState
	aspect    float64 // fixed draw ratio (w/h); 0 = free
	segmentID string
	edge      Edge

	anchorX, anchorY float64 // gesture origin, device px
	origRegion       model.Region
	draw             model.Region
	hasDraw          bool
	panOrigX         float64
	panOrigY         float64
}

// NewController creates a gesture controller over the store.
func NewController(store *editor.Store, hist *history.Manager, cfg Config) *Controller {
	if cfg.SnapEdgePercent <= 0 {
		cfg = DefaultConfig()
	}
	return &Controller{store: store, history: hist, cfg: cfg}
}

// Active reports the current gesture kind.
func (c *Controller) Active() Kind { return c.kind }

// Snap returns the current snap-indicator state.
func (c *Controller) Snap() SnapState { return c.snap }

// SetAspectRatio constrains subsequent draw gestures to w/h; 0 disables.
func (c *Controller) SetAspectRatio(ratio float64) { c.aspect = ratio }

// DrawRect returns the provisional draw rectangle while a draw gesture is
// active.
func (c *Controller) DrawRect() (model.Region, bool) {
	return c.draw, c.kind == KindDraw && c.hasDraw
}

// BeginPan starts an image pan gesture (alt+drag while zoomed in).
func (c *Controller) BeginPan(vp Viewport, x, y float64) {
	if c.kind != KindNone {
		return
	}
	c.kind = KindPan
	c.viewport = vp
	c.anchorX, c.anchorY = x, y
	view := c.store.View()
	c.panOrigX, c.panOrigY = view.PanX, view.PanY
	c.store.SetActiveDrag(true)
}

// MovePan updates the view pan from the pointer position.
func (c *Controller) MovePan(x, y float64) {
	if c.kind != KindPan {
		return
	}
	c.store.SetPan(c.panOrigX+(x-c.anchorX), c.panOrigY+(y-c.anchorY))
}

// EndPan releases the pan gesture, magnetically snapping the image's left,
// right and top edges to the viewport when within the pixel threshold. The
// bottom edge deliberately never snaps so tall portrait pages keep free
// vertical scroll.
func (c *Controller) EndPan(vp Viewport) {
	if c.kind != KindPan {
		return
	}
	view := c.store.View()
	panX, panY := view.PanX, view.PanY
	c.snap = SnapState{}

	if abs(vp.ImageX) <= c.cfg.SnapPanPixels {
		panX -= vp.ImageX
		c.snap.Left = true
	} else if abs(vp.ImageX+vp.ImageWidth-vp.ViewWidth) <= c.cfg.SnapPanPixels {
		panX -= vp.ImageX + vp.ImageWidth - vp.ViewWidth
		c.snap.Right = true
	}
	if abs(vp.ImageY) <= c.cfg.SnapPanPixels {
		panY -= vp.ImageY
		c.snap.Top = true
	}

	c.store.SetPan(panX, panY)
	c.finish()
}

// BeginDraw starts a provisional rectangle at the pointer position.
func (c *Controller) BeginDraw(vp Viewport, x, y float64) {
	if c.kind != KindNone {
		return
	}
	c.kind = KindDraw
	c.viewport = vp
	c.anchorX, c.anchorY = x, y
	c.hasDraw = false
	c.store.SetActiveDrag(true)
}

// MoveDraw updates the provisional rectangle, applying the aspect
// constraint and clamping to the image.
func (c *Controller) MoveDraw(x, y float64) {
	if c.kind != KindDraw {
		return
	}
	ax, ay := c.viewport.ToPercent(c.anchorX, c.anchorY)
	px, py := c.viewport.ToPercent(x, y)
	if c.aspect > 0 {
		px, py = constrainAspect(ax, ay, px, py, c.aspect)
	}
	c.draw = clampRect(rectFromPoints(ax, ay, px, py))
	c.hasDraw = true
}

// EndDraw commits the rectangle as a new segment on the page if both of
// its dimensions exceed the minimum; otherwise it is discarded.
func (c *Controller) EndDraw(pageIndex int) *model.Segment {
	if c.kind != KindDraw {
		return nil
	}
	defer c.finish()
	if !c.hasDraw || c.draw.Width < c.cfg.MinDrawPercent || c.draw.Height < c.cfg.MinDrawPercent {
		return nil
	}
	if c.history != nil {
		c.history.SaveState()
	}
	return c.store.AddSegment(pageIndex, c.draw)
}

// BeginDrag starts moving an existing segment. The undo checkpoint happens
// once here, not per pointer-move.
func (c *Controller) BeginDrag(vp Viewport, segmentID string, x, y float64) {
	if c.kind != KindNone {
		return
	}
	region, ok := c.store.EffectiveRegion(segmentID)
	if !ok {
		return
	}
	c.kind = KindDrag
	c.viewport = vp
	c.segmentID = segmentID
	c.anchorX, c.anchorY = x, y
	c.origRegion = region
	if c.history != nil {
		c.history.SaveState()
	}
	c.store.SetActiveDrag(true)
}

// MoveDrag updates the provisional region from the pointer delta, snapping
// the left, right and top edges to the image boundary. The bottom edge
// never snaps.
func (c *Controller) MoveDrag(x, y float64) {
	if c.kind != KindDrag {
		return
	}
	dx, dy := c.viewport.DeltaToPercent(x-c.anchorX, y-c.anchorY)
	r := c.origRegion
	r.X += dx
	r.Y += dy

	c.snap = SnapState{}
	if abs(r.X) <= c.cfg.SnapEdgePercent {
		r.X = 0
		c.snap.Left = true
	} else if abs(r.X+r.Width-100) <= c.cfg.SnapEdgePercent {
		r.X = 100 - r.Width
		c.snap.Right = true
	}
	if abs(r.Y) <= c.cfg.SnapEdgePercent {
		r.Y = 0
		c.snap.Top = true
	}

	c.store.SetProvisionalRegion(c.segmentID, r.Clamp(model.MinRegionPercent))
}

// EndDrag commits the provisional region on pointer up.
func (c *Controller) EndDrag() {
	if c.kind != KindDrag {
		return
	}
	c.store.CommitProvisionalRegion(c.segmentID)
	c.finish()
}

// BeginResize starts resizing one edge of a segment.
func (c *Controller) BeginResize(vp Viewport, segmentID string, edge Edge, x, y float64) {
	if c.kind != KindNone {
		return
	}
	region, ok := c.store.EffectiveRegion(segmentID)
	if !ok {
		return
	}
	c.kind = KindResize
	c.viewport = vp
	c.segmentID = segmentID
	c.edge = edge
	c.anchorX, c.anchorY = x, y
	c.origRegion = region
	if c.history != nil {
		c.history.SaveState()
	}
	c.store.SetActiveDrag(true)
}

// MoveResize updates the provisional region for the grabbed edge. Top,
// left and right edges snap to their boundary; the bottom edge does not.
// Dimensions never shrink below the resize minimum.
func (c *Controller) MoveResize(x, y float64) {
	if c.kind != KindResize {
		return
	}
	dx, dy := c.viewport.DeltaToPercent(x-c.anchorX, y-c.anchorY)
	r := c.origRegion
	min := c.cfg.MinResizePercent
	c.snap = SnapState{}

	switch c.edge {
	case EdgeLeft:
		newX := r.X + dx
		if abs(newX) <= c.cfg.SnapEdgePercent {
			newX = 0
			c.snap.Left = true
		}
		newX = clamp(newX, 0, r.X+r.Width-min)
		r.Width += r.X - newX
		r.X = newX
	case EdgeRight:
		right := r.X + r.Width + dx
		if abs(right-100) <= c.cfg.SnapEdgePercent {
			right = 100
			c.snap.Right = true
		}
		right = clamp(right, r.X+min, 100)
		r.Width = right - r.X
	case EdgeTop:
		newY := r.Y + dy
		if abs(newY) <= c.cfg.SnapEdgePercent {
			newY = 0
			c.snap.Top = true
		}
		newY = clamp(newY, 0, r.Y+r.Height-min)
		r.Height += r.Y - newY
		r.Y = newY
	case EdgeBottom:
		bottom := clamp(r.Y+r.Height+dy, r.Y+min, 100)
		r.Height = bottom - r.Y
	}

	c.store.SetProvisionalRegion(c.segmentID, r)
}

// EndResize commits the provisional region on pointer up.
func (c *Controller) EndResize() {
	if c.kind != KindResize {
		return
	}
	c.store.CommitProvisionalRegion(c.segmentID)
	c.finish()
}

// Cancel aborts the active gesture without committing, mirroring a lost
// pointer capture.
func (c *Controller) Cancel() {
	if c.kind == KindDrag || c.kind == KindResize {
		c.store.ClearProvisionalRegion(c.segmentID)
	}
	c.finish()
}

// finish clears gesture and snap-indicator state; release always resets
// everything, matching pointer-capture release semantics.
func (c *Controller) finish() {
	c.kind = KindNone
	c.segmentID = ""
	c.hasDraw = false
	c.snap = SnapState{}
	c.store.SetActiveDrag(false)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
