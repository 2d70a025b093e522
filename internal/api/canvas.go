package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/canvas"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
)

// CanvasHandler exposes the pointer-gesture state machine over HTTP. The
// UI streams begin/move/end events for the active gesture; provisional
// geometry comes back in the response so the overlay can track the
// pointer without waiting for a store round trip.
type CanvasHandler struct {
	mu     sync.Mutex // gestures come from a single pointer; serialize them
	ctrl   *canvas.Controller
	editor *editor.Store
}

// NewCanvasHandler creates a new CanvasHandler.
func NewCanvasHandler(ctrl *canvas.Controller, ed *editor.Store) *CanvasHandler {
	return &CanvasHandler{ctrl: ctrl, editor: ed}
}

// GestureRequest is one pointer event. Kind and Phase select the
// transition; the remaining fields are read per transition (viewport on
// begin and pan end, segmentId on drag/resize begin, edge on resize
// begin, pageIndex on draw end).
type GestureRequest struct {
	Kind      string          `json:"kind"`  // pan, draw, drag, resize
	Phase     string          `json:"phase"` // begin, move, end, cancel
	Viewport  canvas.Viewport `json:"viewport"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	PageIndex int             `json:"pageIndex"`
	SegmentID string          `json:"segmentId,omitempty"`
	Edge      string          `json:"edge,omitempty"`
	Aspect    float64         `json:"aspect,omitempty"` // draw ratio w/h, 0 = free
}

// GestureResponse reports the controller state after the event.
type GestureResponse struct {
	Active   string           `json:"active"`
	Snap     canvas.SnapState `json:"snap"`
	DrawRect *model.Region    `json:"drawRect,omitempty"`
	Segment  *model.Segment   `json:"segment,omitempty"` // committed by a draw end
	View     editor.ViewState `json:"view"`
}

var gestureEdges = map[string]canvas.Edge{
	"top":    canvas.EdgeTop,
	"bottom": canvas.EdgeBottom,
	"left":   canvas.EdgeLeft,
	"right":  canvas.EdgeRight,
}

func gestureKindName(k canvas.Kind) string {
	switch k {
	case canvas.KindPan:
		return "pan"
	case canvas.KindDraw:
		return "draw"
	case canvas.KindDrag:
		return "drag"
	case canvas.KindResize:
		return "resize"
	default:
		return "none"
	}
}

// HandleGesture handles POST /api/canvas/gesture
func (h *CanvasHandler) HandleGesture(w http.ResponseWriter, r *http.Request) {
	var req GestureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var committed *model.Segment
	switch req.Phase {
	case "cancel":
		h.ctrl.Cancel()
	case "begin":
		switch req.Kind {
		case "pan":
			h.ctrl.BeginPan(req.Viewport, req.X, req.Y)
		case "draw":
			h.ctrl.SetAspectRatio(req.Aspect)
			h.ctrl.BeginDraw(req.Viewport, req.X, req.Y)
		case "drag":
			h.ctrl.BeginDrag(req.Viewport, req.SegmentID, req.X, req.Y)
		case "resize":
			edge, ok := gestureEdges[req.Edge]
			if !ok {
				http.Error(w, "unknown resize edge", http.StatusBadRequest)
				return
			}
			h.ctrl.BeginResize(req.Viewport, req.SegmentID, edge, req.X, req.Y)
		default:
			http.Error(w, "unknown gesture kind", http.StatusBadRequest)
			return
		}
	case "move":
		switch req.Kind {
		case "pan":
			h.ctrl.MovePan(req.X, req.Y)
		case "draw":
			h.ctrl.MoveDraw(req.X, req.Y)
		case "drag":
			h.ctrl.MoveDrag(req.X, req.Y)
		case "resize":
			h.ctrl.MoveResize(req.X, req.Y)
		default:
			http.Error(w, "unknown gesture kind", http.StatusBadRequest)
			return
		}
	case "end":
		switch req.Kind {
		case "pan":
			h.ctrl.EndPan(req.Viewport)
		case "draw":
			committed = h.ctrl.EndDraw(req.PageIndex)
		case "drag":
			h.ctrl.EndDrag()
		case "resize":
			h.ctrl.EndResize()
		default:
			http.Error(w, "unknown gesture kind", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "unknown gesture phase", http.StatusBadRequest)
		return
	}

	resp := GestureResponse{
		Active:  gestureKindName(h.ctrl.Active()),
		Snap:    h.ctrl.Snap(),
		Segment: committed,
		View:    h.editor.View(),
	}
	if rect, ok := h.ctrl.DrawRect(); ok {
		rc := rect
		resp.DrawRect = &rc
	}
	writeJSON(w, resp)
}
