package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/history"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
)

// EditorHandler handles authoring-state endpoints. Mutations checkpoint
// the history manager before applying, so every API edit is undoable.
type EditorHandler struct {
	editor  *editor.Store
	history *history.Manager
}

// NewEditorHandler creates a new EditorHandler.
func NewEditorHandler(ed *editor.Store, hist *history.Manager) *EditorHandler {
	return &EditorHandler{editor: ed, history: hist}
}

// EditorState is the full authoring snapshot returned to UI clients.
type EditorState struct {
	ProjectName      string           `json:"projectName"`
	Pages            []model.Page     `json:"pages"`
	CurrentPageIndex int              `json:"currentPageIndex"`
	Selection        []string         `json:"selection"`
	ChainMode        bool             `json:"chainMode"`
	AudioFile        *model.AudioFile `json:"audioFile,omitempty"`
	View             editor.ViewState `json:"view"`
	CanUndo          bool             `json:"canUndo"`
	CanRedo          bool             `json:"canRedo"`
}

// HandleState handles GET /api/editor/state
func (h *EditorHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, EditorState{
		ProjectName:      h.editor.ProjectName(),
		Pages:            h.editor.Pages(),
		CurrentPageIndex: h.editor.CurrentPageIndex(),
		Selection:        h.editor.SelectedIDs(),
		ChainMode:        h.editor.ChainMode(),
		AudioFile:        h.editor.AudioFile(),
		View:             h.editor.View(),
		CanUndo:          h.history.CanUndo(),
		CanRedo:          h.history.CanRedo(),
	})
}

// AddSegmentRequest creates a segment from an explicit region, the
// non-gesture path (toolbar "add segment" or tests).
type AddSegmentRequest struct {
	PageIndex int          `json:"pageIndex"`
	Region    model.Region `json:"region"`
}

// HandleAddSegment handles POST /api/editor/segments
func (h *EditorHandler) HandleAddSegment(w http.ResponseWriter, r *http.Request) {
	var req AddSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.history.SaveState()
	seg := h.editor.AddSegment(req.PageIndex, req.Region)
	if seg == nil {
		http.Error(w, "region rejected", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, seg)
}

// UpdateSegmentRequest carries optional field updates; absent fields are
// left untouched.
type UpdateSegmentRequest struct {
	Region    *model.Region `json:"region,omitempty"`
	Label     *string       `json:"label,omitempty"`
	StartTime *float64      `json:"startTime,omitempty"`
	EndTime   *float64      `json:"endTime,omitempty"`
	IsHidden  *bool         `json:"isHidden,omitempty"`
	Color     *string       `json:"color,omitempty"`
	Notes     *string       `json:"notes,omitempty"`
}

// HandleUpdateSegment handles PATCH /api/editor/segments/{id}
func (h *EditorHandler) HandleUpdateSegment(w http.ResponseWriter, r *http.Request) {
	var req UpdateSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.history.SaveState()
	h.editor.UpdateSegment(r.PathValue("id"), editor.SegmentUpdate{
		Region:    req.Region,
		Label:     req.Label,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsHidden:  req.IsHidden,
		Color:     req.Color,
		Notes:     req.Notes,
	})
	writeJSON(w, map[string]string{"status": "ok"})
}

// DeleteSegmentsRequest lists segment IDs for batch delete.
type DeleteSegmentsRequest struct {
	IDs []string `json:"ids"`
}

// HandleDeleteSegments handles POST /api/editor/segments/delete
func (h *EditorHandler) HandleDeleteSegments(w http.ResponseWriter, r *http.Request) {
	var req DeleteSegmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.history.SaveState()
	h.editor.DeleteSegments(req.IDs)
	writeJSON(w, map[string]string{"status": "ok"})
}

// HandleDuplicate handles POST /api/editor/segments/{id}/duplicate
func (h *EditorHandler) HandleDuplicate(w http.ResponseWriter, r *http.Request) {
	h.history.SaveState()
	dup := h.editor.DuplicateSegment(r.PathValue("id"))
	if dup == nil {
		http.Error(w, "segment not found", http.StatusNotFound)
		return
	}
	writeJSON(w, dup)
}

// MoveSegmentRequest moves a segment within its page: "up", "down", or an
// explicit target index.
type MoveSegmentRequest struct {
	Direction string `json:"direction,omitempty"`
	Index     *int   `json:"index,omitempty"`
}

// HandleMove handles POST /api/editor/segments/{id}/move
func (h *EditorHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.history.SaveState()
	id := r.PathValue("id")
	switch {
	case req.Index != nil:
		h.editor.ReorderSegment(id, *req.Index)
	case req.Direction == "up":
		h.editor.MoveSegmentUp(id)
	case req.Direction == "down":
		h.editor.MoveSegmentDown(id)
	default:
		http.Error(w, "unknown move", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// HandleToggleVisibility handles POST /api/editor/segments/{id}/visibility
func (h *EditorHandler) HandleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	h.history.SaveState()
	h.editor.ToggleSegmentVisibility(r.PathValue("id"))
	writeJSON(w, map[string]string{"status": "ok"})
}

// HandleShowAll handles POST /api/editor/segments/show-all
func (h *EditorHandler) HandleShowAll(w http.ResponseWriter, r *http.Request) {
	h.history.SaveState()
	h.editor.ShowAllSegments()
	writeJSON(w, map[string]string{"status": "ok"})
}

// SelectRequest mutates the selection. Mode is "single", "toggle" or
// "range"; an empty ID clears the selection.
type SelectRequest struct {
	ID   string `json:"id"`
	Mode string `json:"mode"`
}

// HandleSelect handles POST /api/editor/selection
func (h *EditorHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		h.editor.ClearSelection()
		writeJSON(w, []string{})
		return
	}
	mode := editor.SelectSingle
	switch req.Mode {
	case "toggle":
		mode = editor.SelectToggle
	case "range":
		mode = editor.SelectRange
	}
	h.editor.SelectSegment(req.ID, mode)
	writeJSON(w, h.editor.SelectedIDs())
}

// CopyRequest optionally mirrors the copy to the OS clipboard.
type CopyRequest struct {
	System bool `json:"system,omitempty"`
}

// HandleCopy handles POST /api/editor/clipboard/copy
func (h *EditorHandler) HandleCopy(w http.ResponseWriter, r *http.Request) {
	var req CopyRequest
	json.NewDecoder(r.Body).Decode(&req)
	n := h.editor.CopySelected()
	if req.System {
		if err := h.editor.CopySelectedToSystemClipboard(); err != nil {
			// Editor clipboard still holds the copy; system mirror is
			// best effort.
			writeJSON(w, map[string]any{"copied": n, "system": false})
			return
		}
	}
	writeJSON(w, map[string]any{"copied": n, "system": req.System})
}

// HandlePaste handles POST /api/editor/clipboard/paste
func (h *EditorHandler) HandlePaste(w http.ResponseWriter, r *http.Request) {
	h.history.SaveState()
	ids := h.editor.Paste()
	writeJSON(w, map[string]any{"pasted": ids})
}

// TimesRequest is a batch time operation over the current selection.
type TimesRequest struct {
	Op       string  `json:"op"` // "shift", "space-evenly", "set-duration", "align-grid"
	Delta    float64 `json:"delta,omitempty"`
	Start    float64 `json:"start,omitempty"`
	End      float64 `json:"end,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Grid     float64 `json:"grid,omitempty"`
}

// HandleTimes handles POST /api/editor/times
func (h *EditorHandler) HandleTimes(w http.ResponseWriter, r *http.Request) {
	var req TimesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.history.SaveState()
	switch req.Op {
	case "shift":
		h.editor.ShiftSelectedTimes(req.Delta)
	case "space-evenly":
		h.editor.SpaceEvenlySelected(req.Start, req.End)
	case "set-duration":
		h.editor.SetDurationForSelected(req.Duration)
	case "align-grid":
		h.editor.AlignSelectedToGrid(req.Grid)
	default:
		http.Error(w, "unknown time op", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// AspectRequest applies a fixed aspect ratio to selected regions.
type AspectRequest struct {
	RatioW float64 `json:"ratioW"`
	RatioH float64 `json:"ratioH"`
}

// HandleAspect handles POST /api/editor/aspect
func (h *EditorHandler) HandleAspect(w http.ResponseWriter, r *http.Request) {
	var req AspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RatioW <= 0 || req.RatioH <= 0 {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.history.SaveState()
	h.editor.ApplyAspectRatioToSelected(req.RatioW, req.RatioH)
	writeJSON(w, map[string]string{"status": "ok"})
}

// HandleChainMode handles POST /api/editor/chain-mode
func (h *EditorHandler) HandleChainMode(w http.ResponseWriter, r *http.Request) {
	h.history.SaveState()
	enabled := h.editor.ToggleChainMode()
	writeJSON(w, map[string]bool{"chainMode": enabled})
}

// HandleRemovePage handles POST /api/editor/pages/{index}/remove
func (h *EditorHandler) HandleRemovePage(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid page index", http.StatusBadRequest)
		return
	}
	h.history.SaveState()
	h.editor.RemovePage(idx)
	writeJSON(w, map[string]string{"status": "ok"})
}

// HandleSetCurrentPage handles POST /api/editor/pages/{index}/select
func (h *EditorHandler) HandleSetCurrentPage(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid page index", http.StatusBadRequest)
		return
	}
	h.editor.SetCurrentPage(idx)
	writeJSON(w, map[string]int{"currentPageIndex": h.editor.CurrentPageIndex()})
}

// HandleUndo handles POST /api/editor/undo
func (h *EditorHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	ok := h.history.Undo()
	writeJSON(w, map[string]bool{"undone": ok, "canUndo": h.history.CanUndo(), "canRedo": h.history.CanRedo()})
}

// HandleRedo handles POST /api/editor/redo
func (h *EditorHandler) HandleRedo(w http.ResponseWriter, r *http.Request) {
	ok := h.history.Redo()
	writeJSON(w, map[string]bool{"redone": ok, "canUndo": h.history.CanUndo(), "canRedo": h.history.CanRedo()})
}
