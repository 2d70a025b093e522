package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/history"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
)

func newEditorFixture(t *testing.T) (*EditorHandler, *editor.Store, *history.Manager) {
	t.Helper()
	ed := editor.NewStore(nil, editor.Options{ChainMode: true, DefaultSegmentDuration: 5})
	ed.AddPageRef("", false)
	ed.AddPageRef("", false)
	hist := history.NewManager(ed, 100)
	return NewEditorHandler(ed, hist), ed, hist
}

func addSegment(t *testing.T, ed *editor.Store, page int) *model.Segment {
	t.Helper()
	seg := ed.AddSegment(page, model.Region{X: 10, Y: 10, Width: 30, Height: 20})
	if seg == nil {
		t.Fatal("AddSegment returned nil")
	}
	return seg
}

func TestHandleState(t *testing.T) {
	h, ed, _ := newEditorFixture(t)
	addSegment(t, ed, 0)

	req := httptest.NewRequest("GET", "/api/editor/state", nil)
	rr := httptest.NewRecorder()
	h.HandleState(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var state EditorState
	if err := json.NewDecoder(rr.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.Pages) != 2 {
		t.Errorf("pages = %d, want 2", len(state.Pages))
	}
	if !state.ChainMode {
		t.Error("chain mode should be reported enabled")
	}
	if len(state.Selection) != 1 {
		t.Errorf("selection = %v, want the freshly added segment", state.Selection)
	}
	if state.CanUndo || state.CanRedo {
		t.Error("fresh fixture should have empty history")
	}
}

func TestHandleAddSegment(t *testing.T) {
	t.Run("valid region", func(t *testing.T) {
		h, ed, hist := newEditorFixture(t)

		body := `{"pageIndex":0,"region":{"x":10,"y":10,"width":30,"height":20}}`
		req := httptest.NewRequest("POST", "/api/editor/segments", strings.NewReader(body))
		rr := httptest.NewRecorder()
		h.HandleAddSegment(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
		}
		var seg model.Segment
		if err := json.NewDecoder(rr.Body).Decode(&seg); err != nil {
			t.Fatalf("decode segment: %v", err)
		}
		if len(ed.Pages()[0].Segments) != 1 {
			t.Error("segment not added to the store")
		}
		if !hist.CanUndo() {
			t.Error("add segment must be undoable")
		}
	})

	t.Run("page out of range", func(t *testing.T) {
		h, _, _ := newEditorFixture(t)
		body := `{"pageIndex":9,"region":{"x":10,"y":10,"width":30,"height":20}}`
		req := httptest.NewRequest("POST", "/api/editor/segments", strings.NewReader(body))
		rr := httptest.NewRecorder()
		h.HandleAddSegment(rr, req)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		h, _, _ := newEditorFixture(t)
		req := httptest.NewRequest("POST", "/api/editor/segments", strings.NewReader("{nope"))
		rr := httptest.NewRecorder()
		h.HandleAddSegment(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})
}

func TestHandleUpdateSegment(t *testing.T) {
	h, ed, _ := newEditorFixture(t)
	seg := addSegment(t, ed, 0)

	body := `{"label":"Verse 1","isHidden":true}`
	req := httptest.NewRequest("PATCH", "/api/editor/segments/"+seg.ID, strings.NewReader(body))
	req.SetPathValue("id", seg.ID)
	rr := httptest.NewRecorder()
	h.HandleUpdateSegment(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	got := ed.Pages()[0].Segments[0]
	if got.Label != "Verse 1" {
		t.Errorf("label = %q, want %q", got.Label, "Verse 1")
	}
	if !got.IsHidden {
		t.Error("isHidden update not applied")
	}
}

func TestHandleDeleteSegments(t *testing.T) {
	h, ed, _ := newEditorFixture(t)
	a := addSegment(t, ed, 0)
	b := addSegment(t, ed, 0)

	t.Run("empty id list rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/editor/segments/delete", strings.NewReader(`{"ids":[]}`))
		rr := httptest.NewRecorder()
		h.HandleDeleteSegments(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})

	t.Run("delete ripples the tape", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/editor/segments/delete",
			strings.NewReader(`{"ids":["`+a.ID+`"]}`))
		rr := httptest.NewRecorder()
		h.HandleDeleteSegments(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
		}
		segs := ed.Pages()[0].Segments
		if len(segs) != 1 || segs[0].ID != b.ID {
			t.Fatalf("segments = %v, want only %s", segs, b.ID)
		}
		if segs[0].StartTime != 0 {
			t.Errorf("survivor start = %v, want 0 after ripple", segs[0].StartTime)
		}
	})
}

func TestHandleMove(t *testing.T) {
	h, ed, _ := newEditorFixture(t)
	a := addSegment(t, ed, 0)
	b := addSegment(t, ed, 0)

	req := httptest.NewRequest("POST", "/api/editor/segments/"+b.ID+"/move",
		strings.NewReader(`{"direction":"up"}`))
	req.SetPathValue("id", b.ID)
	rr := httptest.NewRecorder()
	h.HandleMove(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	segs := ed.Pages()[0].Segments
	if segs[0].ID != b.ID || segs[1].ID != a.ID {
		t.Errorf("order = [%s %s], want [%s %s]", segs[0].ID, segs[1].ID, b.ID, a.ID)
	}

	req = httptest.NewRequest("POST", "/api/editor/segments/"+b.ID+"/move",
		strings.NewReader(`{}`))
	req.SetPathValue("id", b.ID)
	rr = httptest.NewRecorder()
	h.HandleMove(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d for a move without direction or index", rr.Code, http.StatusBadRequest)
	}
}

func TestHandleSelect(t *testing.T) {
	h, ed, _ := newEditorFixture(t)
	a := addSegment(t, ed, 0)
	b := addSegment(t, ed, 0)

	t.Run("toggle extends", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/editor/selection",
			strings.NewReader(`{"id":"`+a.ID+`","mode":"toggle"}`))
		rr := httptest.NewRecorder()
		h.HandleSelect(rr, req)
		var ids []string
		if err := json.NewDecoder(rr.Body).Decode(&ids); err != nil {
			t.Fatalf("decode selection: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("selection = %v, want both %s and %s", ids, a.ID, b.ID)
		}
	})

	t.Run("empty id clears", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/editor/selection",
			strings.NewReader(`{"id":""}`))
		rr := httptest.NewRecorder()
		h.HandleSelect(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
		}
		if ids := ed.SelectedIDs(); len(ids) != 0 {
			t.Errorf("selection = %v, want empty", ids)
		}
	})
}

func TestHandleTimes(t *testing.T) {
	h, ed, _ := newEditorFixture(t)
	seg := addSegment(t, ed, 0)
	ed.SelectSegment(seg.ID, editor.SelectSingle)

	req := httptest.NewRequest("POST", "/api/editor/times",
		strings.NewReader(`{"op":"set-duration","duration":8}`))
	rr := httptest.NewRecorder()
	h.HandleTimes(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	got := ed.Pages()[0].Segments[0]
	if got.EndTime-got.StartTime != 8 {
		t.Errorf("duration = %v, want 8", got.EndTime-got.StartTime)
	}

	req = httptest.NewRequest("POST", "/api/editor/times",
		strings.NewReader(`{"op":"reverse-entropy"}`))
	rr = httptest.NewRecorder()
	h.HandleTimes(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d for an unknown op", rr.Code, http.StatusBadRequest)
	}
}

func TestHandleAspectRejectsNonPositiveRatio(t *testing.T) {
	h, _, _ := newEditorFixture(t)
	req := httptest.NewRequest("POST", "/api/editor/aspect",
		strings.NewReader(`{"ratioW":0,"ratioH":9}`))
	rr := httptest.NewRecorder()
	h.HandleAspect(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHandleUndoRedo(t *testing.T) {
	h, ed, _ := newEditorFixture(t)

	body := `{"pageIndex":0,"region":{"x":10,"y":10,"width":30,"height":20}}`
	req := httptest.NewRequest("POST", "/api/editor/segments", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.HandleAddSegment(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("add status = %d, want %d", rr.Code, http.StatusOK)
	}

	rr = httptest.NewRecorder()
	h.HandleUndo(rr, httptest.NewRequest("POST", "/api/editor/undo", nil))
	var resp map[string]bool
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode undo response: %v", err)
	}
	if !resp["undone"] || !resp["canRedo"] {
		t.Errorf("undo response = %v, want undone with redo available", resp)
	}
	if len(ed.Pages()[0].Segments) != 0 {
		t.Error("undo did not remove the added segment")
	}

	rr = httptest.NewRecorder()
	h.HandleRedo(rr, httptest.NewRequest("POST", "/api/editor/redo", nil))
	if len(ed.Pages()[0].Segments) != 1 {
		t.Error("redo did not restore the segment")
	}
}

func TestHandleChainMode(t *testing.T) {
	h, ed, _ := newEditorFixture(t)

	rr := httptest.NewRecorder()
	h.HandleChainMode(rr, httptest.NewRequest("POST", "/api/editor/chain-mode", nil))
	var resp map[string]bool
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["chainMode"] || ed.ChainMode() {
		t.Error("toggle from enabled should disable chain mode")
	}
}

func TestHandleSetCurrentPage(t *testing.T) {
	h, ed, _ := newEditorFixture(t)

	req := httptest.NewRequest("POST", "/api/editor/pages/1/select", nil)
	req.SetPathValue("index", "1")
	rr := httptest.NewRecorder()
	h.HandleSetCurrentPage(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ed.CurrentPageIndex() != 1 {
		t.Errorf("current page = %d, want 1", ed.CurrentPageIndex())
	}

	req = httptest.NewRequest("POST", "/api/editor/pages/x/select", nil)
	req.SetPathValue("index", "x")
	rr = httptest.NewRecorder()
	h.HandleSetCurrentPage(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d for a non-numeric index", rr.Code, http.StatusBadRequest)
	}
}
