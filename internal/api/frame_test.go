package api

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/config"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/player"
)

// memAssets serves page images from memory.
type memAssets struct {
	files map[string][]byte
}

func (m *memAssets) Read(id string) ([]byte, error) {
	data, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("asset %s not found", id)
	}
	return data, nil
}

func pagePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode page image: %v", err)
	}
	return buf.Bytes()
}

func newFrameFixture(t *testing.T, assetID string) (*FrameHandler, *editor.Store) {
	t.Helper()
	ed := editor.NewStore(nil, editor.Options{ChainMode: true, DefaultSegmentDuration: 5})
	ed.AddPageRef(assetID, false)
	if ed.AddSegment(0, model.Region{X: 10, Y: 10, Width: 30, Height: 20}) == nil {
		t.Fatal("AddSegment returned nil")
	}
	p := player.New(ed, nil, nil, nil, config.PlaybackConfig{SpeedMin: 0.5, SpeedMax: 2.0})
	t.Cleanup(p.Close)
	assets := &memAssets{files: map[string][]byte{"page-1.png": pagePNG(t, 200, 100)}}
	return NewFrameHandler(p, ed, assets), ed
}

func getFrame(t *testing.T, h *FrameHandler, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/playback/frame"+query, nil)
	rr := httptest.NewRecorder()
	h.HandleFrame(rr, req)
	return rr
}

func TestHandleFrameRendersActiveSegment(t *testing.T) {
	h, _ := newFrameFixture(t, "page-1.png")

	rr := getFrame(t, h, "?w=320&h=180")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q, want image/png", ct)
	}
	frame, err := png.Decode(rr.Body)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if b := frame.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("frame bounds = %v, want 320x180", b)
	}
}

func TestHandleFrameClampsOversizeRequest(t *testing.T) {
	h, _ := newFrameFixture(t, "page-1.png")

	rr := getFrame(t, h, "?w=99999&h=abc")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	frame, err := png.Decode(rr.Body)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if b := frame.Bounds(); b.Dx() != maxFrameDim || b.Dy() != defaultFrameHeight {
		t.Errorf("frame bounds = %v, want %dx%d", b, maxFrameDim, defaultFrameHeight)
	}
}

func TestHandleFrameNoActiveSegment(t *testing.T) {
	h, ed := newFrameFixture(t, "page-1.png")
	ed.Reset()
	ed.AddPageRef("page-1.png", false)

	rr := getFrame(t, h, "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestHandleFrameMissingAsset(t *testing.T) {
	h, _ := newFrameFixture(t, "gone.png")

	rr := getFrame(t, h, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
