package api

import (
	"bytes"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/player"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/render"
)

const (
	defaultFrameWidth  = 1280
	defaultFrameHeight = 720
	maxFrameDim        = 4096
)

// FrameAssets reads page image bytes for frame composition.
type FrameAssets interface {
	Read(id string) ([]byte, error)
}

// FrameHandler renders the active segment as a PNG stage frame, the
// server-side pipeline behind external presentation surfaces that cannot
// run the canvas themselves.
type FrameHandler struct {
	player *player.Player
	editor *editor.Store
	assets FrameAssets
}

// NewFrameHandler creates a new FrameHandler.
func NewFrameHandler(p *player.Player, ed *editor.Store, assets FrameAssets) *FrameHandler {
	return &FrameHandler{player: p, editor: ed, assets: assets}
}

// HandleFrame handles GET /api/playback/frame
func (h *FrameHandler) HandleFrame(w http.ResponseWriter, r *http.Request) {
	seg := h.player.CurrentSegment()
	if seg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	pages := h.editor.Pages()
	if seg.PageIndex < 0 || seg.PageIndex >= len(pages) {
		http.Error(w, "segment page out of range", http.StatusConflict)
		return
	}
	assetID := pages[seg.PageIndex].AssetID
	if assetID == "" {
		http.Error(w, "page has no image asset", http.StatusNotFound)
		return
	}

	data, err := h.assets.Read(assetID)
	if err != nil {
		slog.Warn("Failed to read page asset for frame", "asset", assetID, "error", err)
		http.Error(w, "page asset unavailable", http.StatusNotFound)
		return
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to decode page asset for frame", "asset", assetID, "error", err)
		http.Error(w, "page asset is not a decodable image", http.StatusUnprocessableEntity)
		return
	}

	opts := render.Options{
		Width:  frameDim(r.URL.Query().Get("w"), defaultFrameWidth),
		Height: frameDim(r.URL.Query().Get("h"), defaultFrameHeight),
		Mirror: h.player.Mirror(),
	}
	frame := render.Compose(src, seg.Region, opts)

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, frame); err != nil {
		slog.Error("Failed to write frame response", "error", err)
	}
}

// frameDim parses a requested dimension, falling back to the default and
// clamping to a sane ceiling so a bad query cannot allocate a huge stage.
func frameDim(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > maxFrameDim {
		return maxFrameDim
	}
	return n
}
