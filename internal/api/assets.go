package api

import (
	"log/slog"
	"net/http"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/assets"
)

// AssetHandler serves stored media to UI clients.
type AssetHandler struct {
	assets *assets.Store
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(as *assets.Store) *AssetHandler {
	return &AssetHandler{assets: as}
}

// HandleGet handles GET /api/assets/{id}. Content is immutable by
// construction (the ID is the content hash), so clients may cache
// forever.
func (h *AssetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	path, err := h.assets.Path(id)
	if err != nil {
		slog.Debug("Asset not found", "id", id, "error", err)
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, path)
}
