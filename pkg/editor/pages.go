package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
)

// AddPage commits the image bytes to the asset store, then appends a new
// page referencing the stored asset, selects it as current and clears the
// selection. The asset commit is awaited: the page does not exist until the
// bytes do.
func (s *Store) AddPage(ctx context.Context, imageData []byte, hint string, isPDF bool) (model.Page, error) {
	if s.assets == nil {
		return model.Page{}, fmt.Errorf("no asset store configured")
	}
	assetID, err := s.assets.SaveAsset(ctx, imageData, hint)
	if err != nil {
		return model.Page{}, fmt.Errorf("failed to store page asset: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	page := model.NewPage(assetID, isPDF)
	s.pages = append(s.pages, page)
	s.currentPageIndex = len(s.pages) - 1
	s.selection = make(map[string]bool)
	s.lastSelectedID = ""
	slog.Debug("Editor: page added", "page", page.ID, "asset", assetID, "isPDF", isPDF)
	s.notifyLocked()
	return page, nil
}

// AddPageRef appends a page for an already-stored asset. Used by importers
// that commit assets themselves (PDF rendering).
func (s *Store) AddPageRef(assetID string, isPDF bool) model.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	page := model.NewPage(assetID, isPDF)
	s.pages = append(s.pages, page)
	s.currentPageIndex = len(s.pages) - 1
	s.selection = make(map[string]bool)
	s.lastSelectedID = ""
	s.notifyLocked()
	return page
}

// RemovePage removes the page at index, cascading removal of its segments,
// clamps the current page index into bounds and releases the page's display
// resource. Out-of-range indexes are no-ops.
func (s *Store) RemovePage(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.pages) {
		return
	}
	removed := s.pages[index]
	for _, seg := range removed.Segments {
		delete(s.selection, seg.ID)
		delete(s.provisional, seg.ID)
	}
	s.pages = append(s.pages[:index], s.pages[index+1:]...)
	s.currentPageIndex = clampInt(s.currentPageIndex, 0, len(s.pages)-1)
	if s.assets != nil && removed.AssetID != "" {
		s.assets.ReleaseURL(removed.AssetID)
	}
	s.conformLocked()
	slog.Debug("Editor: page removed", "page", removed.ID, "segments", len(removed.Segments))
	s.notifyLocked()
}
