package editor

import "github.com/Burhanali2211/SegiTelep-sub000/pkg/model"

// Snapshot is a deep copy of the mutable authoring state, used by the
// history manager for undo/redo.
type Snapshot struct {
	Pages            []model.Page
	Selection        map[string]bool
	LastSelectedID   string
	CurrentPageIndex int
}

// Snapshot captures the current pages and selection.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := make(map[string]bool, len(s.selection))
	for id := range s.selection {
		sel[id] = true
	}
	return Snapshot{
		Pages:            model.ClonePages(s.pages),
		Selection:        sel,
		LastSelectedID:   s.lastSelectedID,
		CurrentPageIndex: s.currentPageIndex,
	}
}

// Restore replaces pages and selection with the snapshot's copies.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = model.ClonePages(snap.Pages)
	sel := make(map[string]bool, len(snap.Selection))
	for id := range snap.Selection {
		sel[id] = true
	}
	s.selection = sel
	s.lastSelectedID = snap.LastSelectedID
	s.currentPageIndex = clampInt(snap.CurrentPageIndex, 0, len(s.pages)-1)
	s.provisional = make(map[string]model.Region)
	s.notifyLocked()
}
