package editor

// SelectSegment updates the selection set. Single clears and selects one
// segment; Toggle XORs membership; Range selects the inclusive index span
// between the last selected segment and the target within the current
// page's segment array (range selection never crosses pages).
func (s *Store) SelectSegment(id string, mode SelectMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, ok := s.findSegmentLocked(id); !ok {
		return
	}

	switch mode {
	case SelectSingle:
		s.selection = map[string]bool{id: true}
		s.lastSelectedID = id
	case SelectToggle:
		if s.selection[id] {
			delete(s.selection, id)
		} else {
			s.selection[id] = true
			s.lastSelectedID = id
		}
	case SelectRange:
		if s.lastSelectedID == "" {
			s.selection[id] = true
			s.lastSelectedID = id
			break
		}
		segs := s.pages[s.currentPageIndex].Segments
		from, to := -1, -1
		for i := range segs {
			if segs[i].ID == s.lastSelectedID {
				from = i
			}
			if segs[i].ID == id {
				to = i
			}
		}
		if from < 0 || to < 0 {
			// Anchor or target not on the current page; fall back to single.
			s.selection = map[string]bool{id: true}
			s.lastSelectedID = id
			break
		}
		if from > to {
			from, to = to, from
		}
		for i := from; i <= to; i++ {
			s.selection[segs[i].ID] = true
		}
	}
	s.notifyLocked()
}

// ClearSelection empties the selection set.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]bool)
	s.lastSelectedID = ""
	s.notifyLocked()
}

// SelectedIDs returns the current selection as a slice (order unspecified).
func (s *Store) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	return out
}

// IsSelected reports membership in the selection set.
func (s *Store) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection[id]
}
