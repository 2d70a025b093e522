package editor

import "github.com/Burhanali2211/SegiTelep-sub000/pkg/model"

// View returns the current view state.
func (s *Store) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetZoom clamps the zoom factor into the configured bounds.
func (s *Store) SetZoom(zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Zoom = clampFloat(zoom, s.zoomMin, s.zoomMax)
	s.notifyLocked()
}

// SetPan sets the view pan in device pixels.
func (s *Store) SetPan(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.PanX = x
	s.view.PanY = y
	s.notifyLocked()
}

// SetDrawingMode switches between the draw and select tools.
func (s *Store) SetDrawingMode(drawing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.IsDrawing = drawing
	s.notifyLocked()
}

// SetActiveDrag marks a pointer gesture as in flight. Autosave is
// suppressed while true.
func (s *Store) SetActiveDrag(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.IsActiveDrag = active
	s.notifyLocked()
}

// SetProvisionalRegion holds an uncommitted region for the segment during
// an active drag/resize gesture, without touching the committed value.
func (s *Store) SetProvisionalRegion(id string, r model.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provisional[id] = r
}

// ClearProvisionalRegion drops the pending value for the segment.
func (s *Store) ClearProvisionalRegion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.provisional, id)
}

// EffectiveRegion returns the provisional region when a gesture is in
// flight, falling back to the committed value. The second return is false
// for unknown segments.
func (s *Store) EffectiveRegion(id string) (model.Region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.provisional[id]; ok {
		return r, true
	}
	pi, si, ok := s.findSegmentLocked(id)
	if !ok {
		return model.Region{}, false
	}
	return s.pages[pi].Segments[si].Region, true
}

// CommitProvisionalRegion writes the pending region (if any) into the
// committed segment and clears the overlay. Called on pointer-up.
func (s *Store) CommitProvisionalRegion(id string) {
	s.mu.Lock()
	r, ok := s.provisional[id]
	delete(s.provisional, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	s.UpdateSegment(id, SegmentUpdate{Region: &r})
}
