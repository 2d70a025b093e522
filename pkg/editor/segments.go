package editor

import (
	"log/slog"
	"math"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/timeline"
)

// SegmentUpdate carries a partial segment write; nil fields are untouched.
type SegmentUpdate struct {
	Region    *model.Region
	Label     *string
	StartTime *float64
	EndTime   *float64
	IsHidden  *bool
	Color     *string
	Notes     *string
}

// AddSegment appends a segment covering region to the given page. The new
// segment continues the global tape: it starts at the maximum end time of
// any existing segment on any page. Regions below the minimum size are
// rejected. The new segment becomes the sole selection.
func (s *Store) AddSegment(pageIndex int, region model.Region) *model.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pageIndex < 0 || pageIndex >= len(s.pages) {
		return nil
	}
	region = region.Clamp(model.MinRegionPercent)
	if !region.Valid() {
		return nil
	}

	start := timeline.MaxEndTime(s.pages)
	s.segmentSerial++
	seg := model.NewSegment(pageIndex, region, model.DefaultLabel(s.segmentSerial), start, start+s.defaultDuration)
	seg.Order = len(s.pages[pageIndex].Segments)
	s.pages[pageIndex].Segments = append(s.pages[pageIndex].Segments, seg)

	s.conformLocked()
	s.selection = map[string]bool{seg.ID: true}
	s.lastSelectedID = seg.ID
	slog.Debug("Editor: segment added", "segment", seg.ID, "page", pageIndex, "start", seg.StartTime)
	s.notifyLocked()

	// Return the post-conform value.
	if pi, si, ok := s.findSegmentLocked(seg.ID); ok {
		out := s.pages[pi].Segments[si]
		return &out
	}
	return &seg
}

// UpdateSegment applies a partial update to the segment with the given id.
// Unknown ids are no-ops. If StartTime is set under chain mode without an
// explicit EndTime, the segment's duration is preserved (both bounds move
// together). Any write that would leave EndTime below StartTime+0.1 is
// corrected. Chain mode then re-conforms the whole timeline.
func (s *Store) UpdateSegment(id string, upd SegmentUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pi, si, ok := s.findSegmentLocked(id)
	if !ok {
		return
	}
	seg := &s.pages[pi].Segments[si]

	if upd.Region != nil {
		seg.Region = upd.Region.Clamp(model.MinRegionPercent)
	}
	if upd.Label != nil {
		seg.Label = *upd.Label
	}
	if upd.IsHidden != nil {
		seg.IsHidden = *upd.IsHidden
	}
	if upd.Color != nil {
		seg.Color = *upd.Color
	}
	if upd.Notes != nil {
		seg.Notes = *upd.Notes
	}
	if upd.StartTime != nil {
		start := math.Max(0, *upd.StartTime)
		if s.chainMode && upd.EndTime == nil {
			dur := seg.Duration()
			seg.StartTime = start
			seg.EndTime = start + dur
		} else {
			seg.StartTime = start
		}
	}
	if upd.EndTime != nil {
		seg.EndTime = *upd.EndTime
	}
	if seg.EndTime < seg.StartTime+model.MinSegmentDuration {
		seg.EndTime = seg.StartTime + model.MinSegmentDuration
	}

	if upd.StartTime != nil || upd.EndTime != nil {
		s.conformLocked()
	}
	s.notifyLocked()
}

// DeleteSegments removes the given segments. Under chain mode the deleted
// durations ripple out of every later segment. The selection is cleared.
func (s *Store) DeleteSegments(ids []string) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	if s.chainMode {
		s.pages = timeline.RippleDelete(s.pages, idSet)
	} else {
		for pi := range s.pages {
			kept := s.pages[pi].Segments[:0]
			for _, seg := range s.pages[pi].Segments {
				if !idSet[seg.ID] {
					kept = append(kept, seg)
				}
			}
			s.pages[pi].Segments = kept
		}
		timeline.Renumber(s.pages)
	}

	for id := range idSet {
		delete(s.provisional, id)
	}
	s.selection = make(map[string]bool)
	s.lastSelectedID = ""
	slog.Debug("Editor: segments deleted", "count", len(ids))
	s.notifyLocked()
}

// DuplicateSegment inserts a time-adjacent copy right after the source with
// the same duration and a slightly nudged region, shifting every segment on
// any page whose start was at or past the source's end later by the
// duplicate's duration.
func (s *Store) DuplicateSegment(id string) *model.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	pi, si, ok := s.findSegmentLocked(id)
	if !ok {
		return nil
	}
	src := s.pages[pi].Segments[si]
	dur := src.Duration()

	timeline.ShiftAfter(s.pages, src.EndTime, dur)

	s.segmentSerial++
	dup := src
	dup.ID = newSegmentID()
	dup.Label = src.Label + " copy"
	dup.Region = src.Region.Offset(2, 2)
	dup.StartTime = src.EndTime
	dup.EndTime = src.EndTime + dur

	segs := s.pages[pi].Segments
	segs = append(segs, model.Segment{})
	copy(segs[si+2:], segs[si+1:])
	segs[si+1] = dup
	s.pages[pi].Segments = segs

	for i := range s.pages {
		page := &s.pages[i]
		timeline.SortPageByStart(page)
	}
	s.conformLocked()

	s.selection = map[string]bool{dup.ID: true}
	s.lastSelectedID = dup.ID
	slog.Debug("Editor: segment duplicated", "source", id, "duplicate", dup.ID)
	s.notifyLocked()

	if dpi, dsi, ok := s.findSegmentLocked(dup.ID); ok {
		out := s.pages[dpi].Segments[dsi]
		return &out
	}
	return &dup
}

// MoveSegmentUp swaps the segment one position earlier within its page.
func (s *Store) MoveSegmentUp(id string) {
	s.moveSegment(id, -1)
}

// MoveSegmentDown swaps the segment one position later within its page.
func (s *Store) MoveSegmentDown(id string) {
	s.moveSegment(id, +1)
}

func (s *Store) moveSegment(id string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pi, si, ok := s.findSegmentLocked(id)
	if !ok {
		return
	}
	target := si + delta
	segs := s.pages[pi].Segments
	if target < 0 || target >= len(segs) {
		return
	}
	segs[si], segs[target] = segs[target], segs[si]
	timeline.Renumber(s.pages)
	s.conformLocked()
	s.notifyLocked()
}

// ReorderSegment moves the segment to newIndex within its page's array and
// renumbers order. Indexes are clamped into bounds.
func (s *Store) ReorderSegment(id string, newIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pi, si, ok := s.findSegmentLocked(id)
	if !ok {
		return
	}
	segs := s.pages[pi].Segments
	newIndex = clampInt(newIndex, 0, len(segs)-1)
	if newIndex == si {
		return
	}
	seg := segs[si]
	segs = append(segs[:si], segs[si+1:]...)
	segs = append(segs, model.Segment{})
	copy(segs[newIndex+1:], segs[newIndex:])
	segs[newIndex] = seg
	s.pages[pi].Segments = segs
	timeline.Renumber(s.pages)
	s.conformLocked()
	s.notifyLocked()
}

// ToggleSegmentVisibility flips IsHidden. Hidden segments stay in the data
// and the authoring timeline but are excluded from playback and hit tests.
func (s *Store) ToggleSegmentVisibility(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pi, si, ok := s.findSegmentLocked(id)
	if !ok {
		return
	}
	s.pages[pi].Segments[si].IsHidden = !s.pages[pi].Segments[si].IsHidden
	s.notifyLocked()
}

// ShowAllSegments clears IsHidden on every segment of every page.
func (s *Store) ShowAllSegments() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pi := range s.pages {
		for si := range s.pages[pi].Segments {
			s.pages[pi].Segments[si].IsHidden = false
		}
	}
	s.notifyLocked()
}

// ApplyAspectRatioToSelected recomputes each selected segment's region to
// the requested width:height ratio, keeping its center fixed and maximizing
// area. Both the fit-to-max-half-width and fit-to-max-half-height candidate
// rectangles are evaluated; the larger one that stays inside the page wins.
func (s *Store) ApplyAspectRatioToSelected(ratioW, ratioH float64) {
	if ratioW <= 0 || ratioH <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for pi := range s.pages {
		for si := range s.pages[pi].Segments {
			seg := &s.pages[pi].Segments[si]
			if !s.selection[seg.ID] {
				continue
			}
			seg.Region = fitAspect(seg.Region, ratioW, ratioH)
		}
	}
	s.notifyLocked()
}

func fitAspect(r model.Region, ratioW, ratioH float64) model.Region {
	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	maxHalfW := math.Min(cx, 100-cx)
	maxHalfH := math.Min(cy, 100-cy)

	// Candidate A: as wide as the center allows.
	wA := 2 * maxHalfW
	hA := wA * ratioH / ratioW
	okA := hA/2 <= maxHalfH+1e-9

	// Candidate B: as tall as the center allows.
	hB := 2 * maxHalfH
	wB := hB * ratioW / ratioH
	okB := wB/2 <= maxHalfW+1e-9

	var w, h float64
	switch {
	case okA && okB:
		if wA*hA >= wB*hB {
			w, h = wA, hA
		} else {
			w, h = wB, hB
		}
	case okA:
		w, h = wA, hA
	case okB:
		w, h = wB, hB
	default:
		return r
	}

	return model.Region{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}.Clamp(model.MinRegionPercent)
}
