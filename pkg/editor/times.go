package editor

import (
	"math"
	"sort"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
)

// ShiftSelectedTimes moves both bounds of every selected segment by delta
// seconds. Under chain mode the same delta ripples to every unselected
// segment that starts after the furthest-selected start, keeping downstream
// segments glued to the shifted block. Start times never go below zero.
func (s *Store) ShiftSelectedTimes(delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.selection) == 0 {
		return
	}

	furthest := math.Inf(-1)
	for _, page := range s.pages {
		for _, seg := range page.Segments {
			if s.selection[seg.ID] && seg.StartTime > furthest {
				furthest = seg.StartTime
			}
		}
	}

	for pi := range s.pages {
		for si := range s.pages[pi].Segments {
			seg := &s.pages[pi].Segments[si]
			shift := s.selection[seg.ID] || (s.chainMode && seg.StartTime > furthest)
			if !shift {
				continue
			}
			seg.StartTime += delta
			seg.EndTime += delta
			if seg.StartTime < 0 {
				seg.EndTime -= seg.StartTime
				seg.StartTime = 0
			}
			if seg.EndTime < seg.StartTime+model.MinSegmentDuration {
				seg.EndTime = seg.StartTime + model.MinSegmentDuration
			}
		}
	}
	s.notifyLocked()
}

// SpaceEvenlySelected distributes the selected segments (ordered by start
// time) into equal-width slots spanning [start, end].
func (s *Store) SpaceEvenlySelected(start, end float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if end <= start || len(s.selection) == 0 {
		return
	}

	type ref struct{ pi, si int }
	var refs []ref
	for pi := range s.pages {
		for si := range s.pages[pi].Segments {
			if s.selection[s.pages[pi].Segments[si].ID] {
				refs = append(refs, ref{pi, si})
			}
		}
	}
	if len(refs) == 0 {
		return
	}
	sort.SliceStable(refs, func(a, b int) bool {
		return s.pages[refs[a].pi].Segments[refs[a].si].StartTime <
			s.pages[refs[b].pi].Segments[refs[b].si].StartTime
	})

	slot := (end - start) / float64(len(refs))
	if slot < model.MinSegmentDuration {
		slot = model.MinSegmentDuration
	}
	for i, r := range refs {
		seg := &s.pages[r.pi].Segments[r.si]
		seg.StartTime = start + float64(i)*slot
		seg.EndTime = seg.StartTime + slot
	}
	s.notifyLocked()
}

// SetDurationForSelected sets every selected segment's end time to its
// start time plus duration.
func (s *Store) SetDurationForSelected(duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if duration < model.MinSegmentDuration {
		duration = model.MinSegmentDuration
	}
	for pi := range s.pages {
		for si := range s.pages[pi].Segments {
			seg := &s.pages[pi].Segments[si]
			if s.selection[seg.ID] {
				seg.EndTime = seg.StartTime + duration
			}
		}
	}
	s.conformLocked()
	s.notifyLocked()
}

// AlignSelectedToGrid rounds both bounds of each selected segment to the
// nearest multiple of gridSeconds, flooring at 0 and preserving the minimum
// segment length.
func (s *Store) AlignSelectedToGrid(gridSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gridSeconds <= 0 {
		return
	}
	for pi := range s.pages {
		for si := range s.pages[pi].Segments {
			seg := &s.pages[pi].Segments[si]
			if !s.selection[seg.ID] {
				continue
			}
			seg.StartTime = math.Max(0, math.Round(seg.StartTime/gridSeconds)*gridSeconds)
			seg.EndTime = math.Round(seg.EndTime/gridSeconds) * gridSeconds
			if seg.EndTime < seg.StartTime+model.MinSegmentDuration {
				seg.EndTime = seg.StartTime + model.MinSegmentDuration
			}
		}
	}
	s.notifyLocked()
}
