package editor

import (
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/atotto/clipboard"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/timeline"
)

// CopySelected snapshots the selected segments (value copies, not live
// references) into the internal clipboard, ordered by start time.
func (s *Store) CopySelected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var copied []model.Segment
	for _, page := range s.pages {
		for _, seg := range page.Segments {
			if s.selection[seg.ID] {
				copied = append(copied, seg)
			}
		}
	}
	sort.SliceStable(copied, func(a, b int) bool {
		return copied[a].StartTime < copied[b].StartTime
	})
	if len(copied) > 0 {
		s.clipboard = copied
	}
	return len(copied)
}

// Paste appends clipboard segments to the current page with fresh ids,
// regions nudged by +5% so the copies are visually distinguishable, times
// continuing the global tape, then re-conforms under chain mode and selects
// the pasted segments.
func (s *Store) Paste() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clipboard) == 0 || len(s.pages) == 0 {
		return nil
	}
	pageIdx := s.currentPageIndex
	start := timeline.MaxEndTime(s.pages)

	s.selection = make(map[string]bool)
	ids := make([]string, 0, len(s.clipboard))
	for _, src := range s.clipboard {
		dup := src
		dup.ID = newSegmentID()
		dup.PageIndex = pageIdx
		dup.Region = src.Region.Offset(5, 5)
		dur := src.Duration()
		dup.StartTime = start
		dup.EndTime = start + dur
		start += dur
		dup.Order = len(s.pages[pageIdx].Segments)
		s.pages[pageIdx].Segments = append(s.pages[pageIdx].Segments, dup)
		s.selection[dup.ID] = true
		s.lastSelectedID = dup.ID
		ids = append(ids, dup.ID)
		s.segmentSerial++
	}
	s.conformLocked()
	slog.Debug("Editor: pasted segments", "count", len(ids), "page", pageIdx)
	s.notifyLocked()
	return ids
}

// CopySelectedToSystemClipboard serializes the selected segments to JSON
// and places them on the OS clipboard, for pasting into other tools. The
// internal clipboard is unaffected. Failures are logged, not fatal.
func (s *Store) CopySelectedToSystemClipboard() error {
	s.mu.Lock()
	var copied []model.Segment
	for _, page := range s.pages {
		for _, seg := range page.Segments {
			if s.selection[seg.ID] {
				copied = append(copied, seg)
			}
		}
	}
	s.mu.Unlock()

	if len(copied) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(copied, "", "  ")
	if err != nil {
		return err
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		slog.Warn("Editor: system clipboard unavailable", "error", err)
		return err
	}
	return nil
}
