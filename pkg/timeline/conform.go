// Package timeline implements the chain-mode conformance engine: pure
// recomputation of segment start/end times from page order, per-page segment
// order and preserved durations, plus the ripple arithmetic used by delete
// and duplicate.
package timeline

import (
	"sort"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
)

// Conform assigns contiguous [startTime, endTime) ranges to every segment.
// A single running cursor starts at 0 and advances across page boundaries in
// page array order; within a page segments are taken ascending by Order.
// Each segment keeps its existing duration when positive, otherwise
// defaultDuration is used. The input is not mutated.
func Conform(pages []model.Page, defaultDuration float64) []model.Page {
	if defaultDuration < model.MinSegmentDuration {
		defaultDuration = model.MinSegmentDuration
	}
	out := model.ClonePages(pages)

	cursor := 0.0
	for pi := range out {
		segs := out[pi].Segments
		sort.SliceStable(segs, func(a, b int) bool {
			return segs[a].Order < segs[b].Order
		})
		for si := range segs {
			dur := segs[si].Duration()
			if dur < model.MinSegmentDuration {
				dur = defaultDuration
			}
			segs[si].StartTime = cursor
			segs[si].EndTime = cursor + dur
			segs[si].Order = si
			cursor += dur
		}
	}
	return out
}

// GlobalSegments returns every segment of every page in tape order:
// page-major, then ascending Order within the page. The returned segments
// are copies; PageIndex is normalized to the page's array position.
func GlobalSegments(pages []model.Page) []model.Segment {
	var out []model.Segment
	for pi, page := range pages {
		segs := make([]model.Segment, len(page.Segments))
		copy(segs, page.Segments)
		sort.SliceStable(segs, func(a, b int) bool {
			return segs[a].Order < segs[b].Order
		})
		for i := range segs {
			segs[i].PageIndex = pi
		}
		out = append(out, segs...)
	}
	return out
}

// VisibleSegments returns the playback segment list: all non-hidden
// segments across all pages, sorted by start time (ties broken by tape
// order, which is already the slice order).
func VisibleSegments(pages []model.Page) []model.Segment {
	all := GlobalSegments(pages)
	out := all[:0]
	for _, s := range all {
		if !s.IsHidden {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].StartTime < out[b].StartTime
	})
	return out
}

// TotalDuration is the larger of the last visible segment's end time and the
// audio track duration. Hidden segments stay on the authoring tape but do
// not extend playback.
func TotalDuration(pages []model.Page, audioDuration float64) float64 {
	total := audioDuration
	for _, s := range VisibleSegments(pages) {
		if s.EndTime > total {
			total = s.EndTime
		}
	}
	return total
}

// SegmentAt resolves the playback segment for the elapsed time t: the
// segment whose [start, end) range contains t, or, through gaps, the nearest
// preceding segment so the display holds the last shown region instead of
// going blank. Returns nil before the first segment.
func SegmentAt(segs []model.Segment, t float64) *model.Segment {
	var prev *model.Segment
	for i := range segs {
		s := &segs[i]
		if t >= s.StartTime && t < s.EndTime {
			return s
		}
		if s.StartTime <= t && (prev == nil || s.StartTime >= prev.StartTime) {
			prev = s
		}
	}
	return prev
}

// RippleDelete removes the segments named in ids and shifts every surviving
// segment back by the cumulative duration of the deleted segments that
// started before it, reproducing ripple-delete semantics without a full
// re-walk keyed on order. Start times are clamped at 0 and the minimum
// segment length is preserved. The input is not mutated.
func RippleDelete(pages []model.Page, ids map[string]bool) []model.Page {
	type gap struct{ start, dur float64 }
	var gaps []gap
	for _, page := range pages {
		for _, s := range page.Segments {
			if ids[s.ID] {
				gaps = append(gaps, gap{s.StartTime, s.Duration()})
			}
		}
	}

	out := model.ClonePages(pages)
	for pi := range out {
		kept := out[pi].Segments[:0]
		for _, s := range out[pi].Segments {
			if ids[s.ID] {
				continue
			}
			shift := 0.0
			for _, g := range gaps {
				if g.start < s.StartTime {
					shift += g.dur
				}
			}
			s.StartTime -= shift
			s.EndTime -= shift
			if s.StartTime < 0 {
				s.EndTime -= s.StartTime
				s.StartTime = 0
			}
			if s.EndTime < s.StartTime+model.MinSegmentDuration {
				s.EndTime = s.StartTime + model.MinSegmentDuration
			}
			kept = append(kept, s)
		}
		out[pi].Segments = kept
		renumber(out[pi].Segments)
	}
	return out
}

// ShiftAfter moves every segment whose original start time is >= threshold
// later by delta, on all pages, in place.
func ShiftAfter(pages []model.Page, threshold, delta float64) {
	for pi := range pages {
		for si := range pages[pi].Segments {
			s := &pages[pi].Segments[si]
			if s.StartTime >= threshold {
				s.StartTime += delta
				s.EndTime += delta
			}
		}
	}
}

// SortPageByStart reorders a page's segment slice ascending by start time
// and renumbers Order.
func SortPageByStart(page *model.Page) {
	sort.SliceStable(page.Segments, func(a, b int) bool {
		return page.Segments[a].StartTime < page.Segments[b].StartTime
	})
	renumber(page.Segments)
}

func renumber(segs []model.Segment) {
	for i := range segs {
		segs[i].Order = i
	}
}

// Renumber normalizes Order to slice position on every page.
func Renumber(pages []model.Page) {
	for pi := range pages {
		renumber(pages[pi].Segments)
	}
}

// MaxEndTime returns the maximum end time across all segments on all pages,
// hidden included. New segments continue the tape from here.
func MaxEndTime(pages []model.Page) float64 {
	max := 0.0
	for _, page := range pages {
		for _, s := range page.Segments {
			if s.EndTime > max {
				max = s.EndTime
			}
		}
	}
	return max
}
