// Package model defines the core entities of a SegiTelep project: pages,
// segments and their regions. All structs round-trip through JSON in the
// exact shape persisted by project files.
package model

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	// MinRegionPercent is the smallest width/height a committed region may have.
	MinRegionPercent = 3.0
	// MinSegmentDuration is the smallest allowed endTime-startTime gap in seconds.
	MinSegmentDuration = 0.1
)

// Region is a rectangle over a page image. All four fields are percentages
// (0-100) of the displayed image dimensions, which keeps regions independent
// of the source image's pixel resolution.
type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp returns a copy of the region pulled back inside [0,100]x[0,100].
// Sizes below min are grown to min; the origin is shifted if the grown
// rectangle would overflow the page.
func (r Region) Clamp(min float64) Region {
	if r.Width < min {
		r.Width = min
	}
	if r.Height < min {
		r.Height = min
	}
	if r.Width > 100 {
		r.Width = 100
	}
	if r.Height > 100 {
		r.Height = 100
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.X+r.Width > 100 {
		r.X = 100 - r.Width
	}
	if r.Y+r.Height > 100 {
		r.Y = 100 - r.Height
	}
	return r
}

// Valid reports whether the region lies inside the page and meets the
// minimum size.
func (r Region) Valid() bool {
	return r.X >= 0 && r.Y >= 0 &&
		r.X+r.Width <= 100+1e-9 && r.Y+r.Height <= 100+1e-9 &&
		r.Width >= MinRegionPercent && r.Height >= MinRegionPercent
}

// Contains reports whether the point (px, py), in percent coordinates,
// falls inside the region.
func (r Region) Contains(px, py float64) bool {
	return px >= r.X && px <= r.X+r.Width && py >= r.Y && py <= r.Y+r.Height
}

// Offset returns the region moved by (dx, dy) percent and clamped back into
// the page.
func (r Region) Offset(dx, dy float64) Region {
	r.X += dx
	r.Y += dy
	return r.Clamp(MinRegionPercent)
}

// Segment is a named, time-addressed view into one page's region.
type Segment struct {
	ID        string  `json:"id"`
	PageIndex int     `json:"pageIndex"`
	Region    Region  `json:"region"`
	Label     string  `json:"label"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	IsHidden  bool    `json:"isHidden"`
	Order     int     `json:"order"`
	Color     string  `json:"color,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// Duration returns the segment's length in seconds.
func (s *Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// NewSegment creates a segment over region on the given page with a fresh id.
func NewSegment(pageIndex int, region Region, label string, start, end float64) Segment {
	if end < start+MinSegmentDuration {
		end = start + MinSegmentDuration
	}
	return Segment{
		ID:        uuid.New().String(),
		PageIndex: pageIndex,
		Region:    region.Clamp(MinRegionPercent),
		Label:     label,
		StartTime: start,
		EndTime:   end,
	}
}

// Page is one imported image (or PDF-rendered page) hosting segments.
// AssetID references bytes owned by the asset store; Data optionally carries
// a transient display URL and is not authoritative.
type Page struct {
	ID       string    `json:"id"`
	AssetID  string    `json:"assetId,omitempty"`
	Data     string    `json:"data,omitempty"`
	Segments []Segment `json:"segments"`
	IsPDF    bool      `json:"isPDF,omitempty"`
}

// NewPage creates an empty page referencing the given asset.
func NewPage(assetID string, isPDF bool) Page {
	return Page{
		ID:       uuid.New().String(),
		AssetID:  assetID,
		Segments: []Segment{},
		IsPDF:    isPDF,
	}
}

// AudioFile describes the optional audio track attached to a project.
type AudioFile struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	SourceRef string  `json:"sourceRef"`
	Duration  float64 `json:"duration"`
}

// Project is the persisted project shape.
type Project struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Pages     []Page     `json:"pages"`
	AudioFile *AudioFile `json:"audioFile,omitempty"`
	CreatedAt int64      `json:"createdAt,omitempty"`
	UpdatedAt int64      `json:"updatedAt,omitempty"`
}

// HitTest returns the topmost segment of the page containing the point
// (px, py) in percent coordinates, or nil. Later segments are drawn on top,
// so iteration runs back to front. Hidden segments are skipped.
func HitTest(page *Page, px, py float64) *Segment {
	for i := len(page.Segments) - 1; i >= 0; i-- {
		seg := &page.Segments[i]
		if seg.IsHidden {
			continue
		}
		if seg.Region.Contains(px, py) {
			return seg
		}
	}
	return nil
}

// DefaultLabel returns the default display label for the n-th segment
// (1-based across the whole project).
func DefaultLabel(n int) string {
	return fmt.Sprintf("Segment %d", n)
}

// ClonePages returns a deep copy of the page list. Segment slices are
// copied so mutations on the clone never alias the source.
func ClonePages(pages []Page) []Page {
	out := make([]Page, len(pages))
	for i, p := range pages {
		out[i] = p
		out[i].Segments = make([]Segment, len(p.Segments))
		copy(out[i].Segments, p.Segments)
	}
	return out
}
