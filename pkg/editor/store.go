// Package editor holds the central authoring state: pages, segments,
// selection, clipboard, view and chain mode. All mutations go through the
// Store, which re-conforms the timeline when chain mode is active and
// notifies subscribers after every change.
package editor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/timeline"
)

func newSegmentID() string {
	return uuid.New().String()
}

// AssetStore is the slice of the asset layer the editor needs: committing
// imported bytes before a page exists, and releasing display resources.
type AssetStore interface {
	SaveAsset(ctx context.Context, data []byte, hint string) (string, error)
	ReleaseURL(assetID string)
}

// ViewState holds zoom/pan and tool mode for the canvas.
type ViewState struct {
	Zoom         float64 `json:"zoom"`
	PanX         float64 `json:"panX"`
	PanY         float64 `json:"panY"`
	IsDrawing    bool    `json:"isDrawing"`
	IsActiveDrag bool    `json:"isActiveDrag"`
}

// SelectMode controls how SelectSegment updates the selection set.
type SelectMode int

const (
	SelectSingle SelectMode = iota
	SelectToggle
	SelectRange
)

// Options tunes store behavior; zero values fall back to sane defaults.
type Options struct {
	DefaultSegmentDuration float64
	ChainMode              bool
	ZoomMin                float64
	ZoomMax                float64
}

// Store is the single source of truth for authoring state.
type Store struct {
	mu sync.Mutex

	projectID   string
	projectName string
	audioFile   *model.AudioFile

	pages            []model.Page
	currentPageIndex int

	selection      map[string]bool
	lastSelectedID string

	clipboard []model.Segment

	view      ViewState
	chainMode bool

	defaultDuration float64
	zoomMin         float64
	zoomMax         float64

	// provisional holds an uncommitted region during an active drag/resize
	// gesture; reads fall back from it to the committed value.
	provisional   map[string]model.Region
	subscribers   []func()
	assets        AssetStore
	segmentSerial int
}

// NewStore creates an empty store.
func NewStore(assets AssetStore, opts Options) *Store {
	if opts.DefaultSegmentDuration <= 0 {
		opts.DefaultSegmentDuration = 5.0
	}
	if opts.ZoomMin <= 0 {
		opts.ZoomMin = 0.5
	}
	if opts.ZoomMax <= 0 {
		opts.ZoomMax = 4.0
	}
	return &Store{
		pages:           []model.Page{},
		selection:       make(map[string]bool),
		provisional:     make(map[string]model.Region),
		view:            ViewState{Zoom: 1.0},
		chainMode:       opts.ChainMode,
		defaultDuration: opts.DefaultSegmentDuration,
		zoomMin:         opts.ZoomMin,
		zoomMax:         opts.ZoomMax,
		assets:          assets,
		projectName:     "Untitled Project",
	}
}

// Subscribe registers a callback invoked after every mutation. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	idx := len(s.subscribers) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.subscribers) {
			s.subscribers[idx] = nil
		}
	}
}

// notifyLocked schedules subscriber callbacks. Callers must hold s.mu; the
// callbacks run without it so subscribers may read back from the store.
func (s *Store) notifyLocked() {
	subs := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		if fn != nil {
			subs = append(subs, fn)
		}
	}
	go func() {
		for _, fn := range subs {
			fn()
		}
	}()
}

// conformLocked re-derives the whole timeline when chain mode is on.
func (s *Store) conformLocked() {
	if s.chainMode {
		s.pages = timeline.Conform(s.pages, s.defaultDuration)
	}
}

// Pages returns a deep copy of the page list.
func (s *Store) Pages() []model.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.ClonePages(s.pages)
}

// CurrentPageIndex returns the index of the page being edited.
func (s *Store) CurrentPageIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPageIndex
}

// SetCurrentPage clamps idx into bounds and makes it current.
func (s *Store) SetCurrentPage(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPageIndex = clampInt(idx, 0, len(s.pages)-1)
	s.notifyLocked()
}

// ChainMode reports whether chain mode is active.
func (s *Store) ChainMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chainMode
}

// ToggleChainMode flips chain mode. Turning it ON immediately re-conforms
// the entire timeline; this is a deliberate one-way normalization the user
// opts into.
func (s *Store) ToggleChainMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chainMode = !s.chainMode
	if s.chainMode {
		s.pages = timeline.Conform(s.pages, s.defaultDuration)
		slog.Debug("Editor: chain mode enabled, timeline conformed")
	}
	s.notifyLocked()
	return s.chainMode
}

// DefaultSegmentDuration returns the duration assigned to new segments.
func (s *Store) DefaultSegmentDuration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultDuration
}

// AudioFile returns the attached audio descriptor, or nil.
func (s *Store) AudioFile() *model.AudioFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audioFile == nil {
		return nil
	}
	af := *s.audioFile
	return &af
}

// SetAudioFile attaches (or with nil detaches) the audio track.
func (s *Store) SetAudioFile(af *model.AudioFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if af == nil {
		s.audioFile = nil
	} else {
		cp := *af
		s.audioFile = &cp
	}
	s.notifyLocked()
}

// ProjectName returns the current project name.
func (s *Store) ProjectName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectName
}

// LoadProject replaces the whole editor state with the given project.
func (s *Store) LoadProject(p *model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectID = p.ID
	s.projectName = p.Name
	s.pages = model.ClonePages(p.Pages)
	timeline.Renumber(s.pages)
	s.audioFile = nil
	if p.AudioFile != nil {
		af := *p.AudioFile
		s.audioFile = &af
	}
	s.currentPageIndex = 0
	s.selection = make(map[string]bool)
	s.lastSelectedID = ""
	s.clipboard = nil
	s.provisional = make(map[string]model.Region)
	s.segmentSerial = s.countSegmentsLocked()
	s.notifyLocked()
}

// ExportProject returns the persisted project shape for the current state.
func (s *Store) ExportProject() *model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.Project{
		ID:    s.projectID,
		Name:  s.projectName,
		Pages: model.ClonePages(s.pages),
	}
	if s.audioFile != nil {
		af := *s.audioFile
		p.AudioFile = &af
	}
	return p
}

// Reset clears all project state and releases page display resources.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assets != nil {
		for _, page := range s.pages {
			if page.AssetID != "" {
				s.assets.ReleaseURL(page.AssetID)
			}
		}
	}
	s.projectID = ""
	s.projectName = "Untitled Project"
	s.pages = []model.Page{}
	s.audioFile = nil
	s.currentPageIndex = 0
	s.selection = make(map[string]bool)
	s.lastSelectedID = ""
	s.clipboard = nil
	s.provisional = make(map[string]model.Region)
	s.segmentSerial = 0
	s.notifyLocked()
}

func (s *Store) countSegmentsLocked() int {
	n := 0
	for _, p := range s.pages {
		n += len(p.Segments)
	}
	return n
}

// findSegmentLocked locates a segment by id across all pages.
func (s *Store) findSegmentLocked(id string) (pageIdx, segIdx int, ok bool) {
	for pi := range s.pages {
		for si := range s.pages[pi].Segments {
			if s.pages[pi].Segments[si].ID == id {
				return pi, si, true
			}
		}
	}
	return 0, 0, false
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
