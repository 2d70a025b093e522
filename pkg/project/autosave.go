package project

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
)

// EditSource is the slice of the editor store the autosaver needs: change
// notifications and a snapshot of the persisted project shape.
type EditSource interface {
	Subscribe(fn func()) func()
	ExportProject() *model.Project
}

// Autosaver persists the open project shortly after the last edit. Edits
// arriving inside the debounce window collapse into a single save. Projects
// without an ID are skipped so a scratch session never spawns files the
// user did not ask for.
type Autosaver struct {
	src   EditSource
	mgr   *Manager
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	unsub  func()
	closed bool
}

// NewAutosaver wires the autosaver to the edit source and starts listening.
func NewAutosaver(src EditSource, mgr *Manager, delay time.Duration) *Autosaver {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	a := &Autosaver{src: src, mgr: mgr, delay: delay}
	a.unsub = src.Subscribe(a.schedule)
	return a
}

func (a *Autosaver) schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.flush)
}

func (a *Autosaver) flush() {
	p := a.src.ExportProject()
	if p.ID == "" {
		return
	}
	if err := a.mgr.Save(p); err != nil {
		slog.Warn("Autosave failed", "id", p.ID, "error", err)
		return
	}
	slog.Debug("Autosaved project", "id", p.ID)
}

// Close stops listening for edits. A save still pending in the debounce
// window is flushed synchronously so shutdown never drops the last edit.
func (a *Autosaver) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	pending := false
	if a.timer != nil {
		pending = a.timer.Stop()
		a.timer = nil
	}
	unsub := a.unsub
	a.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if pending {
		a.flush()
	}
}
