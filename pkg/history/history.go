// Package history implements snapshot-based undo/redo over the editor
// store. Checkpointing is caller-driven: every UI action that mutates
// segments calls SaveState immediately before applying the mutation. A drag
// gesture checkpoints once at drag-start, not per pointer-move.
package history

import (
	"sync"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
)

// Manager maintains the undo and redo stacks.
type Manager struct {
	mu    sync.Mutex
	store *editor.Store
	undo  []editor.Snapshot
	redo  []editor.Snapshot
	limit int
}

// NewManager creates a history manager over the store. limit bounds the
// undo depth; 0 means 100.
func NewManager(store *editor.Store, limit int) *Manager {
	if limit <= 0 {
		limit = 100
	}
	return &Manager{store: store, limit: limit}
}

// SaveState pushes a deep snapshot of the current state onto the undo
// stack and clears the redo stack. Call before mutating.
func (m *Manager) SaveState() {
	snap := m.store.Snapshot()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = append(m.undo, snap)
	if len(m.undo) > m.limit {
		m.undo = m.undo[1:]
	}
	m.redo = nil
}

// Checkpoint snapshots the state and then runs the mutation, making the
// save-before-mutate contract explicit at the call site.
func (m *Manager) Checkpoint(mutate func()) {
	m.SaveState()
	mutate()
}

// Undo swaps the current state with the top of the undo stack.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	if len(m.undo) == 0 {
		m.mu.Unlock()
		return false
	}
	top := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.mu.Unlock()

	current := m.store.Snapshot()
	m.store.Restore(top)

	m.mu.Lock()
	m.redo = append(m.redo, current)
	m.mu.Unlock()
	return true
}

// Redo swaps the current state with the top of the redo stack.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	if len(m.redo) == 0 {
		m.mu.Unlock()
		return false
	}
	top := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.mu.Unlock()

	current := m.store.Snapshot()
	m.store.Restore(top)

	m.mu.Lock()
	m.undo = append(m.undo, current)
	m.mu.Unlock()
	return true
}

// CanUndo reports whether the undo stack is non-empty.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// Clear drops both stacks, e.g. after loading a different project.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	m.redo = nil
}
