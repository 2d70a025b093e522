package project

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
)

// fakeEditSource hands out a canned project and lets tests fire change
// notifications by hand.
type fakeEditSource struct {
	mu      sync.Mutex
	project *model.Project
	fn      func()
	unsubs  int
}

func (f *fakeEditSource) Subscribe(fn func()) func() {
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.unsubs++
		f.mu.Unlock()
	}
}

func (f *fakeEditSource) ExportProject() *model.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.project
	return &cp
}

func (f *fakeEditSource) change() {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func TestAutosaveDebouncesEdits(t *testing.T) {
	m := newManager(t)
	p := sampleProject("Show A")
	require.NoError(t, m.Save(p))

	src := &fakeEditSource{project: p}
	a := NewAutosaver(src, m, 20*time.Millisecond)
	defer a.Close()

	p.Name = "Show A v2"
	for i := 0; i < 5; i++ {
		src.change()
	}

	assert.Eventually(t, func() bool {
		loaded, err := m.Load(p.ID)
		return err == nil && loaded.Name == "Show A v2"
	}, time.Second, 10*time.Millisecond, "debounced edits collapse into one save")
}

func TestAutosaveSkipsUnsavedProject(t *testing.T) {
	m := newManager(t)
	src := &fakeEditSource{project: sampleProject("Scratch")}
	a := NewAutosaver(src, m, 10*time.Millisecond)
	defer a.Close()

	src.change()
	time.Sleep(50 * time.Millisecond)

	infos, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, infos, "a project without an id never hits disk")
}

func TestAutosaveCloseFlushesPendingSave(t *testing.T) {
	m := newManager(t)
	p := sampleProject("Show B")
	require.NoError(t, m.Save(p))

	src := &fakeEditSource{project: p}
	a := NewAutosaver(src, m, time.Hour)

	p.Name = "Show B final"
	src.change()
	a.Close()

	loaded, err := m.Load(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Show B final", loaded.Name)

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Equal(t, 1, src.unsubs, "close detaches from the edit source")
}
