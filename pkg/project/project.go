// Package project handles project persistence: atomic JSON save files in
// the projects directory, defensive loading of legacy saves, and
// import/export of the serialized project shape.
package project

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
)

// Manager reads and writes project files under a single directory. One
// file per project, named by project ID.
type Manager struct {
	dir string
}

// NewManager creates a Manager rooted at dir, creating it if needed.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create projects dir: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// Dir returns the projects directory.
func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) pathFor(id string) string {
	return filepath.Join(m.dir, id+".json")
}

// Save writes the project atomically: marshal to a temp file in the same
// directory, then rename over the target. A crash mid-save never leaves
// a truncated project on disk.
func (m *Manager) Save(p *model.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UnixMilli()
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	target := m.pathFor(p.ID)
	tmp, err := os.CreateTemp(m.dir, ".save-*")
	if err != nil {
		return fmt.Errorf("create save temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write project: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync project: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close save temp: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit project save: %w", err)
	}

	slog.Debug("Saved project", "id", p.ID, "name", p.Name, "bytes", len(data))
	return nil
}

// Load reads a project by ID, coercing legacy or partially malformed
// saves to safe defaults instead of failing.
func (m *Manager) Load(id string) (*model.Project, error) {
	data, err := os.ReadFile(m.pathFor(id))
	if err != nil {
		return nil, fmt.Errorf("read project %s: %w", id, err)
	}
	p, err := model.CoerceProject(data)
	if err != nil {
		return nil, fmt.Errorf("parse project %s: %w", id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

// Delete removes a project file.
func (m *Manager) Delete(id string) error {
	if err := os.Remove(m.pathFor(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}

// Info is the project index entry shown in recent-project lists.
type Info struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PageCount int    `json:"pageCount"`
	UpdatedAt int64  `json:"updatedAt"`
}

// List scans the projects directory and returns index entries, newest
// first. Unreadable files are skipped with a warning.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("scan projects dir: %w", err)
	}
	var infos []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		p, err := m.Load(id)
		if err != nil {
			slog.Warn("Skipping unreadable project file", "file", name, "error", err)
			continue
		}
		infos = append(infos, Info{
			ID:        p.ID,
			Name:      p.Name,
			PageCount: len(p.Pages),
			UpdatedAt: p.UpdatedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt > infos[j].UpdatedAt
	})
	return infos, nil
}

// Export writes the project JSON to an arbitrary path outside the
// projects directory.
func (m *Manager) Export(p *model.Project, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export project: %w", err)
	}
	return nil
}

// Import reads a project JSON from an arbitrary path, assigns a fresh ID
// so the import never clobbers an existing project, and saves it.
func (m *Manager) Import(path string) (*model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	p, err := model.CoerceProject(data)
	if err != nil {
		return nil, fmt.Errorf("parse import: %w", err)
	}
	p.ID = uuid.NewString()
	p.CreatedAt = 0
	if err := m.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// UsedAssetIDs collects every asset ID referenced by any saved project,
// for orphan cleanup in the asset store.
func (m *Manager) UsedAssetIDs() (map[string]bool, error) {
	infos, err := m.List()
	if err != nil {
		return nil, err
	}
	used := make(map[string]bool)
	for _, info := range infos {
		p, err := m.Load(info.ID)
		if err != nil {
			continue
		}
		for _, page := range p.Pages {
			if page.AssetID != "" {
				used[page.AssetID] = true
			}
		}
		if p.AudioFile != nil && p.AudioFile.ID != "" {
			used[p.AudioFile.ID] = true
		}
	}
	return used, nil
}
