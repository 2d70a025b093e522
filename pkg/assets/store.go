// Package assets implements the content-addressed media store. Files are
// keyed by the SHA-256 of their bytes, so importing the same image twice
// costs one copy and projects reference media by hash instead of path.
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store manages the global asset directory.
type Store struct {
	mu   sync.RWMutex
	dir  string
	urls map[string]string // assetID -> served URL, revoked on release
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{dir: dir, urls: make(map[string]string)}, nil
}

// Dir returns the asset directory root.
func (s *Store) Dir() string {
	return s.dir
}

// SaveAsset writes data into the store and returns its asset ID, the hex
// SHA-256 of the content plus the original extension. Writing an already
// stored asset is a no-op.
func (s *Store) SaveAsset(ctx context.Context, data []byte, hint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	id := hex.EncodeToString(sum[:]) + normalizeExt(hint)

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}

	// Write through a temp file so a crash never leaves a truncated
	// asset under its final hash name.
	tmp, err := os.CreateTemp(s.dir, ".asset-*")
	if err != nil {
		return "", fmt.Errorf("create asset temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close asset temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("commit asset: %w", err)
	}

	slog.Debug("Stored asset", "id", id, "bytes", len(data))
	return id, nil
}

// Path returns the filesystem path for an asset ID, or an error if the
// asset does not exist.
func (s *Store) Path(id string) (string, error) {
	if !validID(id) {
		return "", fmt.Errorf("invalid asset id %q", id)
	}
	path := filepath.Join(s.dir, id)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("asset %s: %w", id, err)
	}
	return path, nil
}

// Read returns the asset's bytes.
func (s *Store) Read(id string) ([]byte, error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// RegisterURL records the URL an asset is currently served under, so the
// editor can revoke it when the page goes away.
func (s *Store) RegisterURL(id, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls[id] = url
}

// URL returns the registered URL for an asset, if any.
func (s *Store) URL(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.urls[id]
	return u, ok
}

// ReleaseURL drops the served-URL registration for an asset. The asset
// bytes stay in the store; only the serving handle is revoked.
func (s *Store) ReleaseURL(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.urls, id)
}

// ReleaseAll drops every served-URL registration.
func (s *Store) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = make(map[string]string)
}

// CleanupOrphans deletes stored assets whose IDs are not in used. It
// returns the number of files removed. Called on project close, after
// the surviving projects' asset references are collected.
func (s *Store) CleanupOrphans(used map[string]bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("scan asset dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") || !validID(name) {
			continue
		}
		if used[name] {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			slog.Warn("Failed to remove orphaned asset", "id", name, "error", err)
			continue
		}
		delete(s.urls, name)
		removed++
	}
	if removed > 0 {
		slog.Info("Cleaned up orphaned assets", "removed", removed)
	}
	return removed, nil
}

// validID accepts the hash-plus-extension names SaveAsset produces and
// rejects anything that could escape the asset directory.
func validID(id string) bool {
	if len(id) < sha256.Size*2 {
		return false
	}
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return false
	}
	if _, err := hex.DecodeString(id[:sha256.Size*2]); err != nil {
		return false
	}
	return true
}

func normalizeExt(hint string) string {
	ext := strings.ToLower(filepath.Ext(hint))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".pdf", ".mp3", ".wav":
		return ext
	case "":
		return ".bin"
	default:
		return ext
	}
}
