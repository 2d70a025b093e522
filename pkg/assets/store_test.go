package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestSaveAssetContentAddressed(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.SaveAsset(ctx, []byte("image-bytes"), "photo.PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, ".png"), "extension normalized to lowercase")
	assert.Len(t, id, 64+4, "id is hex sha256 plus extension")

	// Same bytes, same id: the second save is a no-op.
	id2, err := s.SaveAsset(ctx, []byte("image-bytes"), "other-name.png")
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "duplicate content stored once")

	data, err := s.Read(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
}

func TestSaveAssetCancelledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SaveAsset(ctx, []byte("x"), "a.png")
	assert.Error(t, err)
}

func TestPathRejectsTraversal(t *testing.T) {
	s := newStore(t)

	for _, id := range []string{
		"../../etc/passwd",
		"short",
		"deadbeef/../../x",
		strings.Repeat("zz", 32) + ".png", // not hex
	} {
		_, err := s.Path(id)
		assert.Error(t, err, "id %q must be rejected", id)
	}
}

func TestPathMissingAsset(t *testing.T) {
	s := newStore(t)
	_, err := s.Path(strings.Repeat("ab", 32) + ".png")
	assert.Error(t, err)
}

func TestURLRegistry(t *testing.T) {
	s := newStore(t)

	s.RegisterURL("id1", "blob:abc")
	u, ok := s.URL("id1")
	assert.True(t, ok)
	assert.Equal(t, "blob:abc", u)

	s.ReleaseURL("id1")
	_, ok = s.URL("id1")
	assert.False(t, ok)

	s.RegisterURL("id2", "blob:def")
	s.ReleaseAll()
	_, ok = s.URL("id2")
	assert.False(t, ok)
}

func TestCleanupOrphans(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	kept, err := s.SaveAsset(ctx, []byte("kept"), "a.png")
	require.NoError(t, err)
	orphan, err := s.SaveAsset(ctx, []byte("orphan"), "b.png")
	require.NoError(t, err)

	// Dotfiles and foreign files are never touched.
	foreign := filepath.Join(s.Dir(), "notes.txt")
	require.NoError(t, os.WriteFile(foreign, []byte("keep me"), 0o644))

	removed, err := s.CleanupOrphans(map[string]bool{kept: true})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.Path(kept)
	assert.NoError(t, err)
	_, err = s.Path(orphan)
	assert.Error(t, err, "orphan is gone")
	_, err = os.Stat(foreign)
	assert.NoError(t, err, "non-asset files survive")
}
