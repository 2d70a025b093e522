package assets

import (
	"fmt"
	"os"
)

// Resolver turns a stored audio reference into a local playable path.
// References are either an absolute path (externally linked files) or an
// asset ID in the store.
type Resolver struct {
	store *Store
}

// NewResolver creates a Resolver over the store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps a file ID or source hint to a readable path. The hint
// wins when it points at an existing file so externally linked audio
// keeps working without a store copy.
func (r *Resolver) Resolve(fileID, hint string) (string, error) {
	if hint != "" {
		if _, err := os.Stat(hint); err == nil {
			return hint, nil
		}
	}
	if fileID != "" {
		if path, err := r.store.Path(fileID); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("audio reference not found (id=%q hint=%q)", fileID, hint)
}
