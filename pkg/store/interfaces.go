package store

import (
	"context"
	"time"
)

// ProjectRecord is one row of the recent-projects index. The index holds
// metadata only; project bodies live as JSON files on disk.
type ProjectRecord struct {
	ID           string
	Name         string
	PageCount    int
	SegmentCount int
	UpdatedAt    time.Time
	LastOpenedAt time.Time
}

// ProjectIndexStore handles the recent-projects index.
type ProjectIndexStore interface {
	GetProjectRecord(ctx context.Context, id string) (*ProjectRecord, error)
	UpsertProjectRecord(ctx context.Context, rec *ProjectRecord) error
	TouchProjectOpened(ctx context.Context, id string) error
	ListRecentProjects(ctx context.Context, limit int) ([]*ProjectRecord, error)
	DeleteProjectRecord(ctx context.Context, id string) error
}

// StateStore handles persistent application state (volume, last project,
// window preferences).
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}
