package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/db"
)

// Store composes all sub-interfaces for full store access. Consumers
// should depend on specific sub-interfaces when possible.
type Store interface {
	ProjectIndexStore
	StateStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Project index ---

func (s *SQLiteStore) GetProjectRecord(ctx context.Context, id string) (*ProjectRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, page_count, segment_count, updated_at, last_opened_at
		 FROM project_index WHERE id = ?`, id)

	var rec ProjectRecord
	var updatedAt, lastOpenedAt sql.NullTime
	err := row.Scan(&rec.ID, &rec.Name, &rec.PageCount, &rec.SegmentCount, &updatedAt, &lastOpenedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time
	}
	if lastOpenedAt.Valid {
		rec.LastOpenedAt = lastOpenedAt.Time
	}
	return &rec, nil
}

func (s *SQLiteStore) UpsertProjectRecord(ctx context.Context, rec *ProjectRecord) error {
	query := `INSERT INTO project_index (id, name, page_count, segment_count, updated_at, last_opened_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			page_count = excluded.page_count,
			segment_count = excluded.segment_count,
			updated_at = excluded.updated_at`
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	// A never-opened project must store NULL so recency falls through to
	// updated_at; a zero time.Time would sort it behind everything.
	var lastOpened any
	if !rec.LastOpenedAt.IsZero() {
		lastOpened = rec.LastOpenedAt
	}
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.PageCount, rec.SegmentCount, updatedAt, lastOpened)
	return err
}

func (s *SQLiteStore) TouchProjectOpened(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE project_index SET last_opened_at = ? WHERE id = ?", time.Now(), id)
	return err
}

func (s *SQLiteStore) ListRecentProjects(ctx context.Context, limit int) ([]*ProjectRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, page_count, segment_count, updated_at, last_opened_at
		 FROM project_index
		 ORDER BY COALESCE(last_opened_at, updated_at) DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*ProjectRecord
	for rows.Next() {
		var rec ProjectRecord
		var updatedAt, lastOpenedAt sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.PageCount, &rec.SegmentCount, &updatedAt, &lastOpenedAt); err != nil {
			return nil, err
		}
		if updatedAt.Valid {
			rec.UpdatedAt = updatedAt.Time
		}
		if lastOpenedAt.Valid {
			rec.LastOpenedAt = lastOpenedAt.Time
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

func (s *SQLiteStore) DeleteProjectRecord(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM project_index WHERE id = ?", id)
	return err
}

// --- Persistent state ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Failed to read persistent state", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}
