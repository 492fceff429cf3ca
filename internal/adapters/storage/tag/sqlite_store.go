package tag

import (
	"context"
	"database/sql"
	"errors"

	"videohost/internal/adapters/storage"
	domain "videohost/internal/domain/video"
)

// ErrNotFound is returned when no tag matches the lookup.
var ErrNotFound = errors.New("tag not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new tag store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByName retrieves a tag by exact (post-trim) name.
// PRE: name is non-empty and trimmed
// POST: Returns the tag or ErrNotFound
func (s *SQLiteStore) GetByName(ctx context.Context, name string) (domain.Tag, error) {
	var t domain.Tag
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM tags WHERE name = ?", name,
	).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tag{}, ErrNotFound
	}
	return t, err
}

// Save inserts a new tag.
// PRE: tag has been validated and its name is not already present
// POST: Tag is persisted; error if the name collides or the database fails
func (s *SQLiteStore) Save(ctx context.Context, t domain.Tag) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)",
		t.ID, t.Name, t.CreatedAt,
	)
	return err
}

// ListAll returns all tags ordered by name.
// PRE: none
// POST: Returns every tag; error if database fails
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM tags ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
