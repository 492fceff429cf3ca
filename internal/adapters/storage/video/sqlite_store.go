package video

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"videohost/internal/adapters/storage"
	domain "videohost/internal/domain/video"
)

// Store errors
var (
	ErrNotFound       = errors.New("video not found")
	ErrDuplicateTitle = errors.New("a video with this title already exists")
)

const selectVideo = `SELECT v.id, v.title, v.description, v.content, v.owner_id, a.email, v.uploaded_at
	 FROM videos v JOIN account a ON a.id = v.owner_id`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new video store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// isDuplicateTitle reports whether err is the UNIQUE violation on videos.title.
func isDuplicateTitle(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: videos.title")
}

// Save persists a new video and its tag associations in one transaction.
// PRE: v has been validated; v.Tags are persisted tags
// POST: Row and associations committed together, or nothing; ErrDuplicateTitle
// when the title is taken
func (s *SQLiteStore) Save(ctx context.Context, v domain.Video) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO videos (id, title, description, content, owner_id, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.Title, v.Description, v.Content, v.OwnerID, v.UploadedAt,
	)
	if isDuplicateTitle(err) {
		return ErrDuplicateTitle
	}
	if err != nil {
		return err
	}

	if err := insertAssociations(ctx, tx, v); err != nil {
		return err
	}

	return tx.Commit()
}

// Update replaces all mutable fields of the row identified by v.ID and
// rewrites its tag associations, in one transaction.
// PRE: v has been validated; v.ID identifies an existing row
// POST: Row and associations replaced together, or nothing; ErrNotFound when
// no row exists for v.ID
func (s *SQLiteStore) Update(ctx context.Context, v domain.Video) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE videos SET title = ?, description = ?, content = ?, owner_id = ?, uploaded_at = ?
		 WHERE id = ?`,
		v.Title, v.Description, v.Content, v.OwnerID, v.UploadedAt, v.ID,
	)
	if isDuplicateTitle(err) {
		return ErrDuplicateTitle
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM video_tags WHERE video_id = ?", v.ID); err != nil {
		return err
	}
	if err := insertAssociations(ctx, tx, v); err != nil {
		return err
	}

	return tx.Commit()
}

// insertAssociations writes the video_tags rows for v.Tags. Repeated tags in
// the slice collapse to a single association keeping the first position.
func insertAssociations(ctx context.Context, tx *sql.Tx, v domain.Video) error {
	seen := make(map[string]bool, len(v.Tags))
	position := 0
	for _, t := range v.Tags {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		_, err := tx.ExecContext(ctx,
			`INSERT INTO video_tags (video_id, tag_id, position, created_at) VALUES (?, ?, ?, ?)`,
			v.ID, t.ID, position, v.UploadedAt,
		)
		if err != nil {
			return err
		}
		position++
	}
	return nil
}

// ListAll returns every video with its owner resolved, newest first.
// PRE: none
// POST: Returns videos ordered by upload date descending, id as tiebreak
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Video, error) {
	rows, err := s.db.QueryContext(ctx, selectVideo+" ORDER BY v.uploaded_at DESC, v.id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Video
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.Content, &v.OwnerID, &v.OwnerEmail, &v.UploadedAt); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// GetByTitle retrieves a video by exact title.
// PRE: title is non-empty
// POST: Returns the video or ErrNotFound, never a crash
func (s *SQLiteStore) GetByTitle(ctx context.Context, title string) (domain.Video, error) {
	return s.getOne(ctx, " WHERE v.title = ?", title)
}

// GetByID retrieves a video by ID.
// PRE: id is non-empty
// POST: Returns the video or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Video, error) {
	return s.getOne(ctx, " WHERE v.id = ?", id)
}

func (s *SQLiteStore) getOne(ctx context.Context, where string, arg any) (domain.Video, error) {
	var v domain.Video
	err := s.db.QueryRowContext(ctx, selectVideo+where, arg).
		Scan(&v.ID, &v.Title, &v.Description, &v.Content, &v.OwnerID, &v.OwnerEmail, &v.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Video{}, ErrNotFound
	}
	return v, err
}

// Delete removes a video; its associations cascade.
// PRE: id is non-empty
// POST: Row removed, or ErrNotFound when no row exists for id
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTags returns the video's tags in association order.
// PRE: videoID is non-empty
// POST: Returns tags ordered by position; error if database fails
func (s *SQLiteStore) GetTags(ctx context.Context, videoID string) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.created_at
		 FROM tags t
		 JOIN video_tags vt ON t.id = vt.tag_id
		 WHERE vt.video_id = ?
		 ORDER BY vt.position ASC`, videoID)
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
