package video

import (
	"errors"
	"strings"
	"time"
)

// MaxTagLength is the maximum length for a tag name.
const MaxTagLength = 50

// Tag represents a label applied to videos for organization.
// Tags are created lazily on first use and are never updated or deleted.
type Tag struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Validate checks the tag's invariants.
// PRE: none
// POST: returns nil if valid, error describing first violation otherwise
func (t *Tag) Validate() error {
	if t.Name == "" {
		return errors.New("tag name cannot be empty")
	}
	if t.Name != strings.TrimSpace(t.Name) {
		return errors.New("tag name cannot have surrounding whitespace")
	}
	if len(t.Name) > MaxTagLength {
		return errors.New("tag name cannot exceed 50 characters")
	}
	return nil
}

// VideoTag represents the many-to-many relationship between videos and tags.
// Position preserves the order tags were submitted in, so the edit form can
// serialize them back in the same order.
type VideoTag struct {
	VideoID   string
	TagID     string
	Position  int
	CreatedAt time.Time
}
