package video

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
)

// Validation errors for videos.
var (
	ErrEmptyTitle         = errors.New("video title cannot be empty")
	ErrTitleTooLong       = errors.New("video title cannot exceed 200 characters")
	ErrDescriptionTooLong = errors.New("video description cannot exceed 5000 characters")
	ErrMissingOwnerID     = errors.New("video owner ID cannot be empty")
)

// Video represents one hosted video: a base64-encoded content blob plus the
// metadata shown on the listing and detail pages.
// INVARIANT: A video always has exactly one owner via OwnerID.
type Video struct {
	ID          string
	Title       string // unique across all videos
	Description string // rendered as markdown on the detail page
	Content     string // base64-encoded video file
	OwnerID     string // account ID of the uploader
	OwnerEmail  string // resolved with the video for display
	UploadedAt  time.Time
	Tags        []Tag // loaded on demand, association order
}

// Validate checks the video's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (v *Video) Validate() error {
	if strings.TrimSpace(v.Title) == "" {
		return ErrEmptyTitle
	}
	if len(v.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if len(v.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if v.OwnerID == "" {
		return ErrMissingOwnerID
	}
	return nil
}
