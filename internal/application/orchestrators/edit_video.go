package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"videohost/internal/domain/video"
)

// VideoStoreForEdit defines the store interface needed by EditVideo.
type VideoStoreForEdit interface {
	GetByID(ctx context.Context, id string) (video.Video, error)
	Update(ctx context.Context, v video.Video) error
}

// EditVideoInput carries input for the edit orchestrator.
type EditVideoInput struct {
	VideoID     string
	Title       string
	Description string
	TagText     string
	Content     []byte // empty means "keep the current file"
	EditorID    string // account ID from the session
}

// EditVideoDeps holds dependencies for EditVideo.
type EditVideoDeps struct {
	VideoStore VideoStoreForEdit
	TagStore   TagStoreForResolve
	GenerateID func() string
	Now        func() time.Time
}

// ErrNotOwner is returned when a mutation comes from someone other than the owner.
var ErrNotOwner = errors.New("only the owner can modify this video")

// ExecuteEditVideo replaces all mutable fields of an existing video. When the
// submitted payload is empty the previous content blob is kept byte-for-byte.
// PRE: EditorID identifies the authenticated account
// POST: Video row and tag associations replaced together, or an error with
// nothing written
func ExecuteEditVideo(ctx context.Context, input EditVideoInput, deps EditVideoDeps) (video.Video, error) {
	if input.EditorID == "" {
		return video.Video{}, ErrMissingOwner
	}

	existing, err := deps.VideoStore.GetByID(ctx, input.VideoID)
	if err != nil {
		return video.Video{}, err
	}
	if existing.OwnerID != input.EditorID {
		return video.Video{}, ErrNotOwner
	}

	content, err := video.EncodeContent(input.Content)
	if err != nil {
		return video.Video{}, err
	}
	if content == "" {
		content = existing.Content
	}

	tags, err := ExecuteResolveTags(ctx, input.TagText, ResolveTagsDeps{
		TagStore:   deps.TagStore,
		GenerateID: deps.GenerateID,
		Now:        deps.Now,
	})
	if err != nil {
		return video.Video{}, err
	}

	v := video.Video{
		ID:          existing.ID,
		Title:       input.Title,
		Description: input.Description,
		Content:     content,
		OwnerID:     existing.OwnerID,
		UploadedAt:  deps.Now(),
		Tags:        tags,
	}
	if err := v.Validate(); err != nil {
		return video.Video{}, err
	}

	if err := deps.VideoStore.Update(ctx, v); err != nil {
		return video.Video{}, err
	}

	slog.Info("video_event", "event", "video_edited", "video_id", v.ID, "title", v.Title, "editor", input.EditorID)
	return v, nil
}
