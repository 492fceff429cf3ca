package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"videohost/internal/domain/video"
)

// VideoStoreForUpload defines the store interface needed by UploadVideo.
type VideoStoreForUpload interface {
	Save(ctx context.Context, v video.Video) error
}

// UploadVideoInput carries input for the upload orchestrator.
type UploadVideoInput struct {
	Title       string
	Description string
	TagText     string // comma-separated tag names
	Content     []byte // raw uploaded file
	OwnerID     string // account ID from the session
}

// UploadVideoDeps holds dependencies for UploadVideo.
type UploadVideoDeps struct {
	VideoStore VideoStoreForUpload
	TagStore   TagStoreForResolve
	GenerateID func() string
	Now        func() time.Time
}

// ErrMissingOwner is returned when a mutation has no authenticated owner.
var ErrMissingOwner = errors.New("an authenticated user is required")

// ExecuteUploadVideo encodes the payload, resolves tags, and persists a new
// video owned by the session user, stamped with the current time.
// PRE: OwnerID identifies the authenticated account
// POST: Video and its tag associations persisted together, or an error with
// nothing written
func ExecuteUploadVideo(ctx context.Context, input UploadVideoInput, deps UploadVideoDeps) (video.Video, error) {
	if input.OwnerID == "" {
		return video.Video{}, ErrMissingOwner
	}

	content, err := video.EncodeContent(input.Content)
	if err != nil {
		return video.Video{}, err
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
		ID:          deps.GenerateID(),
		Title:       input.Title,
		Description: input.Description,
		Content:     content,
		OwnerID:     input.OwnerID,
		UploadedAt:  deps.Now(),
		Tags:        tags,
	}
	if err := v.Validate(); err != nil {
		return video.Video{}, err
	}

	if err := deps.VideoStore.Save(ctx, v); err != nil {
		return video.Video{}, err
	}

	slog.Info("video_event", "event", "video_uploaded", "video_id", v.ID, "title", v.Title, "owner", v.OwnerID, "tags", len(tags))
	return v, nil
}
