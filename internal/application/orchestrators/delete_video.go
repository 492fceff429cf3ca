package orchestrators

import (
	"context"
	"log/slog"

	"videohost/internal/domain/video"
)

// VideoStoreForDelete defines the store interface needed by DeleteVideo.
type VideoStoreForDelete interface {
	GetByID(ctx context.Context, id string) (video.Video, error)
	Delete(ctx context.Context, id string) error
}

// DeleteVideoInput carries input for the delete orchestrator.
type DeleteVideoInput struct {
	VideoID  string
	EditorID string // account ID from the session
}

// DeleteVideoDeps holds dependencies for DeleteVideo.
type DeleteVideoDeps struct {
	VideoStore VideoStoreForDelete
}

// ExecuteDeleteVideo removes a video after checking it exists and that the
// caller owns it. A missing id surfaces the store's not-found error rather
// than dereferencing an absent row.
// PRE: EditorID identifies the authenticated account
// POST: Video and its associations removed, or an error
func ExecuteDeleteVideo(ctx context.Context, input DeleteVideoInput, deps DeleteVideoDeps) error {
	if input.EditorID == "" {
		return ErrMissingOwner
	}

	existing, err := deps.VideoStore.GetByID(ctx, input.VideoID)
	if err != nil {
		return err
	}
	if existing.OwnerID != input.EditorID {
		return ErrNotOwner
	}

	if err := deps.VideoStore.Delete(ctx, input.VideoID); err != nil {
		return err
	}

	slog.Info("video_event", "event", "video_deleted", "video_id", input.VideoID, "title", existing.Title, "editor", input.EditorID)
	return nil
}
