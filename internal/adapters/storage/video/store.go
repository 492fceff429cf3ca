package video

import (
	"context"

	domain "videohost/internal/domain/video"
)

// Store persists Video state and video-tag associations. Every mutating
// operation runs in its own transaction; failures surface to the caller.
type Store interface {
	Save(ctx context.Context, v domain.Video) error
	Update(ctx context.Context, v domain.Video) error
	ListAll(ctx context.Context) ([]domain.Video, error)
	GetByTitle(ctx context.Context, title string) (domain.Video, error)
	GetByID(ctx context.Context, id string) (domain.Video, error)
	Delete(ctx context.Context, id string) error
	GetTags(ctx context.Context, videoID string) ([]domain.Tag, error)
}
