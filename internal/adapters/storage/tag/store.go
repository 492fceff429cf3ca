package tag

import (
	"context"

	domain "videohost/internal/domain/video"
)

// Store persists Tag state. Tags are created lazily on first use and never
// updated or deleted by the application.
type Store interface {
	GetByName(ctx context.Context, name string) (domain.Tag, error)
	Save(ctx context.Context, t domain.Tag) error
	ListAll(ctx context.Context) ([]domain.Tag, error)
}
