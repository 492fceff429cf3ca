package orchestrators

import (
	"context"
	"errors"
	"strings"
	"time"

	tagStore "videohost/internal/adapters/storage/tag"
	"videohost/internal/domain/video"
)

// TagStoreForResolve defines the store interface needed by ResolveTags.
// GetByName reports an absent tag with tagStore.ErrNotFound.
type TagStoreForResolve interface {
	GetByName(ctx context.Context, name string) (video.Tag, error)
	Save(ctx context.Context, t video.Tag) error
}

// ResolveTagsDeps holds dependencies for ResolveTags.
type ResolveTagsDeps struct {
	TagStore   TagStoreForResolve
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteResolveTags turns a comma-separated tag string into tag entities with
// find-or-create semantics. Tokens are trimmed; empty tokens (from consecutive
// or trailing commas) are skipped. The result keeps token order, and a token
// repeated within one call yields repeated entries referencing the same tag.
// PRE: none — the empty string resolves to an empty list
// POST: Every returned tag is persisted; missing tags were created
func ExecuteResolveTags(ctx context.Context, text string, deps ResolveTagsDeps) ([]video.Tag, error) {
	var tags []video.Tag
	// Tags created or fetched earlier in this same call, by name.
	resolved := make(map[string]video.Tag)

	for _, token := range strings.Split(text, ",") {
		name := strings.TrimSpace(token)
		if name == "" {
			continue
		}

		if t, ok := resolved[name]; ok {
			tags = append(tags, t)
			continue
		}

		t, err := deps.TagStore.GetByName(ctx, name)
		if errors.Is(err, tagStore.ErrNotFound) {
			// Not in the store yet: create it.
			t = video.Tag{
				ID:        deps.GenerateID(),
				Name:      name,
				CreatedAt: deps.Now(),
			}
			if err := t.Validate(); err != nil {
				return nil, err
			}
			if err := deps.TagStore.Save(ctx, t); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}

		resolved[name] = t
		tags = append(tags, t)
	}
	return tags, nil
}

// TagsToString is the inverse of ExecuteResolveTags for edit forms: tag names
// joined by commas, no trailing comma. An empty list yields the empty string.
// INVARIANT: tags are not mutated
func TagsToString(tags []video.Tag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ",")
}
