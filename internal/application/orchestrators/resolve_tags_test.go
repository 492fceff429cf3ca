package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tagStore "videohost/internal/adapters/storage/tag"
	"videohost/internal/domain/video"
)

// mockTagStore implements TagStoreForResolve for testing.
type mockTagStore struct {
	byName    map[string]video.Tag
	saves     int
	saveErr   error
	lookupErr error
}

func newMockTagStore() *mockTagStore {
	return &mockTagStore{byName: make(map[string]video.Tag)}
}

// GetByName implements TagStoreForResolve.
// PRE: name is non-empty
// POST: returns the tag, ErrNotFound when absent, or the injected failure
func (m *mockTagStore) GetByName(_ context.Context, name string) (video.Tag, error) {
	if m.lookupErr != nil {
		return video.Tag{}, m.lookupErr
	}
	if t, ok := m.byName[name]; ok {
		return t, nil
	}
	return video.Tag{}, tagStore.ErrNotFound
}

// Save implements TagStoreForResolve.
// PRE: tag is valid
// POST: tag is stored and the save counted
func (m *mockTagStore) Save(_ context.Context, t video.Tag) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.byName[t.Name] = t
	return nil
}

var fixedTime = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// seqID returns a generator producing "id-1", "id-2", ...
func seqID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// TestExecuteResolveTags_DuplicateToken verifies "a, b ,a" creates two tags
// and returns a 3-element sequence in token order.
func TestExecuteResolveTags_DuplicateToken(t *testing.T) {
	store := newMockTagStore()
	tags, err := ExecuteResolveTags(context.Background(), "a, b ,a", ResolveTagsDeps{
		TagStore:   store,
		GenerateID: seqID(),
		Now:        fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(tags))
	}
	if tags[0].Name != "a" || tags[1].Name != "b" || tags[2].Name != "a" {
		t.Errorf("expected [a b a], got [%s %s %s]", tags[0].Name, tags[1].Name, tags[2].Name)
	}
	if tags[0].ID != tags[2].ID {
		t.Error("repeated token must reference the same tag entity")
	}
	if store.saves != 2 {
		t.Errorf("expected exactly 2 tags created, got %d", store.saves)
	}
}

// TestExecuteResolveTags_ReusesExisting verifies find-or-create reuses persisted tags.
func TestExecuteResolveTags_ReusesExisting(t *testing.T) {
	store := newMockTagStore()
	store.byName["guard"] = video.Tag{ID: "existing-1", Name: "guard", CreatedAt: fixedTime}

	tags, err := ExecuteResolveTags(context.Background(), "guard, sweep", ResolveTagsDeps{
		TagStore:   store,
		GenerateID: seqID(),
		Now:        fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tags[0].ID != "existing-1" {
		t.Errorf("expected existing tag reused, got id %s", tags[0].ID)
	}
	if store.saves != 1 {
		t.Errorf("expected only the missing tag created, got %d saves", store.saves)
	}
}

// TestExecuteResolveTags_EmptyTokens verifies empty segments are skipped.
func TestExecuteResolveTags_EmptyTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty string", "", nil},
		{"only commas", ",,,", nil},
		{"only whitespace", "  ,  ", nil},
		{"consecutive commas", "x,,y", []string{"x", "y"}},
		{"trailing comma", "x,y,", []string{"x", "y"}},
		{"leading comma", ",x", []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags, err := ExecuteResolveTags(context.Background(), tt.text, ResolveTagsDeps{
				TagStore:   newMockTagStore(),
				GenerateID: seqID(),
				Now:        fixedNow,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tags) != len(tt.want) {
				t.Fatalf("expected %d tags, got %d", len(tt.want), len(tags))
			}
			for i, w := range tt.want {
				if tags[i].Name != w {
					t.Errorf("position %d: expected %s, got %s", i, w, tags[i].Name)
				}
			}
		})
	}
}

// TestExecuteResolveTags_LookupFailure verifies a lookup error other than
// not-found propagates instead of being treated as an absent tag.
func TestExecuteResolveTags_LookupFailure(t *testing.T) {
	store := newMockTagStore()
	store.byName["existing-tag"] = video.Tag{ID: "existing-1", Name: "existing-tag", CreatedAt: fixedTime}
	store.lookupErr = errors.New("database is locked")

	_, err := ExecuteResolveTags(context.Background(), "existing-tag", ResolveTagsDeps{
		TagStore:   store,
		GenerateID: seqID(),
		Now:        fixedNow,
	})
	if err == nil {
		t.Fatal("expected lookup failure to surface")
	}
	if store.saves != 0 {
		t.Errorf("lookup failure must not trigger a create, got %d saves", store.saves)
	}
}

// TestExecuteResolveTags_SaveFailure verifies a persistence failure surfaces.
func TestExecuteResolveTags_SaveFailure(t *testing.T) {
	store := newMockTagStore()
	store.saveErr = errors.New("disk full")

	if _, err := ExecuteResolveTags(context.Background(), "new-tag", ResolveTagsDeps{
		TagStore:   store,
		GenerateID: seqID(),
		Now:        fixedNow,
	}); err == nil {
		t.Error("expected save failure to surface")
	}
}

// TestTagsToString verifies serialization including the empty-list contract.
func TestTagsToString(t *testing.T) {
	if got := TagsToString(nil); got != "" {
		t.Errorf("empty list must yield empty string, got %q", got)
	}
	tags := []video.Tag{{Name: "a"}, {Name: "b"}, {Name: "a"}}
	if got := TagsToString(tags); got != "a,b,a" {
		t.Errorf("expected a,b,a, got %q", got)
	}
}

// TestResolveTags_RoundTrip verifies TagsToString(ResolveTags(s)) preserves the
// trimmed, non-empty token set.
func TestResolveTags_RoundTrip(t *testing.T) {
	inputs := []string{"a, b ,a", "x,y,x", "solo", "spaced out , tight"}
	for _, s := range inputs {
		tags, err := ExecuteResolveTags(context.Background(), s, ResolveTagsDeps{
			TagStore:   newMockTagStore(),
			GenerateID: seqID(),
			Now:        fixedNow,
		})
		if err != nil {
			t.Fatalf("ExecuteResolveTags(%q): %v", s, err)
		}

		want := make(map[string]bool)
		for _, token := range strings.Split(s, ",") {
			if name := strings.TrimSpace(token); name != "" {
				want[name] = true
			}
		}
		got := make(map[string]bool)
		for _, name := range strings.Split(TagsToString(tags), ",") {
			if name != "" {
				got[name] = true
			}
		}

		if len(got) != len(want) {
			t.Errorf("%q: token sets differ: got %v want %v", s, got, want)
			continue
		}
		for name := range want {
			if !got[name] {
				t.Errorf("%q: missing token %q after round trip", s, name)
			}
		}
	}
}
