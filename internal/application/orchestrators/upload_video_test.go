package orchestrators

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"videohost/internal/domain/video"
)

// mockVideoStore implements the video store interfaces for testing.
type mockVideoStore struct {
	videos    map[string]video.Video
	saveErr   error
	updateErr error
	deleteErr error
	deleted   []string
}

func newMockVideoStore() *mockVideoStore {
	return &mockVideoStore{videos: make(map[string]video.Video)}
}

func (m *mockVideoStore) Save(_ context.Context, v video.Video) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.videos[v.ID] = v
	return nil
}

func (m *mockVideoStore) Update(_ context.Context, v video.Video) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.videos[v.ID]; !ok {
		return errors.New("video not found")
	}
	m.videos[v.ID] = v
	return nil
}

func (m *mockVideoStore) GetByID(_ context.Context, id string) (video.Video, error) {
	if v, ok := m.videos[id]; ok {
		return v, nil
	}
	return video.Video{}, errors.New("video not found")
}

func (m *mockVideoStore) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.videos[id]; !ok {
		return errors.New("video not found")
	}
	delete(m.videos, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestExecuteUploadVideo(t *testing.T) {
	store := newMockVideoStore()
	raw := []byte{0x00, 0x01, 0xFF, 0x42}

	v, err := ExecuteUploadVideo(context.Background(), UploadVideoInput{
		Title:       "First Upload",
		Description: "A short clip",
		TagText:     "demo, intro",
		Content:     raw,
		OwnerID:     "owner-1",
	}, UploadVideoDeps{
		VideoStore: store,
		TagStore:   newMockTagStore(),
		GenerateID: seqID(),
		Now:        fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.OwnerID != "owner-1" {
		t.Errorf("expected owner-1, got %s", v.OwnerID)
	}
	if !v.UploadedAt.Equal(fixedTime) {
		t.Errorf("expected upload timestamp %v, got %v", fixedTime, v.UploadedAt)
	}
	if v.Content != base64.StdEncoding.EncodeToString(raw) {
		t.Error("content must be stored base64-encoded")
	}
	if len(v.Tags) != 2 {
		t.Errorf("expected 2 tags, got %d", len(v.Tags))
	}
	if _, ok := store.videos[v.ID]; !ok {
		t.Error("video was not persisted")
	}
}

func TestExecuteUploadVideo_MissingOwner(t *testing.T) {
	_, err := ExecuteUploadVideo(context.Background(), UploadVideoInput{
		Title:   "No Owner",
		Content: []byte("data"),
	}, UploadVideoDeps{
		VideoStore: newMockVideoStore(),
		TagStore:   newMockTagStore(),
		GenerateID: seqID(),
		Now:        fixedNow,
	})
	if !errors.Is(err, ErrMissingOwner) {
		t.Errorf("expected ErrMissingOwner, got %v", err)
	}
}

func TestExecuteUploadVideo_InvalidTitle(t *testing.T) {
	store := newMockVideoStore()
	_, err := ExecuteUploadVideo(context.Background(), UploadVideoInput{
		Title:   "   ",
		Content: []byte("data"),
		OwnerID: "owner-1",
	}, UploadVideoDeps{
		VideoStore: store,
		TagStore:   newMockTagStore(),
		GenerateID: seqID(),
		Now:        fixedNow,
	})
	if !errors.Is(err, video.ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
	if len(store.videos) != 0 {
		t.Error("invalid video must not be persisted")
	}
}

func TestExecuteUploadVideo_ContentTooLarge(t *testing.T) {
	_, err := ExecuteUploadVideo(context.Background(), UploadVideoInput{
		Title:   "Huge",
		Content: make([]byte, video.MaxContentBytes+1),
		OwnerID: "owner-1",
	}, UploadVideoDeps{
		VideoStore: newMockVideoStore(),
		TagStore:   newMockTagStore(),
		GenerateID: seqID(),
		Now:        fixedNow,
	})
	if !errors.Is(err, video.ErrContentTooLarge) {
		t.Errorf("expected ErrContentTooLarge, got %v", err)
	}
}

func TestExecuteUploadVideo_SaveFailure(t *testing.T) {
	store := newMockVideoStore()
	store.saveErr = errors.New("database is locked")

	_, err := ExecuteUploadVideo(context.Background(), UploadVideoInput{
		Title:   "Doomed",
		Content: []byte("data"),
		OwnerID: "owner-1",
	}, UploadVideoDeps{
		VideoStore: store,
		TagStore:   newMockTagStore(),
		GenerateID: seqID(),
		Now:        fixedNow,
	})
	if err == nil {
		t.Error("expected persistence failure to surface")
	}
}
