package video

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// MaxContentBytes bounds the raw upload size. The whole file is base64-encoded
// in memory before it reaches the store, so the bound is enforced here rather
// than relying on callers.
const MaxContentBytes = 64 << 20 // 64 MiB

// ErrContentTooLarge is returned when a raw payload exceeds MaxContentBytes.
var ErrContentTooLarge = errors.New("video file exceeds the 64 MiB limit")

// EncodeContent converts a raw video payload to its stored base64 form.
// An empty payload encodes to "" — the marker for "no replacement file" on edit.
// PRE: none
// POST: returns the base64 string, or ErrContentTooLarge when over the bound
func EncodeContent(raw []byte) (string, error) {
	if len(raw) > MaxContentBytes {
		return "", ErrContentTooLarge
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeContent converts a stored base64 blob back to the raw payload.
// PRE: encoded was produced by EncodeContent
// POST: returns the exact bytes passed to EncodeContent
func DecodeContent(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("malformed video content: %w", err)
	}
	return raw, nil
}
