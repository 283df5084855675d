// Package blob abstracts photo byte storage. Uploads return a
// retrievable URL; a 200x200 webp thumbnail is expected at a sibling
// path, falling back to the original when derivation never happened.
package blob

import (
	"context"
	"strings"
)

// Store is the blob store port
type Store interface {
	// Save stores the bytes under a room/player/category-scoped path
	// and returns a retrievable URL
	Save(ctx context.Context, path string, data []byte, contentType string) (string, error)

	// Delete removes the blob behind url. Missing blobs are not an
	// error; callers treat deletion as best-effort cleanup.
	Delete(ctx context.Context, url string) error
}

// ThumbnailURL returns the expected 200x200 webp sibling for a photo
// URL. Lookup is best-effort: callers fall back to the original URL
// when the thumbnail does not exist.
func ThumbnailURL(url string) string {
	if url == "" {
		return ""
	}
	dot := strings.LastIndex(url, ".")
	slash := strings.LastIndex(url, "/")
	if dot <= slash {
		return url + "_200x200.webp"
	}
	return url[:dot] + "_200x200.webp"
}

// ObjectPath builds the storage path for an uploaded photo
func ObjectPath(roomCode, playerID, category, filename string) string {
	return roomCode + "/" + playerID + "/" + category + "/" + filename
}
