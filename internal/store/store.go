// Package store provides the key-path entity store the room sessions
// persist through. Records are addressed by slash-separated paths,
// e.g. rooms/VTRY/players/abc. Each single-path write is atomic;
// cross-path consistency is the caller's responsibility (the room
// session serializes all writes for its room).
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when no record exists at the requested path
var ErrNotFound = errors.New("record not found")

// Store is the entity store port
type Store interface {
	// Read returns the raw record at path, or ErrNotFound
	Read(ctx context.Context, path string) (json.RawMessage, error)

	// Write marshals value and stores it at path, replacing any
	// existing record
	Write(ctx context.Context, path string, value interface{}) error

	// Delete removes the record at path; deleting a missing record is
	// a no-op
	Delete(ctx context.Context, path string) error

	// List returns all records directly under prefix, keyed by their
	// final path segment
	List(ctx context.Context, prefix string) (map[string]json.RawMessage, error)

	// Close releases any resources held by the store
	Close()
}

// Path helpers for the per-room collections

func GamePath(roomCode string) string {
	return "rooms/" + roomCode + "/game"
}

func PlayerPath(roomCode, playerID string) string {
	return PlayersPrefix(roomCode) + "/" + playerID
}

func PlayersPrefix(roomCode string) string {
	return "rooms/" + roomCode + "/players"
}

func SubmissionPath(roomCode, submissionID string) string {
	return SubmissionsPrefix(roomCode) + "/" + submissionID
}

func SubmissionsPrefix(roomCode string) string {
	return "rooms/" + roomCode + "/submissions"
}

func SlideshowPath(roomCode, photoID string) string {
	return SlideshowPrefix(roomCode) + "/" + photoID
}

func SlideshowPrefix(roomCode string) string {
	return "rooms/" + roomCode + "/slideshow"
}

func PromptPath(roomCode, promptID string) string {
	return PromptsPrefix(roomCode) + "/" + promptID
}

func PromptsPrefix(roomCode string) string {
	return "rooms/" + roomCode + "/prompts"
}
