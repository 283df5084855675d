package domain

import "errors"

// Domain errors
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrPlayerOnline        = errors.New("player is already online")
	ErrQueueEmpty          = errors.New("photo queue is empty")
	ErrAlreadyQueued       = errors.New("photo is already queued")
	ErrInvalidQueueIndex   = errors.New("queue index out of range")
	ErrNoCurrentPhoto      = errors.New("no photo in play")
	ErrPresenterCannotVote = errors.New("presenters cannot vote")
	ErrInvalidVoteTarget   = errors.New("vote target is not a presenter")
	ErrInvalidPhase        = errors.New("invalid action for current phase")
	ErrInvalidMode         = errors.New("unknown mode")
	ErrNotHost             = errors.New("only the host can perform this action")
	ErrEmptyName           = errors.New("name cannot be empty")
)
