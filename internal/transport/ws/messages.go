package ws

import (
	"encoding/json"
	"time"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server intents
const (
	MsgJoinRoom           MessageType = "join_room"
	MsgRejoin             MessageType = "rejoin"
	MsgVolunteer          MessageType = "volunteer"
	MsgUnvolunteer        MessageType = "unvolunteer"
	MsgCastVote           MessageType = "cast_vote"
	MsgSubmitPrompt       MessageType = "submit_prompt"
	MsgPing               MessageType = "ping"
	MsgAdvancePhase       MessageType = "advance_phase"
	MsgPlayNext           MessageType = "play_next"
	MsgEnqueuePhoto       MessageType = "enqueue_photo"
	MsgDequeuePhoto       MessageType = "dequeue_photo"
	MsgReorderQueue       MessageType = "reorder_queue"
	MsgAdjustPoints       MessageType = "adjust_points"
	MsgSetMode            MessageType = "set_mode"
	MsgSetPhase           MessageType = "set_phase"
	MsgStartTimer         MessageType = "start_timer"
	MsgClearTimer         MessageType = "clear_timer"
	MsgShufflePresenters  MessageType = "shuffle_presenters"
	MsgUpdateTimerSetting MessageType = "update_timer_setting"
	MsgToggleAutoAdvance  MessageType = "toggle_auto_advance"
	MsgRevealResults      MessageType = "reveal_results"
	MsgResetRoom          MessageType = "reset_room"
	MsgDeletePlayer       MessageType = "delete_player"
	MsgKickPlayer         MessageType = "kick_player"
	MsgCleanupOrphans     MessageType = "cleanup_orphans"
)

// Server → Client message types
const (
	MsgConnected MessageType = "connected"
	MsgEvent     MessageType = "event"
	MsgError     MessageType = "error"
	MsgPong      MessageType = "pong"
)

// ClientMessage represents an intent from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Intent payloads

type JoinRoomPayload struct {
	Name      string `json:"name"`
	SelfieURL string `json:"selfieUrl"`
}

type RejoinPayload struct {
	PlayerID string `json:"playerId"`
}

type CastVotePayload struct {
	TargetPlayerID string `json:"targetPlayerId"`
}

type SubmitPromptPayload struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type PhotoPayload struct {
	PhotoID string `json:"photoId"`
}

type ReorderQueuePayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type AdjustPointsPayload struct {
	PlayerID string `json:"playerId"`
	Delta    int    `json:"delta"`
}

type SetModePayload struct {
	Mode string `json:"mode"`
}

type SetPhasePayload struct {
	Phase string `json:"phase"`
}

type StartTimerPayload struct {
	Seconds int `json:"seconds"`
}

type UpdateTimerSettingPayload struct {
	Phase   string `json:"phase"`
	Seconds int    `json:"seconds"`
}

type PlayerPayload struct {
	PlayerID string `json:"playerId"`
}

// Server payloads

// ConnectedPayload confirms a connection and carries the player's
// identity plus the current room snapshot
type ConnectedPayload struct {
	ClientID string      `json:"clientId"`
	RoomCode string      `json:"roomCode"`
	Snapshot interface{} `json:"snapshot"`
}

// ErrorPayload is sent when an intent is rejected
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CleanupResultPayload reports how many orphans were removed
type CleanupResultPayload struct {
	Removed int `json:"removed"`
}

// Error codes
const (
	ErrCodeInvalidMessage     = "INVALID_MESSAGE"
	ErrCodeRoomNotFound       = "ROOM_NOT_FOUND"
	ErrCodePlayerNotFound     = "PLAYER_NOT_FOUND"
	ErrCodePlayerOnline       = "PLAYER_ONLINE"
	ErrCodeQueueEmpty         = "QUEUE_EMPTY"
	ErrCodeAlreadyQueued      = "ALREADY_QUEUED"
	ErrCodePresenterVote      = "PRESENTER_CANNOT_VOTE"
	ErrCodeInvalidVoteTarget  = "INVALID_VOTE_TARGET"
	ErrCodeInvalidAction      = "INVALID_ACTION"
	ErrCodeNotHost            = "NOT_HOST"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)
