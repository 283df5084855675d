package domain

import "time"

// EventType represents the type of room event
type EventType string

const (
	EventRoomSnapshot  EventType = "ROOM_SNAPSHOT"
	EventPlayerJoined  EventType = "PLAYER_JOINED"
	EventPlayerLeft    EventType = "PLAYER_LEFT"
	EventPlayerKicked  EventType = "PLAYER_KICKED"
	EventRoundStarted  EventType = "ROUND_STARTED"
	EventPhaseAdvanced EventType = "PHASE_ADVANCED"
	EventResultsReady  EventType = "RESULTS_READY"
	EventGameFinished  EventType = "GAME_FINISHED"
)

// RoomEvent is an event emitted by a room session for broadcast
type RoomEvent struct {
	Type      EventType   `json:"type"`
	RoomCode  string      `json:"roomCode"`
	PlayerID  string      `json:"playerId,omitempty"` // set if player-specific
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a room-wide event
func NewEvent(eventType EventType, roomCode string, payload interface{}) *RoomEvent {
	return &RoomEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewPlayerEvent creates an event targeted at a single player
func NewPlayerEvent(eventType EventType, roomCode, playerID string, payload interface{}) *RoomEvent {
	return &RoomEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		PlayerID:  playerID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// RoomSnapshot is the full projected room state pushed to every client
// after each mutation. Clients render purely from the latest snapshot.
type RoomSnapshot struct {
	Game        *GameState    `json:"game"`
	Players     []*Player     `json:"players"`
	Submissions []*Submission `json:"submissions"`
}
