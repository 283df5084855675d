package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/19tp01/very-terry-game/internal/blob"
	"github.com/19tp01/very-terry-game/internal/domain"
	"github.com/19tp01/very-terry-game/internal/store"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 4

	// StaleRoomTimeout is how long before an empty room session is
	// evicted from memory. The room's records stay in the store; the
	// session is recreated on the next access.
	StaleRoomTimeout = 2 * time.Hour
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RoomHub manages all active room sessions, keyed by room code
type RoomHub struct {
	sessions       map[string]*RoomSession
	mu             sync.RWMutex
	store          store.Store
	blobs          blob.Store
	roomCodeLength int
	defaults       domain.TimerSettings
	logger         *slog.Logger
	done           chan struct{}
}

// NewRoomHub creates a new room hub
func NewRoomHub(st store.Store, blobs blob.Store, codeLength int, defaults domain.TimerSettings, logger *slog.Logger) *RoomHub {
	if codeLength <= 0 {
		codeLength = DefaultRoomCodeLength
	}
	hub := &RoomHub{
		sessions:       make(map[string]*RoomSession),
		store:          st,
		blobs:          blobs,
		roomCodeLength: codeLength,
		defaults:       defaults,
		logger:         logger,
		done:           make(chan struct{}),
	}

	go hub.cleanupLoop()

	return hub
}

// CreateRoom creates a session under a fresh random room code
func (h *RoomHub) CreateRoom(ctx context.Context) (*RoomSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var code string
	for attempts := 0; attempts < 10; attempts++ {
		code = h.generateRoomCode()
		if _, exists := h.sessions[code]; !exists {
			break
		}
	}
	if _, exists := h.sessions[code]; exists {
		return nil, fmt.Errorf("failed to generate unique room code")
	}

	session, err := h.openSessionLocked(ctx, code)
	if err != nil {
		return nil, err
	}

	h.logger.Info("room created", "roomCode", code)
	return session, nil
}

// GetOrCreate returns the session for a room code, opening it (and
// initializing the game record on first read) if needed. Room codes
// are chosen by the party, so accessing an unknown code creates the
// room, matching the first-read-creates-defaults behavior of the
// original store.
func (h *RoomHub) GetOrCreate(ctx context.Context, code string) (*RoomSession, error) {
	h.mu.RLock()
	session, ok := h.sessions[code]
	h.mu.RUnlock()
	if ok {
		return session, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.sessions[code]; ok {
		return session, nil
	}
	return h.openSessionLocked(ctx, code)
}

// GetSession returns an already-open session by room code
func (h *RoomHub) GetSession(code string) (*RoomSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return session, nil
}

// openSessionLocked creates and registers a session. Caller must hold
// h.mu for writing.
func (h *RoomHub) openSessionLocked(ctx context.Context, code string) (*RoomSession, error) {
	session := NewRoomSession(code, h.store, h.blobs, h.logger)

	// Seed the game record with the configured timer defaults when the
	// room has never been played.
	if _, err := h.store.Read(ctx, store.GamePath(code)); err != nil {
		g := domain.NewGameState()
		g.TimerSettings = h.defaults
		if err := h.store.Write(ctx, store.GamePath(code), g); err != nil {
			session.Close()
			return nil, err
		}
	}

	h.sessions[code] = session
	return session, nil
}

// CloseSession shuts down a session and evicts it from memory
func (h *RoomHub) CloseSession(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.sessions[code]; ok {
		session.Close()
		delete(h.sessions, code)
		h.logger.Info("room session closed", "roomCode", code)
	}
}

// SessionCount returns the number of open sessions
func (h *RoomHub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// TotalOnlinePlayers returns the online player count across all rooms
func (h *RoomHub) TotalOnlinePlayers(ctx context.Context) int {
	h.mu.RLock()
	sessions := make([]*RoomSession, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	total := 0
	for _, s := range sessions {
		total += s.OnlinePlayerCount(ctx)
	}
	return total
}

// Close shuts down the hub and all sessions
func (h *RoomHub) Close() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, session := range h.sessions {
		session.Close()
	}
	h.sessions = make(map[string]*RoomSession)
}

// generateRoomCode generates a random room code
func (h *RoomHub) generateRoomCode() string {
	b := make([]byte, h.roomCodeLength)
	rand.Read(b)

	code := make([]byte, h.roomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}
	return string(code)
}

// cleanupLoop periodically evicts idle room sessions
func (h *RoomHub) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.evictStaleSessions()
		}
	}
}

// evictStaleSessions closes sessions that are old and have nobody
// online. Room records persist in the store.
func (h *RoomHub) evictStaleSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for code, session := range h.sessions {
		if now.Sub(session.CreatedAt()) < StaleRoomTimeout {
			continue
		}
		if session.OnlinePlayerCount(ctx) > 0 {
			continue
		}
		session.Close()
		delete(h.sessions, code)
		h.logger.Info("stale room session evicted", "roomCode", code)
	}
}
