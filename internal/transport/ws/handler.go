package ws

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/19tp01/very-terry-game/internal/app"
)

// Handler handles WebSocket connections for all three client kinds:
// host console, player devices and the TV display.
type Handler struct {
	hub          *app.RoomHub
	hostPassword string
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *app.RoomHub, hostPassword string, logger *slog.Logger) *Handler {
	return &Handler{
		hub:          hub,
		hostPassword: hostPassword,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Party-local deployment; all origins allowed
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests.
// Query params: roomCode (required), role (host|player|tv, default
// player), token (required for host), playerId (returning players).
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.ToUpper(r.URL.Query().Get("roomCode"))
	if roomCode == "" {
		http.Error(w, "roomCode is required", http.StatusBadRequest)
		return
	}

	role := Role(r.URL.Query().Get("role"))
	switch role {
	case RoleHost, RolePlayer, RoleTV:
	case "":
		role = RolePlayer
	default:
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	isHost := false
	if role == RoleHost {
		token := r.URL.Query().Get("token")
		if h.hostPassword == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.hostPassword)) != 1 {
			http.Error(w, "invalid host token", http.StatusForbidden)
			return
		}
		isHost = true
	}

	session, err := h.hub.GetOrCreate(r.Context(), roomCode)
	if err != nil {
		h.logger.Error("failed to open room", "roomCode", roomCode, "error", err)
		http.Error(w, "failed to open room", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := NewClient(conn, session, clientID, role, isHost, h.logger)
	session.RegisterClient(clientID, client)

	h.logger.Info("websocket connected",
		"roomCode", roomCode,
		"role", role,
		"clientID", clientID,
	)

	// Returning players reconnect in one step via the playerId param
	if playerID := r.URL.Query().Get("playerId"); playerID != "" && role == RolePlayer {
		if _, err := session.RejoinPlayer(r.Context(), playerID); err != nil {
			client.reportErr(err)
		} else {
			client.bindPlayer(playerID)
		}
	}

	client.sendConnected(context.Background())

	client.Run()
}
