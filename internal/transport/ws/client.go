package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/19tp01/very-terry-game/internal/app"
	"github.com/19tp01/very-terry-game/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Size of the send channel buffer
	sendBufferSize = 256

	// Deadline for store operations triggered by one intent
	intentTimeout = 10 * time.Second
)

// Role identifies what kind of client is on the other end
type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
	RoleTV     Role = "tv"
)

// Client represents a WebSocket client connection to a room
type Client struct {
	conn     *websocket.Conn
	session  *app.RoomSession
	clientID string
	role     Role
	isHost   bool

	// playerID is bound after a join/rejoin intent succeeds; offline
	// marking on disconnect applies only to bound player connections
	playerID string

	send   chan []byte
	done   chan struct{}
	logger *slog.Logger
	mu     sync.Mutex
	closed bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, session *app.RoomSession, clientID string, role Role, isHost bool, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		session:  session,
		clientID: clientID,
		role:     role,
		isHost:   isHost,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// GetClientID implements app.ClientConnection
func (c *Client) GetClientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID
}

// Send implements app.ClientConnection
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, message dropped", "clientID", c.clientID)
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.session.UnregisterClient(c.clientID)
		if c.playerID != "" {
			ctx, cancel := context.WithTimeout(context.Background(), intentTimeout)
			c.session.MarkOffline(ctx, c.playerID)
			cancel()
		}
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming intent from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), intentTimeout)
	defer cancel()

	switch msg.Type {
	case MsgPing:
		c.Send(NewServerMessage(MsgPong, nil))
	case MsgJoinRoom:
		c.handleJoinRoom(ctx, msg.Payload)
	case MsgRejoin:
		c.handleRejoin(ctx, msg.Payload)
	case MsgVolunteer:
		c.reportErr(c.requirePlayer(func(playerID string) error {
			return c.session.Volunteer(ctx, playerID)
		}))
	case MsgUnvolunteer:
		c.reportErr(c.requirePlayer(func(playerID string) error {
			return c.session.Unvolunteer(ctx, playerID)
		}))
	case MsgCastVote:
		c.handleCastVote(ctx, msg.Payload)
	case MsgSubmitPrompt:
		c.handleSubmitPrompt(ctx, msg.Payload)
	default:
		c.handleHostIntent(ctx, msg)
	}
}

// handleHostIntent dispatches host-only intents
func (c *Client) handleHostIntent(ctx context.Context, msg ClientMessage) {
	if !c.isHost {
		c.reportErr(domain.ErrNotHost)
		return
	}

	switch msg.Type {
	case MsgAdvancePhase:
		c.reportErr(c.session.Advance(ctx))
	case MsgPlayNext:
		c.reportErr(c.session.PlayNext(ctx))
	case MsgEnqueuePhoto:
		var p PhotoPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.reportErr(c.session.EnqueuePhoto(ctx, p.PhotoID))
	case MsgDequeuePhoto:
		var p PhotoPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.reportErr(c.session.DequeuePhoto(ctx, p.PhotoID))
	case MsgReorderQueue:
		var p ReorderQueuePayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.reportErr(c.session.ReorderQueue(ctx, p.From, p.To))
	case MsgAdjustPoints:
		var p AdjustPointsPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.reportErr(c.session.AdjustPoints(ctx, p.PlayerID, p.Delta))
	case MsgSetMode:
		var p SetModePayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.reportErr(c.session.SetMode(ctx, domain.Mode(p.Mode)))
	case MsgSetPhase:
		var p SetPhasePayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.reportErr(c.session.SetPhase(ctx, domain.Phase(p.Phase)))
	case MsgStartTimer:
		var p StartTimerPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.reportErr(c.session.StartTimer(ctx, p.Seconds))
	case MsgClearTimer:
		c.reportErr(c.session.ClearTimer(ctx))
	case MsgShufflePresenters:
		c.reportErr(c.session.ShufflePresenters(ctx))
	case MsgUpdateTimerSetting:
		var p UpdateTimerSettingPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.reportErr(c.session.UpdateTimerSetting(ctx, domain.Phase(p.Phase), p.Seconds))
	case MsgToggleAutoAdvance:
		c.reportErr(c.session.ToggleAutoAdvance(ctx))
	case MsgRevealResults:
		c.reportErr(c.session.RevealResults(ctx))
	case MsgResetRoom:
		c.reportErr(c.session.ResetRoom(ctx))
	case MsgDeletePlayer:
		var p PlayerPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.reportErr(c.session.DeletePlayer(ctx, p.PlayerID))
	case MsgKickPlayer:
		var p PlayerPayload
		if !c.decode(msg.Payload, &p) {
			return
		}
		c.reportErr(c.session.KickPlayer(ctx, p.PlayerID))
	case MsgCleanupOrphans:
		removed, err := c.session.CleanupOrphans(ctx)
		if err != nil {
			c.reportErr(err)
			return
		}
		c.Send(NewServerMessage(MsgEvent, &CleanupResultPayload{Removed: removed}))
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleJoinRoom creates a new player and binds this connection to it
func (c *Client) handleJoinRoom(ctx context.Context, payload json.RawMessage) {
	var p JoinRoomPayload
	if !c.decode(payload, &p) {
		return
	}

	player, err := c.session.JoinPlayer(ctx, p.Name, p.SelfieURL)
	if err != nil {
		c.reportErr(err)
		return
	}

	c.bindPlayer(player.ID)
	c.sendConnected(ctx)
}

// handleRejoin rebinds a returning player by their stored identity
func (c *Client) handleRejoin(ctx context.Context, payload json.RawMessage) {
	var p RejoinPayload
	if !c.decode(payload, &p) {
		return
	}

	player, err := c.session.RejoinPlayer(ctx, p.PlayerID)
	if err != nil {
		c.reportErr(err)
		return
	}

	c.bindPlayer(player.ID)
	c.sendConnected(ctx)
}

func (c *Client) handleCastVote(ctx context.Context, payload json.RawMessage) {
	var p CastVotePayload
	if !c.decode(payload, &p) {
		return
	}
	c.reportErr(c.requirePlayer(func(playerID string) error {
		return c.session.Vote(ctx, playerID, p.TargetPlayerID)
	}))
}

func (c *Client) handleSubmitPrompt(ctx context.Context, payload json.RawMessage) {
	var p SubmitPromptPayload
	if !c.decode(payload, &p) {
		return
	}
	c.reportErr(c.requirePlayer(func(playerID string) error {
		_, err := c.session.AddPrompt(ctx, playerID, p.Question, p.Answer)
		return err
	}))
}

// bindPlayer reregisters the connection under the player's id so
// player-targeted events reach it. The id swap happens under c.mu: the
// session's event loop reads clientID concurrently from Send.
func (c *Client) bindPlayer(playerID string) {
	c.session.UnregisterClient(c.GetClientID())

	c.mu.Lock()
	c.playerID = playerID
	c.clientID = playerID
	c.mu.Unlock()

	c.session.RegisterClient(playerID, c)
}

// requirePlayer runs fn with the bound player id
func (c *Client) requirePlayer(fn func(playerID string) error) error {
	if c.playerID == "" {
		return domain.ErrPlayerNotFound
	}
	return fn(c.playerID)
}

// decode unmarshals an intent payload, reporting malformed input
func (c *Client) decode(payload json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(payload, v); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return false
	}
	return true
}

// sendConnected confirms the connection with the current room snapshot
func (c *Client) sendConnected(ctx context.Context) {
	snap, err := c.session.Snapshot(ctx)
	if err != nil {
		c.logger.Error("failed to build snapshot", "error", err)
		c.sendError(ErrCodeInternalError, "Failed to load room state")
		return
	}

	c.Send(NewServerMessage(MsgConnected, &ConnectedPayload{
		ClientID: c.clientID,
		RoomCode: c.session.Code(),
		Snapshot: snap,
	}))
}

// reportErr maps a domain error to a client-visible error envelope
func (c *Client) reportErr(err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
		// The client clears its stale local session on this code
		c.sendError(ErrCodePlayerNotFound, "Player no longer exists")
	case errors.Is(err, domain.ErrPlayerOnline):
		c.sendError(ErrCodePlayerOnline, "Player is already online; ask the host to disconnect them")
	case errors.Is(err, domain.ErrQueueEmpty):
		c.sendError(ErrCodeQueueEmpty, "Queue is empty; add photos to the queue first")
	case errors.Is(err, domain.ErrAlreadyQueued):
		c.sendError(ErrCodeAlreadyQueued, "Photo is already queued")
	case errors.Is(err, domain.ErrPresenterCannotVote):
		c.sendError(ErrCodePresenterVote, "Presenters cannot vote")
	case errors.Is(err, domain.ErrInvalidVoteTarget):
		c.sendError(ErrCodeInvalidVoteTarget, "Vote target is not a presenter")
	case errors.Is(err, domain.ErrNotHost):
		c.sendError(ErrCodeNotHost, "Only the host can perform this action")
	case errors.Is(err, domain.ErrRoomNotFound):
		c.sendError(ErrCodeRoomNotFound, "Room not found")
	case errors.Is(err, domain.ErrInvalidPhase),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidQueueIndex),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrNoCurrentPhoto),
		errors.Is(err, domain.ErrSubmissionNotFound):
		c.sendError(ErrCodeInvalidAction, err.Error())
	default:
		c.logger.Error("intent failed", "error", err)
		c.sendError(ErrCodeInternalError, "Something went wrong; try again")
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	c.Send(NewServerMessage(MsgError, &ErrorPayload{
		Code:    code,
		Message: message,
	}))
}
