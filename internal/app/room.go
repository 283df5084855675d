package app

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/19tp01/very-terry-game/internal/blob"
	"github.com/19tp01/very-terry-game/internal/domain"
	"github.com/19tp01/very-terry-game/internal/store"
)

// ClientConnection represents a connected client (host console, player
// device or TV display)
type ClientConnection interface {
	Send(message interface{}) error
	GetClientID() string
	Close() error
}

// RoomSession is the authoritative process for one room. It owns
// exclusive write access to the room's records: every mutation from
// every actor is serialized through its mutex, which is what makes the
// read-modify-write sequences (scores, volunteer counts, queue edits)
// safe without store-side transactions.
type RoomSession struct {
	code      string
	store     store.Store
	blobs     blob.Store
	logger    *slog.Logger
	createdAt time.Time

	// rng and now are injectable so tests can fix the seed and clock
	rng *rand.Rand
	now func() time.Time

	mu   sync.Mutex
	game *domain.GameState // write-through cache; session is sole writer

	clients   map[string]ClientConnection // clientID -> connection
	clientsMu sync.RWMutex

	events    chan *domain.RoomEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewRoomSession creates a session for the room and starts its event
// broadcaster and auto-advance driver.
func NewRoomSession(code string, st store.Store, blobs blob.Store, logger *slog.Logger) *RoomSession {
	s := &RoomSession{
		code:      code,
		store:     st,
		blobs:     blobs,
		logger:    logger.With("roomCode", code),
		createdAt: time.Now(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
		clients:   make(map[string]ClientConnection),
		events:    make(chan *domain.RoomEvent, 100),
		done:      make(chan struct{}),
	}

	go s.eventLoop()
	go s.autoAdvanceLoop()

	return s
}

// Code returns the room code
func (s *RoomSession) Code() string {
	return s.code
}

// CreatedAt returns when the session was opened
func (s *RoomSession) CreatedAt() time.Time {
	return s.createdAt
}

// loadGame returns the projected game record, creating the default on
// first read. The cache holds the last state the store accepted, so
// callers always get a clone: mutating it and bailing on a failed write
// leaves the cache (and every later read) on the persisted state.
// Caller must hold s.mu.
func (s *RoomSession) loadGame(ctx context.Context) (*domain.GameState, error) {
	if s.game != nil {
		return s.game.Clone(), nil
	}

	raw, err := s.store.Read(ctx, store.GamePath(s.code))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	g, err := domain.ProjectGameState(raw)
	if err != nil {
		return nil, err
	}
	s.game = g
	return g.Clone(), nil
}

// saveGame persists the game record, installing it into the cache only
// once the write succeeds. Caller must hold s.mu.
func (s *RoomSession) saveGame(ctx context.Context, g *domain.GameState) error {
	if err := s.store.Write(ctx, store.GamePath(s.code), g); err != nil {
		return err
	}
	s.game = g.Clone()
	return nil
}

// loadPlayers projects all player records, sorted by name for stable
// snapshots. Caller must hold s.mu.
func (s *RoomSession) loadPlayers(ctx context.Context) ([]*domain.Player, error) {
	raws, err := s.store.List(ctx, store.PlayersPrefix(s.code))
	if err != nil {
		return nil, err
	}

	players := make([]*domain.Player, 0, len(raws))
	for id, raw := range raws {
		p, err := domain.ProjectPlayer(id, raw)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].Name != players[j].Name {
			return players[i].Name < players[j].Name
		}
		return players[i].ID < players[j].ID
	})
	return players, nil
}

// loadPlayer projects a single player record. Caller must hold s.mu.
func (s *RoomSession) loadPlayer(ctx context.Context, playerID string) (*domain.Player, error) {
	raw, err := s.store.Read(ctx, store.PlayerPath(s.code, playerID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, err
	}
	return domain.ProjectPlayer(playerID, raw)
}

// loadSubmissions projects all submission records, sorted by id.
// Caller must hold s.mu.
func (s *RoomSession) loadSubmissions(ctx context.Context) ([]*domain.Submission, error) {
	raws, err := s.store.List(ctx, store.SubmissionsPrefix(s.code))
	if err != nil {
		return nil, err
	}

	subs := make([]*domain.Submission, 0, len(raws))
	for id, raw := range raws {
		sub, err := domain.ProjectSubmission(id, raw)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

// snapshotLocked builds the full projected room snapshot. Caller must
// hold s.mu.
func (s *RoomSession) snapshotLocked(ctx context.Context) (*domain.RoomSnapshot, error) {
	g, err := s.loadGame(ctx)
	if err != nil {
		return nil, err
	}
	players, err := s.loadPlayers(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.loadSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.RoomSnapshot{
		Game:        g,
		Players:     players,
		Submissions: subs,
	}, nil
}

// Snapshot returns the current projected room state
func (s *RoomSession) Snapshot(ctx context.Context) (*domain.RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(ctx)
}

// broadcastSnapshot pushes the full room state to all clients. Caller
// must hold s.mu. Failure to build the snapshot is logged, not
// propagated: the mutation itself already succeeded.
func (s *RoomSession) broadcastSnapshot(ctx context.Context) {
	snap, err := s.snapshotLocked(ctx)
	if err != nil {
		s.logger.Error("failed to build snapshot", "error", err)
		return
	}
	s.queueEvent(domain.NewEvent(domain.EventRoomSnapshot, s.code, snap))
}

// Player lifecycle

// JoinPlayer creates a new player in the room, marked online
func (s *RoomSession) JoinPlayer(ctx context.Context, name, selfieURL string) (*domain.Player, error) {
	if name == "" {
		return nil, domain.ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := domain.NewPlayer(uuid.New().String(), name, selfieURL)
	p.IsOnline = true
	if err := s.store.Write(ctx, store.PlayerPath(s.code, p.ID), p); err != nil {
		return nil, err
	}

	s.logger.Info("player joined", "playerID", p.ID, "name", name)
	s.queueEvent(domain.NewEvent(domain.EventPlayerJoined, s.code, p))
	s.broadcastSnapshot(ctx)
	return p, nil
}

// RejoinPlayer marks an existing player online. A player whose record
// no longer exists gets ErrPlayerNotFound, the signal for the client to
// clear its stale local session. A player already marked online is a
// ghost seat and returns ErrPlayerOnline; the host frees it with
// KickPlayer.
func (s *RoomSession) RejoinPlayer(ctx context.Context, playerID string) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p.IsOnline {
		return nil, domain.ErrPlayerOnline
	}

	p.IsOnline = true
	if err := s.store.Write(ctx, store.PlayerPath(s.code, playerID), p); err != nil {
		return nil, err
	}

	s.broadcastSnapshot(ctx)
	return p, nil
}

// MarkOffline flags a player offline on disconnect. Best-effort: a tab
// closed without a graceful disconnect simply never calls this.
func (s *RoomSession) MarkOffline(ctx context.Context, playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadPlayer(ctx, playerID)
	if err != nil {
		return
	}
	p.IsOnline = false
	if err := s.store.Write(ctx, store.PlayerPath(s.code, playerID), p); err != nil {
		s.logger.Warn("failed to mark player offline", "playerID", playerID, "error", err)
		return
	}

	s.broadcastSnapshot(ctx)
}

// KickPlayer forces a player offline, freeing a seat blocked by a
// ghost connection
func (s *RoomSession) KickPlayer(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	p.IsOnline = false
	if err := s.store.Write(ctx, store.PlayerPath(s.code, playerID), p); err != nil {
		return err
	}

	s.queueEvent(domain.NewPlayerEvent(domain.EventPlayerKicked, s.code, playerID, nil))
	s.broadcastSnapshot(ctx)
	return nil
}

// SubmitPhoto creates a submission for an uploaded photo
func (s *RoomSession) SubmitPhoto(ctx context.Context, ownerID, photoURL, caption string, isBonus bool) (*domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.loadPlayer(ctx, ownerID); err != nil {
		return nil, err
	}

	sub := domain.NewSubmission(uuid.New().String(), ownerID, photoURL, caption, isBonus)
	if err := s.store.Write(ctx, store.SubmissionPath(s.code, sub.ID), sub); err != nil {
		return nil, err
	}

	s.broadcastSnapshot(ctx)
	return sub, nil
}

// OnlinePlayerCount returns the number of players currently online
func (s *RoomSession) OnlinePlayerCount(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	players, err := s.loadPlayers(ctx)
	if err != nil {
		return 0
	}
	count := 0
	for _, p := range players {
		if p.IsOnline {
			count++
		}
	}
	return count
}

// Client management

// RegisterClient registers a client connection
func (s *RoomSession) RegisterClient(clientID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[clientID] = client
}

// UnregisterClient removes a client connection
func (s *RoomSession) UnregisterClient(clientID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, clientID)
}

// queueEvent adds an event to the broadcast queue
func (s *RoomSession) queueEvent(event *domain.RoomEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop processes events and broadcasts them to clients
func (s *RoomSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to the appropriate clients
func (s *RoomSession) broadcastEvent(event *domain.RoomEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	if event.PlayerID != "" {
		if client, ok := s.clients[event.PlayerID]; ok {
			if err := client.Send(event); err != nil {
				s.logger.Debug("failed to send to client", "clientID", event.PlayerID, "error", err)
			}
		}
		return
	}

	for clientID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "clientID", clientID, "error", err)
		}
	}
}

// Close shuts down the session and its client connections
func (s *RoomSession) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
