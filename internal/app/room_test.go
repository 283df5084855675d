package app

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/19tp01/very-terry-game/internal/domain"
	"github.com/19tp01/very-terry-game/internal/store"
)

// testClock is the fixed wall clock tests run under. Timers created
// against it never expire on their own, so the auto-advance driver
// stays quiet unless a test expires a deadline explicitly.
var testClock = time.UnixMilli(1_700_000_000_000)

func newTestSession(t *testing.T) *RoomSession {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewRoomSession("VTRY", store.NewMemory(), nil, logger)
	s.rng = rand.New(rand.NewSource(1))
	s.now = func() time.Time { return testClock }
	t.Cleanup(s.Close)
	return s
}

func getGame(t *testing.T, s *RoomSession) *domain.GameState {
	t.Helper()
	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	return snap.Game
}

func findPlayer(t *testing.T, s *RoomSession, id string) *domain.Player {
	t.Helper()
	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	for _, p := range snap.Players {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("player %s not found in snapshot", id)
	return nil
}

func setGame(t *testing.T, s *RoomSession, mutate func(g *domain.GameState)) {
	t.Helper()
	ctx := context.Background()
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.loadGame(ctx)
	require.NoError(t, err)
	mutate(g)
	require.NoError(t, s.saveGame(ctx, g))
}

func TestJoinPlayer(t *testing.T) {
	s := newTestSession(t)

	p, err := s.JoinPlayer(context.Background(), "Terry", "/media/VTRY/selfie.jpg")
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Terry", p.Name)
	assert.True(t, p.IsOnline)
	assert.Equal(t, 0, p.Score)

	stored := findPlayer(t, s, p.ID)
	assert.Equal(t, "Terry", stored.Name)
	assert.True(t, stored.IsOnline)
}

// captureClient collects broadcast events for assertions
type captureClient struct {
	id     string
	events chan *domain.RoomEvent
}

func (c *captureClient) Send(message interface{}) error {
	if ev, ok := message.(*domain.RoomEvent); ok {
		select {
		case c.events <- ev:
		default:
		}
	}
	return nil
}

func (c *captureClient) GetClientID() string { return c.id }
func (c *captureClient) Close() error        { return nil }

func waitForEvent(t *testing.T, events <-chan *domain.RoomEvent, eventType domain.EventType) *domain.RoomEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("event %s never arrived", eventType)
			return nil
		}
	}
}

func TestJoinPlayer_BroadcastsJoinEvent(t *testing.T) {
	s := newTestSession(t)

	tv := &captureClient{id: "tv", events: make(chan *domain.RoomEvent, 16)}
	s.RegisterClient(tv.id, tv)

	p, err := s.JoinPlayer(context.Background(), "Terry", "")
	require.NoError(t, err)

	ev := waitForEvent(t, tv.events, domain.EventPlayerJoined)
	joined, ok := ev.Payload.(*domain.Player)
	require.True(t, ok)
	assert.Equal(t, p.ID, joined.ID)
}

func TestJoinPlayer_EmptyName(t *testing.T) {
	s := newTestSession(t)

	_, err := s.JoinPlayer(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrEmptyName)
}

func TestRejoinPlayer(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	p, err := s.JoinPlayer(ctx, "Terry", "")
	require.NoError(t, err)

	s.MarkOffline(ctx, p.ID)
	assert.False(t, findPlayer(t, s, p.ID).IsOnline)

	back, err := s.RejoinPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, back.IsOnline)
}

func TestRejoinPlayer_UnknownID(t *testing.T) {
	s := newTestSession(t)

	// Stale local session on the client; it must clear and join fresh
	_, err := s.RejoinPlayer(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestRejoinPlayer_GhostSeat(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	p, err := s.JoinPlayer(ctx, "Terry", "")
	require.NoError(t, err)

	// Still marked online: the seat is blocked until the host kicks
	_, err = s.RejoinPlayer(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrPlayerOnline)

	require.NoError(t, s.KickPlayer(ctx, p.ID))
	_, err = s.RejoinPlayer(ctx, p.ID)
	assert.NoError(t, err)
}

func TestKickPlayer_Unknown(t *testing.T) {
	s := newTestSession(t)

	err := s.KickPlayer(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestMarkOffline_UnknownIsNoop(t *testing.T) {
	s := newTestSession(t)

	s.MarkOffline(context.Background(), "gone")
}

func TestSubmitPhoto(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	p, err := s.JoinPlayer(ctx, "Terry", "")
	require.NoError(t, err)

	sub, err := s.SubmitPhoto(ctx, p.ID, "/media/VTRY/photo.jpg", "me in 2003", false)
	require.NoError(t, err)

	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, p.ID, sub.OwnerID)
	assert.Equal(t, "me in 2003", sub.Caption)
	assert.False(t, sub.HasBeenPlayed)
	assert.False(t, sub.IsBonus)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Submissions, 1)
	assert.Equal(t, sub.ID, snap.Submissions[0].ID)
}

func TestSubmitPhoto_UnknownOwner(t *testing.T) {
	s := newTestSession(t)

	_, err := s.SubmitPhoto(context.Background(), "gone", "/media/x.jpg", "", false)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestOnlinePlayerCount(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	a, err := s.JoinPlayer(ctx, "A", "")
	require.NoError(t, err)
	_, err = s.JoinPlayer(ctx, "B", "")
	require.NoError(t, err)

	assert.Equal(t, 2, s.OnlinePlayerCount(ctx))

	s.MarkOffline(ctx, a.ID)
	assert.Equal(t, 1, s.OnlinePlayerCount(ctx))
}

func TestSnapshot_FreshRoomDefaults(t *testing.T) {
	s := newTestSession(t)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ModeLobby, snap.Game.Mode)
	assert.Equal(t, domain.PhasePhoto, snap.Game.Phase)
	assert.Empty(t, snap.Players)
	assert.Empty(t, snap.Submissions)
}

func TestSnapshot_PlayersSortedByName(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	_, err := s.JoinPlayer(ctx, "Zoe", "")
	require.NoError(t, err)
	_, err = s.JoinPlayer(ctx, "Alice", "")
	require.NoError(t, err)
	_, err = s.JoinPlayer(ctx, "Mia", "")
	require.NoError(t, err)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(snap.Players))
	for _, p := range snap.Players {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Alice", "Mia", "Zoe"}, names)
}
