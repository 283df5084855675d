package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/19tp01/very-terry-game/internal/domain"
	"github.com/19tp01/very-terry-game/internal/store"
)

func newTestHub(t *testing.T) *RoomHub {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewRoomHub(store.NewMemory(), nil, 4, domain.DefaultTimerSettings(), logger)
	t.Cleanup(hub.Close)
	return hub
}

func TestCreateRoom(t *testing.T) {
	hub := newTestHub(t)

	session, err := hub.CreateRoom(context.Background())
	require.NoError(t, err)

	code := session.Code()
	assert.Len(t, code, 4)
	for _, c := range code {
		assert.True(t, strings.ContainsRune(RoomCodeChars, c), "unexpected char %q", c)
	}

	assert.Equal(t, 1, hub.SessionCount())
}

func TestCreateRoom_SeedsTimerDefaults(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	defaults := domain.DefaultTimerSettings()
	defaults.Voting = 99

	hub := NewRoomHub(store.NewMemory(), nil, 4, defaults, logger)
	t.Cleanup(hub.Close)

	session, err := hub.CreateRoom(context.Background())
	require.NoError(t, err)

	snap, err := session.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 99, snap.Game.TimerSettings.Voting)
}

func TestGetOrCreate_ReturnsSameSession(t *testing.T) {
	hub := newTestHub(t)
	ctx := context.Background()

	first, err := hub.GetOrCreate(ctx, "ABCD")
	require.NoError(t, err)

	second, err := hub.GetOrCreate(ctx, "ABCD")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, hub.SessionCount())
}

func TestGetSession_Unknown(t *testing.T) {
	hub := newTestHub(t)

	_, err := hub.GetSession("ZZZZ")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestCloseSession(t *testing.T) {
	hub := newTestHub(t)
	ctx := context.Background()

	_, err := hub.GetOrCreate(ctx, "ABCD")
	require.NoError(t, err)

	hub.CloseSession("ABCD")
	assert.Equal(t, 0, hub.SessionCount())

	_, err = hub.GetSession("ABCD")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestGetOrCreate_RoomStateSurvivesEviction(t *testing.T) {
	// The session is just the in-memory process; room records live in
	// the store and a reopened session picks them up.
	hub := newTestHub(t)
	ctx := context.Background()

	session, err := hub.GetOrCreate(ctx, "ABCD")
	require.NoError(t, err)
	p, err := session.JoinPlayer(ctx, "Terry", "")
	require.NoError(t, err)

	hub.CloseSession("ABCD")

	reopened, err := hub.GetOrCreate(ctx, "ABCD")
	require.NoError(t, err)
	snap, err := reopened.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, p.ID, snap.Players[0].ID)
}

func TestTotalOnlinePlayers(t *testing.T) {
	hub := newTestHub(t)
	ctx := context.Background()

	a, err := hub.GetOrCreate(ctx, "AAAA")
	require.NoError(t, err)
	b, err := hub.GetOrCreate(ctx, "BBBB")
	require.NoError(t, err)

	_, err = a.JoinPlayer(ctx, "One", "")
	require.NoError(t, err)
	_, err = b.JoinPlayer(ctx, "Two", "")
	require.NoError(t, err)
	_, err = b.JoinPlayer(ctx, "Three", "")
	require.NoError(t, err)

	assert.Equal(t, 3, hub.TotalOnlinePlayers(ctx))
}
