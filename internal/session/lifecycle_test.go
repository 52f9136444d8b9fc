package session_test

import (
	"testing"
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConnect_Duplicate(t *testing.T) {
	h := newHarness(t, session.Options{})
	require.NoError(t, h.m.Connect("a"))
	assert.ErrorIs(t, h.m.Connect("a"), domain.ErrConnectionExists)
	assert.ErrorIs(t, h.m.Connect(""), domain.ErrConnectionNotFound)
}

func TestDisconnect_RoomedNotifiesPeer(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.pair(t, "c", "l")
	h.rec.reset()

	h.m.Disconnect("c")

	assert.Equal(t, []session.Event{session.ParticipantDisconnected()}, h.rec.of("l"))
	assert.Empty(t, h.rec.of("c"), "the leaving side is never told")

	err := h.m.SendMessage("l", "anyone?", "listening")
	assert.ErrorIs(t, err, domain.ErrNotInRoom)

	stats := h.m.Stats()
	assert.Equal(t, 1, stats.Connections)
	assert.Zero(t, stats.ActiveRooms)
}

func TestDisconnect_QueuedLeavesQueue(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.connect(t, "c1", "c2", "c3")
	for _, id := range []domain.ConnID{"c1", "c2", "c3"} {
		require.NoError(t, h.m.SelectRole(id, "confessor"))
	}
	before := h.m.QueueLen(domain.RoleConfessor)

	h.m.Disconnect("c2")

	assert.Equal(t, before-1, h.m.QueueLen(domain.RoleConfessor))
	assert.Equal(t, []domain.ConnID{"c1", "c3"}, h.m.Queue(domain.RoleConfessor))
	assert.Empty(t, h.rec.events)
}

func TestDisconnect_Idempotent(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.pair(t, "c", "l")

	h.m.Disconnect("c")
	h.m.Disconnect("c")
	h.m.Disconnect("never-seen")

	assert.Equal(t, 1, h.rec.count(session.EventParticipantDisconnected))
}

func TestDisconnect_ClearsCooldown(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.pair(t, "c", "l")
	require.NoError(t, h.m.SendMessage("l", "", "listening"))

	h.m.Disconnect("l")
	h.m.Disconnect("c")

	// Reusing the handle starts with a clean cooldown.
	h.pair(t, "c", "l")
	assert.NoError(t, h.m.SendMessage("l", "", "listening"))
}

func TestDisbandRoom(t *testing.T) {
	h := newHarness(t, session.Options{})
	roomID := h.pair(t, "c", "l")
	h.connect(t, "x")

	assert.ErrorIs(t, h.m.DisbandRoom("room-missing", "c", domain.CloseBurned), domain.ErrRoomNotFound)
	assert.ErrorIs(t, h.m.DisbandRoom(roomID, "x", domain.CloseBurned), domain.ErrNotInRoom)

	h.rec.reset()
	require.NoError(t, h.m.DisbandRoom(roomID, "l", domain.CloseDisconnected))
	assert.Equal(t, []session.Event{session.ParticipantDisconnected()}, h.rec.of("c"))
	assert.Empty(t, h.rec.of("l"))

	_, ok := h.m.Peer("c")
	assert.False(t, ok)
}

func TestEvictIdle(t *testing.T) {
	h := newHarness(t, session.Options{IdleTimeout: time.Minute})
	h.connect(t, "old", "new")

	require.NoError(t, h.m.SelectRole("old", "listener"))
	h.clock.Advance(45 * time.Second)
	require.NoError(t, h.m.SelectRole("new", "listener"))

	h.clock.Advance(15 * time.Second)
	assert.Equal(t, 1, h.m.EvictIdle())

	assert.Equal(t, []domain.ConnID{"new"}, h.m.Queue(domain.RoleListener))
	assert.Equal(t, session.ErrorMessage("No match found. Please choose a role again."), h.rec.last("old"))
	assert.Equal(t, domain.RoleUnset, h.m.RoleOf("old"))
	assert.NoError(t, h.m.SelectRole("old", "confessor"), "evicted connections can choose again")
}

func TestEvictIdle_Disabled(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.connect(t, "a")
	require.NoError(t, h.m.SelectRole("a", "listener"))

	h.clock.Advance(24 * time.Hour)
	assert.Zero(t, h.m.EvictIdle())
	assert.Equal(t, 1, h.m.QueueLen(domain.RoleListener))
}

func TestShutdown(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.pair(t, "c", "l")
	h.connect(t, "w")
	require.NoError(t, h.m.SelectRole("w", "listener"))
	h.rec.reset()

	h.m.Shutdown()

	stats := h.m.Stats()
	assert.Zero(t, stats.ActiveRooms)
	assert.Zero(t, stats.WaitingListeners)
	assert.Equal(t, 3, stats.Connections)
	assert.Empty(t, h.rec.events, "shutdown closes rooms silently")
}

type mockObserver struct {
	mock.Mock
}

func (o *mockObserver) RoomOpened(room domain.Room) {
	o.Called(room.ID, room.Confessor, room.Listener)
}

func (o *mockObserver) RoomClosed(room domain.Room, reason domain.CloseReason, at time.Time) {
	o.Called(room.ID, reason)
}

func (o *mockObserver) Rejected(id domain.ConnID, err error) {
	o.Called(id, session.ReasonOf(err))
}

func (o *mockObserver) Relayed(id domain.ConnID, mode domain.Mode) {
	o.Called(id, mode)
}

func TestObserver_ReceivesLifecycleHooks(t *testing.T) {
	obs := new(mockObserver)
	obs.On("RoomOpened", "room-001", domain.ConnID("c"), domain.ConnID("l")).Once()
	obs.On("Relayed", domain.ConnID("c"), domain.ModeNormal).Once()
	obs.On("Rejected", domain.ConnID("c"), "invalid_mode").Once()
	obs.On("Relayed", domain.ConnID("l"), domain.ModeSolo).Once()
	obs.On("RoomClosed", "room-001", domain.CloseBurned).Once()

	h := newHarness(t, session.Options{Observer: session.Observers{session.NopObserver{}, obs}})
	h.pair(t, "c", "l")

	require.NoError(t, h.m.SendMessage("c", "hi", "normal"))
	require.Error(t, h.m.SendMessage("c", "hi", "loud"))
	require.NoError(t, h.m.SendMessage("l", "", "solo"))

	obs.AssertExpectations(t)
}
