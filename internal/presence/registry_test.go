package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seastrike/internal/clock"
)

type fakeConn struct {
	id   string
	sent []any
}

func (f *fakeConn) ID() string { return f.id }
func (f *fakeConn) Send(v any) { f.sent = append(f.sent, v) }

func newTestRegistry(grace time.Duration) (*Registry, *clock.Fake) {
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewRegistry(clk, grace), clk
}

func TestRegisterNewPlayer(t *testing.T) {
	r, _ := newTestRegistry(time.Minute)
	c := &fakeConn{id: "c1"}

	reconnect, err := r.Register("alice", c)
	require.NoError(t, err)
	assert.False(t, reconnect)
	assert.True(t, r.IsOnline("alice"))
	assert.Equal(t, []string{"alice"}, r.Roster())

	got, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "c1", got.ID())
}

func TestRegisterSameHandleIsIdempotent(t *testing.T) {
	r, _ := newTestRegistry(time.Minute)
	c := &fakeConn{id: "c1"}

	_, err := r.Register("alice", c)
	require.NoError(t, err)
	reconnect, err := r.Register("alice", c)
	require.NoError(t, err)
	assert.False(t, reconnect)
	assert.Equal(t, []string{"alice"}, r.Roster(), "no duplicate roster entry")
}

func TestRegisterNameTaken(t *testing.T) {
	r, _ := newTestRegistry(time.Minute)
	_, err := r.Register("alice", &fakeConn{id: "c1"})
	require.NoError(t, err)

	_, err = r.Register("alice", &fakeConn{id: "c2"})
	require.ErrorIs(t, err, ErrNameTaken)

	// The original binding is untouched.
	got, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "c1", got.ID())
}

func TestReconnectWithinGrace(t *testing.T) {
	r, clk := newTestRegistry(time.Minute)
	old := &fakeConn{id: "c1"}
	_, err := r.Register("alice", old)
	require.NoError(t, err)

	id, ok := r.MarkDisconnected(old)
	require.True(t, ok)
	assert.Equal(t, "alice", id)
	assert.False(t, r.IsOnline("alice"))
	assert.Equal(t, []string{"alice"}, r.Roster(), "entry survives the grace window")

	clk.Advance(30 * time.Second)
	reconnect, err := r.Register("alice", &fakeConn{id: "c2"})
	require.NoError(t, err)
	assert.True(t, reconnect)
	assert.True(t, r.IsOnline("alice"))

	// The cancelled grace deadline must not fire later.
	clk.Advance(time.Hour)
	assert.Empty(t, r.ExpireGrace(clk.Now()))
	assert.True(t, r.IsOnline("alice"))
}

func TestGraceExpiryFinalizesLogout(t *testing.T) {
	r, clk := newTestRegistry(time.Minute)
	c := &fakeConn{id: "c1"}
	_, err := r.Register("alice", c)
	require.NoError(t, err)
	_, err = r.Register("bob", &fakeConn{id: "c2"})
	require.NoError(t, err)

	r.MarkDisconnected(c)

	clk.Advance(59 * time.Second)
	assert.Empty(t, r.ExpireGrace(clk.Now()), "deadline not yet reached")

	clk.Advance(2 * time.Second)
	assert.Equal(t, []string{"alice"}, r.ExpireGrace(clk.Now()))
	assert.Equal(t, []string{"bob"}, r.Roster())

	// Identity is reusable after the entry is gone.
	reconnect, err := r.Register("alice", &fakeConn{id: "c3"})
	require.NoError(t, err)
	assert.False(t, reconnect)
}

func TestMarkDisconnectedIgnoresStaleHandle(t *testing.T) {
	r, clk := newTestRegistry(time.Minute)
	old := &fakeConn{id: "c1"}
	_, err := r.Register("alice", old)
	require.NoError(t, err)

	r.MarkDisconnected(old)
	_, err = r.Register("alice", &fakeConn{id: "c2"})
	require.NoError(t, err)

	// The old connection's close arrives late; it must not unbind the new
	// handle or restart the grace window.
	_, ok := r.MarkDisconnected(old)
	assert.False(t, ok)
	assert.True(t, r.IsOnline("alice"))
	clk.Advance(time.Hour)
	assert.Empty(t, r.ExpireGrace(clk.Now()))
}

func TestLogoutDeletesImmediately(t *testing.T) {
	r, clk := newTestRegistry(time.Minute)
	c := &fakeConn{id: "c1"}
	_, err := r.Register("alice", c)
	require.NoError(t, err)

	assert.True(t, r.Logout("alice"))
	assert.False(t, r.Logout("alice"))
	assert.Empty(t, r.Roster())
	assert.False(t, r.IsOnline("alice"))

	// Logout during grace also deletes.
	_, err = r.Register("bob", c)
	require.NoError(t, err)
	r.MarkDisconnected(c)
	assert.True(t, r.Logout("bob"))
	clk.Advance(time.Hour)
	assert.Empty(t, r.ExpireGrace(clk.Now()))
}

func TestBroadcastSkipsDisconnected(t *testing.T) {
	r, _ := newTestRegistry(time.Minute)
	a := &fakeConn{id: "c1"}
	b := &fakeConn{id: "c2"}
	_, err := r.Register("alice", a)
	require.NoError(t, err)
	_, err = r.Register("bob", b)
	require.NoError(t, err)
	r.MarkDisconnected(b)

	r.Broadcast("hello")
	assert.Len(t, a.sent, 1)
	assert.Empty(t, b.sent)
}
