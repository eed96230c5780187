package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seastrike/internal/clock"
	"seastrike/internal/game"
	"seastrike/internal/rng"
)

func newTestDirectory(retention time.Duration) (*Directory, *clock.Fake) {
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewDirectory(clk, rng.NewFake(0), retention), clk
}

func TestCreateWaiting(t *testing.T) {
	d, _ := newTestDirectory(time.Hour)

	s, err := d.CreateWaiting("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, game.PhaseWaiting, s.Phase())

	got, err := d.Resolve(s.ID(), "")
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestCreateWaitingRejectsSecondLiveSession(t *testing.T) {
	d, _ := newTestDirectory(time.Hour)
	s, err := d.CreateWaiting("alice")
	require.NoError(t, err)

	_, err = d.CreateWaiting("alice")
	require.ErrorIs(t, err, ErrAlreadyInSession)

	// Once the first session is gone the host can open another.
	d.Delete(s.ID())
	_, err = d.CreateWaiting("alice")
	require.NoError(t, err)
}

func TestCreatePaired(t *testing.T) {
	d, _ := newTestDirectory(time.Hour)
	s, err := d.CreatePaired("alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, game.PhasePlacement, s.Phase())

	got, err := d.ResolveByPlayer("bob")
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestResolvePrefersIDThenPlayer(t *testing.T) {
	d, clk := newTestDirectory(time.Hour)
	first, err := d.CreateWaiting("alice")
	require.NoError(t, err)

	// Unknown id falls back to the caller's identity.
	got, err := d.Resolve("no-such-id", "alice")
	require.NoError(t, err)
	assert.Same(t, first, got)

	// A stale per-player binding is repaired by the scan.
	d.Delete(first.ID())
	clk.Advance(time.Second)
	second, err := d.CreatePaired("alice", "bob")
	require.NoError(t, err)
	got, err = d.Resolve("", "alice")
	require.NoError(t, err)
	assert.Same(t, second, got)

	_, err = d.Resolve("no-such-id", "")
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = d.Resolve("", "nobody")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResolveByPlayerPicksMostRecentLive(t *testing.T) {
	d, clk := newTestDirectory(time.Hour)
	old, err := d.CreatePaired("alice", "bob")
	require.NoError(t, err)
	old.Deactivate()

	clk.Advance(time.Minute)
	recent, err := d.CreatePaired("alice", "carol")
	require.NoError(t, err)

	got, err := d.ResolveByPlayer("alice")
	require.NoError(t, err)
	assert.Same(t, recent, got)
}

func TestRetireKeepsSessionResolvableByID(t *testing.T) {
	d, clk := newTestDirectory(time.Hour)
	s, err := d.CreatePaired("alice", "bob")
	require.NoError(t, err)

	d.Retire(s.ID())
	assert.False(t, s.Live())

	// Still resolvable by id during retention, but no longer a live match
	// for its players.
	_, err = d.Resolve(s.ID(), "")
	require.NoError(t, err)
	_, err = d.ResolveByPlayer("alice")
	require.ErrorIs(t, err, ErrSessionNotFound)

	// Swept after the retention window.
	clk.Advance(time.Hour + time.Second)
	assert.Equal(t, 1, d.SweepExpired(clk.Now()))
	_, err = d.Resolve(s.ID(), "")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestScheduleDeletion(t *testing.T) {
	d, clk := newTestDirectory(time.Hour)
	s, err := d.CreatePaired("alice", "bob")
	require.NoError(t, err)

	d.ScheduleDeletion(s.ID(), 10*time.Minute)
	clk.Advance(5 * time.Minute)
	assert.Zero(t, d.SweepExpired(clk.Now()))

	clk.Advance(6 * time.Minute)
	assert.Equal(t, 1, d.SweepExpired(clk.Now()))

	// Idempotent once the session is gone.
	d.ScheduleDeletion(s.ID(), time.Minute)
	clk.Advance(time.Hour)
	assert.Zero(t, d.SweepExpired(clk.Now()))
}

func TestDeleteClearsPlayerBindings(t *testing.T) {
	d, _ := newTestDirectory(time.Hour)
	s, err := d.CreatePaired("alice", "bob")
	require.NoError(t, err)

	require.True(t, d.Delete(s.ID()))
	require.False(t, d.Delete(s.ID()))
	_, err = d.ResolveByPlayer("alice")
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = d.ResolveByPlayer("bob")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSnapshot(t *testing.T) {
	d, _ := newTestDirectory(time.Hour)
	_, err := d.CreateWaiting("alice")
	require.NoError(t, err)
	_, err = d.CreatePaired("bob", "carol")
	require.NoError(t, err)

	views := d.Snapshot()
	assert.Len(t, views, 2)
}

func TestNewIDIsUniqueAndSortable(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}
