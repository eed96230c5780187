// Package session owns the set of live sessions: creation, the id and
// per-player indexes, retirement, and deferred deletion.
package session

import (
	"errors"
	"sync"
	"time"

	"seastrike/internal/clock"
	"seastrike/internal/game"
	"seastrike/internal/rng"
)

var (
	ErrAlreadyInSession = errors.New("already_in_session")
	ErrSessionNotFound  = errors.New("session_not_found")
)

// Directory is the exclusive owner of live sessions. Finished and retired
// sessions stay resolvable by id until the retention sweep removes them, so
// a disconnected participant can still learn the outcome.
type Directory struct {
	clock     clock.Clock
	rand      rng.Rand
	retention time.Duration

	mu       sync.Mutex
	sessions map[string]*game.Session
	byPlayer map[string]string
	deleteAt map[string]time.Time
}

func NewDirectory(clk clock.Clock, r rng.Rand, retention time.Duration) *Directory {
	return &Directory{
		clock:     clk,
		rand:      r,
		retention: retention,
		sessions:  map[string]*game.Session{},
		byPlayer:  map[string]string{},
		deleteAt:  map[string]time.Time{},
	}
}

// CreateWaiting opens a session with host as its only participant. A host
// already seated in a live session cannot open another.
func (d *Directory) CreateWaiting(host string) (*game.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.findLiveByPlayerLocked(host) != nil {
		return nil, ErrAlreadyInSession
	}
	s := game.NewWaiting(NewID(), host, d.clock.Now(), d.rand)
	d.sessions[s.ID()] = s
	d.byPlayer[host] = s.ID()
	return s, nil
}

// CreatePaired opens a two-participant session in placement, used when an
// invite is accepted.
func (d *Directory) CreatePaired(a, b string) (*game.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := game.NewPaired(NewID(), a, b, d.clock.Now(), d.rand)
	d.sessions[s.ID()] = s
	d.byPlayer[a] = s.ID()
	d.byPlayer[b] = s.ID()
	return s, nil
}

// Resolve maps a client-supplied session reference to the authoritative
// session: first a direct id lookup over everything not yet swept, then the
// most recently created live session seating player. The caller's own
// identity is the primary key; the reference alone is never parsed for
// structure.
func (d *Directory) Resolve(id, player string) (*game.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.sessions[id]; ok {
		return s, nil
	}
	if player != "" {
		if s := d.findLiveByPlayerLocked(player); s != nil {
			d.byPlayer[player] = s.ID()
			return s, nil
		}
	}
	return nil, ErrSessionNotFound
}

// ResolveByPlayer returns player's live session, if any.
func (d *Directory) ResolveByPlayer(player string) (*game.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s := d.findLiveByPlayerLocked(player); s != nil {
		d.byPlayer[player] = s.ID()
		return s, nil
	}
	return nil, ErrSessionNotFound
}

func (d *Directory) findLiveByPlayerLocked(player string) *game.Session {
	if id, ok := d.byPlayer[player]; ok {
		if s, ok := d.sessions[id]; ok && s.Live() && s.HasParticipant(player) {
			return s
		}
	}
	var best *game.Session
	for _, s := range d.sessions {
		if !s.Live() || !s.HasParticipant(player) {
			continue
		}
		if best == nil || s.CreatedAt().After(best.CreatedAt()) {
			best = s
		}
	}
	return best
}

// Bind records player's current session for future resolution.
func (d *Directory) Bind(player, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sessions[id]; ok {
		d.byPlayer[player] = id
	}
}

// Retire marks the session inactive; deletion happens via the retention
// sweep.
func (d *Directory) Retire(id string) {
	d.mu.Lock()
	s, ok := d.sessions[id]
	if ok {
		if _, scheduled := d.deleteAt[id]; !scheduled {
			d.deleteAt[id] = d.clock.Now().Add(d.retention)
		}
	}
	d.mu.Unlock()
	if ok {
		s.Deactivate()
	}
}

// ScheduleDeletion arranges a hard delete after the given delay. Idempotent
// for already-deleted sessions; rescheduling moves the deadline.
func (d *Directory) ScheduleDeletion(id string, after time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sessions[id]; !ok {
		return
	}
	d.deleteAt[id] = d.clock.Now().Add(after)
}

// Delete removes the session outright, used for abandonment during
// placement where nothing is worth keeping.
func (d *Directory) Delete(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleteLocked(id)
}

func (d *Directory) deleteLocked(id string) bool {
	s, ok := d.sessions[id]
	if !ok {
		return false
	}
	for _, p := range s.Participants() {
		if d.byPlayer[p] == id {
			delete(d.byPlayer, p)
		}
	}
	delete(d.sessions, id)
	delete(d.deleteAt, id)
	return true
}

// SweepExpired hard-deletes every session whose deletion deadline has
// passed, returning how many went away.
func (d *Directory) SweepExpired(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	var ids []string
	for id, at := range d.deleteAt {
		if !now.Before(at) {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		d.deleteLocked(id)
	}
	return len(ids)
}

// Snapshot lists a view of every stored session, for introspection.
func (d *Directory) Snapshot() []game.View {
	d.mu.Lock()
	sessions := make([]*game.Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		sessions = append(sessions, s)
	}
	d.mu.Unlock()
	out := make([]game.View, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Snapshot())
	}
	return out
}
