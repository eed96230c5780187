// Package presence owns the player-to-connection directory: who is online,
// which connection speaks for them, and the reconnect grace window after a
// drop.
package presence

import (
	"errors"
	"sort"
	"sync"
	"time"

	"seastrike/internal/clock"
)

var ErrNameTaken = errors.New("name_taken")

// Conn is the live duplex channel bound to a player. Send must never block;
// undeliverable events are dropped.
type Conn interface {
	ID() string
	Send(v any)
}

type entry struct {
	handle         Conn
	disconnectedAt time.Time
	graceDeadline  time.Time
}

// Registry maps player identities to connection handles. One mutex guards
// all entries, so a reconnect racing a grace expiry observes the pending
// entry and clears the deadline atomically with rebinding.
type Registry struct {
	mu      sync.Mutex
	clock   clock.Clock
	grace   time.Duration
	entries map[string]*entry
}

func NewRegistry(clk clock.Clock, grace time.Duration) *Registry {
	return &Registry{
		clock:   clk,
		grace:   grace,
		entries: map[string]*entry{},
	}
}

// Register binds identity to c. An identity already bound to a different
// live handle is taken; an entry hanging in disconnect grace is rebound and
// reported as a reconnect; re-registering the same open handle is a no-op.
func (r *Registry) Register(identity string, c Conn) (reconnect bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[identity]
	if !ok {
		r.entries[identity] = &entry{handle: c}
		return false, nil
	}
	if e.handle != nil && e.handle.ID() == c.ID() {
		// Same still-open handle re-registering; nothing changes.
		return false, nil
	}
	if e.handle != nil {
		return false, ErrNameTaken
	}
	e.handle = c
	e.disconnectedAt = time.Time{}
	e.graceDeadline = time.Time{}
	return true, nil
}

// Logout deletes the entry immediately, grace or not.
func (r *Registry) Logout(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[identity]; !ok {
		return false
	}
	delete(r.entries, identity)
	return true
}

// MarkDisconnected clears the binding for whichever identity holds exactly
// this handle and starts its grace window. A connection whose identity has
// already rebound to a newer handle is ignored.
func (r *Registry) MarkDisconnected(c Conn) (identity string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now()
	for id, e := range r.entries {
		if e.handle != nil && e.handle.ID() == c.ID() {
			e.handle = nil
			e.disconnectedAt = now
			e.graceDeadline = now.Add(r.grace)
			return id, true
		}
	}
	return "", false
}

// ExpireGrace finalizes every entry whose grace deadline has passed without
// a rebind, deleting it as if the player had logged out. The affected
// identities are returned so the caller can settle their matches.
func (r *Registry) ExpireGrace(now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []string
	for id, e := range r.entries {
		if e.handle == nil && !e.graceDeadline.IsZero() && !now.Before(e.graceDeadline) {
			expired = append(expired, id)
			delete(r.entries, id)
		}
	}
	sort.Strings(expired)
	return expired
}

func (r *Registry) Lookup(identity string) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[identity]
	if !ok || e.handle == nil {
		return nil, false
	}
	return e.handle, true
}

func (r *Registry) IsOnline(identity string) bool {
	_, ok := r.Lookup(identity)
	return ok
}

// Roster lists every registered identity, online or in grace, sorted for
// stable broadcasts.
func (r *Registry) Roster() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Broadcast sends v to every live connection.
func (r *Registry) Broadcast(v any) {
	r.mu.Lock()
	handles := make([]Conn, 0, len(r.entries))
	for _, e := range r.entries {
		if e.handle != nil {
			handles = append(handles, e.handle)
		}
	}
	r.mu.Unlock()
	for _, h := range handles {
		h.Send(v)
	}
}
