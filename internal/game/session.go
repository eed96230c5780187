package game

import (
	"sync"
	"time"

	"seastrike/internal/rng"
)

type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhasePlacement Phase = "placement"
	PhaseBattle    Phase = "battle"
	PhaseFinished  Phase = "finished"
)

// Session is one match's authoritative state. It holds participant
// identities, never connection handles, so match state survives transient
// connectivity. All mutation goes through its methods; each method holds the
// session lock for its whole read-modify-write, which is what serializes
// concurrent events targeting the same session.
type Session struct {
	id        string
	createdAt time.Time
	rand      rng.Rand

	mu           sync.Mutex
	participants []string
	boards       map[string]*Board
	fleets       map[string]Fleet
	committed    map[string]bool
	phase        Phase
	turnOwner    string
	winner       string
	forfeit      bool
	active       bool
}

// Result reports what a RecordResult call changed.
type Result struct {
	TurnFlipped bool
	Finished    bool
	Winner      string
}

// View is a read-only snapshot for introspection and logging.
type View struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	Phase        Phase     `json:"phase"`
	TurnOwner    string    `json:"turn_owner,omitempty"`
	Winner       string    `json:"winner,omitempty"`
	Forfeit      bool      `json:"forfeit,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewWaiting(id, host string, now time.Time, r rng.Rand) *Session {
	s := newSession(id, now, r)
	s.join(host)
	s.phase = PhaseWaiting
	return s
}

func NewPaired(id, a, b string, now time.Time, r rng.Rand) *Session {
	s := newSession(id, now, r)
	s.join(a)
	s.join(b)
	s.phase = PhasePlacement
	return s
}

func newSession(id string, now time.Time, r rng.Rand) *Session {
	return &Session{
		id:        id,
		createdAt: now,
		rand:      r,
		boards:    map[string]*Board{},
		fleets:    map[string]Fleet{},
		committed: map[string]bool{},
		active:    true,
	}
}

func (s *Session) join(p string) {
	s.participants = append(s.participants, p)
	s.boards[p] = &Board{}
	s.fleets[p] = nil
}

func (s *Session) ID() string           { return s.id }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) TurnOwner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnOwner
}

func (s *Session) Participants() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.participants))
	copy(out, s.participants)
	return out
}

func (s *Session) HasParticipant(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasParticipant(p)
}

func (s *Session) hasParticipant(p string) bool {
	for _, q := range s.participants {
		if q == p {
			return true
		}
	}
	return false
}

// Opponent returns the other participant, or "" while waiting.
func (s *Session) Opponent(p string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.participants {
		if q != p {
			return q
		}
	}
	return ""
}

// Host is the participant that created the session.
func (s *Session) Host() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.participants) == 0 {
		return ""
	}
	return s.participants[0]
}

// Live reports whether the session can still accept gameplay events: not
// retired and not finished.
func (s *Session) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && s.phase != PhaseFinished
}

func (s *Session) Winner() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner, s.phase == PhaseFinished
}

func (s *Session) WonByForfeit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forfeit
}

// FleetCommitted reports whether p has committed ships this match.
func (s *Session) FleetCommitted(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed[p]
}

func (s *Session) BoardCell(p string, pos Position) CellState {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[p]
	if !ok {
		return CellEmpty
	}
	return b.Cell(pos)
}

// Deactivate retires the session. It stays in the directory until swept so a
// disconnected participant can still resolve it and learn the outcome.
func (s *Session) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// AddParticipant seats a second player. Legal only while waiting; a session
// with two seats, or a duplicate identity, rejects the join.
func (s *Session) AddParticipant(p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrSessionInactive
	}
	if s.phase != PhaseWaiting || s.hasParticipant(p) {
		return ErrSessionFull
	}
	s.join(p)
	s.phase = PhasePlacement
	return nil
}

// CommitFleet stores p's ships. Committing twice overwrites. When the second
// fleet lands the session picks a uniform random first player and moves to
// battle; the chosen identity is returned as first.
func (s *Session) CommitFleet(p string, ships []Ship) (ready bool, first string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.phase == PhaseFinished {
		return false, "", ErrSessionInactive
	}
	if s.phase != PhasePlacement {
		return false, "", ErrSessionInactive
	}
	if !s.hasParticipant(p) {
		return false, "", ErrNotParticipant
	}
	fleet := make(Fleet, len(ships))
	copy(fleet, ships)
	for i := range fleet {
		fleet[i].Destroyed = false
	}
	s.fleets[p] = fleet
	s.committed[p] = true

	if len(s.participants) == 2 && s.committed[s.participants[0]] && s.committed[s.participants[1]] {
		s.turnOwner = s.participants[s.rand.Intn(2)]
		s.phase = PhaseBattle
		return true, s.turnOwner, nil
	}
	return false, "", nil
}

// RecordAttack validates turn ownership. It does not touch any board: the
// defender's client is the source of truth for hit detection, so the board
// only changes when the result comes back through RecordResult.
func (s *Session) RecordAttack(attacker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.phase == PhaseFinished {
		return ErrSessionInactive
	}
	if !s.hasParticipant(attacker) {
		return ErrNotParticipant
	}
	if s.turnOwner != attacker {
		return ErrNotYourTurn
	}
	return nil
}

// RecordResult applies a defender-reported attack outcome: marks the
// defender's board, flips the turn on a miss (a hit grants another attack),
// records a destroyed ship, and finishes the match when the last ship goes
// down.
func (s *Session) RecordResult(attacker, defender string, pos Position, hit bool, destroyedShipID string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.phase == PhaseFinished {
		return Result{}, ErrSessionInactive
	}
	if !s.hasParticipant(attacker) || !s.hasParticipant(defender) || attacker == defender {
		return Result{}, ErrNotParticipant
	}
	if b := s.boards[defender]; b != nil {
		b.mark(pos, hit)
	}

	var res Result
	if !hit {
		s.turnOwner = defender
		res.TurnFlipped = true
	}
	if destroyedShipID != "" {
		fleet := s.fleets[defender]
		fleet.markDestroyed(destroyedShipID)
		if fleet.allDestroyed() {
			s.finishLocked(attacker, false)
			res.Finished = true
			res.Winner = attacker
		}
	}
	return res, nil
}

// Finish ends the match. Legal from battle, or from placement when a
// departure is treated as forfeiture. A finished session is immutable.
func (s *Session) Finish(winner string, forfeit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseFinished {
		return ErrSessionInactive
	}
	if s.phase != PhaseBattle && s.phase != PhasePlacement {
		return ErrSessionInactive
	}
	if !s.hasParticipant(winner) {
		return ErrNotParticipant
	}
	s.finishLocked(winner, forfeit)
	return nil
}

func (s *Session) finishLocked(winner string, forfeit bool) {
	s.phase = PhaseFinished
	s.winner = winner
	s.forfeit = forfeit
	s.turnOwner = ""
	s.active = false
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	participants := make([]string, len(s.participants))
	copy(participants, s.participants)
	return View{
		ID:           s.id,
		Participants: participants,
		Phase:        s.phase,
		TurnOwner:    s.turnOwner,
		Winner:       s.winner,
		Forfeit:      s.forfeit,
		Active:       s.active,
		CreatedAt:    s.createdAt,
	}
}
