// Package coordinator is the message-driven orchestrator: it resolves each
// inbound event to its session, validates it against phase and turn state,
// applies the mutation, and relays derived events to the affected
// connections. It is the only component that crosses between the presence
// and session directories.
package coordinator

import (
	"github.com/rs/zerolog/log"

	"seastrike/internal/clock"
	"seastrike/internal/game"
	"seastrike/internal/presence"
	"seastrike/internal/protocol"
	"seastrike/internal/session"
)

type Coordinator struct {
	presence *presence.Registry
	sessions *session.Directory
	clock    clock.Clock
}

func New(pres *presence.Registry, dir *session.Directory, clk clock.Clock) *Coordinator {
	return &Coordinator{
		presence: pres,
		sessions: dir,
		clock:    clk,
	}
}

// Dispatch routes one inbound payload. Malformed payloads are dropped with
// a logged diagnostic and no outbound event; every recoverable failure is
// reported as an ERROR event to the originating connection only.
func (c *Coordinator) Dispatch(conn presence.Conn, data []byte) {
	var env protocol.Envelope
	if err := protocol.Decode(data, &env); err != nil {
		log.Warn().Err(err).Str("conn_id", conn.ID()).Msg("malformed event dropped")
		return
	}

	switch env.Type {
	case protocol.TypeRegister:
		c.handleRegister(conn, data)
	case protocol.TypeLogout:
		c.handleLogout(conn, data)
	case protocol.TypeCreateGame:
		c.handleCreateGame(conn, data)
	case protocol.TypeInvite:
		c.handleInvite(conn, data)
	case protocol.TypeAcceptInvite:
		c.handleAcceptInvite(conn, data)
	case protocol.TypeJoinGame:
		c.handleJoinGame(conn, data)
	case protocol.TypeLeaveGame:
		c.handleLeaveGame(conn, data)
	case protocol.TypeShipsPlaced:
		c.handleShipsPlaced(conn, data)
	case protocol.TypeAttack:
		c.handleAttack(conn, data)
	case protocol.TypeAttackResult:
		c.handleAttackResult(conn, data)
	case protocol.TypeChat:
		c.handleChat(conn, data)
	case protocol.TypeGameOver:
		c.handleGameOver(conn, data)
	default:
		log.Warn().Str("type", env.Type).Str("conn_id", conn.ID()).Msg("unknown event type dropped")
	}
}

func (c *Coordinator) decode(conn presence.Conn, data []byte, out any) bool {
	if err := protocol.Decode(data, out); err != nil {
		log.Warn().Err(err).Str("conn_id", conn.ID()).Msg("malformed event dropped")
		return false
	}
	return true
}

func (c *Coordinator) sendError(conn presence.Conn, err error) {
	conn.Send(mapError(err))
}

func (c *Coordinator) handleRegister(conn presence.Conn, data []byte) {
	var ev protocol.RegisterEvent
	if !c.decode(conn, data, &ev) || ev.Username == "" {
		return
	}

	reconnect, err := c.presence.Register(ev.Username, conn)
	if err != nil {
		c.sendError(conn, err)
		return
	}
	conn.Send(protocol.NewRegistered(ev.Username, reconnect))

	if reconnect {
		// Only the requester needs a fresh roster; the population did not
		// change, so no broadcast churn.
		conn.Send(protocol.NewSetPlayers(c.presence.Roster()))
		if s, err := c.sessions.ResolveByPlayer(ev.Username); err == nil {
			conn.Send(protocol.NewReconnected(s.ID(), s.Opponent(ev.Username), s.Phase()))
		}
		log.Info().Str("player", ev.Username).Msg("player reconnected")
		return
	}

	c.presence.Broadcast(protocol.NewSetPlayers(c.presence.Roster()))
	log.Info().Str("player", ev.Username).Msg("player registered")
}

func (c *Coordinator) handleLogout(conn presence.Conn, data []byte) {
	var ev protocol.LogoutEvent
	if !c.decode(conn, data, &ev) || ev.Username == "" {
		return
	}
	if c.presence.Logout(ev.Username) {
		c.presence.Broadcast(protocol.NewSetPlayers(c.presence.Roster()))
		log.Info().Str("player", ev.Username).Msg("player logged out")
	}
}

func (c *Coordinator) handleCreateGame(conn presence.Conn, data []byte) {
	var ev protocol.CreateGameEvent
	if !c.decode(conn, data, &ev) || ev.Player == "" {
		return
	}
	s, err := c.sessions.CreateWaiting(ev.Player)
	if err != nil {
		c.sendError(conn, err)
		return
	}
	conn.Send(protocol.NewGameCreated(s.ID()))
	log.Info().Str("game_id", s.ID()).Str("host", ev.Player).Msg("waiting session created")
}

func (c *Coordinator) handleInvite(conn presence.Conn, data []byte) {
	var ev protocol.InviteEvent
	if !c.decode(conn, data, &ev) {
		return
	}
	to, ok := c.presence.Lookup(ev.To)
	if !ok {
		// Reference behavior: inviting an offline player is a silent no-op.
		log.Debug().Str("from", ev.From).Str("to", ev.To).Msg("invite dropped, target offline")
		return
	}
	to.Send(protocol.NewInvite(ev.From))
}

func (c *Coordinator) handleAcceptInvite(conn presence.Conn, data []byte) {
	var ev protocol.AcceptInviteEvent
	if !c.decode(conn, data, &ev) {
		return
	}
	from, fromOK := c.presence.Lookup(ev.From)
	to, toOK := c.presence.Lookup(ev.To)
	if !fromOK || !toOK {
		log.Debug().Str("from", ev.From).Str("to", ev.To).Msg("accept dropped, participant offline")
		return
	}
	s, err := c.sessions.CreatePaired(ev.From, ev.To)
	if err != nil {
		c.sendError(conn, err)
		return
	}
	from.Send(protocol.NewStartGame(s.ID(), ev.To))
	to.Send(protocol.NewStartGame(s.ID(), ev.From))
	log.Info().Str("game_id", s.ID()).Str("host", ev.From).Str("guest", ev.To).Msg("paired session created")
}

func (c *Coordinator) handleJoinGame(conn presence.Conn, data []byte) {
	var ev protocol.JoinGameEvent
	if !c.decode(conn, data, &ev) || ev.Player == "" {
		return
	}
	s, err := c.sessions.Resolve(ev.GameID, ev.Player)
	if err != nil {
		c.sendError(conn, err)
		return
	}

	if s.HasParticipant(ev.Player) {
		c.rejoin(conn, s, ev.Player)
		return
	}

	if err := s.AddParticipant(ev.Player); err != nil {
		c.sendError(conn, err)
		return
	}
	c.sessions.Bind(ev.Player, s.ID())

	host := s.Host()
	if hostConn, ok := c.presence.Lookup(host); ok {
		hostConn.Send(protocol.NewGameJoined(s.ID(), ev.Player))
	}
	conn.Send(protocol.NewStartGame(s.ID(), host))
	log.Info().Str("game_id", s.ID()).Str("player", ev.Player).Msg("player joined session")
}

// rejoin reattaches a participant to their own session: a finished match
// replays the final notification, a waiting one cannot be joined twice, and
// a match in flight resumes where it stood.
func (c *Coordinator) rejoin(conn presence.Conn, s *game.Session, player string) {
	switch s.Phase() {
	case game.PhaseWaiting:
		c.sendError(conn, errCannotJoinOwnSession)
	case game.PhaseFinished:
		winner, _ := s.Winner()
		conn.Send(protocol.NewGameOver(s.ID(), winner, s.WonByForfeit()))
	default:
		c.sessions.Bind(player, s.ID())
		conn.Send(protocol.NewReconnected(s.ID(), s.Opponent(player), s.Phase()))
	}
}

func (c *Coordinator) handleLeaveGame(conn presence.Conn, data []byte) {
	var ev protocol.LeaveGameEvent
	if !c.decode(conn, data, &ev) || ev.Player == "" {
		return
	}
	s, err := c.sessions.Resolve(ev.GameID, ev.Player)
	if err != nil || !s.HasParticipant(ev.Player) {
		return
	}
	c.abandon(s, ev.Player)
}

// abandon applies the departure policy: a waiting or placing session is
// deleted outright, a battle is forfeited to the opponent, and a finished
// session is left alone.
func (c *Coordinator) abandon(s *game.Session, leaver string) {
	opponent := s.Opponent(leaver)

	switch s.Phase() {
	case game.PhaseWaiting:
		c.sessions.Delete(s.ID())
		log.Info().Str("game_id", s.ID()).Str("player", leaver).Msg("waiting session abandoned")
	case game.PhasePlacement:
		if opp, ok := c.presence.Lookup(opponent); ok {
			opp.Send(protocol.NewGameLeft(s.ID(), leaver))
		}
		c.sessions.Delete(s.ID())
		log.Info().Str("game_id", s.ID()).Str("player", leaver).Msg("session abandoned during placement")
	case game.PhaseBattle:
		if err := s.Finish(opponent, true); err != nil {
			log.Error().Err(err).Str("game_id", s.ID()).Msg("forfeit failed")
			return
		}
		if opp, ok := c.presence.Lookup(opponent); ok {
			opp.Send(protocol.NewGameLeft(s.ID(), leaver))
			opp.Send(protocol.NewGameOver(s.ID(), opponent, true))
		}
		if leaverConn, ok := c.presence.Lookup(leaver); ok {
			leaverConn.Send(protocol.NewGameOver(s.ID(), opponent, true))
		}
		c.sessions.Retire(s.ID())
		log.Info().Str("game_id", s.ID()).Str("winner", opponent).Msg("battle forfeited")
	}
}

func (c *Coordinator) handleShipsPlaced(conn presence.Conn, data []byte) {
	var ev protocol.ShipsPlacedEvent
	if !c.decode(conn, data, &ev) || ev.Player == "" {
		return
	}
	s, err := c.sessions.Resolve(ev.GameID, ev.Player)
	if err != nil {
		c.sendError(conn, err)
		return
	}
	ready, first, err := s.CommitFleet(ev.Player, ev.Ships)
	if err != nil {
		c.sendError(conn, err)
		return
	}
	c.sessions.Bind(ev.Player, s.ID())

	opponent := s.Opponent(ev.Player)
	if opp, ok := c.presence.Lookup(opponent); ok {
		opp.Send(protocol.NewShipsPlaced(s.ID(), ev.Player))
	}
	if ready {
		for _, p := range s.Participants() {
			if pc, ok := c.presence.Lookup(p); ok {
				pc.Send(protocol.NewGameReady(s.ID(), first))
			}
		}
		log.Info().Str("game_id", s.ID()).Str("first_player", first).Msg("battle started")
	}
}

func (c *Coordinator) handleAttack(conn presence.Conn, data []byte) {
	var ev protocol.AttackEvent
	if !c.decode(conn, data, &ev) || ev.Attacker == "" {
		return
	}
	if !ev.Position.Valid() {
		log.Warn().Str("conn_id", conn.ID()).Msg("attack with out-of-range position dropped")
		return
	}
	s, err := c.sessions.Resolve(ev.GameID, ev.Attacker)
	if err != nil {
		c.sendError(conn, err)
		return
	}
	if err := s.RecordAttack(ev.Attacker); err != nil {
		c.sendError(conn, err)
		return
	}

	defender := s.Opponent(ev.Attacker)
	if def, ok := c.presence.Lookup(defender); ok {
		def.Send(protocol.NewAttack(s.ID(), ev.Attacker, ev.Position))
		return
	}

	// The defender is the source of truth for hit detection; with it gone
	// the shot resolves as a miss so the match is not stalled.
	res := protocol.AttackResultEvent{
		GameID:   s.ID(),
		Attacker: ev.Attacker,
		Defender: defender,
		Position: ev.Position,
		Hit:      false,
	}
	if _, err := s.RecordResult(ev.Attacker, defender, ev.Position, false, ""); err != nil {
		log.Error().Err(err).Str("game_id", s.ID()).Msg("offline-defender miss not recorded")
		return
	}
	conn.Send(protocol.NewAttackResult(res))
}

func (c *Coordinator) handleAttackResult(conn presence.Conn, data []byte) {
	var ev protocol.AttackResultEvent
	if !c.decode(conn, data, &ev) || ev.Attacker == "" || ev.Defender == "" {
		return
	}
	s, err := c.sessions.Resolve(ev.GameID, ev.Attacker)
	if err != nil {
		return
	}
	res, err := s.RecordResult(ev.Attacker, ev.Defender, ev.Position, ev.Hit, ev.ShipDestroyed)
	if err != nil {
		return
	}

	ev.GameID = s.ID()
	if att, ok := c.presence.Lookup(ev.Attacker); ok {
		att.Send(protocol.NewAttackResult(ev))
	}

	if res.Finished {
		c.finishSession(s, res.Winner, false)
	}
}

func (c *Coordinator) handleChat(conn presence.Conn, data []byte) {
	var ev protocol.ChatEvent
	if !c.decode(conn, data, &ev) || ev.From == "" {
		return
	}
	s, err := c.sessions.Resolve(ev.GameID, ev.From)
	if err != nil || !s.Live() || !s.HasParticipant(ev.From) {
		return
	}
	// Opponent only; chat never broadcasts.
	if to, ok := c.presence.Lookup(s.Opponent(ev.From)); ok {
		to.Send(protocol.NewChat(s.ID(), ev.From, ev.Message))
	}
}

func (c *Coordinator) handleGameOver(conn presence.Conn, data []byte) {
	var ev protocol.GameOverEvent
	if !c.decode(conn, data, &ev) || ev.Winner == "" {
		return
	}
	s, err := c.sessions.Resolve(ev.GameID, ev.Winner)
	if err != nil || !s.Live() {
		return
	}
	if err := s.Finish(ev.Winner, false); err != nil {
		return
	}
	c.finishSession(s, ev.Winner, false)
}

// finishSession notifies both participants and hands the session to the
// retention window. The session stays resolvable until swept so a
// disconnected participant can still receive the outcome.
func (c *Coordinator) finishSession(s *game.Session, winner string, forfeit bool) {
	for _, p := range s.Participants() {
		if pc, ok := c.presence.Lookup(p); ok {
			pc.Send(protocol.NewGameOver(s.ID(), winner, forfeit))
		}
	}
	c.sessions.Retire(s.ID())
	log.Info().Str("game_id", s.ID()).Str("winner", winner).Msg("session finished")
}

// HandleDisconnect is called by the transport when a connection closes for
// any reason. Presence keeps the entry through the grace window; match
// consequences only land if the player never comes back.
func (c *Coordinator) HandleDisconnect(conn presence.Conn) {
	identity, ok := c.presence.MarkDisconnected(conn)
	if !ok {
		return
	}
	log.Info().Str("player", identity).Msg("player disconnected, grace window started")
}

func (c *Coordinator) Roster() []string {
	return c.presence.Roster()
}

func (c *Coordinator) SessionViews() []game.View {
	return c.sessions.Snapshot()
}

func (c *Coordinator) SessionView(id string) (game.View, error) {
	s, err := c.sessions.Resolve(id, "")
	if err != nil {
		return game.View{}, err
	}
	return s.Snapshot(), nil
}
