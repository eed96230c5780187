// Package protocol defines the JSON event vocabulary spoken over the
// websocket. Inbound events carry a type tag plus a flat payload; outbound
// events are built by the constructors below so every message leaves with
// its type set.
package protocol

import (
	"encoding/json"

	"seastrike/internal/game"
)

// Inbound event types.
const (
	TypeRegister     = "REGISTER"
	TypeLogout       = "LOGOUT"
	TypeCreateGame   = "CREATE_GAME"
	TypeInvite       = "INVITE"
	TypeAcceptInvite = "ACCEPT_INVITE"
	TypeJoinGame     = "JOIN_GAME"
	TypeLeaveGame    = "LEAVE_GAME"
	TypeShipsPlaced  = "SHIPS_PLACED"
	TypeAttack       = "ATTACK"
	TypeAttackResult = "ATTACK_RESULT"
	TypeChat         = "CHAT"
	TypeGameOver     = "GAME_OVER"
)

// Outbound event types.
const (
	TypeRegistered  = "REGISTERED"
	TypeSetPlayers  = "SET_PLAYERS"
	TypeError       = "ERROR"
	TypeGameCreated = "GAME_CREATED"
	TypeStartGame   = "START_GAME"
	TypeGameJoined  = "GAME_JOINED"
	TypeReconnected = "RECONNECTED"
	TypeGameReady   = "GAME_READY"
	TypeGameLeft    = "GAME_LEFT"
)

// Envelope is the minimal decode used to route an inbound payload.
type Envelope struct {
	Type string `json:"type"`
}

type RegisterEvent struct {
	Username string `json:"username"`
}

type LogoutEvent struct {
	Username string `json:"username"`
}

type CreateGameEvent struct {
	Player string `json:"player"`
}

type InviteEvent struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type AcceptInviteEvent struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type JoinGameEvent struct {
	GameID string `json:"gameId"`
	Player string `json:"player"`
}

type LeaveGameEvent struct {
	GameID string `json:"gameId"`
	Player string `json:"player"`
}

type ShipsPlacedEvent struct {
	GameID string      `json:"gameId"`
	Player string      `json:"player"`
	Ships  []game.Ship `json:"ships"`
}

type AttackEvent struct {
	GameID   string        `json:"gameId"`
	Attacker string        `json:"attacker"`
	Defender string        `json:"defender"`
	Position game.Position `json:"position"`
}

type AttackResultEvent struct {
	GameID        string        `json:"gameId"`
	Attacker      string        `json:"attacker"`
	Defender      string        `json:"defender"`
	Position      game.Position `json:"position"`
	Hit           bool          `json:"hit"`
	ShipDestroyed string        `json:"shipDestroyed,omitempty"`
}

type ChatEvent struct {
	GameID  string `json:"gameId"`
	From    string `json:"from"`
	Message string `json:"message"`
}

type GameOverEvent struct {
	GameID string `json:"gameId"`
	Winner string `json:"winner"`
}

// Decode unmarshals an inbound payload into out, surfacing any JSON error
// so the caller can drop the event as malformed.
func Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}
