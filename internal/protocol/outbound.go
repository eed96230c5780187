package protocol

import (
	"seastrike/internal/game"
)

type Registered struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Reconnect bool   `json:"reconnect"`
}

func NewRegistered(username string, reconnect bool) Registered {
	return Registered{Type: TypeRegistered, Username: username, Reconnect: reconnect}
}

type SetPlayers struct {
	Type    string   `json:"type"`
	Players []string `json:"players"`
}

func NewSetPlayers(players []string) SetPlayers {
	return SetPlayers{Type: TypeSetPlayers, Players: players}
}

type ErrorNotice struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewError(code, message string) ErrorNotice {
	return ErrorNotice{Type: TypeError, Code: code, Message: message}
}

type GameCreated struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
}

func NewGameCreated(gameID string) GameCreated {
	return GameCreated{Type: TypeGameCreated, GameID: gameID}
}

type InviteNotice struct {
	Type string `json:"type"`
	From string `json:"from"`
}

func NewInvite(from string) InviteNotice {
	return InviteNotice{Type: TypeInvite, From: from}
}

type StartGame struct {
	Type     string `json:"type"`
	GameID   string `json:"gameId"`
	Opponent string `json:"opponent"`
}

func NewStartGame(gameID, opponent string) StartGame {
	return StartGame{Type: TypeStartGame, GameID: gameID, Opponent: opponent}
}

type GameJoined struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
	Player string `json:"player"`
}

func NewGameJoined(gameID, player string) GameJoined {
	return GameJoined{Type: TypeGameJoined, GameID: gameID, Player: player}
}

type Reconnected struct {
	Type     string     `json:"type"`
	GameID   string     `json:"gameId"`
	Opponent string     `json:"opponent,omitempty"`
	Phase    game.Phase `json:"gamePhase"`
}

func NewReconnected(gameID, opponent string, phase game.Phase) Reconnected {
	return Reconnected{Type: TypeReconnected, GameID: gameID, Opponent: opponent, Phase: phase}
}

type ShipsPlacedNotice struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
	Player string `json:"player"`
}

func NewShipsPlaced(gameID, player string) ShipsPlacedNotice {
	return ShipsPlacedNotice{Type: TypeShipsPlaced, GameID: gameID, Player: player}
}

type GameReady struct {
	Type        string `json:"type"`
	GameID      string `json:"gameId"`
	FirstPlayer string `json:"firstPlayer"`
}

func NewGameReady(gameID, firstPlayer string) GameReady {
	return GameReady{Type: TypeGameReady, GameID: gameID, FirstPlayer: firstPlayer}
}

type AttackNotice struct {
	Type     string        `json:"type"`
	GameID   string        `json:"gameId"`
	Attacker string        `json:"attacker"`
	Position game.Position `json:"position"`
}

func NewAttack(gameID, attacker string, pos game.Position) AttackNotice {
	return AttackNotice{Type: TypeAttack, GameID: gameID, Attacker: attacker, Position: pos}
}

type AttackResultNotice struct {
	Type          string        `json:"type"`
	GameID        string        `json:"gameId"`
	Attacker      string        `json:"attacker"`
	Defender      string        `json:"defender"`
	Position      game.Position `json:"position"`
	Hit           bool          `json:"hit"`
	ShipDestroyed string        `json:"shipDestroyed,omitempty"`
}

func NewAttackResult(ev AttackResultEvent) AttackResultNotice {
	return AttackResultNotice{
		Type:          TypeAttackResult,
		GameID:        ev.GameID,
		Attacker:      ev.Attacker,
		Defender:      ev.Defender,
		Position:      ev.Position,
		Hit:           ev.Hit,
		ShipDestroyed: ev.ShipDestroyed,
	}
}

type ChatNotice struct {
	Type    string `json:"type"`
	GameID  string `json:"gameId"`
	From    string `json:"from"`
	Message string `json:"message"`
}

func NewChat(gameID, from, message string) ChatNotice {
	return ChatNotice{Type: TypeChat, GameID: gameID, From: from, Message: message}
}

type GameOverNotice struct {
	Type    string `json:"type"`
	GameID  string `json:"gameId"`
	Winner  string `json:"winner"`
	Forfeit bool   `json:"forfeit,omitempty"`
}

func NewGameOver(gameID, winner string, forfeit bool) GameOverNotice {
	return GameOverNotice{Type: TypeGameOver, GameID: gameID, Winner: winner, Forfeit: forfeit}
}

type GameLeft struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
	Player string `json:"player"`
}

func NewGameLeft(gameID, player string) GameLeft {
	return GameLeft{Type: TypeGameLeft, GameID: gameID, Player: player}
}
