package coordinator

import (
	"errors"

	"seastrike/internal/game"
	"seastrike/internal/presence"
	"seastrike/internal/protocol"
	"seastrike/internal/session"
)

var errCannotJoinOwnSession = errors.New("cannot_join_own_session")

// mapError translates a directory or session error into the one-line ERROR
// event shown to the player who committed the invalid action.
func mapError(err error) protocol.ErrorNotice {
	switch {
	case errors.Is(err, presence.ErrNameTaken):
		return protocol.NewError("name_taken", "That name is already in use")
	case errors.Is(err, session.ErrAlreadyInSession):
		return protocol.NewError("already_in_session", "You are already in a game")
	case errors.Is(err, session.ErrSessionNotFound):
		return protocol.NewError("session_not_found", "Game not found")
	case errors.Is(err, game.ErrSessionFull):
		return protocol.NewError("session_full", "Game is full")
	case errors.Is(err, errCannotJoinOwnSession):
		return protocol.NewError("cannot_join_own_session", "Cannot join your own game")
	case errors.Is(err, game.ErrNotYourTurn):
		return protocol.NewError("not_your_turn", "Not your turn")
	case errors.Is(err, game.ErrSessionInactive):
		return protocol.NewError("session_inactive", "Game is not active")
	case errors.Is(err, game.ErrNotParticipant):
		return protocol.NewError("session_not_found", "You are not in that game")
	default:
		return protocol.NewError("internal_error", "Something went wrong")
	}
}
