package game

import "errors"

var (
	ErrSessionFull     = errors.New("session_full")
	ErrNotYourTurn     = errors.New("not_your_turn")
	ErrSessionInactive = errors.New("session_inactive")
	ErrNotParticipant  = errors.New("not_participant")
)
