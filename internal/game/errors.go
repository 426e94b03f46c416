package game

import (
	"errors"
	"fmt"
)

// ErrRejected is wrapped by every error for a command that is not allowed in
// the room's current state.
var ErrRejected = errors.New("command rejected")

var (
	ErrNotYourTurn       = fmt.Errorf("%w: not your turn", ErrRejected)
	ErrNotHost           = fmt.Errorf("%w: only the host can start the game", ErrRejected)
	ErrWrongPhase        = fmt.Errorf("%w: not allowed in this phase", ErrRejected)
	ErrNotSeated         = fmt.Errorf("%w: player is not seated in this room", ErrRejected)
	ErrNotEnoughPlayers  = fmt.Errorf("%w: not enough players to start", ErrRejected)
	ErrStaleTask         = fmt.Errorf("%w: scheduled task no longer applies", ErrRejected)
	ErrUnknownAction     = fmt.Errorf("%w: unknown action", ErrRejected)
	ErrNotAcceptingSeats = errors.New("room is not accepting new players")
	ErrRoomFull          = errors.New("room is full")
	ErrAlreadySeated     = errors.New("player is already seated")
)
