package server

import (
	"errors"
	"fmt"

	"github.com/lox/dicepoker/internal/bot"
	"github.com/lox/dicepoker/internal/game"
)

var (
	// ErrRoomNotFound is returned when a command names a room the registry
	// does not hold.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomClosed is returned for commands that race with a room being
	// reaped or the server shutting down.
	ErrRoomClosed = errors.New("room closed")
	// ErrNotInRoom is returned for room commands from an unbound connection.
	ErrNotInRoom = errors.New("connection is not in a room")
	// ErrAlreadyInRoom is returned when a bound connection creates or joins
	// another room.
	ErrAlreadyInRoom = errors.New("connection is already in a room")
	// ErrConnectionClosed is returned when sending to a closed connection.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrCodeSpace is returned when no unused room code could be found.
	ErrCodeSpace = errors.New("could not allocate a room code")
	// ErrNotYourRoom is returned when a bound connection names another room.
	ErrNotYourRoom = fmt.Errorf("%w: connection is bound to another room", game.ErrRejected)
)

// errorCode maps an error to the code sent to the client. Rejections from
// the room are not mapped; callers drop them.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrRoomClosed):
		return CodeRoomNotFound
	case errors.Is(err, game.ErrNotAcceptingSeats):
		return CodeRoomNotOpen
	case errors.Is(err, game.ErrRoomFull):
		return CodeRoomFull
	case errors.Is(err, game.ErrAlreadySeated), errors.Is(err, ErrAlreadyInRoom):
		return CodeAlreadyInRoom
	case errors.Is(err, ErrNotInRoom):
		return CodeNotInRoom
	case errors.Is(err, bot.ErrUnknownPreset):
		return CodeUnknownBotPreset
	default:
		return CodeInternal
	}
}
