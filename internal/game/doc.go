// Package game implements the authoritative rules for a dice-poker room.
//
// The main type is Room, which owns the seated players, community dice, pot,
// phase and turn pointer for one game instance, and applies every command
// (join, add bot, start, player action) against them.
//
// # Basic Usage
//
//	r := game.NewRoom("AB12CD", "conn-1", "Alice", roller, scheduler)
//	_ = r.Join("conn-2", "Bob")
//	_ = r.Start("conn-1")
//	_ = r.Act("conn-1", game.Call)
//
// # Timers
//
// Room never sleeps or starts goroutines. Delayed work (a bot's turn, the
// pause before the next street) is handed to a Scheduler as a Task. The
// scheduler later passes the Task back through Room.Fire, which re-checks the
// round, phase and seat it was created for and does nothing if the room has
// moved on. Callers must serialise every method call on a Room; the server
// does this with one goroutine per room.
//
// # Errors
//
// Errors wrapping ErrRejected are commands that were not allowed in the
// current state (wrong turn, not the host, wrong phase). They leave the room
// untouched and are normally dropped without telling the sender.
package game
