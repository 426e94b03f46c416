package server

import "github.com/lox/dicepoker/internal/game"

// Redact returns the view of s that viewerID is allowed to see. Before the
// showdown every other player's hole dice are replaced by an empty list.
func Redact(s game.State, viewerID string) RoomState {
	out := s
	out.Players = make([]game.Player, len(s.Players))
	copy(out.Players, s.Players)

	if s.Phase != game.PhaseShowdown {
		for i := range out.Players {
			if out.Players[i].ID != viewerID {
				out.Players[i].HoleDice = []int{}
			}
		}
	}
	return RoomState{State: out, You: viewerID}
}
