package game

import "github.com/lox/dicepoker/internal/hand"

// Player is one seat in a room. Seating order is turn order.
type Player struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	IsHuman    bool         `json:"isHuman"`
	Chips      int          `json:"chips"`
	Bet        int          `json:"bet"` // contribution on the current street
	HoleDice   []int        `json:"holeDice"`
	HasFolded  bool         `json:"hasFolded"`
	IsHost     bool         `json:"isHost"`
	HandResult *hand.Result `json:"handResult,omitempty"`
	IsWinner   bool         `json:"isWinner"`
	Connected  bool         `json:"connected"`
}

func newPlayer(id, name string, human, host bool) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		IsHuman:   human,
		Chips:     StartingChips,
		HoleDice:  []int{},
		IsHost:    host,
		Connected: human,
	}
}

// charge moves up to amount chips from the stack into the current bet and
// returns what was actually taken. A short stack goes all-in.
func (p *Player) charge(amount int) int {
	taken := min(amount, p.Chips)
	p.Chips -= taken
	p.Bet += taken
	return taken
}

// clone returns a deep copy safe to hand to other goroutines.
func (p *Player) clone() Player {
	c := *p
	c.HoleDice = append([]int{}, p.HoleDice...)
	if p.HandResult != nil {
		r := *p.HandResult
		r.TieBreakers = append([]int(nil), p.HandResult.TieBreakers...)
		c.HandResult = &r
	}
	return c
}
