package bot

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/dicepoker/internal/game"
)

// RandSource is the randomness a policy draws from.
type RandSource interface {
	Float64() float64
	IntN(n int) int
}

// Weights is the relative likelihood of each action.
type Weights struct {
	Fold  float64
	Check float64
	Call  float64
}

func (w Weights) total() float64 { return w.Fold + w.Check + w.Call }

// Validate rejects negative weights and weights that sum to zero.
func (w Weights) Validate() error {
	if w.Fold < 0 || w.Check < 0 || w.Call < 0 {
		return fmt.Errorf("bot weights must not be negative: %+v", w)
	}
	if w.total() <= 0 {
		return fmt.Errorf("bot weights must not all be zero")
	}
	return nil
}

// WeightedBot picks fold, check or call from a fixed distribution. It ignores
// its dice, the pot and its position.
type WeightedBot struct {
	weights Weights
	rng     RandSource
	logger  *log.Logger
}

// NewWeightedBot creates a policy that draws from w.
func NewWeightedBot(w Weights, rng RandSource, logger *log.Logger) *WeightedBot {
	return &WeightedBot{weights: w, rng: rng, logger: logger}
}

// Decide implements game.Policy.
func (b *WeightedBot) Decide(view game.SeatView) game.Action {
	roll := b.rng.Float64() * b.weights.total()

	action := game.Call
	switch {
	case roll < b.weights.Fold:
		action = game.Fold
	case roll < b.weights.Fold+b.weights.Check:
		action = game.Check
	}

	if b.logger != nil {
		b.logger.Debug("Bot decision", "seat", view.Seat, "phase", view.Phase, "action", action, "roll", roll)
	}
	return action
}
