package bot

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/dicepoker/internal/game"
)

// ErrUnknownPreset is returned for a preset name the factory does not know.
var ErrUnknownPreset = errors.New("unknown bot preset")

// DefaultPreset is used when a room adds a bot without naming a style.
const DefaultPreset = "random"

// Presets are the built-in bot styles.
var Presets = map[string]Weights{
	"random":  {Fold: 0.10, Check: 0.50, Call: 0.40},
	"passive": {Fold: 0.05, Check: 0.80, Call: 0.15},
	"station": {Fold: 0.00, Check: 0.20, Call: 0.80},
}

// Factory builds policies for newly seated bots.
type Factory struct {
	presets map[string]Weights
	rng     RandSource
	logger  *log.Logger
}

// NewFactory creates a factory from the built-in presets overlaid with
// overrides.
func NewFactory(overrides map[string]Weights, rng RandSource, logger *log.Logger) (*Factory, error) {
	presets := make(map[string]Weights, len(Presets)+len(overrides))
	for name, w := range Presets {
		presets[name] = w
	}
	for name, w := range overrides {
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("bot preset %q: %w", name, err)
		}
		presets[name] = w
	}

	return &Factory{
		presets: presets,
		rng:     rng,
		logger:  logger.WithPrefix("bot"),
	}, nil
}

// Policy returns a policy for the named preset.
func (f *Factory) Policy(preset string) (game.Policy, error) {
	if preset == "" {
		preset = DefaultPreset
	}
	w, ok := f.presets[preset]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownPreset, preset, strings.Join(f.Names(), ", "))
	}
	return NewWeightedBot(w, f.rng, f.logger.With("preset", preset)), nil
}

// Names lists the available presets in sorted order.
func (f *Factory) Names() []string {
	names := make([]string, 0, len(f.presets))
	for name := range f.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var roster = []string{"Dice King", "Lucky Boy", "Gambler Fa", "Snake Eyes", "Boxcars", "High Roller"}

// Name picks a display name for a new bot.
func (f *Factory) Name() string {
	return fmt.Sprintf("%s-%d", roster[f.rng.IntN(len(roster))], f.rng.IntN(100))
}
