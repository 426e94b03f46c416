package bot

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/dicepoker/internal/game"
	"github.com/lox/dicepoker/internal/randutil"
)

type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(int) int     { return r.n }

func TestWeightedBotThresholds(t *testing.T) {
	w := Presets["random"]
	tests := []struct {
		roll float64
		want game.Action
	}{
		{0.00, game.Fold},
		{0.09, game.Fold},
		{0.11, game.Check},
		{0.58, game.Check},
		{0.61, game.Call},
		{0.99, game.Call},
	}

	for _, tt := range tests {
		b := NewWeightedBot(w, fixedRand{f: tt.roll}, nil)
		assert.Equal(t, tt.want, b.Decide(game.SeatView{}), "roll %.2f", tt.roll)
	}
}

func TestWeightedBotDistribution(t *testing.T) {
	b := NewWeightedBot(Presets["random"], randutil.NewSource(42), log.New(io.Discard))

	counts := map[game.Action]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[b.Decide(game.SeatView{})]++
	}

	assert.InDelta(t, 0.10, float64(counts[game.Fold])/n, 0.02)
	assert.InDelta(t, 0.50, float64(counts[game.Check])/n, 0.02)
	assert.InDelta(t, 0.40, float64(counts[game.Call])/n, 0.02)
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, Weights{Check: 1}.Validate())
	assert.Error(t, Weights{}.Validate())
	assert.Error(t, Weights{Fold: -1, Call: 2}.Validate())
}

func TestFactory(t *testing.T) {
	f, err := NewFactory(map[string]Weights{"folder": {Fold: 1}}, fixedRand{f: 0.5, n: 3}, log.New(io.Discard))
	require.NoError(t, err)

	assert.Equal(t, []string{"folder", "passive", "random", "station"}, f.Names())

	p, err := f.Policy("folder")
	require.NoError(t, err)
	assert.Equal(t, game.Fold, p.Decide(game.SeatView{}))

	p, err = f.Policy("")
	require.NoError(t, err)
	assert.Equal(t, game.Check, p.Decide(game.SeatView{}))

	_, err = f.Policy("shark")
	assert.ErrorIs(t, err, ErrUnknownPreset)

	assert.Equal(t, "Snake Eyes-3", f.Name())
}

func TestFactoryRejectsBadOverride(t *testing.T) {
	_, err := NewFactory(map[string]Weights{"broken": {}}, fixedRand{}, log.New(io.Discard))
	assert.Error(t, err)
}
