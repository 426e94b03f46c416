package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/dicepoker/internal/bot"
	"github.com/lox/dicepoker/internal/game"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dicepoker.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, game.DefaultMaxSeats, cfg.MaxSeats)
	assert.Equal(t, 1500*time.Millisecond, cfg.BotDelay)
	assert.Equal(t, time.Second, cfg.PhaseDelay)
	assert.Equal(t, bot.DefaultPreset, cfg.DefaultBot)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
server {
  address = ":9000"
  log_level = "debug"
}

table {
  max_seats = 4
  default_bot = "shark"
}

timing {
  bot_delay = "250ms"
  idle_timeout = "2m"
}

bot "shark" {
  fold = 0
  check = 0.1
  call = 0.9
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Address)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat, "unset fields keep defaults")
	assert.Equal(t, 4, cfg.MaxSeats)
	assert.Equal(t, game.DefaultMinPlayers, cfg.MinPlayers)
	assert.Equal(t, 250*time.Millisecond, cfg.BotDelay)
	assert.Equal(t, game.DefaultPhaseDelay, cfg.PhaseDelay)
	assert.Equal(t, 2*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, bot.Weights{Check: 0.1, Call: 0.9}, cfg.BotPresets["shark"])
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `server {`))
	assert.ErrorContains(t, err, "failed to parse HCL")

	_, err = LoadConfig(writeConfig(t, `timing { bot_delay = "soon" }`))
	assert.ErrorContains(t, err, "timing.bot_delay")

	_, err = LoadConfig(writeConfig(t, `table { seats = 3 }`))
	assert.ErrorContains(t, err, "failed to decode HCL")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DICEPOKER_ADDR", "127.0.0.1:7000")
	t.Setenv("DICEPOKER_BOT_DELAY", "20ms")
	t.Setenv("DICEPOKER_MAX_SEATS", "6")

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnv(&cfg))
	assert.Equal(t, "127.0.0.1:7000", cfg.Address)
	assert.Equal(t, 20*time.Millisecond, cfg.BotDelay)
	assert.Equal(t, 6, cfg.MaxSeats)
	assert.Equal(t, game.DefaultPhaseDelay, cfg.PhaseDelay)
}

func TestApplyEnvBadValue(t *testing.T) {
	t.Setenv("DICEPOKER_PHASE_DELAY", "later")
	cfg := DefaultConfig()
	assert.Error(t, ApplyEnv(&cfg))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"too few seats", func(c *Config) { c.MaxSeats = 1 }, "max seats"},
		{"too many seats", func(c *Config) { c.MaxSeats = 11 }, "max seats"},
		{"min above max", func(c *Config) { c.MaxSeats = 3; c.MinPlayers = 4 }, "min players"},
		{"zero bot delay", func(c *Config) { c.BotDelay = 0 }, "bot delay"},
		{"negative phase delay", func(c *Config) { c.PhaseDelay = -time.Second }, "phase delay"},
		{"zero send buffer", func(c *Config) { c.SendBuffer = 0 }, "send buffer"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
		{"unknown default bot", func(c *Config) { c.DefaultBot = "shark" }, "default bot"},
		{"bad weights", func(c *Config) { c.BotPresets = map[string]bot.Weights{"x": {Fold: -1, Call: 2}} }, "bot x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
