package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/dicepoker/internal/bot"
	"github.com/lox/dicepoker/internal/game"
)

// EnvPrefix is prepended to every environment variable the server reads.
const EnvPrefix = "DICEPOKER_"

// Config is the resolved server configuration.
type Config struct {
	Address      string        `env:"ADDR"`
	LogLevel     string        `env:"LOG_LEVEL"`
	LogFormat    string        `env:"LOG_FORMAT"`
	SendBuffer   int           `env:"SEND_BUFFER"`
	MaxSeats     int           `env:"MAX_SEATS"`
	MinPlayers   int           `env:"MIN_PLAYERS"`
	DefaultBot   string        `env:"DEFAULT_BOT"`
	BotDelay     time.Duration `env:"BOT_DELAY"`
	PhaseDelay   time.Duration `env:"PHASE_DELAY"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT"`
	ReapInterval time.Duration `env:"REAP_INTERVAL"`

	// BotPresets add to or replace the built-in bot styles. Only settable
	// from the config file.
	BotPresets map[string]bot.Weights
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Address:      ":8080",
		LogLevel:     "info",
		LogFormat:    "text",
		SendBuffer:   256,
		MaxSeats:     game.DefaultMaxSeats,
		MinPlayers:   game.DefaultMinPlayers,
		DefaultBot:   bot.DefaultPreset,
		BotDelay:     game.DefaultBotDelay,
		PhaseDelay:   game.DefaultPhaseDelay,
		IdleTimeout:  10 * time.Minute,
		ReapInterval: time.Minute,
	}
}

// fileConfig mirrors the HCL file layout.
type fileConfig struct {
	Server *serverBlock `hcl:"server,block"`
	Table  *tableBlock  `hcl:"table,block"`
	Timing *timingBlock `hcl:"timing,block"`
	Bots   []botBlock   `hcl:"bot,block"`
}

type serverBlock struct {
	Address    string `hcl:"address,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	LogFormat  string `hcl:"log_format,optional"`
	SendBuffer int    `hcl:"send_buffer,optional"`
}

type tableBlock struct {
	MaxSeats   int    `hcl:"max_seats,optional"`
	MinPlayers int    `hcl:"min_players,optional"`
	DefaultBot string `hcl:"default_bot,optional"`
}

type timingBlock struct {
	BotDelay     string `hcl:"bot_delay,optional"`
	PhaseDelay   string `hcl:"phase_delay,optional"`
	IdleTimeout  string `hcl:"idle_timeout,optional"`
	ReapInterval string `hcl:"reap_interval,optional"`
}

type botBlock struct {
	Name  string  `hcl:"name,label"`
	Fold  float64 `hcl:"fold,optional"`
	Check float64 `hcl:"check,optional"`
	Call  float64 `hcl:"call,optional"`
}

// LoadConfig reads an HCL config file over the defaults. A missing file
// yields the defaults.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if err := fc.apply(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	if s := fc.Server; s != nil {
		setString(&cfg.Address, s.Address)
		setString(&cfg.LogLevel, s.LogLevel)
		setString(&cfg.LogFormat, s.LogFormat)
		setInt(&cfg.SendBuffer, s.SendBuffer)
	}
	if t := fc.Table; t != nil {
		setInt(&cfg.MaxSeats, t.MaxSeats)
		setInt(&cfg.MinPlayers, t.MinPlayers)
		setString(&cfg.DefaultBot, t.DefaultBot)
	}
	if t := fc.Timing; t != nil {
		for _, d := range []struct {
			name  string
			value string
			dst   *time.Duration
		}{
			{"bot_delay", t.BotDelay, &cfg.BotDelay},
			{"phase_delay", t.PhaseDelay, &cfg.PhaseDelay},
			{"idle_timeout", t.IdleTimeout, &cfg.IdleTimeout},
			{"reap_interval", t.ReapInterval, &cfg.ReapInterval},
		} {
			if d.value == "" {
				continue
			}
			parsed, err := time.ParseDuration(d.value)
			if err != nil {
				return fmt.Errorf("timing.%s: %w", d.name, err)
			}
			*d.dst = parsed
		}
	}
	for _, b := range fc.Bots {
		if cfg.BotPresets == nil {
			cfg.BotPresets = make(map[string]bot.Weights)
		}
		cfg.BotPresets[b.Name] = bot.Weights{Fold: b.Fold, Check: b.Check, Call: b.Call}
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// ApplyEnv overlays DICEPOKER_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate validates the server configuration
func (c Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address must not be empty")
	}
	if c.MaxSeats < 2 || c.MaxSeats > 10 {
		return fmt.Errorf("max seats must be between 2 and 10, got %d", c.MaxSeats)
	}
	if c.MinPlayers < 2 || c.MinPlayers > c.MaxSeats {
		return fmt.Errorf("min players must be between 2 and max seats (%d), got %d", c.MaxSeats, c.MinPlayers)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("send buffer must be positive, got %d", c.SendBuffer)
	}
	for name, d := range map[string]time.Duration{
		"bot delay":     c.BotDelay,
		"phase delay":   c.PhaseDelay,
		"idle timeout":  c.IdleTimeout,
		"reap interval": c.ReapInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	for name, w := range c.BotPresets {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("bot %s: %w", name, err)
		}
	}
	if _, ok := bot.Presets[c.DefaultBot]; !ok {
		if _, ok := c.BotPresets[c.DefaultBot]; !ok {
			return fmt.Errorf("default bot %q is not a known preset", c.DefaultBot)
		}
	}
	return nil
}
