package main

import (
	"fmt"

	"github.com/lox/dicepoker/cmd/dicepoker/shared"
	"github.com/lox/dicepoker/internal/server"
)

// ServerCmd runs the room server. Flags override environment variables,
// which override the config file.
type ServerCmd struct {
	Config    string `kong:"short='c',default='dicepoker.hcl',help='Path to HCL configuration file'"`
	Addr      string `kong:"help='Server address (overrides config)'"`
	LogLevel  string `kong:"help='Log level: debug, info, warn, error (overrides config)'"`
	LogFormat string `kong:"help='Log format: text or json (overrides config)'"`
	Seed      *int64 `kong:"help='Deterministic RNG seed for dice, bots and room codes (optional)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := server.ApplyEnv(&cfg); err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Address = c.Addr
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.LogFormat = c.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := shared.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	var opts []server.Option
	if c.Seed != nil {
		logger.Info("Using deterministic seed", "seed", *c.Seed)
		opts = append(opts, server.WithSeed(*c.Seed))
	}

	s, err := server.NewServer(cfg, logger, opts...)
	if err != nil {
		return err
	}

	logger.Info("Starting dice poker server",
		"address", cfg.Address,
		"max_seats", cfg.MaxSeats,
		"min_players", cfg.MinPlayers,
		"bot_delay", cfg.BotDelay,
		"phase_delay", cfg.PhaseDelay,
		"idle_timeout", cfg.IdleTimeout,
	)

	ctx := shared.SetupSignalHandler(logger)
	return s.Run(ctx)
}
