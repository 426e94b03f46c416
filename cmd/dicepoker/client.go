package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"

	"github.com/lox/dicepoker/cmd/dicepoker/shared"
	"github.com/lox/dicepoker/internal/client"
	"github.com/lox/dicepoker/internal/tui"
)

// ClientCmd opens the interactive room client.
type ClientCmd struct {
	Config   string `kong:"short='c',default='dicepoker-client.hcl',help='Path to HCL configuration file'"`
	Server   string `kong:"short='s',help='Server URL to connect to (overrides config)'"`
	Player   string `kong:"short='p',help='Player name (overrides config)'"`
	Create   bool   `kong:"help='Create a new room on connect'"`
	Join     string `kong:"help='Join the room with this code on connect'"`
	Bot      string `kong:"help='Bot preset used by the TUI bot command when none is given (overrides config)'"`
	LogLevel string `kong:"help='Log level (overrides config)'"`
	LogFile  string `kong:"help='Log file path (overrides config)'"`
}

func (c *ClientCmd) Run() error {
	if c.Create && c.Join != "" {
		return fmt.Errorf("--create and --join are mutually exclusive")
	}

	cfg, err := client.LoadClientConfig(c.Config)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if c.Server != "" {
		cfg.Server.URL = c.Server
	}
	if c.Player != "" {
		cfg.Player.Name = c.Player
	}
	if c.Bot != "" {
		cfg.Player.BotPreset = c.Bot
	}
	if c.LogLevel != "" {
		cfg.UI.LogLevel = c.LogLevel
	}
	if c.LogFile != "" {
		cfg.UI.LogFile = c.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	logger, err := shared.NewLogger(logFile, cfg.UI.LogLevel, "text")
	if err != nil {
		return err
	}
	logger.SetColorProfile(termenv.Ascii)

	ctx := shared.SetupSignalHandler(nil)
	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ConnectTimeout)*time.Second)
	defer cancel()

	wsClient := client.NewClient(cfg.Server.URL, logger)
	if err := wsClient.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer func() { _ = wsClient.Disconnect() }()

	return tui.Run(ctx, wsClient, tui.Options{
		PlayerName: cfg.Player.Name,
		BotPreset:  cfg.Player.BotPreset,
		JoinRoom:   c.Join,
		CreateRoom: c.Create,
	}, logger)
}
