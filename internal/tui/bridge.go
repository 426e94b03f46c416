package tui

import (
	"context"
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/dicepoker/internal/client"
	"github.com/lox/dicepoker/internal/server"
)

// Sender delivers messages into a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge forwards server messages from a client into the TUI.
type Bridge struct {
	client *client.Client
	sender Sender
	logger *log.Logger
}

// NewBridge registers handlers on c that forward room updates to sender.
func NewBridge(c *client.Client, sender Sender, logger *log.Logger) *Bridge {
	b := &Bridge{client: c, sender: sender, logger: logger.WithPrefix("bridge")}
	c.AddEventHandler(server.MessageTypeRoomState, b.handleRoomState)
	c.AddEventHandler(server.MessageTypeError, b.handleError)
	return b
}

// Watch sends DisconnectedMsg when the client's connection ends.
func (b *Bridge) Watch(ctx context.Context) {
	go func() {
		select {
		case <-b.client.Done():
			b.sender.Send(DisconnectedMsg{})
		case <-ctx.Done():
		}
	}()
}

func (b *Bridge) handleRoomState(msg *server.Message) {
	var state server.RoomState
	if err := json.Unmarshal(msg.Data, &state); err != nil {
		b.logger.Error("Failed to decode room state", "error", err)
		return
	}
	b.sender.Send(StateMsg{State: state})
}

func (b *Bridge) handleError(msg *server.Message) {
	var data server.ErrorData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		b.logger.Error("Failed to decode error", "error", err)
		return
	}
	b.sender.Send(ErrorMsg{Code: data.Code, Message: data.Message})
}

// Options configures Run.
type Options struct {
	PlayerName string
	BotPreset  string
	// JoinRoom joins this room on start instead of waiting for a command.
	JoinRoom string
	// CreateRoom opens a new room on start.
	CreateRoom bool
}

// Run drives a full-screen session for a connected client until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, c *client.Client, opts Options, logger *log.Logger) error {
	model := NewModel(c, opts.PlayerName, opts.BotPreset, logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	bridge := NewBridge(c, program, logger)
	bridge.Watch(ctx)

	switch {
	case opts.JoinRoom != "":
		if err := c.JoinRoom(opts.JoinRoom, opts.PlayerName); err != nil {
			return err
		}
	case opts.CreateRoom:
		if err := c.CreateRoom(opts.PlayerName); err != nil {
			return err
		}
	}

	_, err := program.Run()
	return err
}
