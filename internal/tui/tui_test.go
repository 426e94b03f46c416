package tui

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/dicepoker/internal/game"
	"github.com/lox/dicepoker/internal/hand"
	"github.com/lox/dicepoker/internal/server"
)

func TestMain(m *testing.M) {
	// Plain output so views can be matched as text.
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type fakeCommander struct {
	calls []string
	err   error
}

func (f *fakeCommander) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeCommander) CreateRoom(name string) error { return f.record("create " + name) }
func (f *fakeCommander) JoinRoom(room, name string) error {
	return f.record("join " + room + " " + name)
}
func (f *fakeCommander) AddBot(preset string) error { return f.record("bot " + preset) }
func (f *fakeCommander) StartGame() error           { return f.record("start") }
func (f *fakeCommander) Act(action string) error    { return f.record("act " + action) }

func newTestModel(t *testing.T) (*Model, *fakeCommander) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	cmd := &fakeCommander{}
	m := NewModel(cmd, "Alice", "random", logger)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, cmd
}

func typeLine(m *Model, line string) tea.Cmd {
	m.input.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func preFlopState() server.RoomState {
	return server.RoomState{
		State: game.State{
			ID:    "K7QX2M",
			Phase: game.PhasePreFlop,
			Players: []game.Player{
				{ID: "a", Name: "Alice", IsHuman: true, IsHost: true, Connected: true, Chips: 990, HoleDice: []int{6, 5}},
				{ID: "b", Name: "Snake Eyes-3", Chips: 990, HoleDice: []int{}},
			},
			CommunityDice:   []int{},
			Pot:             20,
			CurrentBet:      10,
			ActivePlayerIdx: 0,
			Log:             []string{"--- New round ---", "Blinds of 10 collected"},
		},
		You: "a",
	}
}

func TestCommandsAreSent(t *testing.T) {
	m, cmd := newTestModel(t)

	typeLine(m, "create")
	typeLine(m, "join k7qx2m")
	typeLine(m, "bot")
	typeLine(m, "bot station")
	typeLine(m, "start")
	typeLine(m, "f")
	typeLine(m, "check")
	typeLine(m, "C")

	assert.Equal(t, []string{
		"create Alice",
		"join K7QX2M Alice",
		"bot random",
		"bot station",
		"start",
		"act fold",
		"act check",
		"act call",
	}, cmd.calls)
	assert.Empty(t, m.input.Value())
}

func TestUnknownAndMalformedCommands(t *testing.T) {
	m, cmd := newTestModel(t)

	typeLine(m, "raise 20")
	assert.True(t, m.statusIsErr)
	assert.Contains(t, m.status, "unknown command")

	typeLine(m, "join")
	assert.Contains(t, m.status, "usage: join")
	assert.Empty(t, cmd.calls)
}

func TestSendFailureIsShown(t *testing.T) {
	m, cmd := newTestModel(t)
	cmd.err = errors.New("client is not connected")

	typeLine(m, "start")
	assert.True(t, m.statusIsErr)
	assert.Equal(t, "client is not connected", m.status)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	cmd := typeLine(m, "quit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestStateRendering(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(StateMsg{State: preFlopState()})

	assert.True(t, m.isMyTurn())
	assert.Contains(t, m.status, "Your turn")

	view := m.View()
	assert.Contains(t, view, "Room K7QX2M")
	assert.Contains(t, view, "Pre-Flop")
	assert.Contains(t, view, "Pot: 20")
	assert.Contains(t, view, "Alice (you)")
	assert.Contains(t, view, "Snake Eyes-3")
	assert.Contains(t, view, "[fold]")
	assert.Contains(t, view, "Blinds of 10 collected")
}

func TestShowdownRendering(t *testing.T) {
	m, _ := newTestModel(t)
	s := preFlopState()
	s.Phase = game.PhaseShowdown
	s.ActivePlayerIdx = -1
	s.CommunityDice = []int{2, 3, 4, 1, 1}
	result := hand.Evaluate([]int{6, 5, 2, 3, 4, 1, 1})
	s.Players[0].HandResult = &result
	s.Players[0].IsWinner = true
	s.Players[1].HoleDice = []int{1, 1}
	m.Update(StateMsg{State: s})

	assert.False(t, m.isMyTurn())
	view := m.View()
	assert.Contains(t, view, "Showdown")
	assert.Contains(t, view, result.Description)
	assert.NotContains(t, view, "[fold]")
}

func TestErrorAndDisconnectMessages(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(ErrorMsg{Code: server.CodeRoomNotFound, Message: "room not found"})
	assert.True(t, m.statusIsErr)
	assert.True(t, strings.HasPrefix(m.status, "room_not_found"))

	m.Update(DisconnectedMsg{})
	assert.True(t, m.disconnected)
}

func TestFormatDice(t *testing.T) {
	assert.Equal(t, "-", formatDice(nil))
	assert.Equal(t, "⚀ 1  ⚅ 6", formatDice([]int{1, 6}))
	assert.Equal(t, "?", formatDice([]int{9}))
}

type recordingSender struct {
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) { r.msgs = append(r.msgs, msg) }

func TestBridgeForwardsServerMessages(t *testing.T) {
	sender := &recordingSender{}
	b := &Bridge{sender: sender, logger: log.New(io.Discard)}

	stateMsg, err := server.NewMessage(server.MessageTypeRoomState, preFlopState())
	require.NoError(t, err)
	b.handleRoomState(stateMsg)

	errMsg, err := server.NewMessage(server.MessageTypeError, server.ErrorData{Code: "room_full", Message: "room is full"})
	require.NoError(t, err)
	b.handleError(errMsg)

	require.Len(t, sender.msgs, 2)
	state, ok := sender.msgs[0].(StateMsg)
	require.True(t, ok)
	assert.Equal(t, "K7QX2M", state.State.ID)
	assert.Equal(t, "a", state.State.You)
	assert.Equal(t, ErrorMsg{Code: "room_full", Message: "room is full"}, sender.msgs[1])
}
