package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/dicepoker/internal/game"
	"github.com/lox/dicepoker/internal/server"
)

// Commander sends player commands to a room.
type Commander interface {
	CreateRoom(playerName string) error
	JoinRoom(roomID, playerName string) error
	AddBot(preset string) error
	StartGame() error
	Act(action string) error
}

// StateMsg carries a room update from the server.
type StateMsg struct {
	State server.RoomState
}

// ErrorMsg carries an error reply from the server.
type ErrorMsg struct {
	Code    string
	Message string
}

// DisconnectedMsg is sent when the server connection drops.
type DisconnectedMsg struct{}

// Model is the Bubble Tea model for a dice poker room.
type Model struct {
	commander  Commander
	playerName string
	botPreset  string
	logger     *log.Logger

	logViewport viewport.Model
	input       textinput.Model
	focusedPane int // 0 = log, 1 = input

	state        *server.RoomState
	status       string
	statusIsErr  bool
	disconnected bool
	quitting     bool

	width  int
	height int
}

// NewModel creates a model that sends commands through commander.
func NewModel(commander Commander, playerName, botPreset string, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		commander:   commander,
		playerName:  playerName,
		botPreset:   botPreset,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		focusedPane: 1,
		status:      "Type 'create' to open a room or 'join CODE' to join one",
	}
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case StateMsg:
		s := msg.State
		m.state = &s
		m.logViewport.SetContent(strings.Join(s.Log, "\n"))
		m.logViewport.GotoBottom()
		if m.isMyTurn() {
			m.setStatus("Your turn: fold, check or call", false)
		}

	case ErrorMsg:
		m.setStatus(fmt.Sprintf("%s: %s", msg.Code, msg.Message), true)

	case DisconnectedMsg:
		m.disconnected = true
		m.setStatus("Disconnected from server. Ctrl+C to quit", true)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.input.Focus()
			} else {
				m.focusedPane = 0
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				if cmd := m.submit(line); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusIsErr = isErr
}

// submit parses and runs one input line.
func (m *Model) submit(line string) tea.Cmd {
	if line == "" {
		return nil
	}
	fields := strings.Fields(line)
	verb, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch verb {
	case "quit", "exit":
		m.quitting = true
		return tea.Quit
	case "help", "?":
		m.setStatus(helpText, false)
		return nil
	case "create", "new":
		err = m.commander.CreateRoom(m.playerName)
	case "join":
		if len(args) != 1 {
			m.setStatus("usage: join CODE", true)
			return nil
		}
		err = m.commander.JoinRoom(strings.ToUpper(args[0]), m.playerName)
	case "bot", "addbot":
		preset := m.botPreset
		if len(args) > 0 {
			preset = args[0]
		}
		err = m.commander.AddBot(preset)
	case "start", "deal":
		err = m.commander.StartGame()
	case "f", "fold":
		err = m.commander.Act(game.Fold.String())
	case "k", "check":
		err = m.commander.Act(game.Check.String())
	case "c", "call":
		err = m.commander.Act(game.Call.String())
	default:
		m.setStatus(fmt.Sprintf("unknown command %q (try 'help')", verb), true)
		return nil
	}

	if err != nil {
		m.logger.Warn("Command failed", "command", verb, "error", err)
		m.setStatus(err.Error(), true)
		return nil
	}
	m.setStatus("", false)
	return nil
}

const helpText = "create | join CODE | bot [preset] | start | fold (f) | check (k) | call (c) | quit"

func (m *Model) me() (int, *game.Player) {
	if m.state == nil {
		return -1, nil
	}
	for i := range m.state.Players {
		if m.state.Players[i].ID == m.state.You {
			return i, &m.state.Players[i]
		}
	}
	return -1, nil
}

func (m *Model) isMyTurn() bool {
	seat, _ := m.me()
	return seat >= 0 && m.state.Phase.IsBetting() && m.state.ActivePlayerIdx == seat
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(1)).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 30)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.borderColor(0)).
		Width(m.logViewport.Width).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *Model) borderColor(pane int) lipgloss.Color {
	if m.focusedPane == pane {
		return lipgloss.Color("#04B575")
	}
	return lipgloss.Color("#626262")
}

// renderSidebarPane shows the table: room, pot, community dice and seats.
func (m *Model) renderSidebarPane() string {
	var b strings.Builder
	if m.state == nil {
		b.WriteString(InfoStyle.Render("Not in a room"))
		return b.String()
	}
	s := m.state

	b.WriteString(HeaderStyle.Render(fmt.Sprintf(" Room %s ", s.ID)))
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(phaseLabel(s.Phase)))
	b.WriteString("\n\n")
	b.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: %d", s.Pot)))
	if s.CurrentBet > 0 {
		b.WriteString(" | ")
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Bet: %d", s.CurrentBet)))
	}
	b.WriteString("\n")
	b.WriteString("Table: ")
	b.WriteString(DiceStyle.Render(formatDice(s.CommunityDice)))
	b.WriteString("\n\n")

	for i, p := range s.Players {
		b.WriteString(m.renderSeat(i, p))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderSeat(seat int, p game.Player) string {
	marker := "  "
	if seat == m.state.ActivePlayerIdx {
		marker = "▶ "
	}

	var tags []string
	if p.IsHost {
		tags = append(tags, "host")
	}
	if !p.IsHuman {
		tags = append(tags, "bot")
	}
	if p.IsHuman && !p.Connected {
		tags = append(tags, "away")
	}

	name := p.Name
	if p.ID == m.state.You {
		name += " (you)"
	}
	line := fmt.Sprintf("%s%s: %d", marker, name, p.Chips)
	if len(tags) > 0 {
		line += " [" + strings.Join(tags, ",") + "]"
	}

	style := PlayerInfoStyle
	switch {
	case p.IsWinner:
		style = SuccessStyle
	case p.HasFolded:
		style = FoldedStyle
	}
	out := style.Render(line)

	if len(p.HoleDice) > 0 {
		out += "\n    " + DiceStyle.Render(formatDice(p.HoleDice))
		if p.HandResult != nil {
			out += " " + HandInfoStyle.Render(p.HandResult.Description)
		}
	}
	return out
}

// renderActionPane renders the status line, input field and help text.
func (m *Model) renderActionPane() string {
	var b strings.Builder

	if m.isMyTurn() {
		_, me := m.me()
		b.WriteString(HandInfoStyle.Render(fmt.Sprintf("Your dice: %s  Pot: %d", formatDice(me.HoleDice), m.state.Pot)))
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("[fold]") + " " + SuccessStyle.Render("[check]") + " " + SuccessStyle.Render(fmt.Sprintf("[call %d]", game.CallAmount)))
		b.WriteString("\n")
		m.input.Placeholder = "fold, check or call"
	} else {
		m.input.Placeholder = "Enter a command ('help' for a list)"
	}

	if m.status != "" {
		if m.statusIsErr {
			b.WriteString(ErrorStyle.Render(m.status))
		} else {
			b.WriteString(InfoStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Tab to input"
	}
	b.WriteString(InfoStyle.Render(help))
	return b.String()
}

var dieFaces = [...]string{"⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

func formatDice(dice []int) string {
	if len(dice) == 0 {
		return "-"
	}
	parts := make([]string, len(dice))
	for i, d := range dice {
		if d >= 1 && d <= 6 {
			parts[i] = fmt.Sprintf("%s %d", dieFaces[d-1], d)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, "  ")
}

func phaseLabel(p game.Phase) string {
	switch p {
	case game.PhaseIdle:
		return "Waiting for the host to start"
	case game.PhasePreFlop:
		return "Pre-Flop"
	case game.PhaseFlop:
		return "Flop"
	case game.PhaseTurn:
		return "Turn"
	case game.PhaseRiver:
		return "River"
	case game.PhaseShowdown:
		return "Showdown"
	default:
		return p.String()
	}
}
