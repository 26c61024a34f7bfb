package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/unoforbots/internal/play"
	"github.com/lox/unoforbots/internal/uno"
)

// TUIModel is the Bubble Tea model for a match against AI seats.
type TUIModel struct {
	ctx    context.Context
	match  *play.Match
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	pendingWild *uno.Card // wild chosen, waiting for a color
	finished    bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// aiMovesMsg carries the turns AI seats took in the background.
type aiMovesMsg struct {
	events []play.Event
	err    error
}

// NewTUIModel creates a model for match.
func NewTUIModel(ctx context.Context, match *play.Match, logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(ctx, match, logger, false)
}

// NewTUIModelWithOptions creates a model with the test mode option.
func NewTUIModelWithOptions(ctx context.Context, match *play.Match, logger *log.Logger, testMode bool) *TUIModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Card number, 0 to draw, quit to exit"
	ti.Focus()
	ti.CharLimit = 32
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &TUIModel{
		ctx:         ctx,
		match:       match,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
		testMode:    testMode,
	}
}

// Init lets the AI seats move before the human's first turn.
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.advance)
}

func (m *TUIModel) advance() tea.Msg {
	events, err := m.match.AdvanceAI(m.ctx)
	return aiMovesMsg{events: events, err: err}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case aiMovesMsg:
		m.handleMoves(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				advance, quit := m.submit(m.actionInput.Value())
				m.actionInput.SetValue("")
				if quit {
					m.quitting = true
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
				if advance {
					cmds = append(cmds, m.advance)
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
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit applies one line of input. It reports whether the AI seats should
// move next and whether the user asked to quit.
func (m *TUIModel) submit(input string) (advance, quit bool) {
	input = strings.TrimSpace(input)
	switch strings.ToLower(input) {
	case "q", "quit", "exit":
		return false, true
	}
	if m.finished {
		return false, input == ""
	}
	if !m.match.HumanToAct() {
		return false, false
	}

	if m.pendingWild != nil {
		color, err := uno.ParseColor(input)
		if err != nil {
			m.AddLogEntry(ErrorStyle.Render("Choose red, yellow, green or blue"))
			return false, false
		}
		action := uno.PlayAction(m.pendingWild.Resolve(color))
		m.pendingWild = nil
		return m.play(action), false
	}

	valid := m.match.Game().ValidActions(m.match.Human())
	action, err := play.ParseInput(input, valid)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return false, false
	}
	if play.NeedsColor(action) {
		card := action.Card
		m.pendingWild = &card
		m.AddLogEntry(WarningStyle.Render("Choose a color: red, yellow, green or blue"))
		return false, false
	}
	return m.play(action), false
}

func (m *TUIModel) play(action uno.Action) bool {
	ev, err := m.match.PlayHuman(action)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return false
	}
	m.AddLogEntry(ev.String())
	return true
}

func (m *TUIModel) handleMoves(msg aiMovesMsg) {
	for _, ev := range msg.events {
		m.AddLogEntry(ev.String())
	}
	switch {
	case errors.Is(msg.err, play.ErrTurnLimit):
		m.AddLogEntry(WarningStyle.Render("Turn limit reached, game abandoned."))
		m.finished = true
		return
	case msg.err != nil:
		m.logger.Error("AI turn failed", "error", msg.err)
		m.AddLogEntry(ErrorStyle.Render(msg.err.Error()))
		m.finished = true
		return
	}

	if winner, done := m.match.Done(); done {
		m.finished = true
		name := m.match.Seats()[winner].Name
		if winner == m.match.Human() {
			m.AddLogEntry(SuccessStyle.Render("You win!"))
		} else {
			m.AddLogEntry(SuccessStyle.Render(name + " wins."))
		}
	}
}

// View renders the TUI
func (m *TUIModel) View() string {
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
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight-2, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the discard top and every seat's card count.
func (m *TUIModel) renderSidebarPane() string {
	v := m.match.Game().View()
	var b strings.Builder

	fmt.Fprintf(&b, "Top: %s\n", CardStyle(v.Top).Render(v.Top.String()))
	fmt.Fprintf(&b, "Deck: %d  %s\n\n", v.DeckLen, v.Direction)
	b.WriteString(InfoStyle.Render("Players:"))
	b.WriteString("\n")
	for i, seat := range m.match.Seats() {
		line := fmt.Sprintf("  %s: %d", seat.Name, v.HandSizes[i])
		if i == v.Current && !m.finished {
			line = ActivePlayerStyle.Render("> " + strings.TrimPrefix(line, "  "))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderActionPane shows the hand, the numbered playable cards and the input.
func (m *TUIModel) renderActionPane() string {
	var b strings.Builder

	switch {
	case m.finished:
		b.WriteString(HandInfoStyle.Render("Game over. Enter or 'quit' to exit."))
		b.WriteString("\n")
	case m.pendingWild != nil:
		b.WriteString(ActionsStyle.Render("Color: red, yellow, green or blue"))
		b.WriteString("\n")
	case m.match.HumanToAct():
		human := m.match.Human()
		b.WriteString(HandInfoStyle.Render("Hand: " + formatCards(m.match.Game().Hand(human))))
		b.WriteString("\n")
		b.WriteString(renderValid(m.match.Game().ValidActions(human)))
		b.WriteString("\n")
	default:
		b.WriteString(HandInfoStyle.Render("Waiting..."))
		b.WriteString("\n")
	}

	b.WriteString(m.actionInput.View())
	b.WriteString("\n")
	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return b.String()
}

func renderValid(valid []uno.Card) string {
	actions := []string{WarningStyle.Render("[0 draw]")}
	for i, c := range valid {
		actions = append(actions, CardStyle(c).Render(fmt.Sprintf("[%d %s]", i+1, c)))
	}
	return ActionsStyle.Render("Play: ") + strings.Join(actions, " ")
}

func formatCards(cards []uno.Card) string {
	formatted := make([]string, len(cards))
	for i, c := range cards {
		formatted[i] = CardStyle(c).Render(c.String())
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Start runs the opening AI turns synchronously (test mode only).
func (m *TUIModel) Start() error {
	if !m.testMode {
		return fmt.Errorf("start is only available in test mode")
	}
	m.handleMoves(m.advance().(aiMovesMsg))
	return nil
}

// Submit processes input as if typed and entered, including the AI turns
// that follow (test mode only). It reports whether the user asked to quit.
func (m *TUIModel) Submit(input string) (bool, error) {
	if !m.testMode {
		return false, fmt.Errorf("submit is only available in test mode")
	}
	advance, quit := m.submit(input)
	if advance {
		m.handleMoves(m.advance().(aiMovesMsg))
	}
	return quit, nil
}

// Finished reports whether the game has ended.
func (m *TUIModel) Finished() bool {
	return m.finished
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}
