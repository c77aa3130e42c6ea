package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snake-leaderboard/internal/core"
	"github.com/vovakirdan/snake-leaderboard/internal/game"
	"github.com/vovakirdan/snake-leaderboard/internal/leaderboard"
	"github.com/vovakirdan/snake-leaderboard/internal/session"
)

// phase is the screen the model is showing.
type phase int

const (
	phasePrompt   phase = iota // name entry, engine in pre-start
	phasePlaying               // board visible, including pause and the pause after a crash
	phaseGameOver              // save/skip dialog over the frozen board
	phaseResults               // top scores and rank after a save
	phaseBoard                 // leaderboard-only view
)

// Options configures the front-end flow.
type Options struct {
	TopN          int           // rows shown after saving
	BoardN        int           // rows in the leaderboard-only view
	GameOverDelay time.Duration // pause between a crash and the dialog
	ScreenshotDir string        // ctrl+s target; empty disables screenshots
}

// DefaultOptions returns the standard flow settings.
func DefaultOptions() Options {
	opts := Options{
		TopN:          5,
		BoardN:        10,
		GameOverDelay: time.Second,
	}
	if home, err := os.UserHomeDir(); err == nil {
		opts.ScreenshotDir = filepath.Join(home, ".snake", "screenshots")
	}
	return opts
}

// Model is the Bubble Tea model for one player's session.
type Model struct {
	ctrl   *session.Controller
	screen *core.Screen
	config core.RuntimeConfig
	opts   Options
	keys   *KeyMapper
	help   help.Model
	input  textinput.Model

	phase       phase
	boardReturn phase
	promptErr   string

	result         session.Result
	awaitingDialog bool
	saving         bool
	saveErr        string
	saved          session.Saved
	own            int

	board        []leaderboard.Record
	boardLoading bool

	quitting bool
}

// NewModel creates a model in the name prompt, pre-filled with the
// controller's remembered username.
func NewModel(ctrl *session.Controller, cfg core.RuntimeConfig, opts Options) Model {
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	def := DefaultOptions()
	if opts.TopN <= 0 {
		opts.TopN = def.TopN
	}
	if opts.BoardN <= 0 {
		opts.BoardN = def.BoardN
	}
	if opts.GameOverDelay < 0 {
		opts.GameOverDelay = 0
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "your name"
	ti.CharLimit = leaderboard.MaxUsernameLen
	ti.Width = leaderboard.MaxUsernameLen + 2
	ti.SetValue(ctrl.Username())
	ti.Focus()

	return Model{
		ctrl:   ctrl,
		screen: core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		config: cfg,
		opts:   opts,
		keys:   NewKeyMapper(),
		help:   help.New(),
		input:  ti,
		phase:  phasePrompt,
		own:    -1,
	}
}

// Init starts the cursor blink and the frame loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, frameCmd(m.config.FPS))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case FrameMsg:
		return m.handleFrame(time.Time(msg))

	case gameOverReadyMsg:
		if m.phase == phasePlaying && m.awaitingDialog && msg.generation == m.ctrl.Generation() {
			m.phase = phaseGameOver
		}
		return m, nil

	case savedMsg:
		return m.handleSaved(msg)

	case boardMsg:
		m.board = msg.records
		m.boardLoading = false
		return m, nil
	}

	if m.phase == phasePrompt {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleFrame polls the engine and watches for the end of a game.
func (m Model) handleFrame(now time.Time) (tea.Model, tea.Cmd) {
	next := frameCmd(m.config.FPS)
	if m.phase != phasePlaying || m.awaitingDialog {
		return m, next
	}

	m.ctrl.Advance(now)
	if res, ok := m.ctrl.Pending(); ok {
		m.result = res
		m.awaitingDialog = true
		m.saveErr = ""
		return m, tea.Batch(next, gameOverDelayCmd(m.opts.GameOverDelay, res.Generation))
	}
	return m, next
}

// handleKey routes keyboard input by phase.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "ctrl+s":
		m.saveScreenshot()
		return m, nil
	}

	if m.phase == phasePrompt {
		return m.handlePromptKey(msg)
	}

	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.phase {
	case phasePlaying:
		if !m.awaitingDialog {
			m.ctrl.HandleAction(action)
		}
	case phaseGameOver:
		return m.handleGameOverAction(action)
	case phaseResults:
		switch action {
		case core.ActionConfirm, core.ActionSkip:
			return m.toPrompt()
		case core.ActionLeaderboard:
			return m.openBoard()
		}
	case phaseBoard:
		switch action {
		case core.ActionConfirm, core.ActionSkip, core.ActionLeaderboard:
			return m.closeBoard()
		}
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if err := m.ctrl.Start(m.input.Value()); err != nil {
			m.promptErr = promptError(err)
			return m, nil
		}
		m.promptErr = ""
		m.input.Blur()
		m.phase = phasePlaying
		m.awaitingDialog = false
		m.saved = session.Saved{}
		return m, nil
	case tea.KeyTab:
		return m.openBoard()
	case tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleGameOverAction runs the save/skip dialog. Keys other than quit
// are ignored while a save is in flight.
func (m Model) handleGameOverAction(action core.Action) (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	switch action {
	case core.ActionConfirm:
		if !m.ctrl.CanSave() {
			return m.toPrompt()
		}
		m.saving = true
		m.saveErr = ""
		return m, saveCmd(m.ctrl, m.result)
	case core.ActionSkip:
		return m.toPrompt()
	case core.ActionLeaderboard:
		return m.openBoard()
	}
	return m, nil
}

// handleSaved applies a save outcome. Outcomes for an abandoned game are
// dropped.
func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.saved.Generation != m.ctrl.Generation() {
		return m, nil
	}
	m.saving = false
	if msg.err != nil {
		m.saveErr = "Save failed. Press Enter to retry."
		return m, nil
	}
	if !m.ctrl.Accept(msg.saved) {
		return m, nil
	}
	m.saved = msg.saved
	m.own = m.ownIndex(msg.saved.Top)
	m.phase = phaseResults
	return m, nil
}

// toPrompt restarts the game and returns to the name prompt.
func (m Model) toPrompt() (tea.Model, tea.Cmd) {
	m.ctrl.Restart()
	m.phase = phasePrompt
	m.awaitingDialog = false
	m.saving = false
	m.saveErr = ""
	m.input.SetValue(m.ctrl.Username())
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) openBoard() (tea.Model, tea.Cmd) {
	m.boardReturn = m.phase
	m.phase = phaseBoard
	m.input.Blur()
	m.board = nil
	if !m.ctrl.Online() {
		m.boardLoading = false
		return m, nil
	}
	m.boardLoading = true
	return m, loadBoardCmd(m.ctrl, m.opts.BoardN)
}

func (m Model) closeBoard() (tea.Model, tea.Cmd) {
	m.phase = m.boardReturn
	if m.phase == phasePrompt {
		return m, m.input.Focus()
	}
	return m, nil
}

// ownIndex finds the player's saved record in a listing.
func (m Model) ownIndex(records []leaderboard.Record) int {
	if m.saved.Record.ID == "" {
		return -1
	}
	for i, r := range records {
		if m.ctrl.IsOwn(r, m.saved.Record) {
			return i
		}
	}
	return -1
}

func promptError(err error) string {
	var verr *leaderboard.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("Name %s.", verr.Reason)
	}
	return err.Error()
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	if m.opts.ScreenshotDir == "" {
		return
	}
	m.ctrl.Engine().Render(m.screen, m.ctrl.Username())

	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(m.opts.ScreenshotDir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(m.opts.ScreenshotDir, fmt.Sprintf("snake_%s.txt", timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.phase {
	case phasePrompt:
		return m.viewPrompt()
	case phaseResults:
		return m.viewResults()
	case phaseBoard:
		return m.viewBoard()
	}

	m.ctrl.Engine().Render(m.screen, m.ctrl.Username())
	if m.phase == phaseGameOver {
		drawDialog(m.screen, m.dialogLines(), core.ColorYellow)
	}
	return RenderScreen(m.screen)
}

func (m Model) dialogLines() []string {
	title := "Game Over"
	if m.result.Won {
		title = "You filled the board!"
	}
	lines := []string{title, fmt.Sprintf("Score: %d", m.result.Score), ""}

	if !m.ctrl.CanSave() {
		return append(lines, "Leaderboard offline", "[Enter] Play again")
	}
	switch {
	case m.saving:
		lines = append(lines, "Saving...")
	case m.saveErr != "":
		lines = append(lines, m.saveErr, "[Enter] Retry   [Esc] Skip")
	default:
		lines = append(lines, "Save score as "+m.result.Username+"?", "[Enter] Save   [Esc] Skip")
	}
	return lines
}

func (m Model) viewPrompt() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("S N A K E"))
	b.WriteString("\n\n")
	b.WriteString("Enter your name to start:\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.promptErr != "" {
		b.WriteString(errorStyle.Render(m.promptErr))
	}
	b.WriteString("\n\n")
	status := "Leaderboard: online"
	if !m.ctrl.Online() {
		status = "Leaderboard: offline"
	}
	b.WriteString(hintStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter: play • tab: leaderboard • esc: quit"))

	body := lipgloss.JoinVertical(lipgloss.Center,
		panelStyle.Render(b.String()),
		m.help.View(m.keys.Keys()),
	)
	return place(m.config.ScreenW, m.config.ScreenH, body)
}

func (m Model) viewResults() string {
	footer := fmt.Sprintf("Your score: %d   Your rank: %s", m.saved.Record.Score, m.saved.Rank) +
		"\n\n" + hintStyle.Render("enter: play again • l: leaderboard • q: quit")
	title := fmt.Sprintf("TOP %d", m.opts.TopN)
	return place(m.config.ScreenW, m.config.ScreenH,
		renderScores(title, m.saved.Top, m.own, true, footer))
}

func (m Model) viewBoard() string {
	title := fmt.Sprintf("LEADERBOARD - TOP %d", m.opts.BoardN)
	footer := hintStyle.Render("esc: back • q: quit")
	if m.boardLoading {
		return place(m.config.ScreenW, m.config.ScreenH,
			panelStyle.Render(titleStyle.Render(title)+"\n\nLoading...\n\n"+footer))
	}
	return place(m.config.ScreenW, m.config.ScreenH,
		renderScores(title, m.board, m.ownIndex(m.board), m.ctrl.Online(), footer))
}

// Phase names the current screen for tests and logs.
func (m Model) Phase() string {
	switch m.phase {
	case phasePrompt:
		return "prompt"
	case phasePlaying:
		if m.ctrl.Engine().State() == game.StatePaused {
			return "paused"
		}
		return "playing"
	case phaseGameOver:
		return "game-over"
	case phaseResults:
		return "results"
	case phaseBoard:
		return "leaderboard"
	}
	return "unknown"
}

// Run starts the Bubble Tea program for a local terminal.
func Run(ctrl *session.Controller, cfg core.RuntimeConfig, opts Options) error {
	p := tea.NewProgram(
		NewModel(ctrl, cfg, opts),
		tea.WithAltScreen(), // Use alternate screen buffer
	)
	_, err := p.Run()
	return err
}
