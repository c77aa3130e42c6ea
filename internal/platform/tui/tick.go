// Package tui provides the Bubble Tea front-end for the snake game: the
// name prompt, the game loop, the save/skip dialog and leaderboard views,
// plus a Wish SSH server that hosts the same flow per connection.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snake-leaderboard/internal/leaderboard"
	"github.com/vovakirdan/snake-leaderboard/internal/session"
)

// persistTimeout bounds a single save or leaderboard load.
const persistTimeout = 10 * time.Second

// FrameMsg is sent once per display frame.
type FrameMsg time.Time

// frameCmd returns a Bubble Tea command that sends frame messages at the
// specified rate. The engine decides whether a frame runs a tick.
func frameCmd(fps int) tea.Cmd {
	interval := time.Second / time.Duration(fps)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// gameOverReadyMsg ends the pause between a crash and the save dialog.
type gameOverReadyMsg struct {
	generation uint64
}

func gameOverDelayCmd(d time.Duration, generation uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return gameOverReadyMsg{generation: generation}
	})
}

// savedMsg carries the outcome of a save.
type savedMsg struct {
	saved session.Saved
	err   error
}

func saveCmd(ctrl *session.Controller, res session.Result) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		saved, err := ctrl.Save(ctx, res)
		return savedMsg{saved: saved, err: err}
	}
}

// boardMsg carries a loaded leaderboard.
type boardMsg struct {
	records []leaderboard.Record
}

func loadBoardCmd(ctrl *session.Controller, n int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		return boardMsg{records: ctrl.Leaderboard(ctx, n)}
	}
}
