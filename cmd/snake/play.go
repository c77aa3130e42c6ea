package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snake-leaderboard/internal/core"
	"github.com/vovakirdan/snake-leaderboard/internal/game"
	"github.com/vovakirdan/snake-leaderboard/internal/platform/tui"
	"github.com/vovakirdan/snake-leaderboard/internal/session"
)

var flagName string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Enter your name and play. When the game ends you can save your
score to the leaderboard or skip it.

Controls:
  Arrows/WASD   - Steer
  Space/P       - Pause
  Enter         - Start, save, play again
  Esc           - Skip saving
  L/Tab         - Leaderboard
  Ctrl+S        - Screenshot
  Q/Ctrl+C      - Quit

Examples:
  snake play
  snake play --name ann --difficulty hard
  snake play --db mem://
  snake play --log snake.log -v`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagName, "name", "", "Pre-fill the player name")
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to --log or nowhere.
	logger, closeLog, err := newLogger(io.Discard, "snake")
	if err != nil {
		return err
	}
	defer closeLog()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	runtime := core.RuntimeConfig{
		ScreenW: width,
		ScreenH: height,
		FPS:     flagFPS,
		Seed:    seed(),
	}

	store, closeStore, err := openStore(cfg.Leaderboard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: leaderboard unavailable, playing offline: %v\n", err)
		logger.Warn("leaderboard unavailable", "err", err)
		store = nil
	}
	defer closeStore()

	lb := newService(store, cfg.Leaderboard, logger)
	engine := game.New(game.ConfigFrom(cfg), runtime.Seed)
	ctrl := session.New(engine, lb, session.Options{
		TopN:   cfg.Leaderboard.TopN,
		Logger: logger,
	})
	if flagName != "" {
		if err := ctrl.SetUsername(flagName); err != nil {
			return fmt.Errorf("invalid --name: %w", err)
		}
	}

	opts := tui.DefaultOptions()
	opts.TopN = cfg.Leaderboard.TopN
	opts.BoardN = cfg.Leaderboard.BoardN

	if err := tui.Run(ctrl, runtime, opts); err != nil {
		return fmt.Errorf("error running game: %w", err)
	}
	return nil
}
