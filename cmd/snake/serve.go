package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-leaderboard/internal/game"
	"github.com/vovakirdan/snake-leaderboard/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the snake SSH server",
	Long: `Start an SSH server that lets users connect and play.

Each SSH connection gets its own game. All players share one leaderboard.
The SSH user name is offered as the player name.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.snake/host_key

Examples:
  snake serve                           # Listen on :23235 with auto-generated key
  snake serve --ssh :2222               # Listen on port 2222
  snake serve --host-key ./my_host_key  # Use specific host key
  snake serve --db ./scores.db          # Use specific database

Users can connect with:
  ssh localhost -p 23235`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23235", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(os.Stderr, "snake-ssh")
	if err != nil {
		return err
	}
	defer closeLog()

	store, closeStore, err := openStore(cfg.Leaderboard)
	if err != nil {
		logger.Warn("leaderboard unavailable, serving offline", "err", err)
		store = nil
	}
	defer closeStore()

	serverCfg := tui.DefaultSSHServerConfig()
	serverCfg.Address = flagSSHAddr
	serverCfg.HostKeyPath = flagHostKey
	serverCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	serverCfg.FPS = flagFPS
	serverCfg.Game = game.ConfigFrom(cfg)
	serverCfg.Flow.TopN = cfg.Leaderboard.TopN
	serverCfg.Flow.BoardN = cfg.Leaderboard.BoardN

	server, err := tui.NewSSHServer(serverCfg, newService(store, cfg.Leaderboard, logger), logger)
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	fmt.Printf("Starting snake SSH server on %s\n", serverCfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
