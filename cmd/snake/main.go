// snake is a terminal snake game with a persistent leaderboard.
//
// Usage:
//
//	snake play              - Play in this terminal (default)
//	snake scores            - Show the top scores
//	snake rank <score>      - Show where a score would rank
//	snake serve             - Start the SSH server for remote play
//	snake api               - Start the HTTP leaderboard API
//
// Global flags:
//
//	--fps <rate>          - Display poll rate (default: 60)
//	--seed <value>        - RNG seed for reproducible apple placement
//	--db <path>           - Leaderboard database (default: ~/.snake/scores.db)
//	--config <path>       - Custom config YAML
//	--difficulty <name>   - Starting speed: easy, normal, hard
//	--env <path>          - dotenv file with leaderboard overrides (default: .env)
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-leaderboard/internal/config"
	"github.com/vovakirdan/snake-leaderboard/internal/leaderboard"
	"github.com/vovakirdan/snake-leaderboard/internal/storage"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagEnvFile    string
	flagLogFile    string
	flagVerbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snake",
	Short: "Snake - a terminal snake game with a leaderboard",
	Long: `Snake is the classic game played on a 20x20 board in your terminal.
Eat apples to grow and speed up, and save your score to the leaderboard.

Available commands:
  play     - Play in this terminal
  scores   - Show the top scores
  rank     - Show where a score would rank
  serve    - Start the SSH server for remote play
  api      - Start the HTTP leaderboard API

Examples:
  snake
  snake play --difficulty hard
  snake scores -n 20
  snake serve --ssh :2222
  snake api --http :8080`,
	SilenceUsage: true,
	RunE:         runPlay,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Display poll rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database, or mem:// (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env", "", "dotenv file with overrides (default: .env)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log", "", "Write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
}

// loadConfig resolves the configuration: YAML file, then dotenv and
// environment, then command-line flags.
func loadConfig() (config.SnakeConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if err := config.LoadEnv(flagEnvFile); err != nil {
		return cfg, err
	}
	config.ApplyEnv(&cfg, os.Getenv)
	if err := config.ApplyPreset(&cfg, config.DifficultyPreset(flagDifficulty)); err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.Leaderboard.DBPath = flagDBPath
		cfg.Leaderboard.Enabled = true
	}
	return cfg, nil
}

// seed returns the --seed value, or a time-based one.
func seed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// newLogger builds a logger writing to w, or to --log when set.
// The returned closer releases the log file.
func newLogger(w io.Writer, prefix string) (*log.Logger, func(), error) {
	closer := func() {}
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closer = func() { f.Close() }
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger, closer, nil
}

// openStore opens the configured leaderboard backend. A nil store with a
// nil error means the leaderboard is disabled.
func openStore(cfg config.LeaderboardConfig) (leaderboard.Store, func() error, error) {
	noop := func() error { return nil }
	switch {
	case !cfg.Enabled:
		return nil, noop, nil
	case cfg.RemoteURL != "":
		store, err := storage.NewRemoteStore(cfg.RemoteURL, nil)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case cfg.DBPath == storage.MemoryDSN:
		return storage.NewMemoryStore(), noop, nil
	default:
		store, err := storage.Open(cfg.DBPath, storage.Options{SkipRankIndex: !cfg.RequireIndex})
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	}
}

// newService wraps a store with the configured ranking tolerance.
func newService(store leaderboard.Store, cfg config.LeaderboardConfig, logger *log.Logger) *leaderboard.Service {
	return leaderboard.NewService(store,
		leaderboard.WithTolerance(time.Duration(cfg.RankToleranceMs)*time.Millisecond),
		leaderboard.WithLogger(logger),
	)
}
