package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-leaderboard/internal/leaderboard"
)

var flagAt string

var rankCmd = &cobra.Command{
	Use:   "rank <score>",
	Short: "Show where a score ranks",
	Long: `Compute the 1-based position of a score on the leaderboard. Higher
scores rank first; equal scores rank by save time, earlier first.

Without --at the score is ranked as if saved now. Prints N/A when the
leaderboard is offline or cannot be read.

Examples:
  snake rank 12
  snake rank 12 --at 2026-10-01T18:30:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringVar(&flagAt, "at", "", "Save time of the score (RFC 3339)")
}

func runRank(cmd *cobra.Command, args []string) error {
	score, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid score %q: %w", args[0], err)
	}
	if _, err := leaderboard.Validate("rank", score); err != nil {
		return err
	}
	at := time.Now()
	if flagAt != "" {
		if at, err = time.Parse(time.RFC3339, flagAt); err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(os.Stderr, "rank")
	if err != nil {
		return err
	}
	defer closeLog()

	store, closeStore, err := openStore(cfg.Leaderboard)
	if err != nil {
		logger.Warn("leaderboard unavailable", "err", err)
		store = nil
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	rank := newService(store, cfg.Leaderboard, logger).Rank(ctx, score, at)
	fmt.Printf("Rank: %s\n", rank)
	return nil
}
