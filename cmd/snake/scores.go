package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-leaderboard/internal/storage"
)

var (
	flagTopN  int
	flagStats bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the top scores",
	Long: `Display the top scores of the leaderboard, highest first. Equal
scores are listed in the order they were saved.

Examples:
  snake scores
  snake scores -n 20
  snake scores --stats
  snake scores --db ./scores.db`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVarP(&flagTopN, "number", "n", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagStats, "stats", false, "Show database statistics")
}

func runScores(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(os.Stderr, "scores")
	if err != nil {
		return err
	}
	defer closeLog()

	store, closeStore, err := openStore(cfg.Leaderboard)
	if err != nil {
		return fmt.Errorf("error opening leaderboard: %w", err)
	}
	defer closeStore()

	lb := newService(store, cfg.Leaderboard, logger)
	if !lb.Available() {
		fmt.Println("Leaderboard offline.")
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	scores := lb.Top(ctx, flagTopN)

	fmt.Println("High Scores - Snake")
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'snake play' to set the first high score!")
		return nil
	}

	fmt.Printf("  %-4s  %-20s  %-6s  %s\n", "Rank", "Player", "Score", "Date")
	fmt.Printf("  %-4s  %-20s  %-6s  %s\n", "----", "------", "-----", "----")
	for i, entry := range scores {
		dateStr := entry.CreatedAt.Local().Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-20s  %-6d  %s\n", i+1, entry.Username, entry.Score, dateStr)
	}

	if !flagStats {
		return nil
	}
	sqlite, ok := store.(*storage.SQLiteStore)
	if !ok {
		return errors.New("--stats needs a local database")
	}
	st, err := sqlite.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Games:   %d\n", st.Games)
	fmt.Printf("Players: %d\n", st.Players)
	fmt.Printf("Best:    %d\n", st.HighScore)
	fmt.Printf("Average: %.1f\n", st.AvgScore)
	if !st.LastPlayed.IsZero() {
		fmt.Printf("Last:    %s\n", st.LastPlayed.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
