package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-leaderboard/internal/server"
)

var flagHTTPAddr string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP leaderboard API",
	Long: `Serve the leaderboard over HTTP so other clients can save and rank
scores against one shared database. Point a client at it with
remote_url in the config file or SNAKE_LEADERBOARD_URL.

Endpoints:
  GET  /healthz
  POST /scores
  GET  /scores
  GET  /scores/top?n=N
  GET  /scores/count/greater?score=S
  GET  /scores/count/equal-earlier?score=S&before=T

Examples:
  snake api
  snake api --http :9000 --db ./scores.db`,
	Args: cobra.NoArgs,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&flagHTTPAddr, "http", ":8080", "HTTP listen address (host:port)")
}

func runAPI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// The API always serves a local store.
	cfg.Leaderboard.RemoteURL = ""

	logger, closeLog, err := newLogger(os.Stderr, "snake-api")
	if err != nil {
		return err
	}
	defer closeLog()

	store, closeStore, err := openStore(cfg.Leaderboard)
	if err != nil {
		return fmt.Errorf("error opening leaderboard: %w", err)
	}
	defer closeStore()

	srv := &http.Server{
		Addr:              flagHTTPAddr,
		Handler:           server.New(store, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "address", flagHTTPAddr, "leaderboard", store != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-done:
	}

	logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
