package leaderboard

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Service is the leaderboard facade used by the session controller. It
// validates before any I/O and degrades to empty results or
// RankUnavailable when the store is missing or failing, so gameplay never
// depends on backend health.
type Service struct {
	store  Store
	ranker *Ranker
	logger *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTolerance sets the timestamp tolerance of the ranking fallback.
func WithTolerance(d time.Duration) Option {
	return func(s *Service) {
		s.ranker.Tolerance = d
	}
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
			s.ranker.Logger = l
		}
	}
}

// NewService wraps a store. A nil store puts the service in offline mode.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		ranker: NewRanker(DefaultTolerance, nil),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ranker.Tolerance <= 0 {
		s.ranker.Tolerance = DefaultTolerance
	}
	return s
}

// Available reports whether a store is configured.
func (s *Service) Available() bool {
	return s.store != nil
}

// Ranker returns the ranker used by Rank.
func (s *Service) Ranker() *Ranker {
	return s.ranker
}

// Save validates and persists a score. It returns ErrValidation before
// touching the store, ErrUnavailable in offline mode, and the store's
// error otherwise.
func (s *Service) Save(ctx context.Context, username string, score int) (Record, error) {
	name, err := Validate(username, score)
	if err != nil {
		return Record{}, err
	}
	if s.store == nil {
		return Record{}, ErrUnavailable
	}
	rec, err := s.store.Save(ctx, name, score)
	if err != nil {
		s.logger.Error("save score failed", "username", name, "score", score, "err", err)
		return Record{}, fmt.Errorf("save score: %w", err)
	}
	s.logger.Info("score saved", "id", rec.ID, "username", rec.Username, "score", rec.Score)
	return rec, nil
}

// Top returns at most n records in canonical order. It never fails: an
// offline or failing store yields an empty slice.
func (s *Service) Top(ctx context.Context, n int) []Record {
	if s.store == nil || n <= 0 {
		return []Record{}
	}
	records, err := s.store.Top(ctx, n)
	if err != nil {
		s.logger.Error("load top scores failed", "n", n, "err", err)
		return []Record{}
	}
	if len(records) > n {
		records = records[:n]
	}
	return records
}

// Rank returns the position of a saved score, or RankUnavailable.
func (s *Service) Rank(ctx context.Context, score int, createdAt time.Time) Rank {
	if s.store == nil {
		return RankUnavailable
	}
	return s.ranker.Rank(ctx, s.store, score, createdAt)
}
