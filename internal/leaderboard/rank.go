package leaderboard

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTolerance is how far apart two timestamps may be and still match
// in the full-scan fallback.
const DefaultTolerance = time.Second

// Rank is a 1-based leaderboard position.
type Rank int

// RankUnavailable is returned when no rank could be computed.
const RankUnavailable Rank = 0

// Available reports whether r is a real position.
func (r Rank) Available() bool {
	return r > 0
}

func (r Rank) String() string {
	if !r.Available() {
		return "N/A"
	}
	return strconv.Itoa(int(r))
}

// Ranker computes a record's position from a Store.
type Ranker struct {
	Tolerance time.Duration
	Logger    *log.Logger
}

// NewRanker creates a ranker. A non-positive tolerance uses
// DefaultTolerance and a nil logger discards output.
func NewRanker(tolerance time.Duration, logger *log.Logger) *Ranker {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Ranker{Tolerance: tolerance, Logger: logger}
}

// Rank returns the position of a (score, createdAt) pair. It uses the
// store's count queries and falls back to a full scan when the store
// reports ErrIndexMissing. Any other failure yields RankUnavailable.
func (r *Ranker) Rank(ctx context.Context, store Store, score int, createdAt time.Time) Rank {
	if store == nil {
		return RankUnavailable
	}
	rank, err := r.countRank(ctx, store, score, createdAt)
	if errors.Is(err, ErrIndexMissing) {
		r.Logger.Warn("rank index missing, scanning all records", "score", score)
		rank, err = r.scanRank(ctx, store, score, createdAt)
	}
	if err != nil {
		r.Logger.Error("rank unavailable", "score", score, "err", err)
		return RankUnavailable
	}
	return rank
}

// countRank is greater + equal-and-earlier + 1.
func (r *Ranker) countRank(ctx context.Context, store Store, score int, createdAt time.Time) (Rank, error) {
	greater, err := store.CountGreater(ctx, score)
	if err != nil {
		return RankUnavailable, err
	}
	earlier, err := store.CountEqualEarlier(ctx, score, createdAt)
	if err != nil {
		return RankUnavailable, err
	}
	return Rank(greater + earlier + 1), nil
}

// scanRank sorts every record and locates the candidate. An exact match
// wins; otherwise the closest same-score record within Tolerance is used.
// Without a match the candidate ranks after the whole list.
func (r *Ranker) scanRank(ctx context.Context, store Store, score int, createdAt time.Time) (Rank, error) {
	records, err := store.All(ctx)
	if err != nil {
		return RankUnavailable, err
	}
	Sort(records)

	best, bestDelta := -1, r.Tolerance
	for i, rec := range records {
		if rec.Score != score {
			continue
		}
		if rec.CreatedAt.Equal(createdAt) {
			return Rank(i + 1), nil
		}
		delta := rec.CreatedAt.Sub(createdAt).Abs()
		if delta <= bestDelta && (best < 0 || delta < bestDelta) {
			best, bestDelta = i, delta
		}
	}
	if best >= 0 {
		return Rank(best + 1), nil
	}
	return Rank(len(records) + 1), nil
}

// Matches reports whether a listed record is the one saved at
// (score, createdAt), within tolerance.
func (r *Ranker) Matches(rec Record, score int, createdAt time.Time) bool {
	return rec.Score == score && rec.CreatedAt.Sub(createdAt).Abs() <= r.Tolerance
}
