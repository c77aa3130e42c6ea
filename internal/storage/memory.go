package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/snake-leaderboard/internal/leaderboard"
)

// MemoryDSN selects the in-memory store in place of a database path.
const MemoryDSN = "mem://"

// MemoryStore keeps records in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records []leaderboard.Record // canonical order
	now     func() time.Time
	last    time.Time
	noIndex bool
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithoutIndex makes count queries fail with leaderboard.ErrIndexMissing.
func WithoutIndex() MemoryOption {
	return func(m *MemoryStore) { m.noIndex = true }
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) { m.now = now }
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Save records a new score.
func (m *MemoryStore) Save(ctx context.Context, username string, score int) (leaderboard.Record, error) {
	name, err := leaderboard.Validate(username, score)
	if err != nil {
		return leaderboard.Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return leaderboard.Record{}, transient("save score", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	at := m.now().UTC()
	if !at.After(m.last) {
		at = m.last.Add(time.Nanosecond)
	}
	m.last = at

	rec := leaderboard.Record{ID: uuid.NewString(), Username: name, Score: score, CreatedAt: at}
	// Insert after every record that ranks ahead.
	i := 0
	for i < len(m.records) && !leaderboard.Less(rec, m.records[i]) {
		i++
	}
	m.records = append(m.records, leaderboard.Record{})
	copy(m.records[i+1:], m.records[i:])
	m.records[i] = rec
	return rec, nil
}

// Top returns the best n records.
func (m *MemoryStore) Top(ctx context.Context, n int) ([]leaderboard.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, transient("query scores", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n = max(0, min(n, len(m.records)))
	out := make([]leaderboard.Record, n)
	copy(out, m.records[:n])
	return out, nil
}

// All returns every record.
func (m *MemoryStore) All(ctx context.Context) ([]leaderboard.Record, error) {
	return m.Top(ctx, m.Len())
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// CountGreater counts records with a strictly higher score.
func (m *MemoryStore) CountGreater(ctx context.Context, score int) (int, error) {
	return m.count(ctx, func(r leaderboard.Record) bool { return r.Score > score })
}

// CountEqualEarlier counts equal scores saved before the given time.
func (m *MemoryStore) CountEqualEarlier(ctx context.Context, score int, before time.Time) (int, error) {
	return m.count(ctx, func(r leaderboard.Record) bool {
		return r.Score == score && r.CreatedAt.Before(before)
	})
}

func (m *MemoryStore) count(ctx context.Context, match func(leaderboard.Record) bool) (int, error) {
	if m.noIndex {
		return 0, leaderboard.ErrIndexMissing
	}
	if err := ctx.Err(); err != nil {
		return 0, transient("count scores", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.records {
		if match(r) {
			n++
		}
	}
	return n, nil
}

var _ leaderboard.Store = (*MemoryStore)(nil)
