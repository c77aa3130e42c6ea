// Package storage provides the score store backends: SQLite on disk, an
// in-memory store, and an HTTP client for a remote leaderboard API.
// SQLite uses the pure-Go modernc.org/sqlite driver to avoid CGO.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/snake-leaderboard/internal/leaderboard"
)

// rankIndex is the index that makes the rank count queries cheap.
const rankIndex = "idx_scores_rank"

// Options configures a SQLiteStore.
type Options struct {
	// SkipRankIndex leaves the rank index out of the schema, so count
	// queries report leaderboard.ErrIndexMissing.
	SkipRankIndex bool
	// Now supplies record timestamps. Defaults to time.Now.
	Now func() time.Time
}

// SQLiteStore persists score records in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time

	mu   sync.Mutex
	last int64 // newest created_at handed out, unix nanos
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string, opts Options) (*SQLiteStore, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// Serialize writers; SQLite allows one at a time anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	store := &SQLiteStore{db: db, now: now}

	if err := store.migrate(!opts.SkipRankIndex); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	if err := db.QueryRow("SELECT COALESCE(MAX(created_at), 0) FROM scores").Scan(&store.last); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot read latest timestamp: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *SQLiteStore) migrate(withIndex bool) error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			score INTEGER NOT NULL CHECK (score >= 0),
			created_at INTEGER NOT NULL
		);
	`
	if withIndex {
		schema += `CREATE INDEX IF NOT EXISTS ` + rankIndex + ` ON scores(score DESC, created_at ASC);`
	}
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DropRankIndex removes the rank index. Ranking falls back to a full scan
// afterwards.
func (s *SQLiteStore) DropRankIndex(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DROP INDEX IF EXISTS "+rankIndex); err != nil {
		return transient("drop rank index", err)
	}
	return nil
}

// timestamp returns a strictly increasing store time so records saved in
// the same nanosecond still order deterministically.
func (s *SQLiteStore) timestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := s.now().UnixNano()
	if ns <= s.last {
		ns = s.last + 1
	}
	s.last = ns
	return time.Unix(0, ns).UTC()
}

// Save records a new score and returns it with its assigned ID and time.
func (s *SQLiteStore) Save(ctx context.Context, username string, score int) (leaderboard.Record, error) {
	name, err := leaderboard.Validate(username, score)
	if err != nil {
		return leaderboard.Record{}, err
	}
	rec := leaderboard.Record{
		ID:        uuid.NewString(),
		Username:  name,
		Score:     score,
		CreatedAt: s.timestamp(),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO scores (id, username, score, created_at) VALUES (?, ?, ?, ?)",
		rec.ID, rec.Username, rec.Score, rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return leaderboard.Record{}, transient("save score", err)
	}
	return rec, nil
}

// Top retrieves the best n records in canonical order.
func (s *SQLiteStore) Top(ctx context.Context, n int) ([]leaderboard.Record, error) {
	if n <= 0 {
		return []leaderboard.Record{}, nil
	}
	return s.query(ctx,
		`SELECT id, username, score, created_at
		 FROM scores
		 ORDER BY score DESC, created_at ASC, rowid ASC
		 LIMIT ?`,
		n,
	)
}

// All retrieves every record in canonical order.
func (s *SQLiteStore) All(ctx context.Context) ([]leaderboard.Record, error) {
	return s.query(ctx,
		`SELECT id, username, score, created_at
		 FROM scores
		 ORDER BY score DESC, created_at ASC, rowid ASC`,
	)
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]leaderboard.Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, transient("query scores", err)
	}
	defer rows.Close()

	records := []leaderboard.Record{}
	for rows.Next() {
		var r leaderboard.Record
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.Username, &r.Score, &createdAt); err != nil {
			return nil, transient("scan row", err)
		}
		r.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, transient("iterate rows", err)
	}
	return records, nil
}

// CountGreater counts records with a strictly higher score.
func (s *SQLiteStore) CountGreater(ctx context.Context, score int) (int, error) {
	if err := s.requireIndex(ctx); err != nil {
		return 0, err
	}
	return s.count(ctx, "SELECT COUNT(*) FROM scores WHERE score > ?", score)
}

// CountEqualEarlier counts records with the same score saved before the
// given time.
func (s *SQLiteStore) CountEqualEarlier(ctx context.Context, score int, before time.Time) (int, error) {
	if err := s.requireIndex(ctx); err != nil {
		return 0, err
	}
	return s.count(ctx,
		"SELECT COUNT(*) FROM scores WHERE score = ? AND created_at < ?",
		score, before.UnixNano(),
	)
}

func (s *SQLiteStore) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, transient("count scores", err)
	}
	return n, nil
}

// requireIndex reports leaderboard.ErrIndexMissing when the rank index
// is absent.
func (s *SQLiteStore) requireIndex(ctx context.Context) error {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?",
		rankIndex,
	).Scan(&n)
	if err != nil {
		return transient("inspect schema", err)
	}
	if n == 0 {
		return leaderboard.ErrIndexMissing
	}
	return nil
}

// Stats contains aggregated statistics over all saved scores.
type Stats struct {
	Games      int
	Players    int
	HighScore  int
	AvgScore   float64
	LastPlayed time.Time
}

// Stats aggregates the stored scores.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var last int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT username), COALESCE(MAX(score), 0),
		        COALESCE(AVG(score), 0.0), COALESCE(MAX(created_at), 0)
		 FROM scores`,
	).Scan(&st.Games, &st.Players, &st.HighScore, &st.AvgScore, &last)
	if err != nil {
		return Stats{}, transient("get stats", err)
	}
	if last > 0 {
		st.LastPlayed = time.Unix(0, last).UTC()
	}
	return st, nil
}

// transient wraps a driver or network failure.
func transient(op string, err error) error {
	return fmt.Errorf("storage: cannot %s: %w (%w)", op, err, leaderboard.ErrTransient)
}

var _ leaderboard.Store = (*SQLiteStore)(nil)
