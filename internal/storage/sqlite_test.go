package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/snake-leaderboard/internal/leaderboard"
)

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func openTestStore(t *testing.T, opts Options) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath, opts)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath, Options{})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath, Options{})
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreSaveAndTop(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, Options{Now: stepClock(time.Unix(1_700_000_000, 0), time.Second)})

	for _, s := range []struct {
		name  string
		score int
	}{{"ann", 100}, {"bob", 50}, {"cid", 200}, {"dee", 100}} {
		if _, err := store.Save(ctx, s.name, s.score); err != nil {
			t.Fatalf("Save(%s) failed: %v", s.name, err)
		}
	}

	top, err := store.Top(ctx, 3)
	if err != nil {
		t.Fatalf("Top() failed: %v", err)
	}
	want := []string{"cid", "ann", "dee"}
	if len(top) != len(want) {
		t.Fatalf("Top(3) returned %d records", len(top))
	}
	for i, w := range want {
		if top[i].Username != w {
			t.Errorf("top[%d] = %s, want %s", i, top[i].Username, w)
		}
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All() failed: %v", err)
	}
	if len(all) != 4 || all[3].Username != "bob" {
		t.Errorf("All() = %v, want 4 records ending with bob", all)
	}
}

func TestStoreSaveAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	fixed := time.Unix(1_700_000_000, 0)
	store := openTestStore(t, Options{Now: func() time.Time { return fixed }})

	a, err := store.Save(ctx, "  ann  ", 1)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	b, err := store.Save(ctx, "ann", 1)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if a.Username != "ann" {
		t.Errorf("username = %q, want trimmed", a.Username)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs %q and %q must be set and distinct", a.ID, b.ID)
	}
	if !b.CreatedAt.After(a.CreatedAt) {
		t.Errorf("CreatedAt not strictly increasing: %v then %v", a.CreatedAt, b.CreatedAt)
	}

	top, _ := store.Top(ctx, 1)
	if len(top) != 1 || top[0].ID != a.ID || !top[0].CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("Top(1) = %v, want first save %v", top, a)
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	store := openTestStore(t, Options{})
	if _, err := store.Save(context.Background(), "", 5); !errors.Is(err, leaderboard.ErrValidation) {
		t.Errorf("Save(\"\") error = %v, want ErrValidation", err)
	}
	if _, err := store.Save(context.Background(), "ann", -5); !errors.Is(err, leaderboard.ErrValidation) {
		t.Errorf("Save(-5) error = %v, want ErrValidation", err)
	}
}

func TestStoreCounts(t *testing.T) {
	ctx := context.Background()
	start := time.Unix(1_700_000_000, 0)
	store := openTestStore(t, Options{Now: stepClock(start, time.Second)})

	a, _ := store.Save(ctx, "A", 50)
	store.Save(ctx, "B", 30)
	c, _ := store.Save(ctx, "C", 50)

	greater, err := store.CountGreater(ctx, 30)
	if err != nil {
		t.Fatalf("CountGreater() failed: %v", err)
	}
	if greater != 2 {
		t.Errorf("CountGreater(30) = %d, want 2", greater)
	}
	earlier, err := store.CountEqualEarlier(ctx, 50, c.CreatedAt)
	if err != nil {
		t.Fatalf("CountEqualEarlier() failed: %v", err)
	}
	if earlier != 1 {
		t.Errorf("CountEqualEarlier(50, t2) = %d, want 1", earlier)
	}
	if n, _ := store.CountEqualEarlier(ctx, 50, a.CreatedAt); n != 0 {
		t.Errorf("CountEqualEarlier(50, t0) = %d, want 0", n)
	}
}

func TestStoreIndexMissing(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, Options{SkipRankIndex: true})

	if _, err := store.CountGreater(ctx, 1); !errors.Is(err, leaderboard.ErrIndexMissing) {
		t.Errorf("CountGreater() error = %v, want ErrIndexMissing", err)
	}
	if _, err := store.CountEqualEarlier(ctx, 1, time.Now()); !errors.Is(err, leaderboard.ErrIndexMissing) {
		t.Errorf("CountEqualEarlier() error = %v, want ErrIndexMissing", err)
	}
}

func TestStoreRankWithAndWithoutIndex(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, Options{Now: stepClock(time.Unix(1_700_000_000, 0), time.Second)})
	svc := leaderboard.NewService(store)

	svc.Save(ctx, "A", 50)
	svc.Save(ctx, "B", 30)
	c, err := svc.Save(ctx, "C", 50)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if got := svc.Rank(ctx, 50, c.CreatedAt); got != 2 {
		t.Errorf("indexed Rank() = %v, want 2", got)
	}
	if err := store.DropRankIndex(ctx); err != nil {
		t.Fatalf("DropRankIndex() failed: %v", err)
	}
	if got := svc.Rank(ctx, 50, c.CreatedAt); got != 2 {
		t.Errorf("scan Rank() = %v, want 2", got)
	}
}

func TestStoreReopenKeepsOrder(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	fixed := time.Unix(1_700_000_000, 0)

	store, err := Open(dbPath, Options{Now: func() time.Time { return fixed }})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	first, _ := store.Save(ctx, "ann", 7)
	store.Close()

	store, err = Open(dbPath, Options{Now: func() time.Time { return fixed }})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()
	second, err := store.Save(ctx, "bob", 7)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if !second.CreatedAt.After(first.CreatedAt) {
		t.Errorf("timestamp after reopen %v not after %v", second.CreatedAt, first.CreatedAt)
	}
}

func TestStoreStats(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, Options{})

	st, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if st.Games != 0 || !st.LastPlayed.IsZero() {
		t.Errorf("empty Stats() = %+v", st)
	}

	store.Save(ctx, "ann", 10)
	store.Save(ctx, "ann", 20)
	store.Save(ctx, "bob", 30)

	st, err = store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if st.Games != 3 || st.Players != 2 || st.HighScore != 30 || st.AvgScore != 20 {
		t.Errorf("Stats() = %+v, want 3 games, 2 players, high 30, avg 20", st)
	}
	if st.LastPlayed.IsZero() {
		t.Error("LastPlayed not set")
	}
}
