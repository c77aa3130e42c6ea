package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/snake-leaderboard/internal/leaderboard"
	"github.com/vovakirdan/snake-leaderboard/internal/storage"
)

func newRemote(t *testing.T, backend leaderboard.Store) *storage.RemoteStore {
	t.Helper()
	srv := httptest.NewServer(New(backend, nil).Handler())
	t.Cleanup(srv.Close)
	remote, err := storage.NewRemoteStore(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewRemoteStore() failed: %v", err)
	}
	return remote
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	New(nil, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRemoteRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 123, time.UTC)
	backend := storage.NewMemoryStore(storage.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	remote := newRemote(t, backend)

	a, err := remote.Save(ctx, "A", 50)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := remote.Save(ctx, "B", 30); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	c, err := remote.Save(ctx, " C ", 50)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if c.Username != "C" || c.ID == "" {
		t.Errorf("saved record = %+v", c)
	}

	top, err := remote.Top(ctx, 2)
	if err != nil {
		t.Fatalf("Top() failed: %v", err)
	}
	if len(top) != 2 || top[0].ID != a.ID || top[1].ID != c.ID {
		t.Errorf("Top(2) = %+v", top)
	}
	if !top[0].CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("CreatedAt lost precision: %v vs %v", top[0].CreatedAt, a.CreatedAt)
	}

	svc := leaderboard.NewService(remote)
	if got := svc.Rank(ctx, 50, c.CreatedAt); got != 2 {
		t.Errorf("Rank() = %v, want 2", got)
	}
}

func TestRemoteRankFallsBackWithoutIndex(t *testing.T) {
	ctx := context.Background()
	remote := newRemote(t, storage.NewMemoryStore(storage.WithoutIndex()))

	if _, err := remote.CountGreater(ctx, 1); !errors.Is(err, leaderboard.ErrIndexMissing) {
		t.Fatalf("CountGreater() error = %v, want ErrIndexMissing", err)
	}

	svc := leaderboard.NewService(remote)
	svc.Save(ctx, "A", 50)
	svc.Save(ctx, "B", 30)
	c, err := svc.Save(ctx, "C", 50)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if got := svc.Rank(ctx, 50, c.CreatedAt); got != 2 {
		t.Errorf("Rank() = %v, want 2 via scan", got)
	}
}

func TestErrorResponses(t *testing.T) {
	h := New(storage.NewMemoryStore(), nil).Handler()
	offline := New(nil, nil).Handler()

	tests := []struct {
		name    string
		handler http.Handler
		method  string
		target  string
		body    string
		status  int
		code    string
	}{
		{"blank username", h, http.MethodPost, "/scores", `{"username":"  ","score":3}`, http.StatusBadRequest, "validation"},
		{"long username", h, http.MethodPost, "/scores", `{"username":"` + strings.Repeat("x", 21) + `","score":3}`, http.StatusBadRequest, "validation"},
		{"missing score", h, http.MethodPost, "/scores", `{"username":"ann"}`, http.StatusBadRequest, "validation"},
		{"negative score", h, http.MethodPost, "/scores", `{"username":"ann","score":-1}`, http.StatusBadRequest, "validation"},
		{"bad json", h, http.MethodPost, "/scores", `{`, http.StatusBadRequest, "validation"},
		{"bad n", h, http.MethodGet, "/scores/top?n=abc", "", http.StatusBadRequest, "validation"},
		{"missing score param", h, http.MethodGet, "/scores/count/greater", "", http.StatusBadRequest, "validation"},
		{"bad before", h, http.MethodGet, "/scores/count/equal-earlier?score=1&before=yesterday", "", http.StatusBadRequest, "validation"},
		{"offline", offline, http.MethodGet, "/scores/top", "", http.StatusServiceUnavailable, "unavailable"},
		{"unknown route", h, http.MethodGet, "/nope", "", http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			var e errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
		})
	}
}

func TestTopDefaultsAndEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	New(storage.NewMemoryStore(), nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scores/top", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}
