package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/snake-leaderboard/internal/leaderboard"
)

// RemoteStore talks to a leaderboard HTTP API served by `snake api`.
type RemoteStore struct {
	base   *url.URL
	client *http.Client
}

// NewRemoteStore creates a client for the API at baseURL. A nil client
// uses one with a 10 second timeout.
func NewRemoteStore(baseURL string, client *http.Client) (*RemoteStore, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("storage: invalid leaderboard url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("storage: leaderboard url %q must be http or https", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RemoteStore{base: u, client: client}, nil
}

type saveRequest struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

type countResponse struct {
	Count int `json:"count"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Save posts a new score.
func (r *RemoteStore) Save(ctx context.Context, username string, score int) (leaderboard.Record, error) {
	name, err := leaderboard.Validate(username, score)
	if err != nil {
		return leaderboard.Record{}, err
	}
	body, err := json.Marshal(saveRequest{Username: name, Score: score})
	if err != nil {
		return leaderboard.Record{}, fmt.Errorf("storage: cannot encode score: %w", err)
	}
	var rec leaderboard.Record
	if err := r.do(ctx, http.MethodPost, "/scores", nil, body, &rec); err != nil {
		return leaderboard.Record{}, err
	}
	return rec, nil
}

// Top fetches the best n records.
func (r *RemoteStore) Top(ctx context.Context, n int) ([]leaderboard.Record, error) {
	records := []leaderboard.Record{}
	q := url.Values{"n": {strconv.Itoa(n)}}
	if err := r.do(ctx, http.MethodGet, "/scores/top", q, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// All fetches every record.
func (r *RemoteStore) All(ctx context.Context) ([]leaderboard.Record, error) {
	records := []leaderboard.Record{}
	if err := r.do(ctx, http.MethodGet, "/scores", nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CountGreater asks the server for the strictly-greater count.
func (r *RemoteStore) CountGreater(ctx context.Context, score int) (int, error) {
	var resp countResponse
	q := url.Values{"score": {strconv.Itoa(score)}}
	if err := r.do(ctx, http.MethodGet, "/scores/count/greater", q, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// CountEqualEarlier asks the server for the equal-and-earlier count.
func (r *RemoteStore) CountEqualEarlier(ctx context.Context, score int, before time.Time) (int, error) {
	var resp countResponse
	q := url.Values{
		"score":  {strconv.Itoa(score)},
		"before": {before.UTC().Format(time.RFC3339Nano)},
	}
	if err := r.do(ctx, http.MethodGet, "/scores/count/equal-earlier", q, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (r *RemoteStore) do(ctx context.Context, method, path string, q url.Values, body []byte, out any) error {
	u := *r.base
	u.Path += path
	u.RawQuery = q.Encode()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return fmt.Errorf("storage: cannot build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return transient(method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transient("decode "+path, err)
	}
	return nil
}

// decodeError maps the API's error codes back to leaderboard sentinels.
func decodeError(resp *http.Response) error {
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
		e.Error = resp.Status
	}
	switch e.Code {
	case "validation":
		return fmt.Errorf("storage: remote rejected score: %s: %w", e.Error, leaderboard.ErrValidation)
	case "index_missing":
		return leaderboard.ErrIndexMissing
	case "unavailable":
		return fmt.Errorf("storage: remote: %s: %w", e.Error, leaderboard.ErrUnavailable)
	default:
		return fmt.Errorf("storage: remote: %s: %w", e.Error, leaderboard.ErrTransient)
	}
}

var _ leaderboard.Store = (*RemoteStore)(nil)
