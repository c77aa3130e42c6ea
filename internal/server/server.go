// Package server exposes a leaderboard.Store over HTTP so several game
// clients can share one leaderboard.
//
// Routes:
//   - POST /scores                         save a score
//   - GET  /scores/top?n=                  best n records
//   - GET  /scores                         every record, canonical order
//   - GET  /scores/count/greater?score=    records with a higher score
//   - GET  /scores/count/equal-earlier?score=&before=
//   - GET  /healthz
//
// Errors are JSON {"code","error"} with codes validation (400),
// index_missing (412), unavailable (503) and transient (500).
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/snake-leaderboard/internal/leaderboard"
)

// maxTop caps the n parameter of /scores/top.
const maxTop = 100

// Server bundles the router and the store it serves.
type Server struct {
	r      *chi.Mux
	store  leaderboard.Store
	logger *log.Logger
}

// New constructs a Server, installs middleware, and registers routes.
// A nil store answers every score route with 503.
func New(store leaderboard.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{r: chi.NewRouter(), store: store, logger: logger}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(s.requestLogger)
	s.r.Use(jsonContentType)

	s.r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.r.Route("/scores", func(r chi.Router) {
		r.Use(s.requireStore)
		r.Post("/", s.handleSave)
		r.Get("/", s.handleAll)
		r.Get("/top", s.handleTop)
		r.Get("/count/greater", s.handleCountGreater)
		r.Get("/count/equal-earlier", s.handleCountEqualEarlier)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "not_found", Error: r.URL.Path})
	})

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			s.writeError(w, leaderboard.ErrUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- handlers ----------------------------------

type saveRequest struct {
	Username string `json:"username"`
	Score    *int   `json:"score"`
}

type countResponse struct {
	Count int `json:"count"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "validation", Error: "invalid json"})
		return
	}
	if req.Score == nil {
		s.writeError(w, &leaderboard.ValidationError{Field: "score", Reason: "is required"})
		return
	}
	rec, err := s.store.Save(r.Context(), req.Username, *req.Score)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("score saved", "id", rec.ID, "username", rec.Username, "score", rec.Score)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n", 10)
	if err != nil || n < 0 {
		s.writeError(w, &leaderboard.ValidationError{Field: "n", Reason: "must be a non-negative integer"})
		return
	}
	records, err := s.store.Top(r.Context(), min(n, maxTop))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.All(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCountGreater(w http.ResponseWriter, r *http.Request) {
	score, err := intParam(r, "score", -1)
	if err != nil || score < 0 {
		s.writeError(w, &leaderboard.ValidationError{Field: "score", Reason: "must be a non-negative integer"})
		return
	}
	n, err := s.store.CountGreater(r.Context(), score)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (s *Server) handleCountEqualEarlier(w http.ResponseWriter, r *http.Request) {
	score, err := intParam(r, "score", -1)
	if err != nil || score < 0 {
		s.writeError(w, &leaderboard.ValidationError{Field: "score", Reason: "must be a non-negative integer"})
		return
	}
	before, err := time.Parse(time.RFC3339Nano, r.URL.Query().Get("before"))
	if err != nil {
		s.writeError(w, &leaderboard.ValidationError{Field: "before", Reason: "must be an RFC 3339 timestamp"})
		return
	}
	n, err := s.store.CountEqualEarlier(r.Context(), score, before)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

// ------------------------------- small util --------------------------------

// intParam reads an integer query parameter, returning def when absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// writeError maps leaderboard errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, leaderboard.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "validation", Error: err.Error()})
	case errors.Is(err, leaderboard.ErrIndexMissing):
		writeJSON(w, http.StatusPreconditionFailed, errorResponse{Code: "index_missing", Error: err.Error()})
	case errors.Is(err, leaderboard.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Code: "unavailable", Error: err.Error()})
	default:
		s.logger.Error("store failure", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "transient", Error: "store failure"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
