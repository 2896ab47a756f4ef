// Package http exposes the generator over a small JSON/HTTP API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/talkweave"
	"github.com/aretw0/talkweave/internal/logging"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxIDs bounds the number of ids accepted by a single request.
const MaxIDs = 100

// Generator is the part of talkweave.Generator served over HTTP.
type Generator interface {
	GenerateTalks(ctx context.Context, ids ...int) (*talkweave.Result, error)
	GenerateDialogues(ctx context.Context, ids ...int) (*talkweave.Result, error)
	GenerateText(ctx context.Context, query string) (*talkweave.Result, error)
	TraceRoots(ctx context.Context, id int) ([]int, error)
}

// Server serves generation requests.
type Server struct {
	Generator Generator

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

type Option func(*Server)

// WithMetrics exposes the gatherer at /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// Response is the JSON body of a generation request.
type Response struct {
	*talkweave.Result
	Wikitext string `json:"wikitext"`
}

// RootsResponse is the JSON body of a traceback request.
type RootsResponse struct {
	ID    int   `json:"id"`
	Roots []int `json:"roots"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the HTTP handler for gen.
//
//	GET /talks/{id}             comma separated talk ids
//	GET /dialogues/{id}         comma separated dialogue ids
//	GET /dialogues/{id}/roots   traceback
//	GET /search?q=text
//	GET /healthz, /version, /metrics
//
// Generation routes answer JSON unless format=text is given; wrap=true
// encloses the wikitext in Dialogue Start/End templates.
func NewHandler(gen Generator, opts ...Option) http.Handler {
	s := &Server{
		Generator: gen,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/talks/{id}", s.GetTalks)
	r.Get("/dialogues/{id}", s.GetDialogues)
	r.Get("/dialogues/{id}/roots", s.GetRoots)
	r.Get("/search", s.Search)
	r.Get("/healthz", s.GetHealth)
	r.Get("/version", s.GetVersion)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetTalks handles GET /talks/{id}.
func (s *Server) GetTalks(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.Generator.GenerateTalks(r.Context(), ids...)
	s.respond(w, r, res, err)
}

// GetDialogues handles GET /dialogues/{id}.
func (s *Server) GetDialogues(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.Generator.GenerateDialogues(r.Context(), ids...)
	s.respond(w, r, res, err)
}

// Search handles GET /search?q=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		s.fail(w, http.StatusBadRequest, errors.New("missing query parameter q"))
		return
	}
	res, err := s.Generator.GenerateText(r.Context(), q)
	s.respond(w, r, res, err)
}

// GetRoots handles GET /dialogues/{id}/roots.
func (s *Server) GetRoots(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid id %q", chi.URLParam(r, "id")))
		return
	}
	roots, err := s.Generator.TraceRoots(r.Context(), id)
	if err != nil {
		s.fail(w, statusOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, RootsResponse{ID: id, Roots: roots})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetVersion handles GET /version.
func (s *Server) GetVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"version": strings.TrimSpace(talkweave.Version)})
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, res *talkweave.Result, err error) {
	if err != nil {
		s.fail(w, statusOf(err), err)
		return
	}

	wrap := r.URL.Query().Get("wrap") == "true"
	text := res.String(wrap)
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(text)); err != nil {
			s.logger.Error("response write failed", "err", err)
		}
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Result: res, Wikitext: text})
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func parseIDs(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	if len(parts) > MaxIDs {
		return nil, fmt.Errorf("too many ids: %d > %d", len(parts), MaxIDs)
	}
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
