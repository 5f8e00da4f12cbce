// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/ranking"
	"github.com/okian/reciperank/internal/domain/scoring"
	"github.com/okian/reciperank/internal/domain/types"
	"github.com/okian/reciperank/pkg/logger"
)

const (
	defaultMaxCandidates   = 10_000
	defaultMaxRequestBytes = 8 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Rank scores and orders candidates.
	Rank(ctx context.Context, candidates []model.Candidate, q types.Query) (ranking.Result, error)

	// MergeAndRank fuses weighted result sets and ranks the merged list.
	MergeAndRank(ctx context.Context, sets []ranking.ResultSet, q types.Query) (ranking.Result, error)

	// RankHits hydrates search hits from the recipe store and ranks them.
	// missing lists hit IDs the store did not know.
	RankHits(ctx context.Context, hits []types.Hit, q types.Query) (res ranking.Result, missing []string, err error)

	// Trending orders candidates by recent activity.
	Trending(ctx context.Context, candidates []model.Candidate, now time.Time, limit int) []model.RankedCandidate
}

// Cache stores encoded responses. Implementations degrade to misses on failure.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	modesHandler  *ModesHandler
	rankHandler   *RankHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	rh := &RankHandler{
		deps:            deps,
		maxCandidates:   defaultMaxCandidates,
		maxRequestBytes: defaultMaxRequestBytes,
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(rh)
	}
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		modesHandler:  NewModesHandler(),
		rankHandler:   rh,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/modes", MetricsMiddleware(s.modesHandler.HandleModes, "modes"))
	mux.HandleFunc("/rank", MetricsMiddleware(s.rankHandler.HandleRank, "rank"))
	mux.HandleFunc("/rank/merge", MetricsMiddleware(s.rankHandler.HandleMerge, "rank_merge"))
	mux.HandleFunc("/rank/hits", MetricsMiddleware(s.rankHandler.HandleHits, "rank_hits"))
	mux.HandleFunc("/trending", MetricsMiddleware(s.rankHandler.HandleTrending, "trending"))
	mux.HandleFunc("/explain", MetricsMiddleware(s.rankHandler.HandleExplain, "explain"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a handler error onto a status code.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
	case errors.Is(err, ErrBadRequest), errors.Is(err, scoring.ErrUnknownMode):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", err)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, model.ErrStoreUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
