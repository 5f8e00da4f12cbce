// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/reciperank/internal/adapters/mq/queue"
	"github.com/okian/reciperank/internal/adapters/mq/worker"
	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/ranking"
	"github.com/okian/reciperank/internal/domain/scoring"
	"github.com/okian/reciperank/internal/domain/types"
	"github.com/okian/reciperank/internal/tracing"
	"github.com/okian/reciperank/pkg/logger"
	"github.com/okian/reciperank/pkg/metrics"
)

// Store hydrates search hits into full recipe candidates.
type Store interface {
	Hydrate(ctx context.Context, hits []types.Hit) ([]model.Candidate, []string, error)
	Close() error
}

// Service implements the API dependencies for the ranking engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	queue  *queue.InMemoryQueue
	pool   *worker.Pool
	ranker *ranking.Ranker
	store  Store

	// Configuration
	workerCount       int
	queueSize         int
	chunkSize         int
	parallelThreshold int
	defaultMode       scoring.Mode
	overrides         *scoring.WeightOverrides
	halfLifeDays      float64
	now               func() time.Time

	// State
	started   bool
	requests  atomic.Int64
	scored    atomic.Int64
	fallbacks atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration. Until Start is
// called scoring runs on the calling goroutine.
func New(opts ...Option) *Service {
	s := &Service{
		ranker:            ranking.New(),
		workerCount:       runtime.NumCPU(),
		queueSize:         4096,
		chunkSize:         256,
		parallelThreshold: 512,
		defaultMode:       scoring.ModeBalanced,
		halfLifeDays:      30,
		now:               time.Now,
		logger:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the chunk queue and the worker pool and routes scoring through it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting ranking service...")

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue,
		worker.WithChunkSize(s.chunkSize),
		worker.WithParallelThreshold(s.parallelThreshold),
		worker.WithPoolLogger(s.logger.Named("pool")),
	)
	s.pool.Start(ctx)
	s.ranker = ranking.New(ranking.WithMapper(s.pool))

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("chunkSize", s.chunkSize),
		logger.String("defaultMode", s.defaultMode.String()),
		logger.Bool("store", s.store != nil),
	)
	return nil
}

// Stop shuts the pool down and closes the store. Ranking keeps working
// serially afterwards.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping ranking service...")

	s.ranker = ranking.New()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "closing recipe store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
}

func (s *Service) currentRanker() *ranking.Ranker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ranker
}

// options resolves a request query against the service defaults.
func (s *Service) options(q types.Query) (ranking.Options, error) {
	mode := s.defaultMode
	if q.Mode != "" {
		m, err := scoring.ParseMode(q.Mode)
		if err != nil {
			return ranking.Options{}, err
		}
		mode = m
	}
	weights := q.Weights
	if weights.IsEmpty() && q.Mode == "" && !s.overrides.IsEmpty() {
		weights = s.overrides.Apply(mode.Weights()).Overrides()
	}
	halfLife := q.RecencyHalfLifeDays
	if halfLife <= 0 {
		halfLife = s.halfLifeDays
	}
	now := q.Now
	if now.IsZero() {
		now = s.now()
	}
	return ranking.Options{
		Mode:                mode,
		Weights:             weights,
		Preferences:         q.Preferences,
		IncludeBreakdown:    q.IncludeBreakdown,
		RecencyHalfLifeDays: halfLife,
		Now:                 now,
	}, nil
}

// Rank scores and orders candidates.
func (s *Service) Rank(ctx context.Context, candidates []model.Candidate, q types.Query) (res ranking.Result, err error) {
	opts, err := s.options(q)
	if err != nil {
		return ranking.Result{}, err
	}
	ctx, end := tracing.StartSpan(ctx, "service.Rank",
		attribute.String("mode", opts.Mode.String()),
		attribute.Int("candidates", len(candidates)),
	)
	defer func() { end(err) }()

	start := time.Now()
	res, err = s.currentRanker().Rank(ctx, candidates, opts)
	if err != nil {
		return ranking.Result{}, err
	}
	s.observe(ctx, "rank", opts, len(candidates), res, start)
	return res, nil
}

// MergeAndRank fuses weighted result sets and ranks the merged list.
func (s *Service) MergeAndRank(ctx context.Context, sets []ranking.ResultSet, q types.Query) (res ranking.Result, err error) {
	opts, err := s.options(q)
	if err != nil {
		return ranking.Result{}, err
	}
	ctx, end := tracing.StartSpan(ctx, "service.MergeAndRank",
		attribute.String("mode", opts.Mode.String()),
		attribute.Int("sets", len(sets)),
	)
	defer func() { end(err) }()

	start := time.Now()
	res, err = s.currentRanker().MergeAndRank(ctx, sets, opts)
	if err != nil {
		return ranking.Result{}, err
	}
	metrics.RecordMergeSources(len(sets))
	s.observe(ctx, "rank_merge", opts, len(res.Candidates), res, start)
	return res, nil
}

// RankHits hydrates search hits from the recipe store and ranks them.
func (s *Service) RankHits(ctx context.Context, hits []types.Hit, q types.Query) (res ranking.Result, missing []string, err error) {
	if s.store == nil {
		return ranking.Result{}, nil, fmt.Errorf("%w: no recipe store configured", model.ErrStoreUnavailable)
	}
	opts, err := s.options(q)
	if err != nil {
		return ranking.Result{}, nil, err
	}
	ctx, end := tracing.StartSpan(ctx, "service.RankHits",
		attribute.String("mode", opts.Mode.String()),
		attribute.Int("hits", len(hits)),
	)
	defer func() { end(err) }()

	start := time.Now()
	candidates, missing, err := s.store.Hydrate(ctx, hits)
	if err != nil {
		return ranking.Result{}, nil, err
	}
	res, err = s.currentRanker().Rank(ctx, candidates, opts)
	if err != nil {
		return ranking.Result{}, nil, err
	}
	tracing.SetAttributes(ctx, attribute.Int("missing", len(missing)))
	s.observe(ctx, "rank_hits", opts, len(candidates), res, start)
	return res, missing, nil
}

// Trending orders candidates by recent activity. A zero now uses the service clock.
func (s *Service) Trending(ctx context.Context, candidates []model.Candidate, now time.Time, limit int) []model.RankedCandidate {
	_, end := tracing.StartSpan(ctx, "service.Trending", attribute.Int("candidates", len(candidates)))
	defer end(nil)

	if now.IsZero() {
		now = s.now()
	}
	s.requests.Add(1)
	metrics.RecordRankRequest("trending", "trending")
	return ranking.Trending(candidates, now, limit)
}

func (s *Service) observe(ctx context.Context, endpoint string, opts ranking.Options, n int, res ranking.Result, start time.Time) {
	s.requests.Add(1)
	s.scored.Add(int64(n))
	metrics.RecordRankRequest(endpoint, opts.Mode.String())
	metrics.RecordRankingLatency(endpoint, float64(time.Since(start).Microseconds())/1000)
	metrics.RecordCandidatesScored(n)
	if !opts.Preferences.IsEmpty() {
		metrics.RecordPersonalizedRequest()
	}
	for _, w := range res.Warnings {
		s.fallbacks.Add(1)
		metrics.RecordWeightFallback(fallbackKind(w))
		s.logger.Warn(ctx, "weight fallback applied",
			logger.String("endpoint", endpoint),
			logger.Error(w),
		)
	}
}

func fallbackKind(err error) string {
	switch {
	case errors.Is(err, ranking.ErrDegenerateSetWeights):
		return "result_sets"
	case errors.Is(err, scoring.ErrDegenerateWeights):
		return "scoring"
	default:
		return "other"
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":           s.started,
		"workerCount":       s.workerCount,
		"queueSize":         s.queueSize,
		"chunkSize":         s.chunkSize,
		"parallelThreshold": s.parallelThreshold,
		"defaultMode":       s.defaultMode.String(),
		"recencyHalfLife":   s.halfLifeDays,
		"storeConfigured":   s.store != nil,
		"requests":          s.requests.Load(),
		"candidatesScored":  s.scored.Load(),
		"weightFallbacks":   s.fallbacks.Load(),
	}
	if s.started {
		queueLen := s.queue.Len(context.Background())
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}
	return stats
}
