// Package scoring combines normalized recipe signals into a single weighted score.
package scoring

import (
	"time"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/normalize"
)

// Result is a final score and the components it was built from.
type Result struct {
	Final      float64
	Components model.ScoreComponents
}

// Score computes the weighted score of c using similarity in place of
// c.Similarity. Components are always computed. w is expected to be normalized.
func Score(c *model.Candidate, similarity float64, w Weights, halfLifeDays float64, now time.Time) Result {
	comp := model.ScoreComponents{
		Similarity: normalize.Similarity(similarity),
		Quality:    normalize.Quality(c.SystemRating, normalize.Completeness(c), c.ConfidenceScore),
		Engagement: normalize.Engagement(c.AvgUserRating, c.TotalUserRatings, c.FavoriteCount, c.ViewCount),
		Recency:    normalize.Recency(c.FreshnessTime(), now, halfLifeDays),
	}
	final := comp.Similarity*w.Similarity +
		comp.Quality*w.Quality +
		comp.Engagement*w.Engagement +
		comp.Recency*w.Recency
	return Result{Final: normalize.Clamp01(final), Components: comp}
}

// Scorer scores one candidate under a weight configuration.
type Scorer interface {
	Score(c *model.Candidate, w Weights) Result
}

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithRecencyHalfLife sets the recency half-life in days. Non-positive values are ignored.
func WithRecencyHalfLife(days float64) Option {
	return func(s *WeightedScorer) {
		if days > 0 {
			s.halfLifeDays = days
		}
	}
}

// WithClock sets the evaluation time source.
func WithClock(now func() time.Time) Option {
	return func(s *WeightedScorer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNow pins the evaluation time. A zero time is ignored.
func WithNow(t time.Time) Option {
	return func(s *WeightedScorer) {
		if !t.IsZero() {
			s.now = func() time.Time { return t }
		}
	}
}

// WeightedScorer implements Scorer with a fixed half-life and clock.
type WeightedScorer struct {
	halfLifeDays float64
	now          func() time.Time
}

// NewWeightedScorer creates a scorer with the default 30 day half-life and the wall clock.
func NewWeightedScorer(opts ...Option) *WeightedScorer {
	s := &WeightedScorer{
		halfLifeDays: normalize.DefaultHalfLifeDays,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score implements Scorer.
func (s *WeightedScorer) Score(c *model.Candidate, w Weights) Result {
	return Score(c, c.Similarity, w, s.halfLifeDays, s.now())
}

// HalfLifeDays returns the configured recency half-life.
func (s *WeightedScorer) HalfLifeDays() float64 {
	return s.halfLifeDays
}
