// Package ranking scores, personalizes and orders recipe candidates, and
// fuses candidate sets coming from several retrieval strategies.
//
// The package holds no state between calls. Parallel scoring is delegated to
// a Mapper; the final sort always runs on the calling goroutine.
package ranking

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/normalize"
	"github.com/okian/reciperank/internal/domain/personalize"
	"github.com/okian/reciperank/internal/domain/scoring"
)

// Options configure a single ranking call.
type Options struct {
	Mode             scoring.Mode
	Weights          *scoring.WeightOverrides // merged over balanced, wins over Mode
	Preferences      *model.UserPreferences
	IncludeBreakdown bool
	// RecencyHalfLifeDays <= 0 uses the 30 day default.
	RecencyHalfLifeDays float64
	// Now is the evaluation time for recency. Zero means time.Now.
	Now time.Time
}

// Result is the ordered output of a ranking call.
type Result struct {
	Candidates []model.RankedCandidate
	// Weights are the normalized weights actually applied.
	Weights scoring.Weights
	// Warnings are non-fatal configuration problems that were absorbed by a fallback.
	Warnings []error
}

// Ranker ranks candidate lists.
type Ranker struct {
	mapper Mapper
}

// New creates a Ranker. Without WithMapper scoring runs serially.
func New(opts ...Option) *Ranker {
	r := &Ranker{mapper: SerialMapper{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank scores every candidate, applies personalization and sorts the result
// highest first. The output has the same cardinality as the input. The only
// error is a mapper failure, typically a cancelled context.
func (r *Ranker) Rank(ctx context.Context, candidates []model.Candidate, opts Options) (Result, error) {
	weights, warn := scoring.ResolveWeights(opts.Mode, opts.Weights)
	res := Result{Weights: weights}
	if warn != nil {
		res.Warnings = append(res.Warnings, warn)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	scorer := scoring.NewWeightedScorer(scoring.WithNow(now), scoring.WithRecencyHalfLife(opts.RecencyHalfLifeDays))

	ranked := make([]model.RankedCandidate, len(candidates))
	err := r.mapper.Map(ctx, len(candidates), func(i int) {
		c := &candidates[i]
		s := scorer.Score(c, weights)
		ranked[i] = model.RankedCandidate{
			Candidate:    *c,
			RankingScore: personalize.Boost(s.Final, c, opts.Preferences),
		}
		if opts.IncludeBreakdown {
			comp := s.Components
			ranked[i].ScoreComponents = &comp
		}
	})
	if err != nil {
		return Result{}, fmt.Errorf("score candidates: %w", err)
	}

	sortRanked(ranked)
	res.Candidates = ranked
	return res, nil
}

// MergeAndRank fuses the result sets with Merge and ranks the merged list.
func (r *Ranker) MergeAndRank(ctx context.Context, sets []ResultSet, opts Options) (Result, error) {
	merged, warnings := Merge(sets)
	res, err := r.Rank(ctx, merged, opts)
	if err != nil {
		return Result{}, err
	}
	res.Warnings = append(warnings, res.Warnings...)
	return res, nil
}

// Rank ranks candidates serially. It cannot fail.
func Rank(candidates []model.Candidate, opts Options) Result {
	res, _ := New().Rank(context.Background(), candidates, opts)
	return res
}

// MergeAndRank merges and ranks serially. It cannot fail.
func MergeAndRank(sets []ResultSet, opts Options) Result {
	res, _ := New().MergeAndRank(context.Background(), sets, opts)
	return res
}

// sortRanked orders by score, then similarity, then ID, all stable so full
// ties keep input order.
func sortRanked(ranked []model.RankedCandidate) {
	slices.SortStableFunc(ranked, compareRanked)
}

func compareRanked(a, b model.RankedCandidate) int {
	if c := cmp.Compare(b.RankingScore, a.RankingScore); c != 0 {
		return c
	}
	if c := cmp.Compare(normalize.Similarity(b.Similarity), normalize.Similarity(a.Similarity)); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
