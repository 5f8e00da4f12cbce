package ranking

import (
	"time"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/normalize"
)

// Trending orders candidates by recent activity: freshness with a seven day
// half-life, rating volume and average user rating. Similarity is ignored.
// limit <= 0 returns every candidate.
func Trending(candidates []model.Candidate, now time.Time, limit int) []model.RankedCandidate {
	if now.IsZero() {
		now = time.Now()
	}
	out := make([]model.RankedCandidate, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		out[i] = model.RankedCandidate{
			Candidate:    *c,
			RankingScore: normalize.Trending(c.FreshnessTime(), now, c.TotalUserRatings, c.AvgUserRating),
		}
	}
	sortRanked(out)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
