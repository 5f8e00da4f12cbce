package ranking_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/ranking"
	"github.com/okian/reciperank/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func ids(rs []model.RankedCandidate) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func completeRecipe(id string, sim float64) model.Candidate {
	return model.Candidate{
		ID:              id,
		Similarity:      sim,
		SystemRating:    ptr(5.0),
		ConfidenceScore: ptr(1.0),
		Description:     "d",
		Ingredients:     []string{"a"},
		Instructions:    []string{"b"},
		Images:          []string{"c"},
		Nutrition:       map[string]any{"kcal": 300},
		PrepTimeMinutes: ptr(5),
		Cuisine:         "italian",
	}
}

type failingMapper struct{ err error }

func (m failingMapper) Map(context.Context, int, func(int)) error { return m.err }

func TestRank(t *testing.T) {
	Convey("Given a ranker", t, func() {
		r := ranking.New()
		ctx := context.Background()

		Convey("When ranking three candidates with equal ratings in balanced mode", func() {
			cands := []model.Candidate{
				{ID: "a", Similarity: 0.5, SystemRating: ptr(4.0)},
				{ID: "b", Similarity: 0.9, SystemRating: ptr(4.0)},
				{ID: "c", Similarity: 0.7, SystemRating: ptr(4.0)},
			}
			res, err := r.Rank(ctx, cands, ranking.Options{Now: now})

			Convey("Then they are ordered by similarity", func() {
				So(err, ShouldBeNil)
				So(ids(res.Candidates), ShouldResemble, []string{"b", "c", "a"})
				So(res.Warnings, ShouldBeEmpty)
				want := scoring.ModeBalanced.Weights()
				So(res.Weights.Similarity, ShouldAlmostEqual, want.Similarity, tolerance)
				So(res.Weights.Recency, ShouldAlmostEqual, want.Recency, tolerance)
			})

			Convey("Then the input is left untouched", func() {
				So(cands[0].ID, ShouldEqual, "a")
				So(cands[0].Similarity, ShouldEqual, 0.5)
			})

			Convey("Then scores are descending and in [0,1]", func() {
				for i, c := range res.Candidates {
					So(c.RankingScore, ShouldBeBetweenOrEqual, 0, 1)
					if i > 0 {
						So(c.RankingScore, ShouldBeLessThanOrEqualTo, res.Candidates[i-1].RankingScore)
					}
				}
			})

			Convey("Then components are omitted without a breakdown request", func() {
				for _, c := range res.Candidates {
					So(c.ScoreComponents, ShouldBeNil)
				}
			})
		})

		Convey("When a high quality, low similarity recipe meets a poor, similar one in quality mode", func() {
			x := completeRecipe("x", 0.1)
			y := model.Candidate{ID: "y", Similarity: 0.9, SystemRating: ptr(0.0), ConfidenceScore: ptr(0.0)}
			res := ranking.Rank([]model.Candidate{y, x}, ranking.Options{Mode: scoring.ModeQuality, Now: now})

			Convey("Then the quality recipe wins", func() {
				So(ids(res.Candidates), ShouldResemble, []string{"x", "y"})
			})
		})

		Convey("When a breakdown is requested", func() {
			res := ranking.Rank([]model.Candidate{completeRecipe("x", 0.4)}, ranking.Options{IncludeBreakdown: true, Now: now})

			Convey("Then components are attached and add up to the score", func() {
				c := res.Candidates[0]
				So(c.ScoreComponents, ShouldNotBeNil)
				w := res.Weights
				sum := c.ScoreComponents.Similarity*w.Similarity + c.ScoreComponents.Quality*w.Quality +
					c.ScoreComponents.Engagement*w.Engagement + c.ScoreComponents.Recency*w.Recency
				So(c.RankingScore, ShouldAlmostEqual, sum, tolerance)
			})
		})

		Convey("When every override weight is zero", func() {
			zero := 0.0
			res := ranking.Rank([]model.Candidate{{ID: "a", Similarity: 0.5}}, ranking.Options{
				Weights: &scoring.WeightOverrides{Similarity: &zero, Quality: &zero, Engagement: &zero, Recency: &zero},
				Now:     now,
			})

			Convey("Then equal weights apply and a warning is surfaced", func() {
				So(res.Weights, ShouldResemble, scoring.EqualWeights())
				So(res.Warnings, ShouldHaveLength, 1)
				So(errors.Is(res.Warnings[0], scoring.ErrDegenerateWeights), ShouldBeTrue)
				So(res.Candidates, ShouldHaveLength, 1)
			})
		})

		Convey("When scores tie", func() {
			cands := []model.Candidate{
				{ID: "m", Similarity: 0.5},
				{ID: "k", Similarity: 0.5},
				{ID: "z", Similarity: 0.5},
			}
			forward := ranking.Rank(cands, ranking.Options{Now: now})
			reversed := ranking.Rank([]model.Candidate{cands[2], cands[1], cands[0]}, ranking.Options{Now: now})

			Convey("Then ID breaks the tie regardless of input order", func() {
				So(ids(forward.Candidates), ShouldResemble, []string{"k", "m", "z"})
				So(ids(reversed.Candidates), ShouldResemble, []string{"k", "m", "z"})
			})
		})

		Convey("When preferences are given", func() {
			cands := []model.Candidate{
				{ID: "plain", Similarity: 0.5},
				{ID: "thai", Similarity: 0.5, Cuisine: "Thai"},
			}
			res := ranking.Rank(cands, ranking.Options{
				Preferences: &model.UserPreferences{FavoriteCuisines: []string{"thai"}},
				Now:         now,
			})

			Convey("Then matching recipes are nudged up", func() {
				So(ids(res.Candidates)[0], ShouldEqual, "thai")
			})
		})

		Convey("When the mapper fails", func() {
			boom := errors.New("boom")
			_, err := ranking.New(ranking.WithMapper(failingMapper{err: boom})).
				Rank(ctx, []model.Candidate{{ID: "a"}}, ranking.Options{})

			Convey("Then the error is returned", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := r.Rank(cctx, []model.Candidate{{ID: "a"}}, ranking.Options{})

			Convey("Then the serial mapper reports it", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When ranking nothing", func() {
			res := ranking.Rank(nil, ranking.Options{})

			Convey("Then the result is empty", func() {
				So(res.Candidates, ShouldBeEmpty)
			})
		})
	})
}

func TestMergeAndRank(t *testing.T) {
	Convey("Given two overlapping result sets", t, func() {
		semantic := ranking.ResultSet{Name: "semantic", Weight: 0.6, Candidates: []model.Candidate{
			{ID: "A", Similarity: 0.8, Title: "first A"},
			{ID: "B", Similarity: 0.7, Title: "first B"},
		}}
		keyword := ranking.ResultSet{Name: "keyword", Weight: 0.4, Candidates: []model.Candidate{
			{ID: "B", Similarity: 0.6, Title: "second B"},
			{ID: "C", Similarity: 0.5},
		}}

		Convey("When merging them", func() {
			merged, warnings := ranking.Merge([]ranking.ResultSet{semantic, keyword})

			Convey("Then similarities accumulate per identity", func() {
				So(warnings, ShouldBeEmpty)
				So(merged, ShouldHaveLength, 3)
				So(merged[0].ID, ShouldEqual, "A")
				So(merged[0].Similarity, ShouldAlmostEqual, 0.8*0.6, tolerance)
				So(merged[1].Similarity, ShouldAlmostEqual, 0.7*0.6+0.6*0.4, tolerance)
				So(merged[2].Similarity, ShouldAlmostEqual, 0.5*0.4, tolerance)
			})

			Convey("Then the first occurrence provides the record", func() {
				So(merged[1].Title, ShouldEqual, "first B")
			})

			Convey("Then the inputs are not modified", func() {
				So(semantic.Candidates[1].Similarity, ShouldEqual, 0.7)
			})
		})

		Convey("When merging and ranking them", func() {
			res, err := ranking.New().MergeAndRank(context.Background(), []ranking.ResultSet{semantic, keyword}, ranking.Options{Now: now})

			Convey("Then B leads three unique candidates", func() {
				So(err, ShouldBeNil)
				So(ids(res.Candidates), ShouldResemble, []string{"B", "A", "C"})
			})
		})

		Convey("When set weights do not sum to 1", func() {
			semantic.Weight, keyword.Weight = 3, 2
			merged, _ := ranking.Merge([]ranking.ResultSet{semantic, keyword})

			Convey("Then they are normalized first", func() {
				So(merged[1].Similarity, ShouldAlmostEqual, 0.7*0.6+0.6*0.4, tolerance)
			})
		})

		Convey("When every set weight is zero", func() {
			semantic.Weight, keyword.Weight = 0, -1
			res := ranking.MergeAndRank([]ranking.ResultSet{semantic, keyword}, ranking.Options{Now: now})

			Convey("Then sets are weighted equally with a warning", func() {
				So(res.Warnings, ShouldHaveLength, 1)
				So(errors.Is(res.Warnings[0], ranking.ErrDegenerateSetWeights), ShouldBeTrue)
				So(res.Candidates, ShouldHaveLength, 3)
			})
		})

		Convey("When candidates lack IDs", func() {
			merged, _ := ranking.Merge([]ranking.ResultSet{
				{Weight: 1, Candidates: []model.Candidate{{Similarity: 0.2}, {Similarity: 0.3}}},
				{Weight: 1, Candidates: []model.Candidate{{Similarity: 0.4}}},
			})

			Convey("Then they are kept apart", func() {
				So(merged, ShouldHaveLength, 3)
			})
		})
	})
}

func TestTrending(t *testing.T) {
	Convey("Given recipes with different activity", t, func() {
		cands := []model.Candidate{
			{ID: "stale", UpdatedAt: now.AddDate(-1, 0, 0), TotalUserRatings: 10, AvgUserRating: ptr(5.0)},
			{ID: "hot", UpdatedAt: now.Add(-time.Hour), TotalUserRatings: 500, AvgUserRating: ptr(4.5)},
			{ID: "new", CreatedAt: now.AddDate(0, 0, -1)},
		}

		Convey("When asking for the top two", func() {
			top := ranking.Trending(cands, now, 2)

			Convey("Then fresh active recipes lead", func() {
				So(ids(top), ShouldResemble, []string{"hot", "new"})
			})
		})

		Convey("When no limit is given", func() {
			So(ranking.Trending(cands, now, 0), ShouldHaveLength, 3)
		})
	})
}

func TestExplain(t *testing.T) {
	Convey("Given a ranked candidate with a breakdown", t, func() {
		c := completeRecipe("r-9", 0.6)
		c.Title = "Lasagna"
		c.Cuisine = "Italian"
		res := ranking.Rank([]model.Candidate{c}, ranking.Options{
			IncludeBreakdown: true,
			Preferences:      &model.UserPreferences{FavoriteCuisines: []string{"italian"}},
			Now:              now,
		})

		Convey("When explaining it", func() {
			out := ranking.Explain(res.Candidates[0], res.Weights)

			Convey("Then each component and the adjustment are listed", func() {
				So(out, ShouldContainSubstring, `"Lasagna" (r-9)`)
				So(out, ShouldContainSubstring, "similarity 0.6000 x 0.60 = 0.3600")
				So(out, ShouldContainSubstring, "base score:")
				So(out, ShouldContainSubstring, "personalization: +")
				So(out, ShouldContainSubstring, "final score:")
			})
		})

		Convey("When the breakdown is missing", func() {
			plain := res.Candidates[0]
			plain.ScoreComponents = nil
			out := ranking.Explain(plain, res.Weights)

			Convey("Then only the final score is shown", func() {
				So(strings.Count(out, "\n"), ShouldEqual, 2)
				So(out, ShouldContainSubstring, "no component breakdown")
			})
		})
	})
}
