package normalize_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

func ptr[T any](v T) *T { return &v }

func TestRating(t *testing.T) {
	Convey("Given star ratings", t, func() {
		Convey("Then the default max maps 0 to 0 and 5 to 1", func() {
			So(normalize.Rating(0, 0), ShouldEqual, 0)
			So(normalize.Rating(5, 0), ShouldEqual, 1)
			So(normalize.Rating(2.5, normalize.DefaultMaxRating), ShouldAlmostEqual, 0.5, tolerance)
		})

		Convey("Then any real input stays within [0,1]", func() {
			for _, v := range []float64{-100, -1, 0.1, 4.99, 5, 7, 1e12, math.Inf(1), math.Inf(-1), math.NaN()} {
				got := normalize.Rating(v, 5)
				So(got, ShouldBeBetweenOrEqual, 0, 1)
			}
		})

		Convey("Then a custom max is honoured", func() {
			So(normalize.Rating(5, 10), ShouldAlmostEqual, 0.5, tolerance)
		})
	})
}

func TestCount(t *testing.T) {
	Convey("Given popularity counts", t, func() {
		Convey("Then zero and negative counts score 0", func() {
			So(normalize.Count(0), ShouldEqual, 0)
			So(normalize.Count(-5), ShouldEqual, 0)
			So(normalize.CountBounded(0, 100), ShouldEqual, 0)
		})

		Convey("Then the unbounded form saturates at 999", func() {
			So(normalize.Count(999), ShouldAlmostEqual, 1, tolerance)
			So(normalize.Count(1e9), ShouldEqual, 1)
			So(normalize.Count(9), ShouldAlmostEqual, 1.0/3.0, tolerance)
		})

		Convey("Then it is monotonically non-decreasing and bounded", func() {
			prev := -1.0
			for v := 0.0; v < 5000; v += 7 {
				got := normalize.Count(v)
				So(got, ShouldBeGreaterThanOrEqualTo, prev)
				So(got, ShouldBeBetweenOrEqual, 0, 1)
				prev = got
			}
		})

		Convey("Then the bounded form reaches 1 at max", func() {
			So(normalize.CountBounded(100, 100), ShouldAlmostEqual, 1, tolerance)
			So(normalize.CountBounded(500, 100), ShouldEqual, 1)
			So(normalize.CountBounded(9, 99), ShouldAlmostEqual, 0.5, tolerance)
		})

		Convey("Then a non-positive bound falls back to the unbounded form", func() {
			So(normalize.CountBounded(9, 0), ShouldEqual, normalize.Count(9))
		})
	})
}

func TestSimilarity(t *testing.T) {
	Convey("Given raw similarity values", t, func() {
		So(normalize.Similarity(-0.2), ShouldEqual, 0)
		So(normalize.Similarity(0.42), ShouldEqual, 0.42)
		So(normalize.Similarity(1.3), ShouldEqual, 1)
		So(normalize.Similarity(math.NaN()), ShouldEqual, 0)
	})
}

func TestRecency(t *testing.T) {
	Convey("Given an evaluation time", t, func() {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		Convey("Then now scores 1", func() {
			So(normalize.Recency(now, now, 30), ShouldEqual, 1)
		})

		Convey("Then one half-life ago scores 0.5", func() {
			So(normalize.Recency(now.AddDate(0, 0, -30), now, 30), ShouldAlmostEqual, 0.5, tolerance)
			So(normalize.Recency(now.AddDate(0, 0, -7), now, 7), ShouldAlmostEqual, 0.5, tolerance)
		})

		Convey("Then a future timestamp scores 1", func() {
			So(normalize.Recency(now.Add(48*time.Hour), now, 30), ShouldEqual, 1)
		})

		Convey("Then very old timestamps approach 0", func() {
			So(normalize.Recency(now.AddDate(-20, 0, 0), now, 30), ShouldBeLessThan, 1e-6)
			So(normalize.Recency(time.Time{}, now, 30), ShouldBeLessThan, 1e-6)
		})

		Convey("Then a non-positive half-life uses the default", func() {
			ts := now.AddDate(0, 0, -30)
			So(normalize.Recency(ts, now, 0), ShouldAlmostEqual, 0.5, tolerance)
			So(normalize.Recency(ts, now, -4), ShouldAlmostEqual, 0.5, tolerance)
		})
	})
}

func TestCompleteness(t *testing.T) {
	Convey("Given recipe records", t, func() {
		full := &model.Candidate{
			Description:     "Slow cooked ragu",
			Ingredients:     []string{"beef", "tomato"},
			Instructions:    []string{"brown", "simmer"},
			Images:          []string{"ragu.jpg"},
			Nutrition:       map[string]any{"kcal": 540},
			PrepTimeMinutes: ptr(20),
			Difficulty:      model.DifficultyMedium,
		}

		Convey("Then a fully populated record scores 1", func() {
			So(normalize.Completeness(full), ShouldAlmostEqual, 1, tolerance)
		})

		Convey("Then an empty record scores 0", func() {
			So(normalize.Completeness(&model.Candidate{}), ShouldEqual, 0)
			So(normalize.Completeness(nil), ShouldEqual, 0)
		})

		Convey("Then partial records sum the per-field weights", func() {
			c := &model.Candidate{Description: "x", Images: []string{"a"}, Cuisine: "thai"}
			So(normalize.Completeness(c), ShouldAlmostEqual, 0.20+0.15+0.05, tolerance)

			c = &model.Candidate{Ingredients: []string{"a"}, CookTimeMinutes: ptr(0)}
			So(normalize.Completeness(c), ShouldAlmostEqual, 0.20+0.10, tolerance)
		})

		Convey("Then blank descriptions and empty collections are absent", func() {
			c := &model.Candidate{Description: "   ", Ingredients: []string{}, Nutrition: map[string]any{}}
			So(normalize.Completeness(c), ShouldEqual, 0)
		})
	})
}

func TestQuality(t *testing.T) {
	Convey("Given quality inputs", t, func() {
		Convey("Then a perfect record scores 1", func() {
			So(normalize.Quality(ptr(5.0), 1, ptr(1.0)), ShouldAlmostEqual, 1, tolerance)
		})

		Convey("Then missing confidence counts as full confidence", func() {
			So(normalize.Quality(ptr(5.0), 1, nil), ShouldAlmostEqual, 1, tolerance)
			So(normalize.Quality(nil, 0, nil), ShouldAlmostEqual, 0.2, tolerance)
		})

		Convey("Then missing rating counts as 0", func() {
			So(normalize.Quality(nil, 1, ptr(0.0)), ShouldAlmostEqual, 0.3, tolerance)
		})

		Convey("Then the weights are 0.5, 0.3 and 0.2", func() {
			So(normalize.Quality(ptr(2.5), 0.5, ptr(0.5)), ShouldAlmostEqual, 0.25+0.15+0.1, tolerance)
		})
	})
}

func TestEngagement(t *testing.T) {
	Convey("Given engagement inputs", t, func() {
		Convey("Then nothing scores 0", func() {
			So(normalize.Engagement(nil, 0, 0, 0), ShouldEqual, 0)
		})

		Convey("Then saturated inputs score 1", func() {
			So(normalize.Engagement(ptr(5.0), 5000, 5000, 5000), ShouldAlmostEqual, 1, tolerance)
		})

		Convey("Then the weights are 0.4, 0.3, 0.2 and 0.1", func() {
			So(normalize.Engagement(ptr(5.0), 0, 0, 0), ShouldAlmostEqual, 0.4, tolerance)
			So(normalize.Engagement(nil, 999, 0, 0), ShouldAlmostEqual, 0.3, tolerance)
			So(normalize.Engagement(nil, 0, 999, 0), ShouldAlmostEqual, 0.2, tolerance)
			So(normalize.Engagement(nil, 0, 0, 999), ShouldAlmostEqual, 0.1, tolerance)
		})
	})
}

func TestTrending(t *testing.T) {
	Convey("Given trending inputs", t, func() {
		now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

		Convey("Then a fresh, heavily rated, top rated recipe scores 1", func() {
			So(normalize.Trending(now, now, 999, ptr(5.0)), ShouldAlmostEqual, 1, tolerance)
		})

		Convey("Then recency decays with a seven day half-life", func() {
			So(normalize.Trending(now.AddDate(0, 0, -7), now, 0, nil), ShouldAlmostEqual, 0.3, tolerance)
		})
	})
}
