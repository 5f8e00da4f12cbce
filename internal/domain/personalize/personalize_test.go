package personalize_test

import (
	"testing"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/personalize"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

func TestBoost(t *testing.T) {
	Convey("Given a thai, easy, vegan-tagged recipe", t, func() {
		c := &model.Candidate{
			ID:         "r-1",
			Cuisine:    "Thai",
			Difficulty: model.DifficultyEasy,
			Tags:       []string{"Vegan-Friendly", "spicy"},
		}

		Convey("When no preferences are given", func() {
			Convey("Then the score is unchanged", func() {
				So(personalize.Boost(0.42, c, nil), ShouldEqual, 0.42)
				So(personalize.Boost(0.42, c, &model.UserPreferences{}), ShouldEqual, 0.42)
			})
		})

		Convey("When cuisine matches ignoring case", func() {
			prefs := &model.UserPreferences{FavoriteCuisines: []string{"thai"}}

			Convey("Then the score gains five percent", func() {
				So(personalize.Boost(0.5, c, prefs), ShouldAlmostEqual, 0.525, tolerance)
			})
		})

		Convey("When cuisine and difficulty both match", func() {
			prefs := &model.UserPreferences{
				FavoriteCuisines:    []string{"THAI"},
				PreferredDifficulty: []model.Difficulty{model.DifficultyEasy},
			}

			Convey("Then the factor is 1.1", func() {
				So(personalize.Factor(c, prefs), ShouldAlmostEqual, 1.1, tolerance)
				So(personalize.Boost(0.5, c, prefs), ShouldAlmostEqual, 0.55, tolerance)
			})

			Convey("Then the boosted score never exceeds 1", func() {
				So(personalize.Boost(0.99, c, prefs), ShouldEqual, 1)
			})
		})

		Convey("When a dietary restriction matches a tag as a substring", func() {
			prefs := &model.UserPreferences{DietaryRestrictions: []string{"vegan"}}

			Convey("Then no penalty applies", func() {
				So(personalize.Boost(0.5, c, prefs), ShouldEqual, 0.5)
			})
		})

		Convey("When no tag matches the restrictions", func() {
			prefs := &model.UserPreferences{DietaryRestrictions: []string{"gluten-free", "keto"}}

			Convey("Then the score loses ten percent", func() {
				So(personalize.Boost(0.5, c, prefs), ShouldAlmostEqual, 0.45, tolerance)
			})

			Convey("Then an untagged recipe is penalized too", func() {
				So(personalize.Factor(&model.Candidate{}, prefs), ShouldAlmostEqual, 0.9, tolerance)
			})
		})

		Convey("When everything matches and the restriction fails", func() {
			prefs := &model.UserPreferences{
				FavoriteCuisines:    []string{"thai"},
				PreferredDifficulty: []model.Difficulty{model.DifficultyEasy},
				DietaryRestrictions: []string{"halal"},
			}

			Convey("Then the adjustments net to 1", func() {
				So(personalize.Factor(c, prefs), ShouldAlmostEqual, 1.0, tolerance)
			})
		})

		Convey("When scores are boosted under any preferences", func() {
			prefsList := []*model.UserPreferences{
				{FavoriteCuisines: []string{"thai"}},
				{DietaryRestrictions: []string{"paleo"}},
				{PreferredDifficulty: []model.Difficulty{model.DifficultyHard}},
				{FavoriteCuisines: []string{"thai"}, PreferredDifficulty: []model.Difficulty{model.DifficultyEasy}},
			}

			Convey("Then the result stays within [0.9x, 1.1x]", func() {
				for _, p := range prefsList {
					for _, s := range []float64{0, 0.1, 0.5, 0.8} {
						got := personalize.Boost(s, c, p)
						So(got, ShouldBeGreaterThanOrEqualTo, 0.9*s-tolerance)
						So(got, ShouldBeLessThanOrEqualTo, 1.1*s+tolerance)
					}
				}
			})
		})
	})
}
