package types_test

import (
	"testing"

	"github.com/okian/reciperank/internal/domain/model"
	types "github.com/okian/reciperank/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntries(t *testing.T) {
	Convey("Given ranked candidates", t, func() {
		ranked := []model.RankedCandidate{
			{Candidate: model.Candidate{ID: "a", Title: "Pad Thai"}, RankingScore: 0.9},
			{Candidate: model.Candidate{ID: "b"}, RankingScore: 0.4},
		}

		Convey("When converting to entries", func() {
			entries := types.Entries(ranked)

			Convey("Then ranks are 1-based and follow input order", func() {
				So(entries, ShouldResemble, []types.Entry{
					{Rank: 1, ID: "a", Title: "Pad Thai", Score: 0.9},
					{Rank: 2, ID: "b", Score: 0.4},
				})
			})
		})

		Convey("When converting nothing", func() {
			Convey("Then the result is empty but not nil", func() {
				entries := types.Entries(nil)
				So(entries, ShouldNotBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}

func TestModes(t *testing.T) {
	Convey("Given the mode catalogue", t, func() {
		modes := types.Modes()

		Convey("Then every mode is listed with weights summing to one", func() {
			So(len(modes), ShouldEqual, 6)
			So(modes[0].Name, ShouldEqual, "balanced")
			for _, m := range modes {
				So(m.Weights.Sum(), ShouldAlmostEqual, 1.0, 1e-9)
			}
		})
	})
}
