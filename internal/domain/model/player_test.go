package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/matchup/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWithPositions(t *testing.T) {
	Convey("Given a player whose history at a kept position is nil", t, func() {
		now := time.Unix(0, 0).UTC()
		p := model.Player{
			ID:           "p1",
			Name:         "Ann",
			Positions:    []string{"S"},
			Ratings:      map[string]float64{"S": 1620},
			Comparisons:  map[string]int{"S": 3},
			ComparedWith: map[string][]string{"S": nil},
		}

		Convey("When positions are replaced", func() {
			got := p.WithPositions([]string{"S", "L"}, 1500, now)

			Convey("Then the kept track survives with an empty history", func() {
				So(got.Ratings["S"], ShouldEqual, 1620)
				So(got.Comparisons["S"], ShouldEqual, 3)
				So(got.ComparedWith["S"], ShouldNotBeNil)
				So(got.ComparedWith["S"], ShouldBeEmpty)
				So(got.Validate(), ShouldBeNil)
			})

			Convey("And the new track starts fresh", func() {
				So(got.Ratings["L"], ShouldEqual, 1500)
				So(got.Comparisons["L"], ShouldEqual, 0)
				So(got.ComparedWith["L"], ShouldNotBeNil)
			})

			Convey("And history encodes as an empty list", func() {
				raw, err := json.Marshal(got.ComparedWith)
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, `{"L":[],"S":[]}`)
			})
		})
	})

	Convey("Given a player with history at a kept position", t, func() {
		now := time.Unix(0, 0).UTC()
		p := model.NewPlayer("p1", "Ann", []string{"S", "L"}, 1500, now)
		p = p.WithComparisonRecorded("S", 1530, "p2", now)

		Convey("When a position is dropped", func() {
			got := p.WithPositions([]string{"S"}, 1500, now)

			Convey("Then the kept history is untouched and the dropped track is gone", func() {
				So(got.ComparedWith["S"], ShouldResemble, []string{"p2"})
				So(got.Ratings, ShouldNotContainKey, "L")
				So(got.ComparedWith, ShouldNotContainKey, "L")
			})
		})
	})
}

func TestEligibleCount(t *testing.T) {
	Convey("Given players with overlapping positions", t, func() {
		now := time.Unix(0, 0).UTC()
		players := []model.Player{
			model.NewPlayer("a", "Ann", []string{"S", "L"}, 1500, now),
			model.NewPlayer("b", "Bob", []string{"L"}, 1500, now),
			model.NewPlayer("c", "Cid", []string{"OH"}, 1500, now),
		}

		Convey("Then only eligible players are counted", func() {
			So(model.EligibleCount(players, "L"), ShouldEqual, 2)
			So(model.EligibleCount(players, "S"), ShouldEqual, 1)
			So(model.EligibleCount(players, "MB"), ShouldEqual, 0)
			So(model.EligibleCount(nil, "L"), ShouldEqual, 0)
		})
	})
}

func TestPositionWeight(t *testing.T) {
	Convey("Given a weight table", t, func() {
		weights := map[string]float64{"S": 2, "L": 0, "OH": -1}

		Convey("Then explicit weights apply, zero included", func() {
			So(model.PositionWeight(weights, "S"), ShouldEqual, 2)
			So(model.PositionWeight(weights, "L"), ShouldEqual, 0)
		})

		Convey("Then missing and negative weights fall back to the default", func() {
			So(model.PositionWeight(weights, "MB"), ShouldEqual, model.DefaultPositionWeight)
			So(model.PositionWeight(weights, "OH"), ShouldEqual, model.DefaultPositionWeight)
			So(model.PositionWeight(nil, "S"), ShouldEqual, model.DefaultPositionWeight)
		})
	})
}
