package teams_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/internal/domain/rating"
	"github.com/okian/matchup/internal/domain/teams"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

var duo = model.ActivityConfig{
	ID:            "duo",
	Name:          "Duo",
	PositionOrder: []string{"S", "L"},
}

// flex returns a player eligible at S and L with the same rating at both.
func flex(id string, r float64) model.Player {
	p := model.NewPlayer(id, id, []string{"S", "L"}, model.DefaultRating, now)
	p.Ratings["S"], p.Ratings["L"] = r, r
	return p
}

func only(id, position string, r float64) model.Player {
	p := model.NewPlayer(id, id, []string{position}, model.DefaultRating, now)
	p.Ratings[position] = r
	return p
}

// dual returns a player eligible at S and L with separate ratings.
func dual(id string, s, l float64) model.Player {
	p := model.NewPlayer(id, id, []string{"S", "L"}, model.DefaultRating, now)
	p.Ratings["S"], p.Ratings["L"] = s, l
	return p
}

type seat struct {
	ID       string
	Position string
	Rating   float64
}

func seats(res teams.Result, team int) []seat {
	var out []seat
	for _, s := range res.Teams[team].Slots {
		out = append(out, seat{s.PlayerID, s.Position, s.Rating})
	}
	return out
}

func roster(res teams.Result, team int) []string {
	var ids []string
	for _, s := range res.Teams[team].Slots {
		if s.Filled() {
			ids = append(ids, s.PlayerID)
		}
	}
	return ids
}

func TestOptimize(t *testing.T) {
	Convey("Given an optimizer and a two-position activity", t, func() {
		opt := teams.New(rating.New())
		ctx := context.Background()
		comp := map[string]int{"S": 1, "L": 1}

		Convey("When greedy placement leaves a gap a swap can close", func() {
			players := []model.Player{flex("a", 2000), flex("b", 1000), flex("c", 1500), flex("d", 1500)}
			res, err := opt.Optimize(ctx, teams.Request{Composition: comp, TeamCount: 2, Players: players, Activity: duo})

			Convey("Then the local search reaches a perfect split", func() {
				So(err, ShouldBeNil)
				So(res.Quality.InitialDifference, ShouldEqual, 1000)
				So(res.Quality.MaxDifference, ShouldEqual, 0)
				So(res.Quality.Balance, ShouldEqual, 1)
				So(res.Quality.IsBalanced, ShouldBeTrue)
				So(res.Quality.SwapsApplied, ShouldEqual, 1)
				So(res.Quality.Iterations, ShouldEqual, 2)
				So(res.Teams[0].TotalRating, ShouldEqual, 3000)
				So(res.Teams[1].TotalRating, ShouldEqual, 3000)
				So(res.Unassigned, ShouldBeEmpty)
			})

			Convey("And every player sits in exactly one slot", func() {
				seen := map[string]int{}
				for i := range res.Teams {
					for _, id := range roster(res, i) {
						seen[id]++
					}
				}
				So(seen, ShouldResemble, map[string]int{"a": 1, "b": 1, "c": 1, "d": 1})
			})
		})

		Convey("When local search is disabled", func() {
			players := []model.Player{flex("a", 2000), flex("b", 1000), flex("c", 1500), flex("d", 1500)}
			res, err := teams.New(rating.New(), teams.WithMaxIterations(0)).
				Optimize(ctx, teams.Request{Composition: comp, TeamCount: 2, Players: players, Activity: duo})

			Convey("Then the greedy placement is returned as is", func() {
				So(err, ShouldBeNil)
				So(roster(res, 0), ShouldResemble, []string{"a", "d"})
				So(roster(res, 1), ShouldResemble, []string{"c", "b"})
				So(res.Quality.MaxDifference, ShouldEqual, 1000)
				So(res.Quality.Balance, ShouldEqual, 0)
				So(res.Quality.IsBalanced, ShouldBeFalse)
				So(res.Quality.Iterations, ShouldEqual, 0)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			players := []model.Player{flex("a", 2000), flex("b", 1000), flex("c", 1500), flex("d", 1500)}
			res, err := opt.Optimize(cctx, teams.Request{Composition: comp, TeamCount: 2, Players: players, Activity: duo})

			Convey("Then the greedy result still comes back", func() {
				So(err, ShouldBeNil)
				So(res.Quality.SwapsApplied, ShouldEqual, 0)
				So(res.Quality.MaxDifference, ShouldEqual, 1000)
			})
		})

		Convey("When players are locked to their positions", func() {
			players := []model.Player{only("s1", "S", 2000), only("s2", "S", 1000), only("l1", "L", 1500), only("l2", "L", 1500)}
			res, _ := opt.Optimize(ctx, teams.Request{Composition: comp, TeamCount: 2, Players: players, Activity: duo})

			Convey("Then no cross-position swap is made", func() {
				So(res.Quality.MaxDifference, ShouldEqual, 1000)
				So(res.Quality.SwapsApplied, ShouldEqual, 0)
				for _, tm := range res.Teams {
					for _, s := range tm.Slots {
						So(s.PlayerID[:1], ShouldEqual, map[string]string{"S": "s", "L": "l"}[s.Position])
					}
				}
			})
		})

		Convey("When only a swap across positions can close the gap", func() {
			// Greedy seats a+c against b+d. The S pair is tied and the L pair
			// only mirrors the spread, so c at L must trade with b at S.
			players := []model.Player{only("a", "S", 1800), dual("b", 1800, 1100), dual("c", 1700, 1800), only("d", "L", 1200)}
			res, err := opt.Optimize(ctx, teams.Request{Composition: comp, TeamCount: 2, Players: players, Activity: duo})

			Convey("Then the two players trade positions and teams", func() {
				So(err, ShouldBeNil)
				So(res.Quality.InitialDifference, ShouldEqual, 600)
				So(res.Quality.SwapsApplied, ShouldEqual, 1)
				So(res.Quality.Iterations, ShouldEqual, 2)
				So(seats(res, 0), ShouldResemble, []seat{{"a", "S", 1800}, {"b", "L", 1100}})
				So(seats(res, 1), ShouldResemble, []seat{{"c", "S", 1700}, {"d", "L", 1200}})
			})

			Convey("And the totals use each player's rating at the new position", func() {
				So(res.Teams[0].TotalRating, ShouldEqual, 2900)
				So(res.Teams[1].TotalRating, ShouldEqual, 2900)
				So(res.Quality.MaxDifference, ShouldEqual, 0)
				So(res.Quality.Balance, ShouldEqual, 1)
			})
		})

		Convey("When the cross-position swap runs under position weights", func() {
			weighted := duo
			weighted.PositionWeights = map[string]float64{"L": 2}
			players := []model.Player{only("a", "S", 1800), dual("b", 1800, 1100), dual("c", 1700, 1800), only("d", "L", 1200)}
			res, err := opt.Optimize(ctx, teams.Request{Composition: comp, TeamCount: 2, Players: players, Activity: weighted})

			Convey("Then slots keep raw ratings while totals are weighted", func() {
				So(err, ShouldBeNil)
				So(res.Quality.InitialDifference, ShouldEqual, 1200)
				So(res.Quality.SwapsApplied, ShouldEqual, 1)
				So(seats(res, 0), ShouldResemble, []seat{{"a", "S", 1800}, {"b", "L", 1100}})
				So(seats(res, 1), ShouldResemble, []seat{{"c", "S", 1700}, {"d", "L", 1200}})
				So(res.Teams[0].TotalRating, ShouldEqual, 1800+2*1100)
				So(res.Teams[1].TotalRating, ShouldEqual, 1700+2*1200)
				So(res.Quality.MaxDifference, ShouldEqual, 100)
			})
		})

		Convey("When the pool is smaller than the slots", func() {
			players := []model.Player{flex("a", 1600), flex("b", 1500), flex("c", 1400)}
			res, err := opt.Optimize(ctx, teams.Request{Composition: comp, TeamCount: 2, Players: players, Activity: duo})

			Convey("Then one slot stays open and nothing fails", func() {
				So(err, ShouldBeNil)
				So(res.Teams[0].OpenSlots+res.Teams[1].OpenSlots, ShouldEqual, 1)
				So(res.Unassigned, ShouldBeEmpty)
			})
		})

		Convey("When the pool is larger than the slots", func() {
			players := []model.Player{flex("a", 1600), flex("b", 1500), flex("c", 1400), flex("d", 1300), only("z", "Z", 2500)}
			res, _ := opt.Optimize(ctx, teams.Request{Composition: comp, TeamCount: 2, Players: players, Activity: duo})

			Convey("Then the surplus and the ineligible are unassigned", func() {
				So(res.Unassigned, ShouldHaveLength, 1)
				So(res.Unassigned[0].ID, ShouldEqual, "z")
			})
		})

		Convey("When position weights differ", func() {
			weighted := duo
			weighted.PositionWeights = map[string]float64{"S": 2}
			players := []model.Player{flex("a", 1500), flex("b", 1500)}
			res, _ := opt.Optimize(ctx, teams.Request{Composition: map[string]int{"S": 1}, TeamCount: 2, Players: players, Activity: weighted})

			Convey("Then totals carry the weight", func() {
				So(res.Teams[0].TotalRating, ShouldEqual, 3000)
				So(res.Teams[0].AverageRating, ShouldEqual, 3000)
			})
		})

		Convey("When a single team is requested", func() {
			players := []model.Player{flex("a", 1600), flex("b", 1500)}
			res, err := opt.Optimize(ctx, teams.Request{Composition: comp, TeamCount: 1, Players: players, Activity: duo})

			Convey("Then it is trivially balanced", func() {
				So(err, ShouldBeNil)
				So(res.Teams, ShouldHaveLength, 1)
				So(res.Quality.Balance, ShouldEqual, 1)
			})
		})

		Convey("When the request is malformed", func() {
			_, errCount := opt.Optimize(ctx, teams.Request{Composition: comp, TeamCount: 0, Activity: duo})
			_, errComp := opt.Optimize(ctx, teams.Request{Composition: map[string]int{}, TeamCount: 2, Activity: duo})

			Convey("Then invalid input is reported", func() {
				So(errors.Is(errCount, model.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(errComp, model.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When the same request runs twice", func() {
			players := []model.Player{flex("a", 1900), flex("b", 1100), flex("c", 1450), flex("d", 1550), flex("e", 1700), flex("f", 1300)}
			req := teams.Request{Composition: map[string]int{"S": 1, "L": 2}, TeamCount: 2, Players: players, Activity: duo}
			r1, _ := opt.Optimize(ctx, req)
			r2, _ := opt.Optimize(ctx, req)

			Convey("Then the output is identical", func() {
				So(r1, ShouldResemble, r2)
			})
		})
	})
}
