package rating_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

func TestExpectedScore(t *testing.T) {
	Convey("Given the default rating model", t, func() {
		m := rating.New()

		Convey("When both players share a rating", func() {
			Convey("Then the expected score is one half", func() {
				So(m.ExpectedScore(1500, 1500), ShouldAlmostEqual, 0.5, tolerance)
				So(m.ExpectedScore(0, 0), ShouldAlmostEqual, 0.5, tolerance)
			})
		})

		Convey("When the ratings differ", func() {
			pairs := [][2]float64{{1500, 1900}, {2400, 800}, {0, 3000}, {1234.5, 1234.6}, {-200, 4000}}

			Convey("Then the two expectations always sum to one", func() {
				for _, p := range pairs {
					So(m.ExpectedScore(p[0], p[1])+m.ExpectedScore(p[1], p[0]), ShouldAlmostEqual, 1, tolerance)
				}
			})

			Convey("And the stronger player is favoured", func() {
				So(m.ExpectedScore(1900, 1500), ShouldBeGreaterThan, 0.5)
				// 400 points is odds of 10:1 with the stock constants
				So(m.ExpectedScore(1900, 1500), ShouldAlmostEqual, 10.0/11.0, tolerance)
			})

			Convey("And the result stays strictly inside (0, 1)", func() {
				for _, p := range pairs {
					e := m.ExpectedScore(p[0], p[1])
					So(e, ShouldBeGreaterThan, 0)
					So(e, ShouldBeLessThan, 1)
				}
			})
		})
	})
}

func TestKFactor(t *testing.T) {
	Convey("Given the default rating model", t, func() {
		m := rating.New()

		Convey("Then novices get the highest learning rate", func() {
			So(m.KFactor(0, 1500), ShouldEqual, 40)
			So(m.KFactor(9, 2600), ShouldEqual, 40)
		})

		Convey("Then proven masters get the lowest learning rate", func() {
			So(m.KFactor(30, 2400), ShouldEqual, 16)
			So(m.KFactor(100, 2800), ShouldEqual, 16)
		})

		Convey("Then experts sit between masters and the base rate", func() {
			So(m.KFactor(20, 2000), ShouldEqual, 24)
			So(m.KFactor(25, 2500), ShouldEqual, 24)
		})

		Convey("Then everyone else gets the base rate", func() {
			So(m.KFactor(10, 1500), ShouldEqual, 32)
			So(m.KFactor(15, 2500), ShouldEqual, 32)
		})

		Convey("When custom tiers are configured", func() {
			custom := rating.New(rating.WithKFactors(20, 60, 12, 8))

			Convey("Then they replace the defaults", func() {
				So(custom.KFactor(0, 1500), ShouldEqual, 60)
				So(custom.KFactor(50, 2500), ShouldEqual, 8)
				So(custom.KFactor(20, 2100), ShouldEqual, 12)
				So(custom.KFactor(12, 1500), ShouldEqual, 20)
			})
		})
	})
}

func TestPoolAdjustedKFactor(t *testing.T) {
	Convey("Given the default rating model", t, func() {
		m := rating.New()

		Convey("When the pool is a singleton or empty", func() {
			Convey("Then the base K is returned unchanged", func() {
				So(m.PoolAdjustedKFactor(32, 1), ShouldEqual, 32)
				So(m.PoolAdjustedKFactor(33.3, 0), ShouldEqual, 33.3)
			})
		})

		Convey("When the pool matches the reference size", func() {
			So(m.PoolAdjustedKFactor(32, 10), ShouldEqual, 32)
		})

		Convey("When the pool is small", func() {
			Convey("Then K grows up to the max factor and is rounded", func() {
				So(m.PoolAdjustedKFactor(32, 5), ShouldEqual, 45) // 32*sqrt(2) = 45.25
				So(m.PoolAdjustedKFactor(32, 2), ShouldEqual, 48) // clamped at 1.5
			})
		})

		Convey("When the pool is large", func() {
			Convey("Then K shrinks down to the min factor", func() {
				So(m.PoolAdjustedKFactor(32, 40), ShouldEqual, 16)
				So(m.PoolAdjustedKFactor(32, 1000), ShouldEqual, 16)
			})
		})

		Convey("When the pool keeps growing past the reference", func() {
			Convey("Then K never increases and stays within the clamp bounds", func() {
				prev := math.Inf(1)
				for pool := 10; pool <= 200; pool++ {
					k := m.PoolAdjustedKFactor(40, pool)
					So(k, ShouldBeLessThanOrEqualTo, prev)
					So(k, ShouldBeGreaterThanOrEqualTo, 40*0.5)
					So(k, ShouldBeLessThanOrEqualTo, 40*1.5)
					prev = k
				}
			})
		})

		Convey("When a tie lands exactly on .5", func() {
			odd := rating.New(rating.WithPoolAdjustment(4, 0.5, 1.5))

			Convey("Then it rounds half up", func() {
				// 5 * sqrt(4/16) = 2.5
				So(odd.PoolAdjustedKFactor(5, 16), ShouldEqual, 3)
			})
		})
	})
}

func TestOutcome(t *testing.T) {
	Convey("Given the default rating model", t, func() {
		m := rating.New()

		Convey("When equally rated players meet", func() {
			ch := m.Outcome(rating.Side{Rating: 1500}, rating.Side{Rating: 1500}, 0)

			Convey("Then the winner gains what the loser loses", func() {
				So(ch.First.NewRating, ShouldBeGreaterThan, 1500)
				So(ch.Second.NewRating, ShouldBeLessThan, 1500)
				So(ch.First.Change, ShouldAlmostEqual, -ch.Second.Change, tolerance)
				So(ch.First.Change, ShouldAlmostEqual, 20, tolerance)
				So(ch.First.KFactor, ShouldEqual, 40)
				So(ch.First.Expected, ShouldAlmostEqual, 0.5, tolerance)
			})
		})

		Convey("When a pool size is given", func() {
			ch := m.Outcome(rating.Side{Rating: 1500}, rating.Side{Rating: 1500}, 40)

			Convey("Then both sides use the dampened K", func() {
				So(ch.First.KFactor, ShouldEqual, 20)
				So(ch.Second.KFactor, ShouldEqual, 20)
				So(ch.First.Change, ShouldAlmostEqual, 10, tolerance)
				So(ch.Second.Change, ShouldAlmostEqual, -10, tolerance)
			})
		})

		Convey("When the favourite wins", func() {
			ch := m.Outcome(rating.Side{Rating: 1900, Comparisons: 12}, rating.Side{Rating: 1500, Comparisons: 12}, 0)

			Convey("Then the change is small", func() {
				So(ch.First.Change, ShouldBeGreaterThan, 0)
				So(ch.First.Change, ShouldBeLessThan, 5)
				So(ch.First.NewRating, ShouldAlmostEqual, ch.First.OldRating+ch.First.Change, tolerance)
			})
		})

		Convey("When the underdog wins", func() {
			ch := m.Outcome(rating.Side{Rating: 1500, Comparisons: 12}, rating.Side{Rating: 1900, Comparisons: 12}, 0)

			Convey("Then the change is large", func() {
				So(ch.First.Change, ShouldBeGreaterThan, 25)
			})
		})

		Convey("When ratings leave the nominal range and clamping is off", func() {
			ch := m.Outcome(rating.Side{Rating: 10}, rating.Side{Rating: 5}, 0)

			Convey("Then ratings may go negative", func() {
				So(ch.Second.NewRating, ShouldBeLessThan, 0)
			})
		})

		Convey("When clamping is enabled", func() {
			clamped := rating.New(rating.WithClamp(true))
			ch := clamped.Outcome(rating.Side{Rating: 10}, rating.Side{Rating: 5}, 0)

			Convey("Then ratings stay inside the bounds and the delta matches", func() {
				So(ch.Second.NewRating, ShouldEqual, 0)
				So(ch.Second.Change, ShouldEqual, -5)
			})
		})
	})
}

func TestDraw(t *testing.T) {
	Convey("Given the default rating model", t, func() {
		m := rating.New()

		Convey("When equals draw", func() {
			ch := m.Draw(rating.Side{Rating: 1500}, rating.Side{Rating: 1500}, 0)

			Convey("Then nobody moves", func() {
				So(ch.First.Change, ShouldAlmostEqual, 0, tolerance)
				So(ch.Second.Change, ShouldAlmostEqual, 0, tolerance)
			})
		})

		Convey("When the favourite draws", func() {
			ch := m.Draw(rating.Side{Rating: 1700}, rating.Side{Rating: 1300}, 0)

			Convey("Then the favourite loses points and the underdog gains them", func() {
				So(ch.First.Change, ShouldBeLessThan, 0)
				So(ch.Second.Change, ShouldBeGreaterThan, 0)
				So(ch.First.Change, ShouldAlmostEqual, -ch.Second.Change, tolerance)
			})
		})
	})
}

func TestTeamStrength(t *testing.T) {
	Convey("Given players with position ratings", t, func() {
		m := rating.New()
		now := time.Now()
		a := model.NewPlayer("a", "Ann", []string{"S", "L"}, 1500, now)
		a.Ratings["S"] = 1800
		b := model.NewPlayer("b", "Bob", []string{"L"}, 1500, now)
		b.Ratings["L"] = 1200
		weights := map[string]float64{"S": 2}

		Convey("When computing one team's strength", func() {
			s := m.TeamStrength([]rating.Member{{Player: a, Position: "S"}, {Player: b, Position: "L"}}, weights)

			Convey("Then assigned positions are weighted", func() {
				So(s.PlayerCount, ShouldEqual, 2)
				So(s.TotalRating, ShouldEqual, 1800*2+1200)
				So(s.AverageRating, ShouldEqual, (1800*2+1200)/2.0)
			})
		})

		Convey("When a member has no assigned position", func() {
			s := m.TeamStrength([]rating.Member{{Player: a}}, weights)

			Convey("Then the first eligible position is used", func() {
				So(s.TotalRating, ShouldEqual, 3600)
			})
		})

		Convey("When a weight is negative", func() {
			mb := rating.Member{Player: a, Position: "S"}
			got := rating.WeightedRating(mb, map[string]float64{"S": -3}, 1500)

			Convey("Then the default weight applies", func() {
				So(got, ShouldEqual, 1800*model.DefaultPositionWeight)
				So(m.TeamStrength([]rating.Member{mb}, map[string]float64{"S": -3}).TotalRating, ShouldEqual, 1800)
			})
		})

		Convey("When a member lacks a rating at the position", func() {
			s := m.TeamStrength([]rating.Member{{Player: b, Position: "S"}}, nil)

			Convey("Then the initial rating fills in", func() {
				So(s.TotalRating, ShouldEqual, 1500)
			})
		})

		Convey("When evaluating balance between teams", func() {
			teams := [][]rating.Member{
				{{Player: a, Position: "L"}},
				{{Player: b, Position: "L"}},
			}
			bal := m.EvaluateBalance(teams, nil)

			Convey("Then the spread decides balance", func() {
				So(bal.MaxDifference, ShouldEqual, 300)
				So(bal.IsBalanced, ShouldBeTrue)
				So(bal.Teams, ShouldHaveLength, 2)
			})

			Convey("And a tighter threshold flips the verdict", func() {
				strict := rating.New(rating.WithTeamBalancedThreshold(300))
				So(strict.EvaluateBalance(teams, nil).IsBalanced, ShouldBeFalse)
			})
		})
	})
}
