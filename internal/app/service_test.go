package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	service "github.com/okian/matchup/internal/app"
	"github.com/okian/matchup/internal/domain/activity"
	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// sequence returns an id generator yielding id-1, id-2, ...
func sequence() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%d", n.Add(1)) }
}

func newService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithWorkerCount(2),
		service.WithQueueSize(16),
		service.WithClock(func() time.Time { return epoch }),
		service.WithIDGenerator(sequence()),
		service.WithLogger(logger.NewNop()),
	}
	return service.New(append(base, opts...)...)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Activities(), ShouldHaveLength, 2)
			So(svc.RatingParams().InitialRating, ShouldEqual, model.DefaultRating)
		})

		Convey("And operations fail until it is started", func() {
			_, err := svc.Sessions(context.Background())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithJobTimeout(time.Second),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats(context.Background())
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 50_000)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newService()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)
			defer func() { _ = svc.Stop(ctx) }()

			Convey("Then it should be marked as started", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats(ctx)
				So(stats["started"], ShouldEqual, true)
				So(stats["sessions"], ShouldEqual, 0)
			})

			Convey("And starting twice is harmless", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When stopping a started service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			err := svc.Stop(ctx)

			Convey("Then it should be marked as stopped", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats(ctx)["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Sessions(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When creating a session without a name", func() {
			doc, err := svc.CreateSession(ctx, "", activity.Volleyball)

			Convey("Then the activity name is used", func() {
				So(err, ShouldBeNil)
				So(doc.Name, ShouldEqual, "Volleyball")
				So(doc.ActivityID, ShouldEqual, activity.Volleyball)
				So(doc.Players, ShouldBeEmpty)
			})

			Convey("And it shows up in the listing", func() {
				list, err := svc.Sessions(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 1)
				So(list[0].ID, ShouldEqual, doc.ID)
				So(list[0].PlayerCount, ShouldEqual, 0)
			})

			Convey("And it can be deleted", func() {
				So(svc.DeleteSession(ctx, doc.ID), ShouldBeNil)
				_, err := svc.Session(ctx, doc.ID)
				So(errors.Is(err, model.ErrSessionNotFound), ShouldBeTrue)
			})
		})

		Convey("When creating a session for an unknown activity", func() {
			_, err := svc.CreateSession(ctx, "Chess club", "chess")

			Convey("Then the activity is reported missing", func() {
				So(errors.Is(err, model.ErrActivityNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Players(t *testing.T) {
	Convey("Given a volleyball session", t, func() {
		svc := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()
		doc, err := svc.CreateSession(ctx, "Tuesday", activity.Volleyball)
		So(err, ShouldBeNil)

		Convey("When adding a player", func() {
			p, err := svc.AddPlayer(ctx, doc.ID, " Alice ", []string{"S", "OH"})

			Convey("Then every position starts at the initial rating", func() {
				So(err, ShouldBeNil)
				So(p.Name, ShouldEqual, "Alice")
				So(p.Ratings, ShouldResemble, map[string]float64{"S": 1500, "OH": 1500})
				So(p.Comparisons["S"], ShouldEqual, 0)
			})

			Convey("And the same name in another case is rejected", func() {
				_, err := svc.AddPlayer(ctx, doc.ID, "ALICE", []string{"L"})
				So(errors.Is(err, model.ErrDuplicatePlayer), ShouldBeTrue)
			})

			Convey("And the player can be found by name", func() {
				got, err := svc.Player(ctx, doc.ID, "alice")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, p.ID)
			})

			Convey("And renaming onto another player's name is rejected", func() {
				_, err := svc.AddPlayer(ctx, doc.ID, "Bob", []string{"L"})
				So(err, ShouldBeNil)
				name := "bob"
				_, err = svc.UpdatePlayer(ctx, doc.ID, p.ID, service.PlayerPatch{Name: &name})
				So(errors.Is(err, model.ErrDuplicatePlayer), ShouldBeTrue)
			})

			Convey("And changing positions keeps the surviving track", func() {
				_, err := svc.AddPlayer(ctx, doc.ID, "Bob", []string{"S"})
				So(err, ShouldBeNil)
				_, err = svc.RecordComparison(ctx, doc.ID, service.ComparisonInput{Player1: "Alice", Player2: "Bob", Winner: strPtr("Alice"), Position: "S"})
				So(err, ShouldBeNil)

				up, err := svc.UpdatePlayer(ctx, doc.ID, "Alice", service.PlayerPatch{Positions: []string{"S", "MB"}})
				So(err, ShouldBeNil)
				So(up.Positions, ShouldResemble, []string{"S", "MB"})
				So(up.Ratings["S"], ShouldBeGreaterThan, 1500)
				So(up.Ratings["MB"], ShouldEqual, 1500)
				_, hasOH := up.Ratings["OH"]
				So(hasOH, ShouldBeFalse)
			})

			Convey("And removing it empties the roster", func() {
				So(svc.RemovePlayer(ctx, doc.ID, "alice"), ShouldBeNil)
				players, err := svc.Players(ctx, doc.ID)
				So(err, ShouldBeNil)
				So(players, ShouldBeEmpty)
				So(errors.Is(svc.RemovePlayer(ctx, doc.ID, "alice"), model.ErrPlayerNotFound), ShouldBeTrue)
			})
		})

		Convey("When adding a player at a position the activity lacks", func() {
			_, err := svc.AddPlayer(ctx, doc.ID, "Carol", []string{"MID"})

			Convey("Then the position is rejected", func() {
				So(errors.Is(err, model.ErrInvalidPosition), ShouldBeTrue)
			})
		})

		Convey("When adding a player without positions or name", func() {
			_, errPos := svc.AddPlayer(ctx, doc.ID, "Carol", nil)
			_, errName := svc.AddPlayer(ctx, doc.ID, "  ", []string{"S"})

			Convey("Then both are invalid input", func() {
				So(errors.Is(errPos, model.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(errName, model.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When adding to a missing session", func() {
			_, err := svc.AddPlayer(ctx, "nope", "Carol", []string{"S"})

			Convey("Then the session is reported missing", func() {
				So(errors.Is(err, model.ErrSessionNotFound), ShouldBeTrue)
			})
		})
	})
}

func strPtr(s string) *string { return &s }
