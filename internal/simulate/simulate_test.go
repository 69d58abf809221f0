package simulate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/require"

	"github.com/okian/matchup/internal/adapters/http/api"
	service "github.com/okian/matchup/internal/app"
	"github.com/okian/matchup/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(
		service.WithWorkerCount(2),
		service.WithQueueSize(8),
		service.WithLogger(logger.NewNop()),
	)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })

	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		srv := startServer(t)
		report := filepath.Join(t.TempDir(), "report.json")

		Convey("When a simulation runs against it", func() {
			stats, err := Run(context.Background(), &Config{
				BaseURL:     srv.URL,
				Activity:    "league",
				Players:     10,
				Comparisons: 60,
				Workers:     2,
				Timeout:     5 * time.Second,
				Seed:        7,
				Spread:      250,
				ReplayRate:  0.2,
				Teams:       2,
				OutputFile:  report,
			})

			Convey("Then every comparison is accounted for", func() {
				So(err, ShouldBeNil)
				So(stats.PlayersAdded, ShouldEqual, 10)
				So(stats.ComparisonsRecorded, ShouldBeGreaterThan, 0)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.ComparisonsRecorded+stats.Duplicates+stats.Conflicts, ShouldEqual, stats.ComparisonsSent)
				So(stats.Reasons, ShouldContainKey, "never_compared")
			})

			Convey("And both team paths produce two teams", func() {
				So(stats.SyncTeams, ShouldNotBeNil)
				So(stats.SyncTeams.Teams, ShouldHaveLength, 2)
				So(stats.AsyncTeams, ShouldNotBeNil)
				So(stats.AsyncTeams.TeamCount, ShouldEqual, 2)
			})

			Convey("And the report is written", func() {
				info, statErr := os.Stat(report)
				So(statErr, ShouldBeNil)
				So(info.Size(), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the activity is unknown", func() {
			_, err := Run(context.Background(), &Config{
				BaseURL:  srv.URL,
				Activity: "curling",
				Players:  4,
				Timeout:  time.Second,
			})

			Convey("Then the run fails before creating a session", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "curling")
			})
		})
	})
}

func TestSpearman(t *testing.T) {
	Convey("Given observed orders against hidden skills", t, func() {
		Convey("Then a perfect order scores 1", func() {
			So(spearman([]float64{9, 7, 5, 3}), ShouldAlmostEqual, 1.0)
		})

		Convey("Then a reversed order scores -1", func() {
			So(spearman([]float64{3, 5, 7, 9}), ShouldAlmostEqual, -1.0)
		})

		Convey("Then a single swap lands in between", func() {
			rho := spearman([]float64{9, 5, 7, 3})
			So(rho, ShouldBeBetween, 0.0, 1.0)
		})
	})
}

func TestGenerateRoster(t *testing.T) {
	Convey("Given an activity with three positions", t, func() {
		act := Activity{ID: "x", PositionOrder: []string{"A", "B", "C"}}
		players := generateRoster(act, 9, 100, newRand(3))

		Convey("Then every position has primary players with hidden skills", func() {
			counts := map[string]int{}
			for _, p := range players {
				counts[p.Positions[0]]++
				for _, pos := range p.Positions {
					So(p.Skill, ShouldContainKey, pos)
				}
			}
			So(counts, ShouldResemble, map[string]int{"A": 3, "B": 3, "C": 3})
		})

		Convey("Then the same seed yields the same roster", func() {
			again := generateRoster(act, 9, 100, newRand(3))
			So(again, ShouldResemble, players)
		})
	})
}
