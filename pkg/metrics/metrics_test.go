package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry and options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then every collector is registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.optimizerSwaps.Add(1)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "test_unit_"), ShouldBeTrue)
				}
			})
		})

		Convey("When two managers share a registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When comparisons are recorded", func() {
			before := testutil.ToFloat64(globalManager.comparisonsRecorded.WithLabelValues("draw"))
			RecordComparison("draw", 3.2, -3.2)

			Convey("Then the outcome counter moves", func() {
				So(testutil.ToFloat64(globalManager.comparisonsRecorded.WithLabelValues("draw")), ShouldEqual, before+1)
			})
		})

		Convey("When an optimizer run is recorded", func() {
			swaps := testutil.ToFloat64(globalManager.optimizerSwaps)
			unassigned := testutil.ToFloat64(globalManager.unassignedPlayers)
			RecordOptimizerRun("sync", 1.5, 2, 3, 120, 1)

			Convey("Then swaps and unassigned players accumulate", func() {
				So(testutil.ToFloat64(globalManager.optimizerSwaps), ShouldEqual, swaps+3)
				So(testutil.ToFloat64(globalManager.unassignedPlayers), ShouldEqual, unassigned+1)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateInventory(3, 17)
			UpdateQueueSize(4)
			UpdateQueueCapacity(10)
			UpdateWorkerActiveCount(2)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.sessions), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.players), ShouldEqual, 17)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 2)
			})
		})

		Convey("When the remaining recorders are called", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordDuplicateComparison()
					RecordSuggestion("never_compared")
					RecordQueueEnqueue()
					RecordQueueEnqueueError()
					RecordJobFinished("done")
					RecordHTTPRequest("/sessions", "POST", "201")
					RecordHTTPRequestDuration("/sessions", "POST", "201", 4)
					RecordErrorByComponent("app", "not_found")
				}, ShouldNotPanic)
			})
		})

		Convey("When the handler is scraped", func() {
			RecordSuggestion("close_rating")
			rec := httptest.NewRecorder()
			Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then the exposition contains engine metrics", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "matchup_engine_suggestions_served_total")
				So(GetRegistry(), ShouldNotBeNil)
			})
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given the global manager is rebuilt from options", t, func() {
		Init(
			WithNamespace("league"),
			WithSubsystem("ratings"),
			WithHistogramBuckets([]float64{5, 50, 500}),
			WithCustomLabels(map[string]string{"region": "eu"}),
		)
		defer Init()

		Convey("When an optimizer run is recorded and scraped", func() {
			RecordOptimizerRun("job", 42, 1, 0, 10, 0)
			rec := httptest.NewRecorder()
			Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			body := rec.Body.String()

			Convey("Then series carry the configured names, labels and buckets", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, `league_ratings_optimizer_runs_total{mode="job",region="eu"} 1`)
				So(body, ShouldContainSubstring, `league_ratings_optimizer_duration_milliseconds_bucket{region="eu",le="50"} 1`)
				So(body, ShouldNotContainSubstring, "matchup_engine_")
			})

			Convey("And the exposed registry is the rebuilt one", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "league_ratings_"), ShouldBeTrue)
				}
			})
		})
	})
}
