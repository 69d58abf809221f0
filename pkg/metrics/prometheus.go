// Package metrics provides Prometheus metrics for the matchup service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the matchup service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Rating engine
	comparisonsRecorded  *prometheus.CounterVec
	comparisonsDuplicate prometheus.Counter
	ratingDelta          prometheus.Histogram
	suggestionsServed    *prometheus.CounterVec

	// Team optimizer
	optimizerRuns       *prometheus.CounterVec
	optimizerDuration   prometheus.Histogram
	optimizerIterations prometheus.Histogram
	optimizerSwaps      prometheus.Counter
	balanceSpread       prometheus.Histogram
	unassignedPlayers   prometheus.Counter

	// Job pipeline
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	jobsFinished       *prometheus.CounterVec
	workerActiveCount  prometheus.Gauge

	// Inventory
	sessions prometheus.Gauge
	players  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup, before any metric is recorded or the
// handler is mounted. Registry options are ignored.
func Init(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(customRegistry))...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchup",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.comparisonsRecorded = m.counterVec("comparisons_recorded_total",
		"Total number of comparisons recorded by outcome", "outcome")
	m.comparisonsDuplicate = m.counter("comparisons_duplicate_total",
		"Total number of comparison submissions rejected as duplicates")
	m.ratingDelta = m.histogram("rating_delta_points",
		"Absolute rating change applied per side of a comparison",
		[]float64{1, 2, 5, 10, 15, 20, 30, 45, 60})
	m.suggestionsServed = m.counterVec("suggestions_served_total",
		"Total number of next-comparison suggestions by reason", "reason")

	m.optimizerRuns = m.counterVec("optimizer_runs_total",
		"Total number of team optimizer runs by mode", "mode")
	m.optimizerDuration = m.histogram("optimizer_duration_milliseconds",
		"Team optimizer wall-clock duration in milliseconds", m.histogramBuckets)
	m.optimizerIterations = m.histogram("optimizer_iterations",
		"Local-search passes per optimizer run", []float64{0, 1, 2, 5, 10, 25, 50, 100})
	m.optimizerSwaps = m.counter("optimizer_swaps_total",
		"Total number of improving swaps applied")
	m.balanceSpread = m.histogram("balance_spread_points",
		"Difference between strongest and weakest team total",
		[]float64{0, 25, 50, 100, 200, 350, 500, 1000, 2000})
	m.unassignedPlayers = m.counter("unassigned_players_total",
		"Total number of players left out of generated teams")

	m.queueSize = m.gauge("queue_size", "Current number of queued team jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum team job queue capacity")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Total number of team jobs enqueued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of team jobs rejected by a full queue")
	m.jobsFinished = m.counterVec("jobs_finished_total", "Total number of team jobs finished by status", "status")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently running a job")

	m.sessions = m.gauge("sessions", "Number of stored sessions")
	m.players = m.gauge("players", "Number of players across all sessions")

	m.httpRequests = promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.customLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
}

// RecordComparison counts one recorded comparison and observes both rating deltas.
func RecordComparison(outcome string, deltas ...float64) {
	globalManager.comparisonsRecorded.WithLabelValues(outcome).Inc()
	for _, d := range deltas {
		if d < 0 {
			d = -d
		}
		globalManager.ratingDelta.Observe(d)
	}
}

// RecordDuplicateComparison increments the duplicate submissions counter.
func RecordDuplicateComparison() {
	globalManager.comparisonsDuplicate.Inc()
}

// RecordSuggestion counts a served suggestion.
func RecordSuggestion(reason string) {
	globalManager.suggestionsServed.WithLabelValues(reason).Inc()
}

// RecordOptimizerRun records the outcome of one team optimizer run.
func RecordOptimizerRun(mode string, durationMs float64, iterations, swaps int, spread float64, unassigned int) {
	globalManager.optimizerRuns.WithLabelValues(mode).Inc()
	globalManager.optimizerDuration.Observe(durationMs)
	globalManager.optimizerIterations.Observe(float64(iterations))
	globalManager.optimizerSwaps.Add(float64(swaps))
	globalManager.balanceSpread.Observe(spread)
	globalManager.unassignedPlayers.Add(float64(unassigned))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordJobFinished counts a job reaching a terminal status.
func RecordJobFinished(status string) {
	globalManager.jobsFinished.WithLabelValues(status).Inc()
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateInventory sets the session and player gauges.
func UpdateInventory(sessions, players int) {
	globalManager.sessions.Set(float64(sessions))
	globalManager.players.Set(float64(players))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the custom registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
