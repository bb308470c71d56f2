package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// PlanAttempts counts planner attempts by outcome
	// (solved, unreachable, acquisition_failed, invalid_input, error).
	PlanAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "plan_attempts_total", Help: "Planner attempts by outcome."},
		[]string{"outcome"},
	)
	// MatrixBuildSeconds records distance matrix build durations.
	MatrixBuildSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "distance_matrix_build_seconds", Help: "Distance matrix build duration in seconds.", Buckets: prometheus.DefBuckets},
	)
	// SolveSeconds records partition search durations.
	SolveSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "partition_solve_seconds", Help: "Partition search duration in seconds.", Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}},
	)
	// NetworkFetches counts road network acquisitions by source (cache, remote, file) and status.
	NetworkFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "network_fetches_total", Help: "Road network acquisitions by source and status."},
		[]string{"source", "status"},
	)
	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations by method and path.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)
)

// RegisterDefault registers collectors to Registry once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(PlanAttempts)
		Registry.MustRegister(MatrixBuildSeconds)
		Registry.MustRegister(SolveSeconds)
		Registry.MustRegister(NetworkFetches)
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
