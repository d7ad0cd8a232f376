package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// SolverRuns counts completed solver runs by algorithm
	SolverRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_runs_total", Help: "Completed solver runs by algorithm."},
		[]string{"algorithm"},
	)
	// SolverDuration records solver run wall time in seconds
	SolverDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "solver_run_duration_seconds", Help: "Solver run duration in seconds.", Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}},
		[]string{"algorithm"},
	)
	// SolverBestCost tracks the best tour cost of the most recent run
	SolverBestCost = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "solver_best_cost", Help: "Best tour cost of the most recent run."},
		[]string{"algorithm"},
	)
)

// ObserveSolverRun records one completed solver run.
func ObserveSolverRun(algorithm string, d time.Duration, bestCost float64) {
	SolverRuns.WithLabelValues(algorithm).Inc()
	SolverDuration.WithLabelValues(algorithm).Observe(d.Seconds())
	SolverBestCost.WithLabelValues(algorithm).Set(bestCost)
}

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(SolverRuns)
		Registry.MustRegister(SolverDuration)
		Registry.MustRegister(SolverBestCost)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
