package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the dedicated Prometheus registry for the planner
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts operator API requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OptimizationJobs counts finished optimization jobs by outcome
	OptimizationJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimization_jobs_total", Help: "Optimization jobs by outcome."},
		[]string{"outcome"},
	)
	// OptimizationPolls counts status polls by reported job status
	OptimizationPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimization_polls_total", Help: "Optimization status polls by job status."},
		[]string{"status"},
	)
	// OptimizationStops counts early-stop requests by result
	OptimizationStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimization_stop_requests_total", Help: "Early stop requests by result."},
		[]string{"result"},
	)
	// OptimizationDuration tracks wall time from submit to terminal status
	OptimizationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimization_job_duration_seconds", Help: "Optimization job wall time in seconds.", Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300}},
	)
	// GeocodeLookups counts reverse geocode lookups by source
	GeocodeLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "reverse_geocode_lookups_total", Help: "Reverse geocode lookups by source."},
		[]string{"source"},
	)
	// OperationDuration records timed operations by name and result
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "operation_duration_seconds", Help: "Timed operation duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"op", "result"},
	)
)

// RegisterDefault registers collectors to the planner registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OptimizationJobs)
		Registry.MustRegister(OptimizationPolls)
		Registry.MustRegister(OptimizationStops)
		Registry.MustRegister(OptimizationDuration)
		Registry.MustRegister(GeocodeLookups)
		Registry.MustRegister(OperationDuration)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once

// Handler exposes the planner registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
