package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	recomputationsTotal   *prometheus.CounterVec
	recomputeSeconds      prometheus.Histogram
	gradeCacheLookupTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the gradebook.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_http_requests_total",
			Help: "Total number of gradebook API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gradebook_http_latency_seconds",
			Help:    "Latency distribution for gradebook API requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_http_errors_total",
			Help: "Total number of error responses returned by the gradebook API.",
		}, []string{"method", "route", "status"})

		recomputationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_recomputations_total",
			Help: "Overall grade recomputations by trigger and outcome.",
		}, []string{"trigger", "outcome"})

		recomputeSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gradebook_recompute_seconds",
			Help:    "Time spent recomputing one overall grade.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		})

		gradeCacheLookupTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradebook_overall_grade_cache_total",
			Help: "Overall grade list cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			recomputationsTotal,
			recomputeSeconds,
			gradeCacheLookupTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Recomputations exposes the recomputation counter.
func Recomputations() *prometheus.CounterVec {
	RegisterMetrics()
	return recomputationsTotal
}

// RecomputeLatency exposes the per-pair recomputation histogram.
func RecomputeLatency() prometheus.Histogram {
	RegisterMetrics()
	return recomputeSeconds
}

// GradeCacheLookups exposes the overall grade cache hit/miss counter.
func GradeCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return gradeCacheLookupTotal
}
