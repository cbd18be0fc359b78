// Package metrics exposes Prometheus instrumentation for the tracker.
//
// Metrics are served in text format at /metrics:
//
//	curl http://localhost:5000/metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Track store
	SamplesAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_samples_appended_total",
			Help: "Total number of location samples persisted",
		},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_store_errors_total",
			Help: "Total number of failed track store operations",
		},
		[]string{"operation"}, // "append", "list", "count"
	)

	TrajectoryDistance = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracker_trajectory_distance_meters",
			Help:    "Total distance of trajectories served by history queries",
			Buckets: prometheus.ExponentialBuckets(100, 10, 7), // 100 m .. 100 000 km
		},
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "path"},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)
