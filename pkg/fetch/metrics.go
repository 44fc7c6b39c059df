package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks outbound requests by final status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webquery_requests_total",
		Help: "Total outbound HTTP requests by final status",
	}, []string{"status"})

	// RetriesTotal tracks retry attempts by cause.
	RetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webquery_retries_total",
		Help: "Total number of retry attempts by cause",
	}, []string{"cause"}) // "status", "network"

	// RetryBackoffSeconds tracks backoff durations.
	RetryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "webquery_retry_backoff_seconds",
		Help:    "Backoff duration before retries",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	})

	// RetryExhaustedTotal tracks requests that spent the whole retry budget.
	RetryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webquery_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted",
	})
)
