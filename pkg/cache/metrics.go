package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by namespace.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webquery_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"namespace"},
	)

	// CacheMisses tracks cache misses by namespace.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webquery_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"namespace"},
	)

	// CacheErrors tracks absorbed cache operation failures.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webquery_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "read", "write", "clear"
	)
)
