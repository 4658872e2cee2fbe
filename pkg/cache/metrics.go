package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for cache operations.
var (
	// CacheHits counts memoized results served without a fetch, by store
	// backend.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mynx_cache_hits_total",
		Help: "Total cache hits by store backend",
	}, []string{"store"})

	// CacheMisses counts calls that fell through to the fetch primitive.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mynx_cache_misses_total",
		Help: "Total cache misses",
	})

	// CacheErrors counts store operation failures by operation.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mynx_cache_errors_total",
		Help: "Total cache store errors by operation",
	}, []string{"operation"})
)
