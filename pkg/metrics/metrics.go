// Package metrics provides the centralized Prometheus metrics registry
// for the mynx client. The metrics themselves are defined in their
// owning packages (client, cache, throttle) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Throttle Metrics (pkg/throttle):
//   - mynx_throttle_waits_total (Counter): Calls that waited at the throttle gate
//   - mynx_throttle_wait_seconds (Histogram): Time spent waiting at the gate
//
// Cache Metrics (pkg/cache):
//   - mynx_cache_hits_total{store} (Counter): Cache hits by backing store
//   - mynx_cache_misses_total (Counter): Cache misses
//   - mynx_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - mynx_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - mynx_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - mynx_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(mynx_cache_hits_total[5m])) /
//   (sum(rate(mynx_cache_hits_total[5m])) + sum(rate(mynx_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(mynx_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(mynx_request_duration_seconds_bucket[5m]))
//
//   # Time Lost to Throttling
//   rate(mynx_throttle_wait_seconds_sum[5m])
