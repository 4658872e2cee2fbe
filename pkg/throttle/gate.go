// Package throttle gates outbound requests so that no two calls sharing
// a Gate start less than a configured interval apart, regardless of how
// many callers invoke it concurrently.
package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for throttle operations.
var (
	throttleWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mynx_throttle_waits_total",
		Help: "Total number of calls admitted through the throttle gate",
	})

	throttleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mynx_throttle_wait_seconds",
		Help:    "Time callers spent waiting at the throttle gate",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10},
	})
)

// DefaultInterval is the minimum gap between call starts when none is
// configured.
const DefaultInterval = 2 * time.Second

// Gate is a process-wide throttle. All requests that must share one rate
// budget funnel through a single Gate; waiters are admitted in arrival
// order, so no caller is starved by later arrivals.
type Gate struct {
	limiter  *rate.Limiter
	interval time.Duration
	logger   zerolog.Logger
}

// New creates a gate enforcing the given minimum interval between call
// starts. A non-positive interval falls back to DefaultInterval.
func New(interval time.Duration, logger zerolog.Logger) *Gate {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Gate{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
		logger:   logger,
	}
}

// Interval returns the configured minimum gap between call starts.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Wait blocks until the caller may start its action. It returns early
// only when the context is cancelled; cancellation never interrupts an
// action that already started.
func (g *Gate) Wait(ctx context.Context) error {
	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle wait: %w", err)
	}

	waited := time.Since(start)
	throttleWaitsTotal.Inc()
	throttleWaitSeconds.Observe(waited.Seconds())

	if waited > g.interval/2 {
		g.logger.Debug().
			Dur("waited", waited).
			Msg("Call delayed by throttle")
	}

	return nil
}

// Do runs fn once the gate clears and returns fn's error unchanged.
// Timing is the only concern here; retries and caching live elsewhere.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.Wait(ctx); err != nil {
		return err
	}
	return fn()
}
