// mynx-watch tails a subreddit's new listing and prints each item as it
// arrives, pacing itself through the shared throttle gate.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/clumsyjedi/mynx/pkg/client"
	"github.com/clumsyjedi/mynx/pkg/logging"
	"github.com/clumsyjedi/mynx/pkg/stream"
	"github.com/clumsyjedi/mynx/pkg/things"
)

type watchOptions struct {
	subreddit   string
	baseURL     string
	userAgent   string
	interval    time.Duration
	cacheTTL    time.Duration
	noCache     bool
	redisAddr   string
	count       int
	logLevel    string
	pretty      bool
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "mynx-watch",
		Short: "Watch a subreddit's new listing as a live stream",
		Long: `mynx-watch polls a subreddit's new listing and prints every item
created after startup, oldest first. Polling is paced by the client's
throttle gate, so the watcher never exceeds one request per interval.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.subreddit, "subreddit", "r", "golang", "Subreddit to watch")
	flags.StringVar(&opts.baseURL, "base-url", "", "API base URL (default "+client.DefaultBaseURL+")")
	flags.StringVar(&opts.userAgent, "user-agent", "mynx-watch/1.0", "User-Agent header sent upstream")
	flags.DurationVar(&opts.interval, "interval", 0, "Minimum gap between requests (default 2s)")
	flags.DurationVar(&opts.cacheTTL, "cache-ttl", 0, "Cache entry lifetime (default 2m)")
	flags.BoolVar(&opts.noCache, "no-cache", false, "Disable response memoization")
	flags.StringVar(&opts.redisAddr, "redis", "", "Redis address for a shared cache (empty for in-process)")
	flags.IntVarP(&opts.count, "count", "n", 0, "Stop after this many items (0 for unbounded)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.BoolVar(&opts.pretty, "pretty", false, "Human-readable log output")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (empty to disable)")

	return cmd
}

func runWatch(ctx context.Context, opts *watchOptions) error {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(opts.logLevel),
		Pretty: opts.pretty,
		Output: os.Stderr,
	})

	cfg := client.DefaultConfig(opts.userAgent)
	if opts.baseURL != "" {
		cfg.BaseURL = opts.baseURL
	}
	if opts.interval > 0 {
		cfg.ThrottleInterval = opts.interval
	}
	if opts.cacheTTL > 0 {
		cfg.CacheTTL = opts.cacheTTL
	}
	cfg.CacheEnabled = !opts.noCache
	if opts.redisAddr != "" {
		cfg.Redis = redis.NewClient(&redis.Options{Addr: opts.redisAddr})
		if err := cfg.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", opts.redisAddr, err)
		}
	}

	c, err := client.New(cfg)
	if err != nil {
		return err
	}

	if opts.metricsAddr != "" {
		go serveMetrics(opts.metricsAddr)
		logger.Info().Str("addr", opts.metricsAddr).Msg("Serving metrics")
	}

	path := watchPath(opts.subreddit)
	logger.Info().
		Str("subreddit", opts.subreddit).
		Str("endpoint", path).
		Msg("Watching for new items")

	poller := stream.NewPoller(c, path, nil, time.Now(), logger)
	seen := 0
	for opts.count == 0 || seen < opts.count {
		entity, err := poller.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info().Int("items", seen).Msg("Watcher stopped")
				return nil
			}
			return fmt.Errorf("poll %s: %w", path, err)
		}
		printEntity(entity)
		seen++
	}

	logger.Info().Int("items", seen).Msg("Item budget reached")
	return nil
}

func watchPath(subreddit string) string {
	return fmt.Sprintf("/r/%s/new.json", subreddit)
}

func printEntity(entity things.Entity) {
	switch e := entity.(type) {
	case *things.Link:
		fmt.Printf("%s  %s  [%s] %s\n",
			e.CreatedAt.Format(time.RFC3339), e.Fullname(), e.Subreddit, e.Title)
	case *things.Comment:
		fmt.Printf("%s  %s  comment by %s (%d)\n",
			e.CreatedAt.Format(time.RFC3339), e.Fullname(), e.Author, e.Score)
	default:
		fmt.Printf("%s\n", entity.Fullname())
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
