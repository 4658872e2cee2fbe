// Package client provides the core Reddit HTTP client with request
// throttling, response caching, and error handling.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/clumsyjedi/mynx/pkg/cache"
	"github.com/clumsyjedi/mynx/pkg/things"
	"github.com/clumsyjedi/mynx/pkg/throttle"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mynx_requests_total",
		Help: "Total requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mynx_request_duration_seconds",
		Help:    "Request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mynx_errors_total",
		Help: "Total fetch errors by class",
	}, []string{"class"})
)

// DefaultBaseURL is the public Reddit endpoint.
const DefaultBaseURL = "https://www.reddit.com"

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API. Defaults to DefaultBaseURL.
	BaseURL string

	// User-Agent header (REQUIRED; Reddit throttles default agents hard)
	// Format: "AppName/Version (contact)"
	UserAgent string

	// ThrottleInterval is the minimum gap between outbound call starts,
	// shared by every caller of this client.
	ThrottleInterval time.Duration

	// Caching
	CacheTTL     time.Duration // Entry lifetime for memoized GETs
	CacheEnabled bool          // Install the cache wrapper at startup

	// Redis optionally backs the cache with a shared store. When nil the
	// cache is in-process and nothing survives the run.
	Redis *redis.Client

	// HTTPClient overrides the default transport (for testing).
	HTTPClient *http.Client

	// Logger overrides the global component logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		UserAgent:        userAgent,
		ThrottleInterval: throttle.DefaultInterval,
		CacheTTL:         cache.DefaultTTL,
		CacheEnabled:     true,
	}
}

// Client is the main Reddit client. All of its network calls funnel
// through one throttle gate, so concurrent streams built on a shared
// client respect one rate budget together.
type Client struct {
	httpClient *http.Client
	gate       *throttle.Gate
	decoder    *things.Decoder
	store      cache.Store
	config     Config
	logger     zerolog.Logger

	mu   sync.Mutex
	memo *cache.Cache // nil while caching is disabled
	cred *Credential
}

// New creates a new Reddit client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ThrottleInterval <= 0 {
		cfg.ThrottleInterval = throttle.DefaultInterval
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}

	logger := log.With().Str("component", "reddit-client").Logger()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	var store cache.Store
	if cfg.Redis != nil {
		store = cache.NewRedisStore(cfg.Redis)
	} else {
		store = cache.NewMemoryStore()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	c := &Client{
		httpClient: httpClient,
		gate:       throttle.New(cfg.ThrottleInterval, logger),
		decoder:    things.NewDecoder(cfg.BaseURL, logger),
		store:      store,
		config:     cfg,
		logger:     logger,
	}

	if cfg.CacheEnabled {
		c.memo = cache.New(store, cfg.CacheTTL, logger)
	}

	return c, nil
}

// EnableCache installs the memoization wrapper in front of the fetch
// primitive. Enabling is idempotent and keeps previously stored entries.
func (c *Client) EnableCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.memo == nil {
		c.memo = cache.New(c.store, c.config.CacheTTL, c.logger)
		c.logger.Info().Dur("ttl", c.config.CacheTTL).Msg("Cache enabled")
	}
}

// DisableCache restores direct calls to the fetch primitive.
func (c *Client) DisableCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.memo != nil {
		c.memo = nil
		c.logger.Info().Msg("Cache disabled")
	}
}

// CacheEnabled reports whether the memoization wrapper is installed.
func (c *Client) CacheEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memo != nil
}

func (c *Client) currentCache() *cache.Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memo
}

// Fetch performs a throttled (and, for GETs with caching enabled,
// memoized) request and returns the response body. Failures are not
// retried here: one failed fetch fails the page it was fetching, and
// callers may layer their own retry policy on top.
func (c *Client) Fetch(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	if method == http.MethodGet {
		if memo := c.currentCache(); memo != nil {
			key := cache.Key{Method: method, Path: path, Query: query}
			return memo.Fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
				return c.fetchDirect(ctx, method, path, query)
			})
		}
	}
	return c.fetchDirect(ctx, method, path, query)
}

// fetchDirect is the uncached fetch path: throttle gate, then transport.
func (c *Client) fetchDirect(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrThrottleWait, err)
	}

	endpoint := c.resolveURL(path)
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(path).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	c.setHeaders(req)

	c.logger.Debug().
		Str("endpoint", path).
		Str("method", method).
		Msg("Executing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(path, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", path).Msg("HTTP request failed")
		return nil, &APIError{Class: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{Class: ErrorClassNetwork, Message: "read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", path).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Request error")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    resp.Status,
		}
	}

	return body, nil
}

// Listing fetches a listing endpoint and decodes it into entities.
func (c *Client) Listing(ctx context.Context, path string, query url.Values) ([]things.Entity, error) {
	body, err := c.Fetch(ctx, http.MethodGet, path, query)
	if err != nil {
		return nil, err
	}

	entities, err := c.decoder.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode listing %s: %w", path, err)
	}
	return entities, nil
}

// resolveURL accepts either a path or a fully-formed URL; the streams
// layer is agnostic to how endpoint URLs were built.
func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.config.BaseURL + path
}

// setHeaders applies the user agent and, when logged in, the session
// credential headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.mu.Lock()
	cred := c.cred
	c.mu.Unlock()
	if cred != nil {
		req.Header.Set("Cookie", "reddit_session="+cred.Cookie)
		req.Header.Set("X-Modhash", cred.Modhash)
	}
}

// Decoder returns the entity decoder bound to this client's base URL.
func (c *Client) Decoder() *things.Decoder {
	return c.decoder
}

// Gate returns the throttle gate shared by this client's calls.
func (c *Client) Gate() *throttle.Gate {
	return c.gate
}
