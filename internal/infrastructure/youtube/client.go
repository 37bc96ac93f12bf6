// Package youtube implements the transcript and metadata sources on top of
// YouTube's public web endpoints.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/hszk-dev/ytproxy/internal/domain/repository"
	"github.com/hszk-dev/ytproxy/internal/infrastructure/metrics"
)

const (
	defaultBaseURL   = "https://www.youtube.com"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// maxBodySize bounds every upstream response read into memory.
	maxBodySize = 8 << 20
)

// Config holds configuration for the YouTube client.
type Config struct {
	// BaseURL is the scheme and host used for watch pages, the player API
	// and oEmbed. Tests point it at an httptest server.
	BaseURL string
	// Timeout bounds one FetchTranscript or FetchMetadata call, rate limiter wait included.
	Timeout time.Duration
	// RateLimit is the sustained number of upstream operations per second. Zero disables limiting.
	RateLimit float64
	// Burst is the limiter bucket size.
	Burst     int
	UserAgent string
	Proxy     ProxyConfig
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   defaultBaseURL,
		Timeout:   15 * time.Second,
		Burst:     1,
		UserAgent: defaultUserAgent,
	}
}

// Client fetches transcripts and metadata from YouTube.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	timeout    time.Duration
	userAgent  string
	logger     *slog.Logger
}

// Compile-time verification that Client implements the upstream sources.
var (
	_ repository.TranscriptSource = (*Client)(nil)
	_ repository.MetadataSource   = (*Client)(nil)
)

// NewClient creates a Client. It fails only on an unusable proxy configuration.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}

	proxy, err := cfg.Proxy.proxyFunc()
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxy

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		limiter:    rate.NewLimiter(limit, burst),
		baseURL:    cfg.BaseURL,
		timeout:    cfg.Timeout,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}, nil
}

// begin waits for a limiter token and applies the per-call timeout.
func (c *Client) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		cancel()
		return nil, nil, unavailable("rate limiter", err)
	}
	return ctx, cancel, nil
}

// do sends req and returns the body of a 2xx response. Any other outcome is
// reported as repository.ErrUpstreamUnavailable except where the caller
// handles the status itself via allow.
func (c *Client) do(req *http.Request, allow ...int) (int, []byte, error) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, unavailable(req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, unavailable(req.URL.Path, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, body, nil
	}
	for _, code := range allow {
		if resp.StatusCode == code {
			return resp.StatusCode, body, nil
		}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return resp.StatusCode, nil, fmt.Errorf("%w: %s: too many requests", repository.ErrUpstreamUnavailable, req.URL.Path)
	}
	return resp.StatusCode, nil, fmt.Errorf("%w: %s: unexpected status %d", repository.ErrUpstreamUnavailable, req.URL.Path, resp.StatusCode)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", repository.ErrUpstreamUnavailable, op, err)
}

// observe records the outcome of one upstream operation.
func observe(operation string, start time.Time, err error) {
	metrics.UpstreamRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequestsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.UpstreamResultSuccess
	case errors.Is(err, repository.ErrTranscriptNotFound), errors.Is(err, repository.ErrVideoNotFound):
		return metrics.UpstreamResultNotFound
	case errors.Is(err, repository.ErrUpstreamUnavailable):
		return metrics.UpstreamResultUnavailable
	default:
		return metrics.UpstreamResultError
	}
}

// Compile-time verification that Client implements the upstream ports.
var (
	_ repository.TranscriptSource = (*Client)(nil)
	_ repository.MetadataSource   = (*Client)(nil)
)
