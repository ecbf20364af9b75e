// Package fetch provides the HTTP client shared by every extractor:
// bounded retries, linear backoff, rate-limit awareness. The backoff
// schedule is delay×attempt for transport and server errors and
// delay×attempt×2 on HTTP 429; other client errors fail immediately.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ciciatech/projeto-bruno/internal/config"
)

// Client issues GET requests with the retry policy above. Exhausting
// the attempt budget returns a terminal error; callers must degrade
// to an empty result rather than abort the run.
type Client struct {
	http        *resty.Client
	maxAttempts int
	retryDelay  time.Duration
	pause       time.Duration
	sleep       func(time.Duration)
	logger      *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithSleep replaces the backoff sleep function; tests use this to
// record scheduled delays instead of waiting.
func WithSleep(fn func(time.Duration)) Option {
	return func(c *Client) { c.sleep = fn }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New builds a Client from the shared HTTP configuration.
func New(cfg config.HTTPConfig, opts ...Option) *Client {
	c := &Client{
		http:        resty.New().SetTimeout(cfg.Timeout),
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		pause:       cfg.RequestPause,
		sleep:       time.Sleep,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET with bounded retries and returns the response
// body. Transport errors and 5xx responses retry with delay×attempt;
// 429 retries with delay×attempt×2; any other non-2xx status is
// terminal without retry.
func (c *Client) Get(ctx context.Context, url string, params, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetHeaders(headers).
			Get(url)

		switch {
		case err != nil:
			lastErr = err
			c.logger.Warn("request error",
				slog.String("url", url),
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", c.maxAttempts),
				slog.String("error", err.Error()))
			c.sleep(c.retryDelay * time.Duration(attempt))

		case resp.StatusCode() == 429:
			lastErr = fmt.Errorf("rate limited (status 429)")
			wait := c.retryDelay * time.Duration(attempt) * 2
			c.logger.Warn("rate limited, backing off",
				slog.String("url", url),
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait))
			c.sleep(wait)

		case resp.StatusCode() >= 500:
			lastErr = fmt.Errorf("server error (status %d)", resp.StatusCode())
			c.logger.Warn("server error",
				slog.String("url", url),
				slog.Int("status", resp.StatusCode()),
				slog.Int("attempt", attempt))
			c.sleep(c.retryDelay * time.Duration(attempt))

		case resp.IsSuccess():
			return resp.Body(), nil

		default:
			// 4xx and other statuses are non-recoverable for this request.
			c.logger.Error("request rejected",
				slog.String("url", url),
				slog.Int("status", resp.StatusCode()))
			return nil, fmt.Errorf("request rejected with status %d", resp.StatusCode())
		}
	}

	c.logger.Error("request failed after all attempts",
		slog.String("url", url),
		slog.Int("max_attempts", c.maxAttempts))
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// Pause sleeps the configured inter-request interval. Extractors call
// it between successive requests to the same source.
func (c *Client) Pause() {
	c.sleep(c.pause)
}
