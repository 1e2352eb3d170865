// Package retry wraps outbound HTTP GETs with bounded retries and linear
// backoff. The wrapper does not interpret statuses beyond ok vs not-ok:
// transport errors and 5xx responses are retried, anything else is handed
// back to the caller for semantic handling.
package retry

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Config controls the retry behaviour of a Client.
type Config struct {
	// MaxAttempts is the total number of times the request is sent
	// (including the first attempt). Values <= 1 mean no retries.
	MaxAttempts int

	// BaseDelay is multiplied by the attempt number for linear backoff:
	// attempt 1 waits BaseDelay, attempt 2 waits 2*BaseDelay, and so on.
	// No delay follows the final failed attempt.
	BaseDelay time.Duration

	// Timeout bounds each individual attempt, independent of backoff, so a
	// hung attempt cannot block forever.
	Timeout time.Duration
}

// DefaultConfig returns the service-wide retry defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Timeout:     8 * time.Second,
	}
}

// StatusError reports a retryable upstream HTTP status (5xx).
type StatusError struct {
	StatusCode int
}

// Error returns a formatted error string with the status code.
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d", e.StatusCode)
}

// HTTPStatus returns the upstream status code.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// Client issues GET requests with retries. Safe for concurrent use.
type Client struct {
	http  *http.Client
	cfg   Config
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithSleep overrides the backoff sleeper, for deterministic retry tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// New creates a Client using the given transport. A nil transport falls back
// to http.DefaultTransport. The per-attempt timeout is enforced by the
// underlying http.Client so it covers the full exchange including body read.
func New(cfg Config, transport http.RoundTripper, opts ...Option) *Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	c := &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		cfg:   cfg,
		sleep: sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET against url, retrying transport errors and 5xx
// responses up to MaxAttempts total attempts. The last error is returned
// after the final failure. Responses with status < 500 are returned as-is.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			// Linear backoff before the retry, respecting cancellation.
			if err := c.sleep(ctx, time.Duration(attempt-1)*c.cfg.BaseDelay); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			lastErr = &StatusError{StatusCode: resp.StatusCode}
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}

// sleepCtx blocks for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
