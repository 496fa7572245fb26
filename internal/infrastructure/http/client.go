package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
)

// Client wraps net/http with a request timeout, default headers, and retry on
// transient failures. All outbound Moodle traffic goes through it.
type Client struct {
	client  *http.Client
	config  config.HTTPConfig
	logger  observability.Logger
	metrics observability.Metrics
}

// NewClient creates an HTTP client from configuration
func NewClient(cfg config.HTTPConfig, logger observability.Logger, metrics observability.Metrics) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		config:  cfg,
		logger:  logger.WithFields(map[string]interface{}{"component": "http_client"}),
		metrics: metrics.WithTags(map[string]string{"component": "http_client"}),
	}
}

// Do executes the request, retrying transport errors and 5xx responses with
// exponential backoff. Only bodyless requests are retried. The final response
// is returned regardless of status so callers can inspect it; a nil response
// with an error means all attempts failed at the transport level.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.metrics.IncrementCounter("http.client.requests", map[string]string{"method": req.Method})

	retries := c.config.MaxRetries
	if req.Body != nil {
		retries = 0
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if err := c.wait(req.Context(), attempt); err != nil {
				return nil, err
			}
			c.logger.Info("Retrying request",
				"url", req.URL.String(),
				"attempt", attempt+1)
			c.metrics.IncrementCounter("http.client.retries", nil)
		}

		resp, lastErr = c.client.Do(req.Clone(req.Context()))
		if lastErr != nil {
			continue
		}

		if resp.StatusCode >= 500 && attempt < retries {
			// Drain so the connection can be reused, then retry
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			continue
		}

		c.metrics.RecordHistogram("http.client.duration_ms",
			float64(time.Since(start).Milliseconds()),
			map[string]string{"method": req.Method})
		return resp, nil
	}

	c.metrics.IncrementCounter("http.client.errors", nil)
	return nil, fmt.Errorf("request failed after %d attempts: %w", retries+1, lastErr)
}

// Get issues a GET request with the given headers
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return c.Do(req)
}

// wait sleeps for the backoff of the given attempt, honoring cancellation
func (c *Client) wait(ctx context.Context, attempt int) error {
	backoff := time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
	if backoff > 10*time.Second {
		backoff = 10 * time.Second
	}

	select {
	case <-time.After(backoff):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
