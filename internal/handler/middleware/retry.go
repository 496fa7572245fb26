package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/handler"
)

func RetryMiddleware(cfg *config.RetryConfig) handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx context.Context, req handler.Request) (handler.Response, error) {
			var lastResp handler.Response
			var lastErr error

			for attempt := 0; attempt <= cfg.MaxAttempts; attempt++ {
				resp, err := next(ctx, req)

				if err == nil && resp.Success {
					return resp, nil
				}

				if !isRetryable(resp, err) {
					return resp, err
				}

				lastResp = resp
				lastErr = err

				// Don't sleep after the last attempt
				if attempt < cfg.MaxAttempts {
					backoff := calculateBackoff(attempt, cfg)

					select {
					case <-ctx.Done():
						return handler.Response{
							Success: false,
							Error: &handler.ErrorInfo{
								Code:      "CANCELLED",
								Message:   "Request cancelled during retry",
								Retryable: false,
							},
						}, ctx.Err()
					case <-time.After(backoff):
					}
				}
			}

			if lastErr != nil {
				return lastResp, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
			}

			if lastResp.Error != nil {
				lastResp.Error.Message = fmt.Sprintf("Failed after %d retries", cfg.MaxAttempts)
			}

			return lastResp, nil
		}
	}
}

func isRetryable(resp handler.Response, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if resp.Error != nil {
		if resp.Error.Retryable {
			return true
		}

		retryableCodes := map[string]bool{
			"TIMEOUT":             true,
			"NETWORK_ERROR":       true,
			"RATE_LIMITED":        true,
			"TEMPORARY_ERROR":     true,
			"SERVICE_UNAVAILABLE": true,
			"GATEWAY_TIMEOUT":     true,
		}

		return retryableCodes[resp.Error.Code]
	}

	return err != nil
}

func calculateBackoff(attempt int, cfg *config.RetryConfig) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffMultiplier, float64(attempt))

	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}

	return time.Duration(backoff)
}
