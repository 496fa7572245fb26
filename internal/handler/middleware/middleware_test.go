package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/handler"
	"github.com/pwrtux/moodle-magnet/internal/infrastructure/observability/adapters/stdout"
)

func successHandler(ctx context.Context, req handler.Request) (handler.Response, error) {
	return handler.Response{Success: true}, nil
}

func validRequest() handler.Request {
	return handler.Request{
		ID:      "test-123",
		Source:  "test",
		Type:    "sync",
		Payload: json.RawMessage(`{}`),
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	middleware := RecoveryMiddleware(stdout.NewLogger())

	t.Run("passes through normal requests", func(t *testing.T) {
		chain := middleware(successHandler)

		resp, err := chain(context.Background(), validRequest())

		assert.NoError(t, err)
		assert.True(t, resp.Success)
	})

	t.Run("recovers from panics", func(t *testing.T) {
		chain := middleware(func(ctx context.Context, req handler.Request) (handler.Response, error) {
			panic("boom")
		})

		resp, err := chain(context.Background(), validRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic recovered")
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
		assert.False(t, resp.Error.Retryable)
	})
}

func TestTimeoutMiddleware(t *testing.T) {
	middleware := TimeoutMiddleware(50 * time.Millisecond)

	t.Run("success within timeout", func(t *testing.T) {
		chain := middleware(successHandler)

		resp, err := chain(context.Background(), validRequest())

		assert.NoError(t, err)
		assert.True(t, resp.Success)
	})

	t.Run("timeout exceeded", func(t *testing.T) {
		chain := middleware(func(ctx context.Context, req handler.Request) (handler.Response, error) {
			select {
			case <-ctx.Done():
				return handler.Response{}, ctx.Err()
			case <-time.After(time.Second):
				return handler.Response{Success: true}, nil
			}
		})

		resp, err := chain(context.Background(), validRequest())

		require.Error(t, err)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "TIMEOUT", resp.Error.Code)
		assert.True(t, resp.Error.Retryable)
	})
}

func TestTracingMiddleware(t *testing.T) {
	middleware := TracingMiddleware()

	t.Run("generates trace id and request id", func(t *testing.T) {
		var seen handler.Request
		chain := middleware(func(ctx context.Context, req handler.Request) (handler.Response, error) {
			seen = req
			return handler.Response{Success: true}, nil
		})

		_, err := chain(context.Background(), handler.Request{Type: "sync", Payload: json.RawMessage(`{}`)})

		require.NoError(t, err)
		assert.NotEmpty(t, seen.Metadata["trace_id"])
		assert.Equal(t, seen.Metadata["trace_id"], seen.ID)
	})

	t.Run("preserves incoming trace id", func(t *testing.T) {
		var seen handler.Request
		chain := middleware(func(ctx context.Context, req handler.Request) (handler.Response, error) {
			seen = req
			return handler.Response{Success: true}, nil
		})

		req := validRequest()
		req.Metadata = map[string]string{"trace_id": "upstream-trace"}
		_, err := chain(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "upstream-trace", seen.Metadata["trace_id"])
		assert.Equal(t, "test-123", seen.ID)
	})
}

func TestValidationMiddleware(t *testing.T) {
	middleware := ValidationMiddleware()

	tests := []struct {
		name        string
		request     handler.Request
		expectError string
	}{
		{
			name:        "missing type rejected",
			request:     handler.Request{Payload: json.RawMessage(`{}`)},
			expectError: "Request type is required",
		},
		{
			name:        "missing payload rejected",
			request:     handler.Request{Type: "sync"},
			expectError: "Request payload is required",
		},
		{
			name:        "invalid json rejected",
			request:     handler.Request{Type: "sync", Payload: json.RawMessage(`{broken`)},
			expectError: "Invalid JSON payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := middleware(successHandler)

			resp, err := chain(context.Background(), tt.request)

			assert.NoError(t, err)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
			assert.Equal(t, tt.expectError, resp.Error.Message)
		})
	}

	t.Run("fills defaults on valid request", func(t *testing.T) {
		var seen handler.Request
		chain := middleware(func(ctx context.Context, req handler.Request) (handler.Response, error) {
			seen = req
			return handler.Response{Success: true}, nil
		})

		resp, err := chain(context.Background(), handler.Request{Type: "sync", Payload: json.RawMessage(`{}`)})

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, seen.ID)
		assert.False(t, seen.Timestamp.IsZero())
		assert.NotNil(t, seen.Metadata)
	})
}

func TestRetryMiddleware(t *testing.T) {
	cfg := &config.RetryConfig{
		MaxAttempts:       2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
	middleware := RetryMiddleware(cfg)

	t.Run("retries retryable failures until success", func(t *testing.T) {
		calls := 0
		chain := middleware(func(ctx context.Context, req handler.Request) (handler.Response, error) {
			calls++
			if calls < 3 {
				return handler.NewErrorResponse("TIMEOUT", "slow upstream", true), nil
			}
			return handler.Response{Success: true}, nil
		})

		resp, err := chain(context.Background(), validRequest())

		assert.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry non-retryable failures", func(t *testing.T) {
		calls := 0
		chain := middleware(func(ctx context.Context, req handler.Request) (handler.Response, error) {
			calls++
			return handler.NewErrorResponse("VALIDATION_ERROR", "bad input", false), nil
		})

		resp, err := chain(context.Background(), validRequest())

		assert.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, 1, calls)
	})

	t.Run("wraps error after exhausting retries", func(t *testing.T) {
		calls := 0
		cause := errors.New("connection refused")
		chain := middleware(func(ctx context.Context, req handler.Request) (handler.Response, error) {
			calls++
			return handler.Response{}, cause
		})

		_, err := chain(context.Background(), validRequest())

		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "max retries (2) exceeded")
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry cancelled contexts", func(t *testing.T) {
		calls := 0
		chain := middleware(func(ctx context.Context, req handler.Request) (handler.Response, error) {
			calls++
			return handler.Response{}, context.Canceled
		})

		_, err := chain(context.Background(), validRequest())

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestMetricsMiddleware(t *testing.T) {
	t.Run("records success", func(t *testing.T) {
		metrics := stdout.NewMetrics().(*stdout.Metrics)
		chain := MetricsMiddleware(metrics)(successHandler)

		_, err := chain(context.Background(), validRequest())

		require.NoError(t, err)
		tags := map[string]string{"type": "sync", "source": "test"}
		assert.Equal(t, float64(1), metrics.GetCounter("handler.requests", tags))
		assert.Equal(t, float64(1), metrics.GetCounter("handler.success", tags))
		assert.Len(t, metrics.GetHistogram("handler.duration", tags), 1)
	})

	t.Run("records failure with error code", func(t *testing.T) {
		metrics := stdout.NewMetrics().(*stdout.Metrics)
		chain := MetricsMiddleware(metrics)(func(ctx context.Context, req handler.Request) (handler.Response, error) {
			return handler.NewErrorResponse("TIMEOUT", "slow", true), nil
		})

		_, err := chain(context.Background(), validRequest())

		require.NoError(t, err)
		assert.Equal(t, float64(1), metrics.GetCounter("handler.errors",
			map[string]string{"type": "sync", "source": "test", "error_code": "TIMEOUT"}))
	})
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	middleware := LoggingMiddleware(stdout.NewLogger())

	cause := errors.New("downstream failure")
	chain := middleware(func(ctx context.Context, req handler.Request) (handler.Response, error) {
		return handler.Response{}, cause
	})

	_, err := chain(context.Background(), validRequest())
	assert.ErrorIs(t, err, cause)

	chain = middleware(successHandler)
	resp, err := chain(context.Background(), validRequest())
	assert.NoError(t, err)
	assert.True(t, resp.Success)
}
