package middleware

import (
	"context"
	"time"

	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
	"github.com/pwrtux/moodle-magnet/internal/handler"
)

func LoggingMiddleware(logger observability.Logger) handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx context.Context, req handler.Request) (handler.Response, error) {
			start := time.Now()

			logger.Info("Processing request",
				"request_id", req.ID,
				"type", req.Type,
				"source", req.Source,
				"payload_size", len(req.Payload))

			resp, err := next(ctx, req)

			duration := time.Since(start)

			if err != nil {
				logger.Error("Request failed",
					"request_id", req.ID,
					"duration_ms", duration.Milliseconds(),
					"error", err)
			} else if !resp.Success {
				fields := []interface{}{
					"request_id", req.ID,
					"duration_ms", duration.Milliseconds(),
				}
				if resp.Error != nil {
					fields = append(fields,
						"error_code", resp.Error.Code,
						"error_msg", resp.Error.Message)
				}
				logger.Info("Request completed with failure", fields...)
			} else {
				logger.Info("Request completed successfully",
					"request_id", req.ID,
					"duration_ms", duration.Milliseconds())
			}

			return resp, err
		}
	}
}
