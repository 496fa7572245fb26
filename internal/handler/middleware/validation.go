package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pwrtux/moodle-magnet/internal/handler"
)

func ValidationMiddleware() handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx context.Context, req handler.Request) (handler.Response, error) {
			if req.ID == "" {
				req.ID = uuid.New().String()
			}

			if req.Timestamp.IsZero() {
				req.Timestamp = time.Now().UTC()
			}

			if req.Type == "" {
				return handler.Response{
					Success: false,
					Error: &handler.ErrorInfo{
						Code:      "VALIDATION_ERROR",
						Message:   "Request type is required",
						Retryable: false,
					},
				}, nil
			}

			if len(req.Payload) == 0 {
				return handler.Response{
					Success: false,
					Error: &handler.ErrorInfo{
						Code:      "VALIDATION_ERROR",
						Message:   "Request payload is required",
						Retryable: false,
					},
				}, nil
			}

			if !json.Valid(req.Payload) {
				return handler.Response{
					Success: false,
					Error: &handler.ErrorInfo{
						Code:      "VALIDATION_ERROR",
						Message:   "Invalid JSON payload",
						Retryable: false,
					},
				}, nil
			}

			if req.Metadata == nil {
				req.Metadata = make(map[string]string)
			}

			return next(ctx, req)
		}
	}
}
