package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/pwrtux/moodle-magnet/internal/handler"
)

// TracingMiddleware ensures every request carries a correlation id. An
// incoming trace id is preserved; otherwise one is generated, so retried and
// forwarded requests stay correlated across services.
func TracingMiddleware() handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx context.Context, req handler.Request) (handler.Response, error) {
			if req.Metadata == nil {
				req.Metadata = make(map[string]string)
			}

			traceID := req.Metadata["trace_id"]
			if traceID == "" {
				traceID = uuid.New().String()
				req.Metadata["trace_id"] = traceID
			}

			if req.ID == "" {
				req.ID = traceID
			}

			return next(ctx, req)
		}
	}
}
