package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
	"github.com/pwrtux/moodle-magnet/internal/handler"
)

// MockHandler is a mock implementation of handler.Handler. Use it to test
// platform adapters without real handler logic.
type MockHandler struct {
	mock.Mock
	logger  observability.Logger
	metrics observability.Metrics
}

// NewMockHandler creates a mock handler backed by the given observability
// components
func NewMockHandler(logger observability.Logger, metrics observability.Metrics) *MockHandler {
	return &MockHandler{
		logger:  logger,
		metrics: metrics,
	}
}

func (m *MockHandler) Handle(ctx context.Context, req handler.Request) (handler.Response, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(handler.Response), args.Error(1)
}

func (m *MockHandler) Logger() observability.Logger {
	return m.logger
}

func (m *MockHandler) Metrics() observability.Metrics {
	return m.metrics
}
