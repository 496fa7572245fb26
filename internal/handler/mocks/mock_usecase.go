package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pwrtux/moodle-magnet/internal/handler"
)

// MockUseCase is a mock implementation of handler.UseCase
type MockUseCase struct {
	mock.Mock
}

func (m *MockUseCase) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockUseCase) Run(ctx context.Context, req handler.Request) (handler.Response, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(handler.Response), args.Error(1)
}
