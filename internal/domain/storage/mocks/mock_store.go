package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/pwrtux/moodle-magnet/internal/domain/storage"
)

// MockFileStore is a mock implementation of the FileStore interface
type MockFileStore struct {
	mock.Mock
}

// Save mocks the Save method
func (m *MockFileStore) Save(ctx context.Context, path string, reader io.Reader) (int64, error) {
	args := m.Called(ctx, path, reader)
	return args.Get(0).(int64), args.Error(1)
}

// Open mocks the Open method
func (m *MockFileStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// Exists mocks the Exists method
func (m *MockFileStore) Exists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockFileStore) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// List mocks the List method
func (m *MockFileStore) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.FileInfo), args.Error(1)
}
