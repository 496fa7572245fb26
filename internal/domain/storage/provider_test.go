package storage_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/domain/storage"
	storageMocks "github.com/pwrtux/moodle-magnet/internal/domain/storage/mocks"
)

// testStorageFactory returns a pre-built store, optionally failing
type testStorageFactory struct {
	store       storage.FileStore
	shouldError bool
}

func (f *testStorageFactory) Create(cfg *config.Config) (storage.FileStore, error) {
	if f.shouldError {
		return nil, errors.New("failed to create storage")
	}
	return f.store, nil
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name          string
		config        *config.Config
		factoryError  bool
		expectedError string
	}{
		{
			name:   "successful initialization",
			config: config.DefaultConfig(),
		},
		{
			name:          "nil config",
			config:        nil,
			expectedError: "config is required",
		},
		{
			name:          "factory error",
			config:        config.DefaultConfig(),
			factoryError:  true,
			expectedError: "failed to create storage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage.Reset()

			mockStore := new(storageMocks.MockFileStore)
			factory := &testStorageFactory{
				store:       mockStore,
				shouldError: tt.factoryError,
			}

			err := storage.Initialize(tt.config, factory)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.False(t, storage.IsInitialized())
			} else {
				assert.NoError(t, err)
				assert.True(t, storage.IsInitialized())
			}
		})
	}
}

func TestInitializeIdempotent(t *testing.T) {
	storage.Reset()

	first := new(storageMocks.MockFileStore)
	second := new(storageMocks.MockFileStore)

	err := storage.Initialize(config.DefaultConfig(), &testStorageFactory{store: first})
	assert.NoError(t, err)

	// Second call is a no-op; the first store stays registered
	err = storage.Initialize(config.DefaultConfig(), &testStorageFactory{store: second})
	assert.NoError(t, err)

	store, err := storage.GetStore()
	assert.NoError(t, err)
	assert.Same(t, first, store)
}

func TestGetStore(t *testing.T) {
	t.Run("not initialized", func(t *testing.T) {
		storage.Reset()

		store, err := storage.GetStore()
		assert.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "not initialized")
	})

	t.Run("initialized", func(t *testing.T) {
		storage.Reset()

		mockStore := new(storageMocks.MockFileStore)
		err := storage.Initialize(config.DefaultConfig(), &testStorageFactory{store: mockStore})
		assert.NoError(t, err)

		store, err := storage.GetStore()
		assert.NoError(t, err)
		assert.Same(t, mockStore, store)
	})
}

func TestMustGetStore(t *testing.T) {
	t.Run("panics when not initialized", func(t *testing.T) {
		storage.Reset()

		assert.Panics(t, func() {
			storage.MustGetStore()
		})
	})

	t.Run("returns store when initialized", func(t *testing.T) {
		storage.Reset()

		mockStore := new(storageMocks.MockFileStore)
		storage.MustInitialize(config.DefaultConfig(), &testStorageFactory{store: mockStore})

		assert.NotPanics(t, func() {
			store := storage.MustGetStore()
			assert.Same(t, mockStore, store)
		})
	})
}

func TestResetClearsState(t *testing.T) {
	storage.Reset()

	mockStore := new(storageMocks.MockFileStore)
	err := storage.Initialize(config.DefaultConfig(), &testStorageFactory{store: mockStore})
	assert.NoError(t, err)
	assert.True(t, storage.IsInitialized())

	storage.Reset()

	assert.False(t, storage.IsInitialized())
}

func TestConcurrentGet(t *testing.T) {
	storage.Reset()

	mockStore := new(storageMocks.MockFileStore)
	err := storage.Initialize(config.DefaultConfig(), &testStorageFactory{store: mockStore})
	assert.NoError(t, err)

	var wg sync.WaitGroup
	errCh := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := storage.GetStore(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Wait()
	close(errCh)

	assert.Len(t, errCh, 0)
}

func TestMockFileStoreSave(t *testing.T) {
	mockStore := new(storageMocks.MockFileStore)
	mockStore.On("Save", mock.Anything, "Algorithms/notes.pdf", mock.Anything).Return(int64(11), nil)

	n, err := mockStore.Save(context.Background(), "Algorithms/notes.pdf", strings.NewReader("hello world"))

	assert.NoError(t, err)
	assert.Equal(t, int64(11), n)
	mockStore.AssertExpectations(t)
}
