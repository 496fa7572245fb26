package storage

import (
	"fmt"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/domain/base"
)

const providerKey = "storage"

// Initialize creates the FileStore through the factory and registers it.
// This should be called once at application startup.
func Initialize(cfg *config.Config, factory StorageFactory) error {
	return base.GetProvider[FileStore](providerKey).Initialize(cfg, factory)
}

// MustInitialize initializes the store and panics on error.
// Use this for application initialization where errors are fatal.
func MustInitialize(cfg *config.Config, factory StorageFactory) {
	if err := Initialize(cfg, factory); err != nil {
		panic(fmt.Sprintf("failed to initialize storage: %v", err))
	}
}

// GetStore returns the registered FileStore.
// Returns an error if storage hasn't been initialized.
func GetStore() (FileStore, error) {
	return base.GetProvider[FileStore](providerKey).Get()
}

// MustGetStore returns the registered FileStore or panics if not initialized
func MustGetStore() FileStore {
	store, err := GetStore()
	if err != nil {
		panic(fmt.Sprintf("failed to get storage: %v", err))
	}
	return store
}

// IsInitialized reports whether storage has been initialized
func IsInitialized() bool {
	return base.GetProvider[FileStore](providerKey).IsInitialized()
}

// Reset resets the provider (useful for testing)
func Reset() {
	base.GetProvider[FileStore](providerKey).Reset()
}
