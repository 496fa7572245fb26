package storage

import (
	"errors"
	"time"
)

// Common storage errors
var (
	// ErrNotFound is returned when a file is not present in the store
	ErrNotFound = errors.New("file not found")
)

// FileInfo describes a stored file
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}
