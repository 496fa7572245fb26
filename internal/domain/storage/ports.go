package storage

import (
	"context"
	"io"

	"github.com/pwrtux/moodle-magnet/internal/domain/base"
)

// FileStore persists downloaded files under a configured root. Paths are
// slash-separated and relative to that root; implementations must reject
// paths that escape it.
type FileStore interface {
	// Save streams the reader's content to the given relative path and
	// returns the number of bytes written. The write is atomic: a failed or
	// interrupted transfer never leaves a file at the final path.
	Save(ctx context.Context, path string, reader io.Reader) (int64, error)

	// Open streams back the file at the given relative path. Returns
	// ErrNotFound when the file does not exist; the caller closes the reader.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks whether a file is present at the given relative path
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes the file at the given relative path
	Delete(ctx context.Context, path string) error

	// List returns the files under the given relative prefix
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

// StorageFactory creates the FileStore implementation selected by configuration
type StorageFactory interface {
	base.Factory[FileStore]
}
