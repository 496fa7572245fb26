package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
	"github.com/pwrtux/moodle-magnet/internal/domain/storage"
)

// tmpSuffix marks in-flight writes. A file carrying it is never a valid
// download result and is safely overwritten by a later run.
const tmpSuffix = ".tmp"

// Store implements storage.FileStore on the local filesystem
type Store struct {
	root    string
	logger  observability.Logger
	metrics observability.Metrics
}

// New creates a filesystem-backed FileStore rooted at the given directory,
// creating it if absent.
func New(root string, logger observability.Logger, metrics observability.Metrics) (storage.FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		logger.Error("Failed to create storage root", "path", root, "error", err)
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	logger.Info("Filesystem store initialized", "root", root)
	metrics.IncrementCounter("storage.filesystem.initialized", nil)

	return &Store{
		root:    root,
		logger:  logger.WithFields(map[string]interface{}{"component": "filesystem_store"}),
		metrics: metrics.WithTags(map[string]string{"storage": "filesystem"}),
	}, nil
}

// Save streams the reader to <root>/<path>. The content is written to a
// temporary sibling first and renamed into place on success, so an
// interrupted transfer never leaves a file at the final path.
func (s *Store) Save(ctx context.Context, path string, reader io.Reader) (int64, error) {
	start := time.Now()
	s.metrics.IncrementCounter("storage.save.attempts", nil)

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	final, err := s.resolve(path)
	if err != nil {
		s.metrics.IncrementCounter("storage.save.errors", map[string]string{"error": "path"})
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(final), 0755); err != nil {
		s.logger.Error("Failed to create directory", "path", path, "error", err)
		s.metrics.IncrementCounter("storage.save.errors", map[string]string{"error": "mkdir"})
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := final + tmpSuffix
	file, err := os.Create(tmp)
	if err != nil {
		s.logger.Error("Failed to create temp file", "path", tmp, "error", err)
		s.metrics.IncrementCounter("storage.save.errors", map[string]string{"error": "create"})
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	written, err := io.Copy(file, reader)
	if err != nil {
		file.Close()
		os.Remove(tmp)
		s.logger.Error("Failed to write data", "path", path, "error", err)
		s.metrics.IncrementCounter("storage.save.errors", map[string]string{"error": "write"})
		return 0, fmt.Errorf("failed to write data: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmp)
		s.metrics.IncrementCounter("storage.save.errors", map[string]string{"error": "close"})
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		s.logger.Error("Failed to finalize file", "path", path, "error", err)
		s.metrics.IncrementCounter("storage.save.errors", map[string]string{"error": "rename"})
		return 0, fmt.Errorf("failed to finalize file: %w", err)
	}

	duration := time.Since(start)
	s.logger.Info("File stored",
		"path", path,
		"bytes", written,
		"duration_ms", duration.Milliseconds())

	s.metrics.IncrementCounter("storage.save.success", nil)
	s.metrics.RecordHistogram("storage.save.bytes", float64(written), nil)
	s.metrics.RecordHistogram("storage.save.duration_ms", float64(duration.Milliseconds()), nil)

	return written, nil
}

// Open streams back a stored file
func (s *Store) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		s.logger.Error("Failed to open file", "path", path, "error", err)
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Exists checks whether a file is present at the given relative path
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}

	s.logger.Error("Failed to check file existence", "path", path, "error", err)
	return false, err
}

// Delete removes the file at the given relative path
func (s *Store) Delete(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrNotFound
		}
		s.logger.Error("Failed to delete file", "path", path, "error", err)
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.metrics.IncrementCounter("storage.delete.success", nil)
	return nil
}

// List returns the files under the given relative prefix, skipping in-flight
// temp files.
func (s *Store) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	var files []storage.FileInfo

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if info.IsDir() || strings.HasSuffix(path, tmpSuffix) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		key := filepath.ToSlash(rel)

		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}

		files = append(files, storage.FileInfo{
			Path:    key,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to list files", "prefix", prefix, "error", err)
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// resolve maps a relative slash path to an absolute path under the root,
// rejecting anything that would escape it.
func (s *Store) resolve(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	native := filepath.FromSlash(path)
	if !filepath.IsLocal(native) {
		return "", fmt.Errorf("path escapes storage root: %s", path)
	}

	return filepath.Join(s.root, native), nil
}
