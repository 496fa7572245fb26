package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/pwrtux/moodle-magnet/internal/domain/download"
	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
	"github.com/pwrtux/moodle-magnet/internal/domain/storage"
)

// Downloader fetches file bytes and streams them into the store. The token
// travels in the Authorization header, never in the URL, so it cannot leak
// into logs or proxies.
type Downloader struct {
	http     HTTPGetter
	store    storage.FileStore
	token    string
	progress bool
	maxSize  int64
	logger   observability.Logger
	metrics  observability.Metrics
}

func NewDownloader(httpClient HTTPGetter, store storage.FileStore, token string, progress bool, maxSize int64,
	logger observability.Logger, metrics observability.Metrics) *Downloader {
	return &Downloader{
		http:     httpClient,
		store:    store,
		token:    token,
		progress: progress,
		maxSize:  maxSize,
		logger:   logger.WithFields(map[string]interface{}{"component": "downloader"}),
		metrics:  metrics.WithTags(map[string]string{"component": "downloader"}),
	}
}

// Download fetches one task and returns the number of bytes written. Every
// failure comes back as *download.Error carrying the source URL; the store's
// atomic write guarantees no file appears at the final path on failure.
func (d *Downloader) Download(ctx context.Context, task download.Task) (int64, error) {
	start := time.Now()
	d.metrics.IncrementCounter("download.attempts", nil)

	headers := map[string]string{
		"Authorization": "Bearer " + d.token,
	}

	resp, err := d.http.Get(ctx, task.SourceURL, headers)
	if err != nil {
		d.metrics.IncrementCounter("download.errors", map[string]string{"error": "request"})
		return 0, download.NewError(task.SourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.metrics.IncrementCounter("download.errors", map[string]string{"error": "status"})
		return 0, download.NewError(task.SourceURL, ErrUnexpectedStatus(resp.StatusCode))
	}

	var reader io.Reader = resp.Body
	if d.maxSize > 0 {
		reader = &capReader{r: reader, remaining: d.maxSize}
	}
	if d.progress {
		bar := d.newBar(task, resp.ContentLength)
		reader = io.TeeReader(reader, bar)
	}

	written, err := d.store.Save(ctx, task.DestinationPath, reader)
	if err != nil {
		d.metrics.IncrementCounter("download.errors", map[string]string{"error": "write"})
		return 0, download.NewError(task.SourceURL, err)
	}

	duration := time.Since(start)
	d.logger.Info("File downloaded",
		"file", task.Name,
		"path", task.DestinationPath,
		"bytes", written,
		"duration_ms", duration.Milliseconds())

	d.metrics.IncrementCounter("download.success", nil)
	d.metrics.RecordHistogram("download.bytes", float64(written), nil)
	d.metrics.RecordHistogram("download.duration_ms", float64(duration.Milliseconds()), nil)

	return written, nil
}

// newBar builds the byte progress bar for one transfer. Content-Length wins
// over the API-reported size; -1 renders a spinner.
func (d *Downloader) newBar(task download.Task, contentLength int64) *progressbar.ProgressBar {
	total := contentLength
	if total <= 0 {
		total = task.Size
	}
	if total <= 0 {
		total = -1
	}

	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription(task.Name),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprint(os.Stderr, "\n") }),
	)
}

// capReader fails the stream once more than the configured maximum has been
// read, so the store discards the partial write.
type capReader struct {
	r         io.Reader
	remaining int64
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.remaining < 0 {
		return 0, ErrFileTooLarge
	}

	// Allow one byte past the cap so overflow is detectable while a stream
	// of exactly the maximum size still reaches its EOF
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}

	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return 0, ErrFileTooLarge
	}
	return n, err
}
