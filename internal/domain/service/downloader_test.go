package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwrtux/moodle-magnet/internal/domain/download"
	"github.com/pwrtux/moodle-magnet/internal/infrastructure/observability/adapters/stdout"
	"github.com/pwrtux/moodle-magnet/internal/infrastructure/storage/adapters/fs"
)

// testGetter adapts a test server client to the HTTPGetter port
type testGetter struct {
	client *http.Client
}

func (g *testGetter) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return g.client.Do(req)
}

func newTestDownloader(t *testing.T, server *httptest.Server, maxSize int64) (*Downloader, string) {
	t.Helper()

	root := t.TempDir()
	store, err := fs.New(root, stdout.NewLogger(), stdout.NewMetrics())
	require.NoError(t, err)

	downloader := NewDownloader(&testGetter{client: server.Client()}, store,
		"secret-token", false, maxSize, stdout.NewLogger(), stdout.NewMetrics())
	return downloader, root
}

func TestDownloadWritesIdenticalBytes(t *testing.T) {
	content := []byte("%PDF-1.4 lecture slides payload")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer server.Close()

	downloader, root := newTestDownloader(t, server, 0)

	written, err := downloader.Download(context.Background(), download.Task{
		SourceURL:       server.URL + "/webservice/pluginfile.php/9/intro.pdf",
		DestinationPath: "Algorithms/intro.pdf",
		Name:            "intro.pdf",
		Size:            int64(len(content)),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), written)

	saved, err := os.ReadFile(filepath.Join(root, "Algorithms", "intro.pdf"))
	require.NoError(t, err)
	assert.Equal(t, content, saved)
}

func TestDownloadSendsTokenInHeaderNotURL(t *testing.T) {
	var gotAuth, gotQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	downloader, _ := newTestDownloader(t, server, 0)

	_, err := downloader.Download(context.Background(), download.Task{
		SourceURL:       server.URL + "/webservice/pluginfile.php/9/intro.pdf",
		DestinationPath: "Algorithms/intro.pdf",
		Name:            "intro.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.NotContains(t, gotQuery, "secret-token")
}

func TestDownloadNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	downloader, root := newTestDownloader(t, server, 0)

	url := server.URL + "/webservice/pluginfile.php/9/locked.pdf"
	_, err := downloader.Download(context.Background(), download.Task{
		SourceURL:       url,
		DestinationPath: "Algorithms/locked.pdf",
		Name:            "locked.pdf",
	})

	var downloadErr *download.Error
	require.ErrorAs(t, err, &downloadErr)
	assert.Equal(t, url, downloadErr.URL)
	assert.Contains(t, downloadErr.Error(), "403")

	_, statErr := os.Stat(filepath.Join(root, "Algorithms", "locked.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadEnforcesMaxSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 64))
	}))
	defer server.Close()

	downloader, root := newTestDownloader(t, server, 16)

	_, err := downloader.Download(context.Background(), download.Task{
		SourceURL:       server.URL + "/webservice/pluginfile.php/9/huge.bin",
		DestinationPath: "Algorithms/huge.bin",
		Name:            "huge.bin",
	})

	var downloadErr *download.Error
	require.ErrorAs(t, err, &downloadErr)
	require.ErrorIs(t, err, ErrFileTooLarge)

	// The interrupted transfer must leave neither the final file nor a remnant
	_, statErr := os.Stat(filepath.Join(root, "Algorithms", "huge.bin"))
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(filepath.Join(root, "Algorithms"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadAllowsExactlyMaxSize(t *testing.T) {
	content := make([]byte, 16)
	for i := range content {
		content[i] = byte(i)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer server.Close()

	downloader, root := newTestDownloader(t, server, 16)

	written, err := downloader.Download(context.Background(), download.Task{
		SourceURL:       server.URL + "/webservice/pluginfile.php/9/exact.bin",
		DestinationPath: "Algorithms/exact.bin",
		Name:            "exact.bin",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(16), written)

	saved, err := os.ReadFile(filepath.Join(root, "Algorithms", "exact.bin"))
	require.NoError(t, err)
	assert.Equal(t, content, saved)
}

func TestDownloadCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("never delivered"))
	}))
	defer server.Close()

	downloader, root := newTestDownloader(t, server, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := downloader.Download(ctx, download.Task{
		SourceURL:       server.URL + "/webservice/pluginfile.php/9/file.pdf",
		DestinationPath: "Algorithms/file.pdf",
		Name:            "file.pdf",
	})

	var downloadErr *download.Error
	require.ErrorAs(t, err, &downloadErr)

	_, statErr := os.Stat(filepath.Join(root, "Algorithms", "file.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}
