package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMoodleEnv(t *testing.T) {
	t.Helper()
	os.Setenv("MOODLE_URL", "https://moodle.example.edu")
	os.Setenv("MOODLE_TOKEN", "s3cr3t")
	t.Cleanup(func() {
		os.Unsetenv("MOODLE_URL")
		os.Unsetenv("MOODLE_TOKEN")
	})
}

func TestProviderLoad(t *testing.T) {
	setMoodleEnv(t)

	provider := GetProvider()
	provider.Reset()
	defer provider.Reset()

	require.NoError(t, provider.Load())
	assert.True(t, provider.IsLoaded())

	cfg := provider.MustGet()
	assert.Equal(t, "https://moodle.example.edu", cfg.Moodle.BaseURL)
	assert.Equal(t, "s3cr3t", cfg.Moodle.Token)
	assert.Equal(t, "moodle-magnet", cfg.ServiceName)
	assert.Equal(t, ".", cfg.Download.SavePath)
	assert.Equal(t, "filesystem", cfg.Storage.Adapter)

	// Second load is a no-op
	require.NoError(t, provider.Load())
}

func TestProviderLoadMissingCredentials(t *testing.T) {
	os.Unsetenv("MOODLE_URL")
	os.Unsetenv("MOODLE_TOKEN")

	provider := GetProvider()
	provider.Reset()
	defer provider.Reset()

	err := provider.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is required")
	assert.Contains(t, err.Error(), "url is required")
	assert.False(t, provider.IsLoaded())
}

func TestProviderLoadPartialSkipsValidation(t *testing.T) {
	os.Unsetenv("MOODLE_URL")
	os.Unsetenv("MOODLE_TOKEN")

	provider := GetProvider()
	provider.Reset()
	defer provider.Reset()

	cfg, err := provider.LoadPartial()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.Moodle.Token)

	// Overlaying values afterwards makes the config valid
	cfg.Moodle.BaseURL = "https://moodle.example.edu"
	cfg.Moodle.Token = "token-from-flag"
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *Config) {},
		},
		{
			name: "missing token",
			mutate: func(cfg *Config) {
				cfg.Moodle.Token = ""
			},
			wantErr: "token is required",
		},
		{
			name: "missing url",
			mutate: func(cfg *Config) {
				cfg.Moodle.BaseURL = ""
			},
			wantErr: "url is required",
		},
		{
			name: "non-http scheme",
			mutate: func(cfg *Config) {
				cfg.Moodle.BaseURL = "ftp://moodle.example.edu"
			},
			wantErr: "must use http or https",
		},
		{
			name: "missing host",
			mutate: func(cfg *Config) {
				cfg.Moodle.BaseURL = "https://"
			},
			wantErr: "has no host",
		},
		{
			name: "negative retries",
			mutate: func(cfg *Config) {
				cfg.HTTP.MaxRetries = -1
			},
			wantErr: "HTTP_MAX_RETRIES cannot be negative",
		},
		{
			name: "zero max file size",
			mutate: func(cfg *Config) {
				cfg.Download.MaxFileSize = 0
			},
			wantErr: "DOWNLOAD_MAX_FILE_SIZE must be positive",
		},
		{
			name: "unknown storage adapter",
			mutate: func(cfg *Config) {
				cfg.Storage.Adapter = "ftp"
			},
			wantErr: "unknown STORAGE_ADAPTER",
		},
		{
			name: "archive without bucket",
			mutate: func(cfg *Config) {
				cfg.Storage.ArchiveEnabled = true
				cfg.Storage.ArchiveBucket = ""
			},
			wantErr: "STORAGE_ARCHIVE_BUCKET is required",
		},
		{
			name: "backoff multiplier below one",
			mutate: func(cfg *Config) {
				cfg.Retry.BackoffMultiplier = 0.5
			},
			wantErr: "RETRY_BACKOFF_MULTIPLIER must be >= 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Moodle.BaseURL = "https://moodle.example.edu"
			cfg.Moodle.Token = "tok"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Run("save path defaults to working directory", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Download.SavePath = ""
		cfg.applyDefaults()
		assert.Equal(t, ".", cfg.Download.SavePath)
	})

	t.Run("archive bucket derived from environment", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Environment = "staging"
		cfg.Storage.ArchiveEnabled = true
		cfg.applyDefaults()
		assert.Equal(t, "moodle-magnet-staging-archive", cfg.Storage.ArchiveBucket)
	})

	t.Run("production enables metrics and tracing", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Environment = "production"
		cfg.Handler.EnableMetrics = false
		cfg.Handler.EnableTracing = false
		cfg.applyDefaults()
		assert.True(t, cfg.Handler.EnableMetrics)
		assert.True(t, cfg.Handler.EnableTracing)
	})
}

func TestEnvironmentDetection(t *testing.T) {
	cfg := &Config{Environment: "production"}
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsLocal())

	cfg.Environment = "dev"
	assert.True(t, cfg.IsLocal())

	cfg.Environment = "testing"
	assert.True(t, cfg.IsTest())

	cfg.Environment = "stage"
	assert.True(t, cfg.IsStaging())
}

func TestParseReadsEnvironment(t *testing.T) {
	setMoodleEnv(t)
	os.Setenv("MOODLE_COURSE_ID", "42")
	os.Setenv("DOWNLOAD_EXTENSIONS", "pdf,ipynb")
	os.Setenv("DOWNLOAD_PROGRESS", "false")
	defer func() {
		os.Unsetenv("MOODLE_COURSE_ID")
		os.Unsetenv("DOWNLOAD_EXTENSIONS")
		os.Unsetenv("DOWNLOAD_PROGRESS")
	}()

	provider := GetProvider()
	provider.Reset()
	defer provider.Reset()

	require.NoError(t, provider.Load())
	cfg := provider.MustGet()

	assert.Equal(t, int64(42), cfg.Moodle.CourseID)
	assert.Equal(t, []string{"pdf", "ipynb"}, cfg.Download.Extensions)
	assert.False(t, cfg.Download.Progress)
}
