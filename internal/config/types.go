package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Core settings
	Environment string
	ServiceName string
	Version     string
	LogLevel    string

	// Component configurations
	Moodle        MoodleConfig
	Download      DownloadConfig
	HTTP          HTTPConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
	Handler       HandlerConfig
	Retry         RetryConfig
	Lambda        LambdaConfig
}

// MoodleConfig holds the web-service endpoint and credential
type MoodleConfig struct {
	BaseURL  string // site root, e.g. https://moodle.example.edu
	Token    string // web-service token (secret)
	CourseID int64  // restrict the run to one course; 0 means all
}

// DownloadConfig holds download pipeline configuration
type DownloadConfig struct {
	SavePath           string   // destination root, created if absent
	Extensions         []string // allowlist (without dots); empty means everything
	IncludeAssignments bool     // also fetch assignment intro attachments
	HarvestLinks       bool     // scrape pluginfile links out of summary HTML
	UseRecent          bool     // list recent courses instead of enrolled
	Progress           bool     // per-file progress bars on stderr
	MaxFileSize        int64    // per-file byte cap
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	Timeout    time.Duration
	MaxRetries int
	UserAgent  string
	Addr       string // server address for HTTP runtime mode
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Adapter        string // "filesystem", "s3"
	ArchiveEnabled bool   // mirror completed downloads to the archive bucket
	ArchiveBucket  string
	MaxRetries     int
	Timeout        time.Duration
	S3             S3Config
}

// S3Config holds S3-specific configuration
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // for MinIO or other S3-compatible services
}

// ObservabilityConfig holds logger and metrics adapter selection
type ObservabilityConfig struct {
	LoggerAdapter       string // "stdout"
	MetricsAdapter      string // "stdout", "prometheus", "cloudwatch"
	LogFormat           string // "json", "text"
	CloudWatchRegion    string
	CloudWatchNamespace string
}

// HandlerConfig holds handler configuration for the worker runtime
type HandlerConfig struct {
	Platform       string // "http", "lambda"; auto-detected if empty
	Timeout        time.Duration
	MaxRequestSize int64
	EnableHealth   bool
	EnableMetrics  bool
	EnableTracing  bool
}

// RetryConfig holds retry policy configuration for the handler chain
type RetryConfig struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// LambdaConfig holds Lambda-specific configuration
type LambdaConfig struct {
	Timeout                   time.Duration
	EnablePartialBatchFailure bool
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errors []string

	// Core validations
	if c.ServiceName == "" {
		errors = append(errors, "SERVICE_NAME is required")
	}

	// Credential validations
	if c.Moodle.Token == "" {
		errors = append(errors, "moodle token is required (--token or MOODLE_TOKEN)")
	}
	if c.Moodle.BaseURL == "" {
		errors = append(errors, "moodle url is required (--url or MOODLE_URL)")
	} else if err := validateBaseURL(c.Moodle.BaseURL); err != nil {
		errors = append(errors, err.Error())
	}

	// Range validations
	if c.HTTP.Timeout <= 0 {
		errors = append(errors, "HTTP_TIMEOUT must be positive")
	}
	if c.HTTP.MaxRetries < 0 {
		errors = append(errors, "HTTP_MAX_RETRIES cannot be negative")
	}
	if c.Download.MaxFileSize <= 0 {
		errors = append(errors, "DOWNLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Handler.Timeout <= 0 {
		errors = append(errors, "HANDLER_TIMEOUT must be positive")
	}
	if c.Handler.MaxRequestSize <= 0 {
		errors = append(errors, "HANDLER_MAX_REQUEST_SIZE must be positive")
	}
	if c.Retry.MaxAttempts < 0 {
		errors = append(errors, "RETRY_MAX_ATTEMPTS cannot be negative")
	}
	if c.Retry.BackoffMultiplier < 1.0 {
		errors = append(errors, "RETRY_BACKOFF_MULTIPLIER must be >= 1.0")
	}

	// Storage validations
	switch c.Storage.Adapter {
	case "filesystem", "s3":
	default:
		errors = append(errors, fmt.Sprintf("unknown STORAGE_ADAPTER %q", c.Storage.Adapter))
	}
	if c.Storage.ArchiveEnabled && c.Storage.ArchiveBucket == "" {
		errors = append(errors, "STORAGE_ARCHIVE_BUCKET is required when archiving is enabled")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// validateBaseURL requires an absolute http(s) URL with a host.
func validateBaseURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("moodle url %q is not a valid URL", raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("moodle url %q must use http or https", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("moodle url %q has no host", raw)
	}
	return nil
}

// applyDefaults applies environment-specific defaults
func (c *Config) applyDefaults() {
	env := strings.ToLower(c.Environment)

	if c.Download.SavePath == "" {
		c.Download.SavePath = "."
	}
	if c.Storage.ArchiveEnabled && c.Storage.ArchiveBucket == "" {
		c.Storage.ArchiveBucket = fmt.Sprintf("moodle-magnet-%s-archive", env)
	}

	if c.IsProduction() {
		// More conservative settings for production
		if c.Handler.Timeout < 60*time.Second {
			c.Handler.Timeout = 60 * time.Second
		}
		// Always measure in production
		c.Handler.EnableMetrics = true
		c.Handler.EnableTracing = true
	}

	if c.IsLocal() {
		// No need for tracing locally
		c.Handler.EnableTracing = false
	}
}
