package config

import (
	"github.com/pwrtux/moodle-magnet/internal/utils"
)

// parseConfig parses configuration from environment variables
func (p *Provider) parseConfig() (*Config, error) {
	cfg := &Config{
		// Core
		Environment: utils.GetEnv("ENVIRONMENT", "local"),
		ServiceName: utils.GetEnv("SERVICE_NAME", "moodle-magnet"),
		Version:     utils.GetEnv("SERVICE_VERSION", "1.0.0"),
		LogLevel:    utils.GetEnv("LOG_LEVEL", "info"),

		// Moodle endpoint and credential
		Moodle: MoodleConfig{
			BaseURL:  utils.GetEnv("MOODLE_URL", ""),
			Token:    utils.GetEnv("MOODLE_TOKEN", ""),
			CourseID: utils.GetEnvInt64("MOODLE_COURSE_ID", 0),
		},

		// Download pipeline
		Download: DownloadConfig{
			SavePath:           utils.GetEnv("MOODLE_SAVE_PATH", "."),
			Extensions:         utils.GetEnvStringSlice("DOWNLOAD_EXTENSIONS", nil),
			IncludeAssignments: utils.GetEnvBool("DOWNLOAD_ASSIGNMENTS", false),
			HarvestLinks:       utils.GetEnvBool("DOWNLOAD_HARVEST_LINKS", false),
			UseRecent:          utils.GetEnvBool("DOWNLOAD_RECENT_COURSES", false),
			Progress:           utils.GetEnvBool("DOWNLOAD_PROGRESS", true),
			MaxFileSize:        utils.GetEnvInt64("DOWNLOAD_MAX_FILE_SIZE", 1<<30),
		},

		// HTTP client
		HTTP: HTTPConfig{
			Timeout:    utils.GetEnvDuration("HTTP_TIMEOUT", "120s"),
			MaxRetries: utils.GetEnvInt("HTTP_MAX_RETRIES", 3),
			UserAgent:  utils.GetEnv("HTTP_USER_AGENT", "moodle-magnet/1.0"),
			Addr:       utils.GetEnv("HTTP_ADDR", ":8080"),
		},

		// Storage
		Storage: StorageConfig{
			Adapter:        utils.GetEnv("STORAGE_ADAPTER", "filesystem"),
			ArchiveEnabled: utils.GetEnvBool("STORAGE_ARCHIVE_ENABLED", false),
			ArchiveBucket:  utils.GetEnv("STORAGE_ARCHIVE_BUCKET", ""),
			MaxRetries:     utils.GetEnvInt("STORAGE_MAX_RETRIES", 3),
			Timeout:        utils.GetEnvDuration("STORAGE_TIMEOUT", "30s"),
			S3: S3Config{
				Region:          utils.GetEnv("AWS_REGION", "us-east-2"),
				AccessKeyID:     utils.GetEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: utils.GetEnv("AWS_SECRET_ACCESS_KEY", ""),
				Endpoint:        utils.GetEnv("S3_ENDPOINT", ""),
			},
		},

		// Observability
		Observability: ObservabilityConfig{
			LoggerAdapter:       utils.GetEnv("OBSERVABILITY_LOGGER", "stdout"),
			MetricsAdapter:      utils.GetEnv("OBSERVABILITY_METRICS", "stdout"),
			LogFormat:           utils.GetEnv("LOG_FORMAT", "json"),
			CloudWatchRegion:    utils.GetEnv("OBSERVABILITY_CLOUDWATCH_REGION", utils.GetEnv("AWS_REGION", "us-east-2")),
			CloudWatchNamespace: utils.GetEnv("OBSERVABILITY_CLOUDWATCH_NAMESPACE", ""),
		},

		// Handler
		Handler: HandlerConfig{
			Platform:       utils.GetEnv("HANDLER_PLATFORM", ""),
			Timeout:        utils.GetEnvDuration("HANDLER_TIMEOUT", "300s"),
			MaxRequestSize: utils.GetEnvInt64("HANDLER_MAX_REQUEST_SIZE", 1<<20),
			EnableHealth:   utils.GetEnvBool("HANDLER_ENABLE_HEALTH", true),
			EnableMetrics:  utils.GetEnvBool("HANDLER_ENABLE_METRICS", true),
			EnableTracing:  utils.GetEnvBool("HANDLER_ENABLE_TRACING", true),
		},

		// Retry
		Retry: RetryConfig{
			MaxAttempts:       utils.GetEnvInt("RETRY_MAX_ATTEMPTS", 0),
			InitialBackoff:    utils.GetEnvDuration("RETRY_INITIAL_BACKOFF", "100ms"),
			MaxBackoff:        utils.GetEnvDuration("RETRY_MAX_BACKOFF", "10s"),
			BackoffMultiplier: utils.GetEnvFloat64("RETRY_BACKOFF_MULTIPLIER", 2.0),
		},

		// Lambda
		Lambda: LambdaConfig{
			Timeout:                   utils.GetEnvDuration("LAMBDA_TIMEOUT", "600s"),
			EnablePartialBatchFailure: utils.GetEnvBool("LAMBDA_PARTIAL_BATCH_FAILURE", true),
		},
	}

	return cfg, nil
}
