package config

import "time"

// DefaultHTTPConfig returns sensible defaults for HTTP client configuration
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:    120 * time.Second,
		MaxRetries: 3,
		UserAgent:  "moodle-magnet/1.0",
		Addr:       ":8080",
	}
}

// DefaultDownloadConfig returns sensible defaults for the download pipeline
func DefaultDownloadConfig() DownloadConfig {
	return DownloadConfig{
		SavePath:    ".",
		Progress:    true,
		MaxFileSize: 1 << 30, // 1GB
	}
}

// DefaultStorageConfig returns sensible defaults for storage configuration
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Adapter:    "filesystem",
		MaxRetries: 3,
		Timeout:    30 * time.Second,
		S3: S3Config{
			Region: "us-east-2",
		},
	}
}

// DefaultHandlerConfig returns sensible defaults for handler configuration
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		Timeout:        300 * time.Second,
		MaxRequestSize: 1 << 20, // 1MB
		EnableHealth:   true,
		EnableMetrics:  true,
		EnableTracing:  true,
		Platform:       "", // Auto-detect
	}
}

// DefaultRetryConfig returns sensible defaults for retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       0,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// DefaultLambdaConfig returns sensible defaults for Lambda configuration
func DefaultLambdaConfig() LambdaConfig {
	return LambdaConfig{
		Timeout:                   600 * time.Second,
		EnablePartialBatchFailure: true,
	}
}

// DefaultObservabilityConfig returns sensible defaults for observability
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LoggerAdapter:  "stdout",
		MetricsAdapter: "stdout",
		LogFormat:      "json",
	}
}

// DefaultConfig returns a complete configuration with sensible defaults.
// Useful for tests that want to start from defaults and override parts.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		ServiceName: "moodle-magnet",
		Version:     "1.0.0",
		LogLevel:    "info",

		Download:      DefaultDownloadConfig(),
		HTTP:          DefaultHTTPConfig(),
		Storage:       DefaultStorageConfig(),
		Observability: DefaultObservabilityConfig(),
		Handler:       DefaultHandlerConfig(),
		Retry:         DefaultRetryConfig(),
		Lambda:        DefaultLambdaConfig(),
	}
}
