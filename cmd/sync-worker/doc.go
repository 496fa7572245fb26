/*
The sync-worker binary runs the Moodle course sync pipeline as a
request-driven service.

The worker is responsible for:
  - Enumerating the courses visible to the configured web-service token
  - Walking each course's content tree and filtering downloadable files
  - Downloading file content into the configured store (filesystem or S3)
  - Optionally mirroring completed downloads to an archive bucket
  - Reporting per-course and per-file outcomes in a structured envelope

# Architecture

The repository follows the same layering for both binaries:

	├── cmd/                       # Entry points (CLI and worker)
	├── internal/
	│   ├── config/                # Environment configuration provider
	│   ├── domain/                # Ports, entities, and domain services
	│   ├── moodle/                # Moodle web-service REST client
	│   ├── usecase/               # Sync pipeline and worker use case
	│   ├── handler/               # Request envelope and middleware chain
	│   └── infrastructure/        # HTTP, storage, observability, runtimes
	│       ├── http/              # Retrying HTTP client
	│       ├── storage/           # Filesystem and S3 adapters
	│       ├── observability/     # Stdout, Prometheus, CloudWatch adapters
	│       └── handlers/          # HTTP server and Lambda runtime adapters

# Usage

The HTTP runtime accepts sync requests on POST /; the Lambda runtime accepts
the same payload directly or wrapped in SQS batch records:

	POST /
	Content-Type: application/json

	{
	    "type": "sync_courses",
	    "payload": {
	        "course_id": 42,
	        "extensions": ["pdf", "ipynb"],
	        "include_assignments": true
	    }
	}

An empty payload object ("payload": {}) syncs every enrolled course with the
configured defaults. The response summarizes the run:

	{
	    "success": true,
	    "data": {
	        "courses": 3,
	        "files_written": 41,
	        "files_skipped": 0,
	        "courses_skipped": 0,
	        "bytes_written": 52428800,
	        "duration_ms": 94213
	    }
	}

# Error Handling

Failures are classified by whether a redelivery can help:
  - INVALID_PAYLOAD, VALIDATION_ERROR: malformed requests, never retried
  - MOODLE_API_ERROR: rejected by the Moodle API (bad token, unknown
    course), never retried
  - SYNC_FAILED: transport-level failure before any file was recorded,
    retryable
  - SYNC_INCOMPLETE: the run finished but skipped files or courses,
    retryable because a re-run overwrites idempotently

Under SQS, failed records are reported as partial batch failures so
successful ones are not redelivered.

# Configuration

Everything is environment-driven (a .env file is honored outside Lambda):
  - MOODLE_URL, MOODLE_TOKEN: the site and its web-service token
  - MOODLE_COURSE_ID, DOWNLOAD_EXTENSIONS, DOWNLOAD_ASSIGNMENTS,
    DOWNLOAD_HARVEST_LINKS, DOWNLOAD_RECENT_COURSES: sync defaults
  - STORAGE_ADAPTER, MOODLE_SAVE_PATH, STORAGE_ARCHIVE_ENABLED,
    STORAGE_ARCHIVE_BUCKET: where files land
  - HANDLER_PLATFORM: "http" or "lambda", auto-detected when empty
  - OBSERVABILITY_LOGGER, OBSERVABILITY_METRICS: adapter selection

# Observability

Every stage logs through the structured logger and records counters,
histograms, and gauges through the metrics port. The HTTP runtime exposes
/healthz and, when enabled, Prometheus metrics on /metrics. The token is
never logged and never appears in a URL.
*/
package main
