package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pwrtux/moodle-magnet/internal/domain/download"
	"github.com/pwrtux/moodle-magnet/internal/domain/dto"
	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
	"github.com/pwrtux/moodle-magnet/internal/handler"
	"github.com/pwrtux/moodle-magnet/internal/moodle"
)

// SyncRunner executes one sync run; satisfied by SyncCourses
type SyncRunner interface {
	Run(ctx context.Context, req dto.SyncRequest) (*download.Report, error)
}

// SyncWorker exposes the sync pipeline as a handler use case so it can run
// behind the HTTP and Lambda adapters
type SyncWorker struct {
	pipeline SyncRunner
	logger   observability.Logger
	metrics  observability.Metrics
}

func NewSyncWorker(pipeline SyncRunner, logger observability.Logger, metrics observability.Metrics) *SyncWorker {
	return &SyncWorker{
		pipeline: pipeline,
		logger:   logger.WithFields(map[string]interface{}{"component": "sync_worker"}),
		metrics:  metrics.WithTags(map[string]string{"component": "sync_worker"}),
	}
}

func (w *SyncWorker) Name() string {
	return "sync_courses"
}

// syncSummary is the success payload returned to the caller
type syncSummary struct {
	Courses        int   `json:"courses"`
	FilesWritten   int   `json:"files_written"`
	FilesSkipped   int   `json:"files_skipped"`
	CoursesSkipped int   `json:"courses_skipped"`
	BytesWritten   int64 `json:"bytes_written"`
	DurationMS     int64 `json:"duration_ms"`
}

func (w *SyncWorker) Run(ctx context.Context, request handler.Request) (handler.Response, error) {
	startTime := time.Now()
	defer func() {
		w.metrics.RecordHistogram("worker.duration_ms",
			float64(time.Since(startTime).Milliseconds()),
			map[string]string{"worker": w.Name()})
	}()

	w.logger.Info("Processing sync request",
		"request_id", request.ID,
		"request_type", request.Type)

	var syncReq dto.SyncRequest
	if err := request.Unmarshal(&syncReq); err != nil {
		w.logger.Error("Failed to parse sync request",
			"request_id", request.ID,
			"error", err)
		w.metrics.IncrementCounter("worker.errors",
			map[string]string{"error_type": "invalid_payload"})

		return handler.NewErrorResponse(
			"INVALID_PAYLOAD",
			"Failed to parse sync request",
			false,
		), nil
	}

	if err := syncReq.Validate(); err != nil {
		w.logger.Error("Invalid sync request",
			"request_id", request.ID,
			"error", err)
		w.metrics.IncrementCounter("worker.errors",
			map[string]string{"error_type": "validation"})

		return handler.NewErrorResponse(
			"VALIDATION_ERROR",
			err.Error(),
			false,
		), nil
	}

	report, err := w.pipeline.Run(ctx, syncReq)
	if err != nil {
		return w.handleRunError(request.ID, err)
	}

	summary := syncSummary{
		Courses:        len(report.Courses),
		FilesWritten:   report.FilesWritten(),
		FilesSkipped:   report.SkippedFiles(),
		CoursesSkipped: report.SkippedCourses(),
		BytesWritten:   report.BytesWritten(),
		DurationMS:     report.Duration().Milliseconds(),
	}

	if report.Failed() {
		// Partial failure is a failure from the caller's perspective; a
		// redelivery re-runs the sync and overwriting is idempotent.
		w.logger.Error("Sync run incomplete",
			"request_id", request.ID,
			"files_skipped", summary.FilesSkipped,
			"courses_skipped", summary.CoursesSkipped)
		w.metrics.IncrementCounter("worker.errors",
			map[string]string{"error_type": "incomplete"})

		return handler.NewErrorResponse(
			"SYNC_INCOMPLETE",
			fmt.Sprintf("%d files and %d courses skipped", summary.FilesSkipped, summary.CoursesSkipped),
			true,
		), nil
	}

	w.metrics.IncrementCounter("worker.success",
		map[string]string{"worker": w.Name()})
	w.logger.Info("Sync request processed",
		"request_id", request.ID,
		"files_written", summary.FilesWritten,
		"bytes_written", summary.BytesWritten)

	return handler.NewSuccessResponse(summary)
}

// handleRunError maps pipeline failures to error responses. Moodle API
// errors are not retryable: a bad token or parameter does not heal on
// redelivery. Everything else is assumed transient.
func (w *SyncWorker) handleRunError(requestID string, err error) (handler.Response, error) {
	var apiErr *moodle.APIError
	if errors.As(err, &apiErr) {
		w.logger.Error("Sync failed with API error",
			"request_id", requestID,
			"error_code", apiErr.ErrorCode,
			"error", err)
		w.metrics.IncrementCounter("worker.errors",
			map[string]string{"error_type": "api"})

		return handler.NewErrorResponse(
			"MOODLE_API_ERROR",
			apiErr.Error(),
			false,
		), nil
	}

	w.logger.Error("Sync failed",
		"request_id", requestID,
		"error", err)
	w.metrics.IncrementCounter("worker.errors",
		map[string]string{"error_type": "sync"})

	return handler.NewErrorResponse(
		"SYNC_FAILED",
		err.Error(),
		true,
	), nil
}
