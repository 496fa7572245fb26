package usecase

import (
	"context"
	"errors"
	"path"
	"time"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/domain/course"
	"github.com/pwrtux/moodle-magnet/internal/domain/download"
	"github.com/pwrtux/moodle-magnet/internal/domain/dto"
	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
	"github.com/pwrtux/moodle-magnet/internal/domain/service"
	"github.com/pwrtux/moodle-magnet/internal/domain/storage"
)

// assignmentsDir is the per-course subdirectory for intro attachments
const assignmentsDir = "assignments"

// FileDownloader fetches one file into the primary store
type FileDownloader interface {
	Download(ctx context.Context, task download.Task) (int64, error)
}

// CourseSelector narrows the enumerated course list before downloading, for
// example through the interactive picker. Returning ErrAborted cancels the
// run cleanly.
type CourseSelector func(ctx context.Context, courses []course.Course) ([]course.Course, error)

// SyncCourses is the sequential download pipeline: enumerate courses, build
// each content tree, filter, sanitize, download. Failures never abort the
// run once it is underway; an API error skips the course, a download error
// skips the file, and the report records every skip.
type SyncCourses struct {
	api        service.MoodleAPI
	enumerator *service.Enumerator
	downloader FileDownloader
	store      storage.FileStore
	archive    storage.FileStore
	selector   CourseSelector
	config     *config.Config
	logger     observability.Logger
	metrics    observability.Metrics
}

// NewSyncCourses wires the pipeline. archive may be nil; when set, every
// successfully saved file is mirrored to it under the same relative path.
func NewSyncCourses(
	api service.MoodleAPI,
	downloader FileDownloader,
	store storage.FileStore,
	archive storage.FileStore,
	cfg *config.Config,
	logger observability.Logger,
	metrics observability.Metrics,
) *SyncCourses {
	return &SyncCourses{
		api:        api,
		enumerator: service.NewEnumerator(api),
		downloader: downloader,
		store:      store,
		archive:    archive,
		config:     cfg,
		logger:     logger.WithFields(map[string]interface{}{"component": "sync_courses"}),
		metrics:    metrics.WithTags(map[string]string{"component": "sync_courses"}),
	}
}

// WithSelector installs an interactive course selector
func (s *SyncCourses) WithSelector(selector CourseSelector) *SyncCourses {
	s.selector = selector
	return s
}

// Run executes the pipeline and returns the structured report. The returned
// error covers failures before the first download (enumeration, selection)
// and context cancellation; everything after that is recorded in the report.
func (s *SyncCourses) Run(ctx context.Context, req dto.SyncRequest) (*download.Report, error) {
	report := &download.Report{Started: time.Now()}

	courses, err := s.selectCourses(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Starting course sync",
		"courses", len(courses),
		"save_path", s.config.Download.SavePath)

	filter := s.buildFilter(req)

	for _, c := range courses {
		if ctx.Err() != nil {
			report.Finished = time.Now()
			return report, ctx.Err()
		}

		outcome := s.syncCourse(ctx, c, filter, req)
		report.Courses = append(report.Courses, outcome)
	}

	report.Finished = time.Now()

	s.logger.Info("Course sync finished",
		"files_written", report.FilesWritten(),
		"files_skipped", report.SkippedFiles(),
		"courses_skipped", report.SkippedCourses(),
		"bytes", report.BytesWritten(),
		"duration_ms", report.Duration().Milliseconds())

	s.metrics.RecordHistogram("sync.duration_ms", float64(report.Duration().Milliseconds()), nil)
	s.metrics.RecordGauge("sync.files_written", float64(report.FilesWritten()), nil)

	return report, nil
}

// selectCourses resolves the course set for this run: a single configured
// course, the full enrolled or recent list, optionally narrowed by the
// interactive selector.
func (s *SyncCourses) selectCourses(ctx context.Context, req dto.SyncRequest) ([]course.Course, error) {
	courseID := req.CourseID
	if courseID == 0 {
		courseID = s.config.Moodle.CourseID
	}
	if courseID > 0 {
		return []course.Course{s.enumerator.ResolveCourse(ctx, courseID)}, nil
	}

	var (
		courses []course.Course
		err     error
	)
	if req.UseRecent || s.config.Download.UseRecent {
		courses, err = s.enumerator.ListRecentCourses(ctx)
	} else {
		courses, err = s.enumerator.ListCourses(ctx)
	}
	if err != nil {
		return nil, ErrListCourses(err)
	}

	if s.selector != nil {
		selected, err := s.selector(ctx, courses)
		if err != nil {
			if errors.Is(err, ErrAborted) {
				return nil, err
			}
			return nil, ErrSelectCourses(err)
		}
		return selected, nil
	}

	return courses, nil
}

func (s *SyncCourses) buildFilter(req dto.SyncRequest) *service.Filter {
	extensions := s.config.Download.Extensions
	if len(req.Extensions) > 0 {
		extensions = req.Extensions
	}
	return service.NewFilter(extensions)
}

// syncCourse downloads one course's files. An enumeration failure marks the
// whole course skipped; individual download failures mark single files.
func (s *SyncCourses) syncCourse(ctx context.Context, c course.Course, filter *service.Filter, req dto.SyncRequest) download.CourseOutcome {
	outcome := download.CourseOutcome{
		CourseID: c.ID,
		Course:   c.Name(),
	}

	harvest := req.HarvestLinks || s.config.Download.HarvestLinks

	root, err := s.enumerator.Contents(ctx, c, harvest)
	if err != nil {
		s.logger.Error("Skipping course",
			"course", c.Name(),
			"course_id", c.ID,
			"error", err)
		s.metrics.IncrementCounter("sync.courses_skipped", nil)
		outcome.Err = err
		return outcome
	}

	files := filter.Apply(service.ExtractFiles(root))
	courseDir := service.Sanitize(c.Name())
	registry := service.NewNameRegistry()

	s.logger.Info("Syncing course",
		"course", c.Name(),
		"course_id", c.ID,
		"files", len(files))

	for _, leaf := range files {
		fileOutcome := s.syncFile(ctx, c.Name(), courseDir, registry, leaf.FileName, leaf.FileURL, leaf.FileSize, leaf.TimeModified)
		outcome.Files = append(outcome.Files, fileOutcome)
	}

	if req.IncludeAssignments || s.config.Download.IncludeAssignments {
		s.syncAssignments(ctx, c, filter, courseDir, &outcome)
	}

	return outcome
}

// syncAssignments downloads intro attachments under <course>/assignments.
// The subdirectory gets its own name registry: collision scope is one
// destination directory.
func (s *SyncCourses) syncAssignments(ctx context.Context, c course.Course, filter *service.Filter, courseDir string, outcome *download.CourseOutcome) {
	assignmentCourses, err := s.api.Assignments(ctx, []int64{c.ID})
	if err != nil {
		s.logger.Error("Skipping assignments",
			"course", c.Name(),
			"course_id", c.ID,
			"error", err)
		s.metrics.IncrementCounter("sync.assignments_skipped", nil)
		outcome.Err = err
		return
	}

	dir := path.Join(courseDir, assignmentsDir)
	registry := service.NewNameRegistry()

	for _, ac := range assignmentCourses {
		if ac.ID != c.ID {
			continue
		}
		for _, assignment := range ac.Assignments {
			for _, attachment := range assignment.IntroAttachments {
				if attachment.FileURL == "" || !filter.Matches(attachment.Filename) {
					continue
				}
				fileOutcome := s.syncFile(ctx, c.Name(), dir, registry, attachment.Filename, attachment.FileURL, attachment.Filesize, attachment.TimeModified)
				outcome.Files = append(outcome.Files, fileOutcome)
			}
		}
	}
}

// syncFile claims a collision-free name, downloads one file, and mirrors it
// to the archive when enabled.
func (s *SyncCourses) syncFile(ctx context.Context, courseName, dir string, registry *service.NameRegistry, fileName, fileURL string, size, modified int64) download.FileOutcome {
	name := registry.Claim(service.Sanitize(fileName))
	relPath := path.Join(dir, name)

	fileOutcome := download.FileOutcome{
		Course: courseName,
		Name:   name,
		Path:   relPath,
	}

	written, err := s.downloader.Download(ctx, download.Task{
		SourceURL:       fileURL,
		DestinationPath: relPath,
		Name:            name,
		Size:            size,
		TimeModified:    modified,
	})
	if err != nil {
		s.logger.Error("Skipping file",
			"course", courseName,
			"file", name,
			"error", err)
		s.metrics.IncrementCounter("sync.files_skipped", nil)
		fileOutcome.Err = err
		return fileOutcome
	}

	fileOutcome.Bytes = written
	s.metrics.IncrementCounter("sync.files_written", nil)
	s.metrics.RecordHistogram("sync.file_bytes", float64(written), nil)

	if s.archive != nil {
		s.archiveFile(ctx, relPath)
	}

	return fileOutcome
}

// archiveFile mirrors a saved file to the archive store. The mirror is best
// effort: a failure is logged and counted but the file stays downloaded.
func (s *SyncCourses) archiveFile(ctx context.Context, relPath string) {
	reader, err := s.store.Open(ctx, relPath)
	if err != nil {
		s.logger.Error("Failed to read file for archiving", "path", relPath, "error", err)
		s.metrics.IncrementCounter("sync.archive_errors", nil)
		return
	}
	defer reader.Close()

	if _, err := s.archive.Save(ctx, relPath, reader); err != nil {
		s.logger.Error("Failed to archive file", "path", relPath, "error", err)
		s.metrics.IncrementCounter("sync.archive_errors", nil)
		return
	}

	s.metrics.IncrementCounter("sync.archived", nil)
}
