package service

import (
	"context"
	"net/http"

	"github.com/pwrtux/moodle-magnet/internal/moodle"
)

// MoodleAPI is the client surface the pipeline consumes
type MoodleAPI interface {
	SiteInfo(ctx context.Context) (*moodle.SiteInfo, error)
	UserCourses(ctx context.Context, userID int64) ([]moodle.Course, error)
	RecentCourses(ctx context.Context) ([]moodle.RecentCourse, error)
	CourseContents(ctx context.Context, courseID int64) ([]moodle.Section, error)
	Assignments(ctx context.Context, courseIDs []int64) ([]moodle.AssignmentCourse, error)
}

// HTTPGetter issues authenticated GET requests; satisfied by the retrying
// infrastructure client
type HTTPGetter interface {
	Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error)
}
