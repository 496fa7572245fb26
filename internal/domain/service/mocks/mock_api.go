package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pwrtux/moodle-magnet/internal/moodle"
)

// MockMoodleAPI is a mock implementation of service.MoodleAPI
type MockMoodleAPI struct {
	mock.Mock
}

func (m *MockMoodleAPI) SiteInfo(ctx context.Context) (*moodle.SiteInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*moodle.SiteInfo), args.Error(1)
}

func (m *MockMoodleAPI) UserCourses(ctx context.Context, userID int64) ([]moodle.Course, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]moodle.Course), args.Error(1)
}

func (m *MockMoodleAPI) RecentCourses(ctx context.Context) ([]moodle.RecentCourse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]moodle.RecentCourse), args.Error(1)
}

func (m *MockMoodleAPI) CourseContents(ctx context.Context, courseID int64) ([]moodle.Section, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]moodle.Section), args.Error(1)
}

func (m *MockMoodleAPI) Assignments(ctx context.Context, courseIDs []int64) ([]moodle.AssignmentCourse, error) {
	args := m.Called(ctx, courseIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]moodle.AssignmentCourse), args.Error(1)
}
