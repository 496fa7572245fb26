package moodle

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Web service functions consumed by the pipeline
const (
	fnSiteInfo       = "core_webservice_get_site_info"
	fnUserCourses    = "core_enrol_get_users_courses"
	fnRecentCourses  = "core_course_get_recent_courses"
	fnCourseContents = "core_course_get_contents"
	fnAssignments    = "mod_assign_get_assignments"
)

// SiteInfo fetches site metadata for the token's user. The returned UserID is
// the required input for enrolled-course enumeration.
func (c *Client) SiteInfo(ctx context.Context) (*SiteInfo, error) {
	var info SiteInfo
	if err := c.Call(ctx, fnSiteInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// UserCourses lists the courses the given user is enrolled in
func (c *Client) UserCourses(ctx context.Context, userID int64) ([]Course, error) {
	params := url.Values{}
	params.Set("userid", strconv.FormatInt(userID, 10))

	var courses []Course
	if err := c.Call(ctx, fnUserCourses, params, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// RecentCourses lists the courses the user accessed recently
func (c *Client) RecentCourses(ctx context.Context) ([]RecentCourse, error) {
	var courses []RecentCourse
	if err := c.Call(ctx, fnRecentCourses, nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// CourseContents fetches the section and module tree of one course
func (c *Client) CourseContents(ctx context.Context, courseID int64) ([]Section, error) {
	params := url.Values{}
	params.Set("courseid", strconv.FormatInt(courseID, 10))

	var sections []Section
	if err := c.Call(ctx, fnCourseContents, params, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// Assignments fetches the assignments of the given courses. Course id arrays
// use Moodle's indexed parameter form (courseids[0], courseids[1], ...).
func (c *Client) Assignments(ctx context.Context, courseIDs []int64) ([]AssignmentCourse, error) {
	params := url.Values{}
	for i, id := range courseIDs {
		params.Set(fmt.Sprintf("courseids[%d]", i), strconv.FormatInt(id, 10))
	}

	var resp assignmentsResponse
	if err := c.Call(ctx, fnAssignments, params, &resp); err != nil {
		return nil, err
	}
	return resp.Courses, nil
}
