package moodle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwrtux/moodle-magnet/internal/infrastructure/observability/adapters/stdout"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-token", server.Client(), stdout.NewLogger(), stdout.NewMetrics())
	return server, client
}

func TestCallSendsRequiredParameters(t *testing.T) {
	var query map[string][]string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		assert.Equal(t, "/webservice/rest/server.php", r.URL.Path)
		w.Write([]byte(`{}`))
	})

	err := client.Call(context.Background(), "core_webservice_get_site_info", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"test-token"}, query["wstoken"])
	assert.Equal(t, []string{"core_webservice_get_site_info"}, query["wsfunction"])
	assert.Equal(t, []string{"json"}, query["moodlewsrestformat"])
}

func TestCallTrimsTrailingSlash(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "tok", server.Client(), stdout.NewLogger(), stdout.NewMetrics())
	err := client.Call(context.Background(), "fn", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "/webservice/rest/server.php", path)
}

func TestCallDetectsExceptionPayload(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Moodle reports errors with HTTP 200 and an exception object
		w.Write([]byte(`{"exception":"moodle_exception","errorcode":"invalidtoken","message":"Invalid token - token not found"}`))
	})

	err := client.Call(context.Background(), "core_course_get_contents", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalidtoken", apiErr.ErrorCode)
	assert.Equal(t, "core_course_get_contents", apiErr.Function)
	assert.Contains(t, apiErr.Error(), "Invalid token")
}

func TestCallNonOKStatus(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("forbidden"))
	})

	err := client.Call(context.Background(), "fn", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestCallInvalidJSON(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	var out []Section
	err := client.Call(context.Background(), "fn", nil, &out)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
}

func TestSiteInfo(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "core_webservice_get_site_info", r.URL.Query().Get("wsfunction"))
		w.Write([]byte(`{"sitename":"Test University","username":"student","userid":42,"fullname":"Test Student"}`))
	})

	info, err := client.SiteInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(42), info.UserID)
	assert.Equal(t, "Test University", info.SiteName)
}

func TestUserCourses(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("userid"))
		w.Write([]byte(`[
			{"id":101,"shortname":"algo","fullname":"Algorithms","visible":1},
			{"id":102,"shortname":"db","fullname":"Databases","visible":0}
		]`))
	})

	courses, err := client.UserCourses(context.Background(), 42)
	require.NoError(t, err)

	require.Len(t, courses, 2)
	assert.Equal(t, int64(101), courses[0].ID)
	assert.Equal(t, "Algorithms", courses[0].FullName)
	assert.Equal(t, 0, courses[1].Visible)
}

func TestRecentCourses(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":7,"fullname":"Networks","shortname":"net","hidden":false,"visible":true},
			{"id":8,"fullname":"Old Course","shortname":"old","hidden":true,"visible":true}
		]`))
	})

	courses, err := client.RecentCourses(context.Background())
	require.NoError(t, err)

	require.Len(t, courses, 2)
	assert.False(t, courses[0].Hidden)
	assert.True(t, courses[1].Hidden)
}

func TestCourseContents(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "101", r.URL.Query().Get("courseid"))
		w.Write([]byte(`[
			{
				"id": 1, "name": "Week 1", "visible": 1, "section": 0, "uservisible": true,
				"modules": [
					{
						"id": 10, "name": "Lecture Notes", "modname": "resource", "visible": 1, "uservisible": true,
						"contents": [
							{"type":"file","filename":"notes.pdf","filepath":"/","filesize":2048,
							 "fileurl":"https://moodle.test/webservice/pluginfile.php/1/notes.pdf","timemodified":1700000000}
						]
					}
				]
			}
		]`))
	})

	sections, err := client.CourseContents(context.Background(), 101)
	require.NoError(t, err)

	require.Len(t, sections, 1)
	require.Len(t, sections[0].Modules, 1)
	require.Len(t, sections[0].Modules[0].Contents, 1)

	content := sections[0].Modules[0].Contents[0]
	assert.Equal(t, "notes.pdf", content.Filename)
	assert.Equal(t, int64(2048), content.Filesize)
	assert.Equal(t, "file", content.Type)
}

func TestAssignments(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "101", r.URL.Query().Get("courseids[0]"))
		assert.Equal(t, "102", r.URL.Query().Get("courseids[1]"))
		w.Write([]byte(`{
			"courses": [
				{
					"id": 101, "fullname": "Algorithms", "shortname": "algo",
					"assignments": [
						{
							"id": 5, "cmid": 50, "course": 101, "name": "Homework 1", "duedate": 1700000000,
							"introattachments": [
								{"filename":"hw1.pdf","filepath":"/","filesize":512,
								 "fileurl":"https://moodle.test/webservice/pluginfile.php/2/hw1.pdf","timemodified":1690000000}
							]
						}
					]
				}
			],
			"warnings": []
		}`))
	})

	courses, err := client.Assignments(context.Background(), []int64{101, 102})
	require.NoError(t, err)

	require.Len(t, courses, 1)
	require.Len(t, courses[0].Assignments, 1)
	require.Len(t, courses[0].Assignments[0].IntroAttachments, 1)
	assert.Equal(t, "hw1.pdf", courses[0].Assignments[0].IntroAttachments[0].Filename)
}
