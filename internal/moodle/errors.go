package moodle

import "fmt"

// APIError describes a failed Moodle web service call. Moodle signals API
// errors with HTTP 200 and an exception payload, so Status alone is not a
// success indicator; Exception carries the payload-level failure when set.
type APIError struct {
	Function  string
	Status    int
	Exception string
	ErrorCode string
	Message   string
	Err       error
}

func (e *APIError) Error() string {
	switch {
	case e.Exception != "":
		return fmt.Sprintf("moodle %s: %s (%s)", e.Function, e.Message, e.ErrorCode)
	case e.Err != nil:
		return fmt.Sprintf("moodle %s: %v", e.Function, e.Err)
	default:
		return fmt.Sprintf("moodle %s: unexpected status %d: %s", e.Function, e.Status, e.Message)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// newStatusError reports a non-2xx HTTP response
func newStatusError(function string, status int, body string) *APIError {
	return &APIError{
		Function: function,
		Status:   status,
		Message:  truncate(body, 512),
	}
}

// newParseError reports a response body that is not valid JSON
func newParseError(function string, err error) *APIError {
	return &APIError{
		Function: function,
		Err:      fmt.Errorf("invalid JSON response: %w", err),
	}
}

// newTransportError reports a request that never produced a response
func newTransportError(function string, err error) *APIError {
	return &APIError{
		Function: function,
		Err:      err,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
