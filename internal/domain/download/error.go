package download

import "fmt"

// Error describes the failure of a single file transfer. It carries the source
// URL so a skip can always be reported with the identity of the file affected.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps a cause with the source URL it occurred on
func NewError(url string, err error) *Error {
	return &Error{URL: url, Err: err}
}
