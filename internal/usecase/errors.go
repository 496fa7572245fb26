package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrAborted is returned when the user abandons the run before any
	// download starts, e.g. by quitting the course picker.
	ErrAborted = errors.New("run aborted")
)

func ErrListCourses(err error) error {
	return fmt.Errorf("failed to list courses: %w", err)
}

func ErrSelectCourses(err error) error {
	return fmt.Errorf("course selection failed: %w", err)
}
