package service

import (
	"errors"
	"fmt"
)

var (
	// ErrFileTooLarge is returned when a transfer exceeds the configured
	// maximum file size.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
)

func ErrUnexpectedStatus(statusCode int) error {
	return fmt.Errorf("unexpected HTTP status code: %d", statusCode)
}
