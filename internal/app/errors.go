package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrClosed indicates the application has been shut down.
	ErrClosed = errors.New("application closed")

	// ErrScriptNotFound indicates no script is configured under the name.
	ErrScriptNotFound = errors.New("script not found")

	// ErrNoEditor indicates no editor command is configured for opening files.
	ErrNoEditor = errors.New("no editor configured")
)

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
