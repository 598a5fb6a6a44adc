package debug

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the debug service.
var (
	// ErrSessionNotFound is returned when a session ID is unknown.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBreakpointNotFound is returned when a breakpoint ID is unknown.
	ErrBreakpointNotFound = errors.New("breakpoint not found")

	// ErrWatchNotFound is returned when a watch expression ID is unknown.
	ErrWatchNotFound = errors.New("watch expression not found")

	// ErrConfigurationNotFound is returned when a launch configuration name is unknown.
	ErrConfigurationNotFound = errors.New("launch configuration not found")

	// ErrNoConfiguration is returned when starting with no configuration to use.
	ErrNoConfiguration = errors.New("no launch configuration available")

	// ErrInvalidLine is returned for line numbers below 1.
	ErrInvalidLine = errors.New("line must be >= 1")
)

// OperationError records which service operation failed and on what.
type OperationError struct {
	Op     string // Operation name (e.g., "start", "stop")
	Target string // Session ID, configuration name, breakpoint ID
	Err    error
}

func (e *OperationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("debug %s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("debug %s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func opError(op, target string, err error) error {
	return &OperationError{Op: op, Target: target, Err: err}
}
