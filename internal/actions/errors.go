package actions

import (
	"errors"
	"fmt"
)

// Sentinel errors for actions.
var (
	// ErrActionNotFound is returned when no action has the requested ID.
	ErrActionNotFound = errors.New("action not found")

	// ErrActionDisabled is returned when running an action that is not enabled.
	ErrActionDisabled = errors.New("action is disabled")

	// ErrActionDisposed is returned when running an action after Dispose.
	ErrActionDisposed = errors.New("action is disposed")

	// ErrDuplicateAction is returned when registering an ID twice.
	ErrDuplicateAction = errors.New("action already registered")

	// ErrInvalidArgument is returned when Run receives an argument of the wrong type.
	ErrInvalidArgument = errors.New("invalid action argument")

	// ErrNoSession is returned when an action needs a session and none is focused.
	ErrNoSession = errors.New("no debug session")

	// ErrNoLaunchFile is returned when there is no launch file to open.
	ErrNoLaunchFile = errors.New("no launch file")

	// ErrComponentNotAvailable indicates a collaborator was not supplied in Context.
	ErrComponentNotAvailable = errors.New("component not available")
)

// RunError wraps a failure from an action's Run.
type RunError struct {
	ActionID string
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("action %s: %v", e.ActionID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
