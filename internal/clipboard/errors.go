package clipboard

import (
	"errors"
	"fmt"
)

// Sentinel errors for the clipboard protocol.
var (
	// ErrClosed is returned for calls on a closed client, and for requests
	// still pending when the transport closes.
	ErrClosed = errors.New("clipboard client closed")

	// ErrInvalidMessage is returned for frames that are not protocol messages.
	ErrInvalidMessage = errors.New("invalid clipboard message")

	// ErrUnknownCommand is returned by the server for unsupported commands.
	ErrUnknownCommand = errors.New("unknown clipboard command")
)

// RemoteError is a failure reported by the host side of the bridge.
type RemoteError struct {
	Command string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("clipboard %s: %s", e.Command, e.Message)
}
