package plugin

import "errors"

var (
	// ErrModuleExists is returned when a module name is registered twice.
	ErrModuleExists = errors.New("module already registered")

	// ErrModuleNotFound is returned when a named module is not registered.
	ErrModuleNotFound = errors.New("module not found")

	// ErrHostClosed is returned when a closed host is used.
	ErrHostClosed = errors.New("plugin host closed")
)
