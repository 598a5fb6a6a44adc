// Package clipboard bridges clipboard access between the host process and
// isolated execution contexts (plugin sandboxes, extension host processes).
//
// The bridge is a stateless pass-through: text is neither transformed nor
// re-encoded, and failures from the native clipboard reach the caller
// unmodified. Remote callers talk to a Server through a Client over a framed
// JSON transport.
package clipboard

import (
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard is the native text clipboard.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(value string) error
}

// System is the desktop clipboard.
type System struct{}

// NewSystem returns the desktop clipboard.
func NewSystem() System {
	return System{}
}

// Unsupported reports whether no clipboard backend is available.
func (System) Unsupported() bool {
	return clipboard.Unsupported
}

// ReadText returns the clipboard text.
func (System) ReadText() (string, error) {
	return clipboard.ReadAll()
}

// WriteText replaces the clipboard text.
func (System) WriteText(value string) error {
	return clipboard.WriteAll(value)
}

// Memory is an in-process clipboard for headless hosts and tests.
type Memory struct {
	mu   sync.Mutex
	text string
}

// NewMemory returns an empty in-process clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// ReadText returns the stored text.
func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// WriteText stores value.
func (m *Memory) WriteText(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = value
	return nil
}
