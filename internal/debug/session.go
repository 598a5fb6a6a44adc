package debug

import (
	"context"

	"github.com/dshills/stormbench/internal/launch"
)

// Session is a snapshot of a live debug session.
type Session struct {
	ID            string
	Name          string
	Configuration launch.Configuration
	NoDebug       bool
	State         State
}

// Launcher performs the adapter-facing side of session management.
// The service owns all bookkeeping and events; a Launcher only talks to the
// debug adapter.
type Launcher interface {
	// Launch starts or attaches the debuggee described by s.
	Launch(ctx context.Context, s Session) error

	// Terminate ends the debuggee.
	Terminate(ctx context.Context, s Session) error

	// SendBreakpoints pushes the breakpoint set in snap to the session.
	SendBreakpoints(ctx context.Context, s Session, snap Snapshot) error
}
