package debug

import "github.com/dshills/stormbench/internal/launch"

// Snapshot is an immutable copy of the debug state at one instant.
type Snapshot struct {
	State          State
	WorkbenchState WorkbenchState

	Sessions       []Session
	FocusedSession string

	Launches              []launch.Set
	SelectedConfiguration string

	Breakpoints          []Breakpoint
	FunctionBreakpoints  []FunctionBreakpoint
	ExceptionBreakpoints []ExceptionBreakpoint
	BreakpointsActivated bool

	// EditingFunctionBreakpoint is the ID of the function breakpoint whose
	// name is being entered, or empty.
	EditingFunctionBreakpoint string

	WatchExpressions []WatchExpression
}

// TotalBreakpoints counts breakpoints of all three kinds.
func (s Snapshot) TotalBreakpoints() int {
	return len(s.Breakpoints) + len(s.FunctionBreakpoints) + len(s.ExceptionBreakpoints)
}

// Session returns the session with the given ID.
func (s Snapshot) Session(id string) (Session, bool) {
	for _, sess := range s.Sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return Session{}, false
}

// AnyBreakpointEnabled reports whether some breakpoint of any kind has the given enabled flag.
func (s Snapshot) AnyBreakpointEnabled(enabled bool) bool {
	for _, bp := range s.Breakpoints {
		if bp.Enabled == enabled {
			return true
		}
	}
	for _, fbp := range s.FunctionBreakpoints {
		if fbp.Enabled == enabled {
			return true
		}
	}
	for _, ebp := range s.ExceptionBreakpoints {
		if ebp.Enabled == enabled {
			return true
		}
	}
	return false
}
