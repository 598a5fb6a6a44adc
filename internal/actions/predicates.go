package actions

import "github.com/dshills/stormbench/internal/debug"

// Predicate reports whether an action is actionable in the given state.
// Predicates are pure: they must not mutate anything and may be called any
// number of times. Empty collections make a condition false, never an error.
type Predicate func(debug.Snapshot) bool

// Always is the default predicate.
func Always(debug.Snapshot) bool { return true }

// CanStart is false while a session is initializing, and false when sessions
// exist but no launch set offers a configuration to start another one.
func CanStart(s debug.Snapshot) bool {
	if s.State == debug.StateInitializing {
		return false
	}
	return !(len(s.Sessions) > 0 && noConfigurations(s))
}

// noConfigurations reports whether every launch set has zero named configurations.
// With no launch sets at all this is vacuously true.
func noConfigurations(s debug.Snapshot) bool {
	for _, set := range s.Launches {
		if len(set.Names()) > 0 {
			return false
		}
	}
	return true
}

// CanStop requires at least one session.
func CanStop(s debug.Snapshot) bool {
	return len(s.Sessions) > 0
}

// CanConfigure requires an open folder or workspace to hold a launch file.
func CanConfigure(s debug.Snapshot) bool {
	return s.WorkbenchState != debug.WorkbenchEmpty
}

// CanRemoveBreakpoints requires a line or function breakpoint.
func CanRemoveBreakpoints(s debug.Snapshot) bool {
	return len(s.Breakpoints) > 0 || len(s.FunctionBreakpoints) > 0
}

// CanEnableAllBreakpoints requires a disabled breakpoint of any kind.
func CanEnableAllBreakpoints(s debug.Snapshot) bool {
	return s.AnyBreakpointEnabled(false)
}

// CanDisableAllBreakpoints requires an enabled breakpoint of any kind.
func CanDisableAllBreakpoints(s debug.Snapshot) bool {
	return s.AnyBreakpointEnabled(true)
}

// CanReapplyBreakpoints requires a running or stopped session and at least one breakpoint.
func CanReapplyBreakpoints(s debug.Snapshot) bool {
	return s.State.IsActive() && s.TotalBreakpoints() > 0
}

// CanAddFunctionBreakpoint is false while a function breakpoint is being
// edited or any existing one is still unnamed.
func CanAddFunctionBreakpoint(s debug.Snapshot) bool {
	if s.EditingFunctionBreakpoint != "" {
		return false
	}
	for _, fbp := range s.FunctionBreakpoints {
		if fbp.Name == "" {
			return false
		}
	}
	return true
}

// CanAddWatchExpression is false while any watch expression is unnamed.
func CanAddWatchExpression(s debug.Snapshot) bool {
	for _, w := range s.WatchExpressions {
		if w.Name == "" {
			return false
		}
	}
	return true
}

// CanRemoveAllWatchExpressions requires at least one watch expression.
func CanRemoveAllWatchExpressions(s debug.Snapshot) bool {
	return len(s.WatchExpressions) > 0
}

// CanToggleBreakpointsActivated requires a line or function breakpoint.
func CanToggleBreakpointsActivated(s debug.Snapshot) bool {
	return len(s.FunctionBreakpoints)+len(s.Breakpoints) > 0
}
