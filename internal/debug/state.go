package debug

// State is the lifecycle phase of the debug service.
type State int

const (
	// StateInactive means no session is running.
	StateInactive State = iota
	// StateInitializing means a session is being launched or attached.
	StateInitializing
	// StateRunning means the focused debuggee is executing.
	StateRunning
	// StateStopped means the focused debuggee is paused (breakpoint, step, exception).
	StateStopped
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// IsActive returns true when a session is running or stopped.
func (s State) IsActive() bool {
	return s == StateRunning || s == StateStopped
}

// WorkbenchState describes what the editor window has open.
type WorkbenchState int

const (
	// WorkbenchEmpty means no folder is open.
	WorkbenchEmpty WorkbenchState = iota
	// WorkbenchFolder means a single folder is open.
	WorkbenchFolder
	// WorkbenchWorkspace means a multi-root workspace is open.
	WorkbenchWorkspace
)

// String returns a string representation of the workbench state.
func (s WorkbenchState) String() string {
	switch s {
	case WorkbenchEmpty:
		return "empty"
	case WorkbenchFolder:
		return "folder"
	case WorkbenchWorkspace:
		return "workspace"
	default:
		return "unknown"
	}
}
