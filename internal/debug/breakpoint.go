package debug

// Breakpoint is a source line breakpoint.
type Breakpoint struct {
	// ID is a unique identifier for this breakpoint.
	ID string `json:"id"`

	// Path is the source file path.
	Path string `json:"path"`

	// Line is the line number (1-based).
	Line int `json:"line"`

	// Condition is an optional condition expression.
	Condition string `json:"condition,omitempty"`

	// Enabled indicates if the breakpoint is enabled.
	Enabled bool `json:"enabled"`
}

// FunctionBreakpoint stops when the named function is entered.
// A function breakpoint with an empty name is still being edited.
type FunctionBreakpoint struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// ExceptionBreakpoint is an adapter-provided exception filter.
type ExceptionBreakpoint struct {
	// ID is the adapter filter identifier (e.g. "panic", "uncaught").
	ID      string `json:"id"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// WatchExpression is an expression re-evaluated on every stop.
// A watch expression with an empty name is still being edited.
type WatchExpression struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
