package actions

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dshills/stormbench/internal/debug"
	"github.com/dshills/stormbench/internal/event"
)

// DebugService is the part of the debug domain the actions read and mutate.
// *debug.Service satisfies it.
type DebugService interface {
	Snapshot() debug.Snapshot

	OnDidChangeState() event.Event[debug.State]
	OnDidChangeBreakpoints() event.Event[struct{}]
	OnDidChangeWatchExpressions() event.Event[struct{}]
	OnDidNewSession() event.Event[debug.Session]
	OnDidEndSession() event.Event[debug.Session]
	OnDidChangeWorkbenchState() event.Event[debug.WorkbenchState]
	OnDidSelectConfiguration() event.Event[string]

	StartDebugging(ctx context.Context, name string, noDebug bool) (debug.Session, error)
	StopSession(ctx context.Context, id string) error
	FocusSession(id string) error

	RemoveBreakpoint(id string) error
	RemoveAllBreakpoints()
	EnableOrDisableBreakpoints(enable bool, id string) error
	AreBreakpointsActivated() bool
	SetBreakpointsActivated(activated bool)
	ReapplyBreakpoints(ctx context.Context) error
	AddFunctionBreakpoint(name string) debug.FunctionBreakpoint

	AddWatchExpression(name string) debug.WatchExpression
	RemoveWatchExpressions(id string) error
}

// ClipboardWriter receives copied values. *clipboard.Bridge satisfies it.
type ClipboardWriter interface {
	WriteText(ctx context.Context, value string) error
}

// Evaluator evaluates an expression in a debug session.
type Evaluator interface {
	Evaluate(ctx context.Context, sessionID, expression string) (string, error)
}

// Panel toggles workbench panels such as the debug console.
type Panel interface {
	// TogglePanel shows the panel if hidden and hides it if shown.
	// It returns the resulting visibility.
	TogglePanel(id string) (bool, error)
}

// Opener opens a file in the editor.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Context carries the collaborators actions are constructed with.
// Only Debug is required; actions that need a missing collaborator fail
// at Run with ErrComponentNotAvailable.
type Context struct {
	Debug     DebugService
	Clipboard ClipboardWriter
	Evaluator Evaluator
	Panel     Panel
	Opener    Opener
	Logger    zerolog.Logger
}
