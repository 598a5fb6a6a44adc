package actions

import (
	"context"
	"fmt"

	"github.com/dshills/stormbench/internal/debug"
)

// Action identifiers.
const (
	ActionStart                      = "workbench.action.debug.start"
	ActionRun                        = "workbench.action.debug.run"
	ActionSelectAndStart             = "workbench.action.debug.selectandstart"
	ActionStop                       = "workbench.action.debug.stop"
	ActionConfigure                  = "workbench.action.debug.configure"
	ActionRemoveBreakpoint           = "workbench.debug.viewlet.action.removeBreakpoint"
	ActionRemoveAllBreakpoints       = "workbench.debug.viewlet.action.removeAllBreakpoints"
	ActionEnableAllBreakpoints       = "workbench.debug.viewlet.action.enableAllBreakpoints"
	ActionDisableAllBreakpoints      = "workbench.debug.viewlet.action.disableAllBreakpoints"
	ActionReapplyBreakpoints         = "workbench.debug.viewlet.action.reapplyBreakpointsAction"
	ActionAddFunctionBreakpoint      = "workbench.debug.viewlet.action.addFunctionBreakpointAction"
	ActionAddWatchExpression         = "workbench.debug.viewlet.action.addWatchExpression"
	ActionRemoveAllWatchExpressions  = "workbench.debug.viewlet.action.removeAllWatchExpressions"
	ActionToggleBreakpointsActivated = "workbench.debug.viewlet.action.toggleBreakpointsActivatedAction"
	ActionFocusSession               = "workbench.debug.action.focusSession"
	ActionCopyValue                  = "workbench.debug.viewlet.action.copyValue"
	ActionToggleRepl                 = "workbench.debug.action.toggleRepl"
)

// ReplPanelID identifies the debug console panel.
const ReplPanelID = "workbench.panel.repl"

const (
	labelActivateBreakpoints   = "Activate Breakpoints"
	labelDeactivateBreakpoints = "Deactivate Breakpoints"
)

// Variable is the argument to the copy-value action.
type Variable struct {
	// Name is the displayed variable name.
	Name string
	// Value is the already evaluated, possibly truncated, value.
	Value string
	// EvaluateName is the expression that re-evaluates the full value. Optional.
	EvaluateName string
}

func stringArg(arg any) (string, bool) {
	s, ok := arg.(string)
	return s, ok && s != ""
}

// NewStartAction starts a debug session with the selected configuration.
func NewStartAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionStart,
		Label:     "Start Debugging",
		Predicate: CanStart,
		Triggers:  []Trigger{TriggerSessions, TriggerConfiguration, TriggerWorkbenchState},
		Run: func(ctx context.Context, _ any) error {
			_, err := actx.Debug.StartDebugging(ctx, "", false)
			return err
		},
	})
}

// NewRunAction starts the selected configuration without debugging.
func NewRunAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionRun,
		Label:     "Start Without Debugging",
		Predicate: CanStart,
		Triggers:  []Trigger{TriggerSessions, TriggerConfiguration, TriggerWorkbenchState},
		Run: func(ctx context.Context, _ any) error {
			_, err := actx.Debug.StartDebugging(ctx, "", true)
			return err
		},
	})
}

// NewSelectAndStartAction starts the configuration named by the string argument.
func NewSelectAndStartAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionSelectAndStart,
		Label:     "Select and Start Debugging",
		Predicate: CanStart,
		Triggers:  []Trigger{TriggerSessions, TriggerConfiguration, TriggerWorkbenchState},
		Run: func(ctx context.Context, arg any) error {
			name, ok := stringArg(arg)
			if !ok {
				return fmt.Errorf("%w: configuration name required", ErrInvalidArgument)
			}
			_, err := actx.Debug.StartDebugging(ctx, name, false)
			return err
		},
	})
}

// NewStopAction stops the session named by the argument, or the focused one.
func NewStopAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionStop,
		Label:     "Stop",
		Predicate: CanStop,
		Triggers:  []Trigger{TriggerSessions},
		Run: func(ctx context.Context, arg any) error {
			id, ok := stringArg(arg)
			if !ok {
				id = actx.Debug.Snapshot().FocusedSession
			}
			if id == "" {
				return ErrNoSession
			}
			return actx.Debug.StopSession(ctx, id)
		},
	})
}

// NewConfigureAction opens the launch file holding the selected configuration.
func NewConfigureAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionConfigure,
		Label:     "Open launch configuration",
		Predicate: CanConfigure,
		Triggers:  []Trigger{TriggerWorkbenchState, TriggerConfiguration},
		Run: func(ctx context.Context, _ any) error {
			if actx.Opener == nil {
				return fmt.Errorf("%w: opener", ErrComponentNotAvailable)
			}
			path := launchSource(actx.Debug.Snapshot())
			if path == "" {
				return ErrNoLaunchFile
			}
			return actx.Opener.Open(ctx, path)
		},
	})
}

// launchSource picks the file of the selected configuration, else the first launch file.
func launchSource(s debug.Snapshot) string {
	for _, set := range s.Launches {
		if _, ok := set.Find(s.SelectedConfiguration); ok && s.SelectedConfiguration != "" {
			return set.Source
		}
	}
	for _, set := range s.Launches {
		if set.Source != "" {
			return set.Source
		}
	}
	return ""
}

// NewRemoveBreakpointAction removes the breakpoint whose ID is the argument.
func NewRemoveBreakpointAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionRemoveBreakpoint,
		Label:     "Remove Breakpoint",
		Predicate: CanRemoveBreakpoints,
		Triggers:  []Trigger{TriggerBreakpoints},
		Run: func(_ context.Context, arg any) error {
			id, ok := stringArg(arg)
			if !ok {
				return fmt.Errorf("%w: breakpoint id required", ErrInvalidArgument)
			}
			return actx.Debug.RemoveBreakpoint(id)
		},
	})
}

// NewRemoveAllBreakpointsAction removes every line and function breakpoint.
func NewRemoveAllBreakpointsAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionRemoveAllBreakpoints,
		Label:     "Remove All Breakpoints",
		Predicate: CanRemoveBreakpoints,
		Triggers:  []Trigger{TriggerBreakpoints},
		Run: func(context.Context, any) error {
			actx.Debug.RemoveAllBreakpoints()
			return nil
		},
	})
}

// NewEnableAllBreakpointsAction enables breakpoints of all kinds.
func NewEnableAllBreakpointsAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionEnableAllBreakpoints,
		Label:     "Enable All Breakpoints",
		Predicate: CanEnableAllBreakpoints,
		Triggers:  []Trigger{TriggerBreakpoints},
		Run: func(context.Context, any) error {
			return actx.Debug.EnableOrDisableBreakpoints(true, "")
		},
	})
}

// NewDisableAllBreakpointsAction disables breakpoints of all kinds.
func NewDisableAllBreakpointsAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionDisableAllBreakpoints,
		Label:     "Disable All Breakpoints",
		Predicate: CanDisableAllBreakpoints,
		Triggers:  []Trigger{TriggerBreakpoints},
		Run: func(context.Context, any) error {
			return actx.Debug.EnableOrDisableBreakpoints(false, "")
		},
	})
}

// NewReapplyBreakpointsAction re-sends all breakpoints to the active sessions.
func NewReapplyBreakpointsAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionReapplyBreakpoints,
		Label:     "Reapply All Breakpoints",
		Predicate: CanReapplyBreakpoints,
		Triggers:  []Trigger{TriggerBreakpoints},
		Run: func(ctx context.Context, _ any) error {
			return actx.Debug.ReapplyBreakpoints(ctx)
		},
	})
}

// NewAddFunctionBreakpointAction adds an unnamed function breakpoint for editing.
func NewAddFunctionBreakpointAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionAddFunctionBreakpoint,
		Label:     "Add Function Breakpoint",
		Predicate: CanAddFunctionBreakpoint,
		Triggers:  []Trigger{TriggerBreakpoints},
		Run: func(context.Context, any) error {
			actx.Debug.AddFunctionBreakpoint("")
			return nil
		},
	})
}

// NewAddWatchExpressionAction adds an unnamed watch expression for editing.
func NewAddWatchExpressionAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionAddWatchExpression,
		Label:     "Add Expression",
		Predicate: CanAddWatchExpression,
		Triggers:  []Trigger{TriggerWatchExpressions},
		Run: func(context.Context, any) error {
			actx.Debug.AddWatchExpression("")
			return nil
		},
	})
}

// NewRemoveAllWatchExpressionsAction clears the watch list.
func NewRemoveAllWatchExpressionsAction(actx Context) *Action {
	return New(actx, Spec{
		ID:        ActionRemoveAllWatchExpressions,
		Label:     "Remove All Expressions",
		Predicate: CanRemoveAllWatchExpressions,
		Triggers:  []Trigger{TriggerWatchExpressions},
		Run: func(context.Context, any) error {
			return actx.Debug.RemoveWatchExpressions("")
		},
	})
}

// NewToggleBreakpointsActivatedAction flips global breakpoint activation.
// Its label names the operation the next run performs.
func NewToggleBreakpointsActivatedAction(actx Context) *Action {
	a := New(actx, Spec{
		ID:        ActionToggleBreakpointsActivated,
		Label:     labelDeactivateBreakpoints,
		Predicate: CanToggleBreakpointsActivated,
		Triggers:  []Trigger{TriggerBreakpoints},
		Run: func(context.Context, any) error {
			actx.Debug.SetBreakpointsActivated(!actx.Debug.AreBreakpointsActivated())
			return nil
		},
	})
	a.followLabel(actx.Debug, func(s debug.Snapshot) string {
		if s.BreakpointsActivated {
			return labelDeactivateBreakpoints
		}
		return labelActivateBreakpoints
	})
	return a
}

// NewFocusSessionAction focuses the session whose ID is the argument.
func NewFocusSessionAction(actx Context) *Action {
	return New(actx, Spec{
		ID:    ActionFocusSession,
		Label: "Focus Session",
		Run: func(_ context.Context, arg any) error {
			id, ok := stringArg(arg)
			if !ok {
				return fmt.Errorf("%w: session id required", ErrInvalidArgument)
			}
			return actx.Debug.FocusSession(id)
		},
	})
}

// NewCopyValueAction copies a variable's value to the clipboard.
//
// When the variable has an evaluate name and a session is focused, the full
// value is re-evaluated first. If evaluation fails the displayed value is
// copied instead; that is the only failure this action absorbs.
func NewCopyValueAction(actx Context) *Action {
	return New(actx, Spec{
		ID:    ActionCopyValue,
		Label: "Copy Value",
		Run: func(ctx context.Context, arg any) error {
			v, ok := arg.(Variable)
			if !ok {
				if p, isPtr := arg.(*Variable); isPtr && p != nil {
					v, ok = *p, true
				}
			}
			if !ok {
				return fmt.Errorf("%w: variable required", ErrInvalidArgument)
			}
			if actx.Clipboard == nil {
				return fmt.Errorf("%w: clipboard", ErrComponentNotAvailable)
			}

			value := v.Value
			session := actx.Debug.Snapshot().FocusedSession
			if v.EvaluateName != "" && session != "" && actx.Evaluator != nil {
				full, err := actx.Evaluator.Evaluate(ctx, session, v.EvaluateName)
				if err != nil {
					actx.Logger.Debug().Err(err).Str("expression", v.EvaluateName).Msg("copy value: evaluation failed, copying displayed value")
				} else {
					value = full
				}
			}
			return actx.Clipboard.WriteText(ctx, value)
		},
	})
}

// NewToggleReplAction shows or hides the debug console panel.
func NewToggleReplAction(actx Context) *Action {
	return New(actx, Spec{
		ID:    ActionToggleRepl,
		Label: "Debug Console",
		Run: func(context.Context, any) error {
			if actx.Panel == nil {
				return fmt.Errorf("%w: panel", ErrComponentNotAvailable)
			}
			_, err := actx.Panel.TogglePanel(ReplPanelID)
			return err
		},
	})
}
