package actions

import (
	"context"
	"sync"

	"github.com/dshills/stormbench/internal/debug"
	"github.com/dshills/stormbench/internal/event"
)

// RunFunc performs an action's single domain operation.
type RunFunc func(ctx context.Context, arg any) error

// Action is a menu or command entry whose enablement tracks debug state.
type Action struct {
	id      string
	tooltip string
	run     RunFunc
	ctrl    *Controller

	mu    sync.RWMutex
	label string
}

// Spec describes an action to construct.
type Spec struct {
	ID        string
	Label     string
	Tooltip   string
	Predicate Predicate
	Triggers  []Trigger
	Run       RunFunc
}

// New builds an action and its enablement controller.
func New(actx Context, spec Spec) *Action {
	return &Action{
		id:      spec.ID,
		label:   spec.Label,
		tooltip: spec.Tooltip,
		run:     spec.Run,
		ctrl:    NewController(actx.Debug, spec.Predicate, actx.Logger.With().Str("action", spec.ID).Logger(), spec.Triggers...),
	}
}

// ID returns the stable action identifier.
func (a *Action) ID() string {
	return a.id
}

// Label returns the display label.
func (a *Action) Label() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.label
}

// SetLabel changes the display label.
func (a *Action) SetLabel(label string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.label = label
}

// Tooltip returns the hover text, falling back to the label.
func (a *Action) Tooltip() string {
	if a.tooltip != "" {
		return a.tooltip
	}
	return a.Label()
}

// Enabled reports whether the action is currently actionable.
func (a *Action) Enabled() bool {
	return a.ctrl.Enabled()
}

// Controller returns the enablement controller.
func (a *Action) Controller() *Controller {
	return a.ctrl
}

// OnDidChangeEnabled fires when enablement flips.
func (a *Action) OnDidChangeEnabled() event.Event[bool] {
	return a.ctrl.OnDidChangeEnabled()
}

// Run performs the action. Enablement is not recomputed here; it follows
// from the notifications the operation triggers.
func (a *Action) Run(ctx context.Context, arg any) error {
	if a.ctrl.IsDisposed() {
		return &RunError{ActionID: a.id, Err: ErrActionDisposed}
	}
	if a.run == nil {
		return nil
	}
	if err := a.run(ctx, arg); err != nil {
		return &RunError{ActionID: a.id, Err: err}
	}
	return nil
}

// Dispose releases every subscription the action holds. Safe to call twice.
func (a *Action) Dispose() {
	a.ctrl.Dispose()
}

// followLabel keeps the label in sync with snap-derived text.
func (a *Action) followLabel(svc DebugService, label func(debug.Snapshot) string) {
	a.SetLabel(label(svc.Snapshot()))
	a.ctrl.Track(svc.OnDidChangeBreakpoints().Subscribe(func(struct{}) {
		a.SetLabel(label(svc.Snapshot()))
	}))
}
