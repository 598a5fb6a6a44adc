package actions

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry holds actions by ID.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]*Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]*Action),
	}
}

// NewDefaultRegistry creates a registry holding every debug action.
func NewDefaultRegistry(actx Context) (*Registry, error) {
	r := NewRegistry()

	constructors := []func(Context) *Action{
		NewStartAction,
		NewRunAction,
		NewSelectAndStartAction,
		NewStopAction,
		NewConfigureAction,
		NewRemoveBreakpointAction,
		NewRemoveAllBreakpointsAction,
		NewEnableAllBreakpointsAction,
		NewDisableAllBreakpointsAction,
		NewReapplyBreakpointsAction,
		NewAddFunctionBreakpointAction,
		NewAddWatchExpressionAction,
		NewRemoveAllWatchExpressionsAction,
		NewToggleBreakpointsActivatedAction,
		NewFocusSessionAction,
		NewCopyValueAction,
		NewToggleReplAction,
	}

	for _, newAction := range constructors {
		a := newAction(actx)
		if err := r.Register(a); err != nil {
			a.Dispose()
			r.Dispose()
			return nil, err
		}
	}
	return r, nil
}

// Register adds an action.
func (r *Registry) Register(a *Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[a.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAction, a.ID())
	}
	r.actions[a.ID()] = a
	return nil
}

// Get returns an action by ID.
func (r *Registry) Get(id string) (*Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.actions[id]
	return a, ok
}

// List returns every action sorted by ID.
func (r *Registry) List() []*Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Action, 0, len(r.actions))
	for _, a := range r.actions {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID() < list[j].ID() })
	return list
}

// Run runs an enabled action.
func (r *Registry) Run(ctx context.Context, id string, arg any) error {
	a, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrActionNotFound, id)
	}
	if !a.Enabled() {
		return &RunError{ActionID: id, Err: ErrActionDisabled}
	}
	return a.Run(ctx, arg)
}

// Dispose disposes every action and empties the registry.
func (r *Registry) Dispose() {
	r.mu.Lock()
	actions := r.actions
	r.actions = make(map[string]*Action)
	r.mu.Unlock()

	for _, a := range actions {
		a.Dispose()
	}
}
