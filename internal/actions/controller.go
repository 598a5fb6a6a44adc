package actions

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/stormbench/internal/debug"
	"github.com/dshills/stormbench/internal/event"
)

// Trigger names a change stream, besides the debug state, that affects an
// action's enablement.
type Trigger int

const (
	// TriggerBreakpoints follows OnDidChangeBreakpoints.
	TriggerBreakpoints Trigger = iota
	// TriggerWatchExpressions follows OnDidChangeWatchExpressions.
	TriggerWatchExpressions
	// TriggerSessions follows OnDidNewSession and OnDidEndSession.
	TriggerSessions
	// TriggerWorkbenchState follows OnDidChangeWorkbenchState.
	TriggerWorkbenchState
	// TriggerConfiguration follows OnDidSelectConfiguration.
	TriggerConfiguration
)

// String returns the trigger name.
func (t Trigger) String() string {
	switch t {
	case TriggerBreakpoints:
		return "breakpoints"
	case TriggerWatchExpressions:
		return "watchExpressions"
	case TriggerSessions:
		return "sessions"
	case TriggerWorkbenchState:
		return "workbenchState"
	case TriggerConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Controller keeps an enabled flag equal to a predicate evaluated on the
// current debug snapshot.
//
// It subscribes to the state stream and to each trigger at construction,
// evaluates once immediately, and re-evaluates inline on every notification.
// UpdateEnablement is the only writer of the flag.
type Controller struct {
	svc       DebugService
	predicate Predicate
	logger    zerolog.Logger

	mu      sync.Mutex
	enabled bool

	disposables        event.Disposables
	onDidChangeEnabled *event.Emitter[bool]
}

// NewController subscribes to the debug service and computes the initial enablement.
// A nil predicate means Always.
func NewController(svc DebugService, predicate Predicate, logger zerolog.Logger, triggers ...Trigger) *Controller {
	if predicate == nil {
		predicate = Always
	}
	c := &Controller{
		svc:                svc,
		predicate:          predicate,
		logger:             logger,
		onDidChangeEnabled: event.NewEmitter[bool]("action.enabled", event.WithLogger(logger)),
	}

	update := func() { c.UpdateEnablement() }
	c.Track(svc.OnDidChangeState().Subscribe(func(debug.State) { update() }))
	for _, t := range triggers {
		switch t {
		case TriggerBreakpoints:
			c.Track(svc.OnDidChangeBreakpoints().Subscribe(func(struct{}) { update() }))
		case TriggerWatchExpressions:
			c.Track(svc.OnDidChangeWatchExpressions().Subscribe(func(struct{}) { update() }))
		case TriggerSessions:
			c.Track(svc.OnDidNewSession().Subscribe(func(debug.Session) { update() }))
			c.Track(svc.OnDidEndSession().Subscribe(func(debug.Session) { update() }))
		case TriggerWorkbenchState:
			c.Track(svc.OnDidChangeWorkbenchState().Subscribe(func(debug.WorkbenchState) { update() }))
		case TriggerConfiguration:
			c.Track(svc.OnDidSelectConfiguration().Subscribe(func(string) { update() }))
		}
	}
	c.disposables.Add(c.onDidChangeEnabled.Dispose)

	c.UpdateEnablement()
	return c
}

// Track ties a subscription to the controller's lifetime.
func (c *Controller) Track(sub event.Subscription) {
	c.disposables.AddSubscription(sub)
}

// Enabled returns the current enablement.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// IsEnabled evaluates the predicate on snap without changing anything.
// A panicking predicate counts as disabled.
func (c *Controller) IsEnabled(snap debug.Snapshot) (enabled bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Str("panic", fmt.Sprint(r)).Msg("enablement predicate panicked")
			enabled = false
		}
	}()
	return c.predicate(snap)
}

// UpdateEnablement re-evaluates the predicate on the current snapshot.
func (c *Controller) UpdateEnablement() {
	c.UpdateEnablementWith(c.svc.Snapshot())
}

// UpdateEnablementWith sets the flag from an explicit snapshot.
func (c *Controller) UpdateEnablementWith(snap debug.Snapshot) {
	if c.disposables.IsDisposed() {
		return
	}
	enabled := c.IsEnabled(snap)

	c.mu.Lock()
	changed := c.enabled != enabled
	c.enabled = enabled
	c.mu.Unlock()

	if changed {
		c.onDidChangeEnabled.Fire(enabled)
	}
}

// OnDidChangeEnabled fires with the new value whenever the flag flips.
func (c *Controller) OnDidChangeEnabled() event.Event[bool] {
	return c.onDidChangeEnabled
}

// IsDisposed reports whether Dispose has run.
func (c *Controller) IsDisposed() bool {
	return c.disposables.IsDisposed()
}

// Dispose releases every subscription. It is safe to call more than once.
func (c *Controller) Dispose() {
	c.disposables.Dispose()
}
