// Package actions implements the debug workbench actions and the controller
// that keeps their enablement in sync with the debug model.
//
// Every action holds a Controller built from a Predicate, a plain function
// over a debug.Snapshot. The controller subscribes to the debug state stream
// plus the streams named by its Triggers, evaluates the predicate once at
// construction and again inline on every notification:
//
//	a := actions.New(actx, actions.Spec{
//	    ID:        "example.clearWatches",
//	    Predicate: actions.CanRemoveAllWatchExpressions,
//	    Triggers:  []actions.Trigger{actions.TriggerWatchExpressions},
//	    Run: func(ctx context.Context, _ any) error {
//	        return actx.Debug.RemoveWatchExpressions("")
//	    },
//	})
//	defer a.Dispose()
//
// Run performs exactly one domain operation and never touches enablement;
// the resulting notification does that. Dispose cancels every subscription
// and is idempotent.
//
// The predicates are exported so they can be tested without building actions.
package actions
