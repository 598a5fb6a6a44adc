// Package event provides the typed notification streams used across stormbench.
//
// An Emitter[T] delivers values synchronously to its listeners, inline in the
// call to Fire. Consumers receive the subscribe-only Event[T] view and get a
// Subscription back; cancelling it is idempotent and guarantees the listener
// is not invoked by any later Fire.
//
//	states := event.NewEmitter[debug.State]("debug.state")
//	sub := states.Subscribe(func(s debug.State) { ... })
//	defer sub.Cancel()
//
// Disposables groups the release callbacks of everything a component
// acquired, so a single Dispose call tears all of it down:
//
//	var d event.Disposables
//	d.AddSubscription(svc.OnDidChangeBreakpoints().Subscribe(update))
//	d.AddSubscription(svc.OnDidChangeState().Subscribe(update))
//	...
//	d.Dispose()
//
// The host runs listeners on a single cooperative thread. The types are still
// safe for concurrent use, but ordering guarantees only hold per goroutine.
package event
