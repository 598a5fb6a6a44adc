package event

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Event is the subscribe-only view of an Emitter handed to consumers.
type Event[T any] interface {
	Subscribe(fn func(T)) Subscription
}

// EmitterOption configures an Emitter.
type EmitterOption func(*emitterConfig)

type emitterConfig struct {
	logger zerolog.Logger
}

// WithLogger sets the logger used to report listener panics.
func WithLogger(l zerolog.Logger) EmitterOption {
	return func(c *emitterConfig) {
		c.logger = l
	}
}

type listener[T any] struct {
	sub *subscription
	fn  func(T)
}

// Emitter delivers values of type T to its listeners.
//
// Delivery is synchronous: Fire calls every active listener inline, in
// subscription order, before returning. Listeners may subscribe or cancel
// from inside a callback; a listener cancelled mid-dispatch is skipped.
type Emitter[T any] struct {
	name   string
	config emitterConfig

	mu        sync.Mutex
	listeners []listener[T]
	disposed  bool
}

// NewEmitter creates an emitter. The name only appears in log output.
func NewEmitter[T any](name string, opts ...EmitterOption) *Emitter[T] {
	config := emitterConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&config)
	}
	return &Emitter[T]{name: name, config: config}
}

// Name returns the emitter name.
func (e *Emitter[T]) Name() string {
	return e.name
}

// Subscribe registers fn. Subscribing to a disposed emitter returns an
// already-cancelled subscription.
func (e *Emitter[T]) Subscribe(fn func(T)) Subscription {
	sub := newSubscription(e.remove)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || fn == nil {
		sub.state.Store(int32(SubscriptionStateCancelled))
		return sub
	}
	e.listeners = append(e.listeners, listener[T]{sub: sub, fn: fn})
	return sub
}

// Fire delivers v to every active listener.
func (e *Emitter[T]) Fire(v T) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	snapshot := make([]listener[T], len(e.listeners))
	copy(snapshot, e.listeners)
	e.mu.Unlock()

	for _, l := range snapshot {
		if !l.sub.IsActive() {
			continue
		}
		e.call(l, v)
	}
}

// call runs one listener, recovering panics so the remaining listeners still run.
func (e *Emitter[T]) call(l listener[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			e.config.logger.Error().
				Str("event", e.name).
				Str("subscription", l.sub.id).
				Str("panic", fmt.Sprint(r)).
				Msg("listener panicked")
		}
	}()
	l.fn(v)
}

// Len returns the number of active listeners.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

// Dispose cancels every listener. Further Fire calls are no-ops.
func (e *Emitter[T]) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	listeners := e.listeners
	e.listeners = nil
	e.mu.Unlock()

	for _, l := range listeners {
		l.sub.state.Store(int32(SubscriptionStateCancelled))
	}
}

func (e *Emitter[T]) remove(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, l := range e.listeners {
		if l.sub.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}
