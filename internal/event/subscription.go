package event

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// SubscriptionState represents the state of a subscription.
type SubscriptionState int32

const (
	// SubscriptionStateActive means the subscription is receiving events.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStateCancelled means the subscription has been permanently cancelled.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Subscription represents a registered listener on an Emitter.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// State returns the current subscription state.
	State() SubscriptionState

	// IsActive returns true if the subscription still receives events.
	IsActive() bool

	// Cancel permanently cancels the subscription.
	// Cancel is idempotent; once it returns, the listener is never called again.
	Cancel()
}

// subscription is the internal implementation of Subscription.
type subscription struct {
	id      string
	state   atomic.Int32
	release func(id string)
}

func newSubscription(release func(id string)) *subscription {
	s := &subscription{
		id:      uuid.NewString(),
		release: release,
	}
	s.state.Store(int32(SubscriptionStateActive))
	return s
}

// ID returns the subscription ID.
func (s *subscription) ID() string {
	return s.id
}

// State returns the current subscription state.
func (s *subscription) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

// IsActive returns true if the subscription is active.
func (s *subscription) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

// Cancel permanently cancels the subscription.
func (s *subscription) Cancel() {
	if !s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStateCancelled)) {
		return
	}
	if s.release != nil {
		s.release(s.id)
	}
}
