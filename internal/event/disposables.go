package event

import "sync"

// Disposables collects release callbacks and runs them all on Dispose.
//
// Dispose drains and clears the list, so it is safe to call more than once.
// Adding to an already disposed collection releases the resource immediately.
type Disposables struct {
	mu       sync.Mutex
	release  []func()
	disposed bool
}

// Add registers a release callback.
func (d *Disposables) Add(fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		fn()
		return
	}
	d.release = append(d.release, fn)
	d.mu.Unlock()
}

// AddSubscription registers a subscription to be cancelled on Dispose.
func (d *Disposables) AddSubscription(sub Subscription) {
	if sub == nil {
		return
	}
	d.Add(sub.Cancel)
}

// Len returns the number of pending release callbacks.
func (d *Disposables) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.release)
}

// IsDisposed reports whether Dispose has been called.
func (d *Disposables) IsDisposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}

// Dispose runs every release callback in reverse registration order.
func (d *Disposables) Dispose() {
	d.mu.Lock()
	release := d.release
	d.release = nil
	d.disposed = true
	d.mu.Unlock()

	for i := len(release) - 1; i >= 0; i-- {
		release[i]()
	}
}
