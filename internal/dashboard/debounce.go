package dashboard

import (
	"errors"
	"sync"
	"time"
)

// Debouncer delays actions per key until no new trigger arrived for the delay.
// At most one action per key is pending. Errors of actions fired by the timer are
// dropped; Flush returns the errors of the actions it ran.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingAction
	stopped bool
}

type pendingAction struct {
	timer *time.Timer
	fn    func() error
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingAction),
	}
}

// Trigger schedules fn for key, replacing and restarting any pending action for that key
func (d *Debouncer) Trigger(key string, fn func() error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}

	p := &pendingAction{fn: fn}
	p.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// a newer trigger or a flush may already own this key
		if d.pending[key] != p {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()
		_ = p.fn()
	})
	d.pending[key] = p
}

// Cancel drops the pending action for key without running it
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

// IsPending reports whether an action is waiting for key
func (d *Debouncer) IsPending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Flush runs every pending action now, on the caller's goroutine, and joins their errors
func (d *Debouncer) Flush() error {
	d.mu.Lock()
	actions := make([]func() error, 0, len(d.pending))
	for key, p := range d.pending {
		p.timer.Stop()
		actions = append(actions, p.fn)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	var errs []error
	for _, fn := range actions {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stop cancels all pending actions. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
	}
	d.stopped = true
}
