package performance

import (
	"sync"
	"time"
)

// Debouncer provides debouncing functionality for frequent operations
type Debouncer struct {
	mutex    sync.Mutex
	calls    map[string]*pendingCall
	duration time.Duration
}

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

// NewDebouncer creates a new debouncer with the specified duration
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		calls:    make(map[string]*pendingCall),
		duration: duration,
	}
}

// Debounce executes the function after the debounce duration has passed
// If called again with the same key before the duration expires, the previous call is cancelled
func (d *Debouncer) Debounce(key string, fn func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if prev, exists := d.calls[key]; exists {
		prev.timer.Stop()
	}

	call := &pendingCall{fn: fn}
	call.timer = time.AfterFunc(d.duration, func() {
		d.mutex.Lock()
		// A newer call or a flush has taken over this key.
		if d.calls[key] != call {
			d.mutex.Unlock()
			return
		}
		delete(d.calls, key)
		d.mutex.Unlock()
		fn()
	})
	d.calls[key] = call
}

// Cancel cancels a pending debounced function call
func (d *Debouncer) Cancel(key string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if call, exists := d.calls[key]; exists {
		call.timer.Stop()
		delete(d.calls, key)
	}
}

// Clear cancels all pending debounced function calls
func (d *Debouncer) Clear() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for key, call := range d.calls {
		call.timer.Stop()
		delete(d.calls, key)
	}
}

// Flush runs every pending call now, on the caller's goroutine, and returns
// how many ran. Each pending call runs exactly once.
func (d *Debouncer) Flush() int {
	d.mutex.Lock()
	pending := make([]func(), 0, len(d.calls))
	for key, call := range d.calls {
		call.timer.Stop()
		pending = append(pending, call.fn)
		delete(d.calls, key)
	}
	d.mutex.Unlock()

	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

// Pending returns the number of calls waiting to run.
func (d *Debouncer) Pending() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.calls)
}
