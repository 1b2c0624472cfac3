package picker

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is the delay applied to search input before a lookup
// is dispatched.
const DefaultDebounceDelay = 150 * time.Millisecond

// Debouncer is a cancellable single-slot timer. Each Trigger cancels any
// pending callback and schedules a new one, so only the most recent callback
// within the delay window ever fires. Stop releases the timer; a stopped
// debouncer ignores further triggers.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer with the given delay. A non-positive
// delay falls back to DefaultDebounceDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the delay, replacing any pending callback.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending callback and prevents future triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
