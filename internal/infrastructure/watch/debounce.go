// Package watch invalidates cached analytics when payload files change,
// using fsnotify with debounce support.
package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of payload change events into a single
// emission. Providers often rewrite a payload file in several quick
// writes; only the last event of a burst matters for invalidation.
type Debouncer struct {
	window time.Duration
	emit   func(ChangeEvent)

	mu      sync.Mutex
	timer   *time.Timer
	pending ChangeEvent
}

// NewDebouncer creates a debouncer that emits the most recent event once
// the window elapses without further triggers.
func NewDebouncer(window time.Duration, emit func(ChangeEvent)) *Debouncer {
	return &Debouncer{
		window: window,
		emit:   emit,
	}
}

// Trigger records the event and resets the window.
func (d *Debouncer) Trigger(event ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = event
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	event := d.pending
	d.mu.Unlock()

	if d.emit != nil {
		d.emit(event)
	}
}

// Stop cancels any pending emission.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}
