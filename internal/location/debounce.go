package location

import (
	"sync"
	"time"
)

// Debouncer delays a callback until input has settled: each Trigger restarts
// the timer, so only the last value within the delay window is delivered.
// Used to hold back geocoding calls while the user is still typing.
type Debouncer struct {
	Delay time.Duration
	Fn    func(value string)

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(delay time.Duration, fn func(value string)) *Debouncer {
	return &Debouncer{Delay: delay, Fn: fn}
}

// Trigger schedules the callback with the value, cancelling any pending one.
// The callback runs on a timer goroutine.
func (d *Debouncer) Trigger(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.Delay, func() {
		d.Fn(value)
	})
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
