package planner

import (
	"sync"
	"time"
)

// debouncedSaver owns the single save timer. Notify (re)starts the window; when it
// elapses without another Notify, fire runs once.
//
// Fires are not serialized: a new window may fire while a previous save is still in
// flight.
type debouncedSaver struct {
	clock    Clock
	debounce time.Duration
	fire     func()

	mu      sync.Mutex
	timer   Timer
	pending bool
}

func newDebouncedSaver(clock Clock, debounce time.Duration, fire func()) *debouncedSaver {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &debouncedSaver{clock: clock, debounce: debounce, fire: fire}
}

func (d *debouncedSaver) Notify() {
	d.mu.Lock()
	d.pending = true
	if d.timer == nil {
		d.timer = d.clock.AfterFunc(d.debounce, d.onTimer)
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	d.timer.Reset(d.debounce)
	d.mu.Unlock()
}

func (d *debouncedSaver) onTimer() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	d.fire()
}

// Take cancels the timer and reports whether a save was pending.
func (d *debouncedSaver) Take() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	was := d.pending
	d.pending = false
	return was
}

func (d *debouncedSaver) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
