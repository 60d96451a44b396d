package performance

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls per key into a single delayed call
type Debouncer struct {
	mutex    sync.Mutex
	timers   map[string]*time.Timer
	duration time.Duration
	stopped  bool
}

// NewDebouncer creates a new debouncer with the specified duration
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		timers:   make(map[string]*time.Timer),
		duration: duration,
	}
}

// Debounce runs fn once the key has been quiet for the debounce duration.
// A later call with the same key replaces the pending one.
func (d *Debouncer) Debounce(key string, fn func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}

	if timer, exists := d.timers[key]; exists {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.duration, func() {
		d.mutex.Lock()
		// a newer call for this key may have replaced us
		if d.timers[key] != timer {
			d.mutex.Unlock()
			return
		}
		delete(d.timers, key)
		d.mutex.Unlock()
		fn()
	})
	d.timers[key] = timer
}

// Cancel cancels a pending call for key
func (d *Debouncer) Cancel(key string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if timer, exists := d.timers[key]; exists {
		timer.Stop()
		delete(d.timers, key)
	}
}

// Pending reports how many keys have a call scheduled
func (d *Debouncer) Pending() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.timers)
}

// Stop cancels all pending calls and ignores any later ones
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.stopped = true
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}
