package controller

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// debouncer is a single-slot timer: every Trigger cancels the pending call
// and schedules a new one, so only the last call within the delay runs.
type debouncer struct {
	clock clockwork.Clock
	delay time.Duration

	mu    sync.Mutex
	timer clockwork.Timer
	seq   uint64
}

func newDebouncer(clock clockwork.Clock, delay time.Duration) *debouncer {
	return &debouncer{clock: clock, delay: delay}
}

// Trigger schedules fn after the delay, replacing any pending call.
func (d *debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// a Stop that lost the race with expiry leaves a stale callback behind
		if seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call. It reports whether one was pending.
func (d *debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}

// Pending reports whether a call is scheduled.
func (d *debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
