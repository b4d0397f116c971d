package debounce

import (
	"time"
)

// schedule replaces any outstanding timer with one firing after delay. It
// should only be called while the mutex is already locked.
func (d *Debouncer[A, R]) schedule(delay time.Duration) {
	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(delay, func() {
		d.expire(gen)
	})
}

// stopTimer stops and forgets the outstanding timer, if any. A callback that
// already started and is waiting for the mutex becomes a no-op, as the
// generation it captured is no longer current.
func (d *Debouncer[A, R]) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
