package pubsub

import (
	"sync"
	"time"
)

// Debouncer runs fn once the triggers have stopped for delay.
type Debouncer struct {
	lock       sync.Mutex
	delay      time.Duration
	timer      *time.Timer
	generation uint64
	fn         func()
}

func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger cancels a pending run and schedules a new one.
func (d *Debouncer) Trigger() {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.generation++
	generation := d.generation
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(generation)
	})
}

// Stop cancels a pending run. A run that already started is not affected.
func (d *Debouncer) Stop() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// fire runs fn only for the latest trigger. A timer that expired while a
// newer Trigger or Stop held the lock is stale and does nothing.
func (d *Debouncer) fire(generation uint64) {
	d.lock.Lock()
	if generation != d.generation {
		d.lock.Unlock()
		return
	}
	d.timer = nil
	d.lock.Unlock()

	d.fn()
}
