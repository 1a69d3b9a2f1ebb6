package watch

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of triggers: the callback fires once after
// the interval has elapsed without a new trigger.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopCh   chan struct{}
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// trigger arms (or re-arms) the debounce timer with a new callback.
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}
		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
}

// stop prevents any pending callback from firing.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	close(d.stopCh)
	if d.timer != nil {
		d.timer.Stop()
	}
}
