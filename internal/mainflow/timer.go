package mainflow

import (
	"sync"
	"time"
)

// Timer is a single cancellable one-shot timer whose callback runs on the
// main flow. Every Schedule or Cancel bumps a generation counter; a firing
// whose generation is no longer current is ignored, so a callback that was
// already queued when Cancel ran never executes.
type Timer struct {
	clock Clock
	flow  Dispatcher

	mu      sync.Mutex
	gen     uint64
	pending Stopper
}

// NewTimer creates an idle timer.
func NewTimer(clock Clock, flow Dispatcher) *Timer {
	if clock == nil {
		clock = RealClock()
	}
	return &Timer{clock: clock, flow: flow}
}

// Schedule cancels any pending callback and arranges for fn to run on the
// main flow after d.
func (t *Timer) Schedule(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
	}
	t.gen++
	gen := t.gen
	t.pending = t.clock.AfterFunc(d, func() {
		t.flow.Post(func() { t.fire(gen, fn) })
	})
}

func (t *Timer) fire(gen uint64, fn func()) {
	t.mu.Lock()
	if gen != t.gen || t.pending == nil {
		t.mu.Unlock()
		return
	}
	t.pending = nil
	t.mu.Unlock()
	fn()
}

// Cancel stops the pending callback, if any. It is safe to call repeatedly.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// Pending reports whether a callback is scheduled and not yet run.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
