// Package mainflow provides the single serialized flow that owns switcher,
// catalog and search state. Input callbacks, timers and pollers never touch
// that state directly; they post closures here.
package mainflow

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
)

// ErrPanicked is returned by CallResult when the closure panicked.
var ErrPanicked = errors.New("main flow closure panicked")

// Dispatcher runs closures on the main flow.
type Dispatcher interface {
	// Post enqueues fn without blocking. It reports false when fn was dropped.
	Post(fn func()) bool
}

// DefaultQueueSize bounds the number of pending closures.
const DefaultQueueSize = 256

// Queue is a Dispatcher drained by exactly one goroutine (Run).
type Queue struct {
	ch      chan func()
	logger  *slog.Logger
	dropped atomic.Uint64
}

var _ Dispatcher = (*Queue)(nil)

// NewQueue creates a queue holding at most size pending closures.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		ch:     make(chan func(), size),
		logger: logger,
	}
}

// Post enqueues fn. It never blocks: when the queue is full the closure is
// dropped and counted.
func (q *Queue) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case q.ch <- fn:
		return true
	default:
		n := q.dropped.Add(1)
		q.logger.Warn("main flow queue full, dropping work", "dropped_total", n)
		return false
	}
}

// Call posts fn and waits until it has run on the main flow. It must not be
// called from the main flow itself. A panic in fn is reported as ErrPanicked.
func (q *Queue) Call(ctx context.Context, fn func()) error {
	_, err := CallResult(ctx, q, func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
	return err
}

// CallResult runs fn on q's main flow and returns what it returned. fn
// hands its results over a channel, so a caller that gave up when ctx ended
// shares nothing with a closure that runs afterwards.
func CallResult[T any](ctx context.Context, q *Queue, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	wrapped := func() {
		r := result{err: ErrPanicked}
		defer func() { ch <- r }()
		r.v, r.err = fn()
	}

	var zero T
	select {
	case q.ch <- wrapped:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Dropped returns how many closures were discarded because the queue was full.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Run drains the queue until ctx is cancelled. Each closure runs to
// completion before the next one starts.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-q.ch:
			q.run(fn)
		}
	}
}

func (q *Queue) run(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			q.logger.Error("main flow panic recovered", "error", err)
		}
	}()
	fn()
}

// Inline runs posted closures immediately on the caller's goroutine.
// Tests use it to drive components without a running queue.
type Inline struct{}

// Post runs fn synchronously.
func (Inline) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	fn()
	return true
}
