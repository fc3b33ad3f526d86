package mainflow

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deferred collects posted closures so tests can decide when they run.
type deferred struct {
	fns []func()
}

func (d *deferred) Post(fn func()) bool {
	d.fns = append(d.fns, fn)
	return true
}

func (d *deferred) drain() {
	fns := d.fns
	d.fns = nil
	for _, fn := range fns {
		fn()
	}
}

func TestTimer_FiresOnFlowAfterDelay(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	timer := NewTimer(clock, Inline{})

	fired := 0
	timer.Schedule(40*time.Millisecond, func() { fired++ })
	require.True(t, timer.Pending())

	clock.Advance(39 * time.Millisecond)
	assert.Equal(t, 0, fired)

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.False(t, timer.Pending())
}

func TestTimer_CancelBeforeDeadline(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	timer := NewTimer(clock, Inline{})

	fired := 0
	timer.Schedule(40*time.Millisecond, func() { fired++ })
	timer.Cancel()
	clock.Advance(time.Second)

	assert.Equal(t, 0, fired)
	assert.Equal(t, 0, clock.Pending())
}

func TestTimer_StaleFiringIsIgnored(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	flow := &deferred{}
	timer := NewTimer(clock, flow)

	fired := 0
	timer.Schedule(10*time.Millisecond, func() { fired++ })
	clock.Advance(10 * time.Millisecond)
	require.Len(t, flow.fns, 1, "expiry should be queued on the flow")

	// Cancel lands before the queued firing is drained.
	timer.Cancel()
	flow.drain()
	assert.Equal(t, 0, fired)
}

func TestTimer_RescheduleSupersedesEarlierFiring(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	flow := &deferred{}
	timer := NewTimer(clock, flow)

	var got []string
	timer.Schedule(10*time.Millisecond, func() { got = append(got, "first") })
	clock.Advance(10 * time.Millisecond)
	timer.Schedule(10*time.Millisecond, func() { got = append(got, "second") })
	clock.Advance(10 * time.Millisecond)
	flow.drain()

	assert.Equal(t, []string{"second"}, got)
}

func TestQueue_PostNeverBlocksWhenFull(t *testing.T) {
	q := NewQueue(1, nil)
	require.True(t, q.Post(func() {}))
	assert.False(t, q.Post(func() {}))
	assert.Equal(t, uint64(1), q.Dropped())
}

func TestQueue_RunsInOrderAndRecoversPanics(t *testing.T) {
	q := NewQueue(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	var order []int
	require.True(t, q.Post(func() { order = append(order, 1) }))
	require.True(t, q.Post(func() { panic("boom") }))
	require.True(t, q.Post(func() { order = append(order, 2) }))

	var ran atomic.Bool
	require.NoError(t, q.Call(ctx, func() { ran.Store(true) }))
	assert.True(t, ran.Load())
	assert.Equal(t, []int{1, 2}, order)
}

func TestQueue_CallHonoursContext(t *testing.T) {
	q := NewQueue(1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := q.Call(ctx, func() {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCallResult_ReturnsValue(t *testing.T) {
	q := NewQueue(4, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	n, err := CallResult(ctx, q, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = CallResult(ctx, q, func() (int, error) { panic("boom") })
	assert.ErrorIs(t, err, ErrPanicked)
}

func TestCallResult_LateClosureDoesNotTouchCaller(t *testing.T) {
	q := NewQueue(4, nil)
	callCtx, cancelCall := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelCall()

	ran := make(chan struct{})
	got, err := CallResult(callCtx, q, func() ([]string, error) {
		defer close(ran)
		return []string{"late"}, nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, got)

	// The queue starts after the caller gave up; the closure still runs and
	// its result is dropped.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("queued closure never ran")
	}
	assert.Nil(t, got)
}
