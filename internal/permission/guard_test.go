package permission

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/paneswitch/internal/mainflow"
)

type switchChecker struct {
	trusted atomic.Bool
	calls   atomic.Int32
}

func (c *switchChecker) Trusted() bool {
	c.calls.Add(1)
	return c.trusted.Load()
}

func newTestGuard(trusted bool) (*Guard, *switchChecker, *mainflow.FakeClock) {
	c := &switchChecker{}
	c.trusted.Store(trusted)
	clock := mainflow.NewFakeClock(time.Unix(0, 0))
	return NewGuard(c, 100*time.Millisecond, clock, nil), c, clock
}

func TestGuard_CachesWithinTTL(t *testing.T) {
	g, c, clock := newTestGuard(true)

	assert.True(t, g.IsTrusted())
	assert.True(t, g.IsTrusted())
	assert.Equal(t, int32(1), c.calls.Load())

	clock.Advance(99 * time.Millisecond)
	g.IsTrusted()
	assert.Equal(t, int32(1), c.calls.Load())

	clock.Advance(time.Millisecond)
	g.IsTrusted()
	assert.Equal(t, int32(2), c.calls.Load())

	g.ForceRecheck()
	assert.Equal(t, int32(3), c.calls.Load(), "force recheck bypasses the cache")
}

func TestGuard_RevocationDisablesBeforeReturning(t *testing.T) {
	g, c, _ := newTestGuard(true)
	require.True(t, g.IsTrusted())

	var order []string
	g.OnRevoke(func() { order = append(order, "disable") })
	g.Subscribe(func(e Event) { order = append(order, "notify:"+e.String()) })

	c.trusted.Store(false)
	assert.False(t, g.ForceRecheck())
	assert.Equal(t, []string{"disable", "notify:revoked"}, order)
	assert.True(t, g.Revoked())

	// A second failing check is not a new transition.
	g.ForceRecheck()
	assert.Len(t, order, 2)
}

func TestGuard_StaysUntrustedUntilGrantObserved(t *testing.T) {
	g, c, clock := newTestGuard(false)
	assert.False(t, g.ForceRecheck())

	c.trusted.Store(true)
	// The cached answer still says untrusted.
	assert.False(t, g.IsTrusted())

	var sawTrustedDuringGrant bool
	granted := 0
	g.OnGrant(func() { sawTrustedDuringGrant = g.IsTrusted() })
	g.Subscribe(func(e Event) {
		if e == PermissionGranted {
			granted++
		}
	})

	clock.Advance(100 * time.Millisecond)
	assert.True(t, g.IsTrusted())
	assert.Equal(t, 1, granted)
	assert.False(t, sawTrustedDuringGrant, "trust is reported only after the grant was emitted")
	assert.False(t, g.Revoked())
}

// gatedChecker holds its first call until release is closed and then
// reports trusted; later calls report the current value.
type gatedChecker struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
	trusted atomic.Bool
}

func (c *gatedChecker) Trusted() bool {
	if c.calls.Add(1) == 1 {
		close(c.entered)
		<-c.release
		return true
	}
	return c.trusted.Load()
}

func TestGuard_OverlappingChecksApplyInOrder(t *testing.T) {
	c := &gatedChecker{entered: make(chan struct{}), release: make(chan struct{})}
	g := NewGuard(c, 100*time.Millisecond, mainflow.NewFakeClock(time.Unix(0, 0)), nil)

	var (
		mu       sync.Mutex
		events   []Event
		enables  int
		disables int
	)
	g.OnRevoke(func() {
		mu.Lock()
		defer mu.Unlock()
		disables++
	})
	g.OnGrant(func() {
		mu.Lock()
		defer mu.Unlock()
		enables++
	})
	g.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	slow := make(chan bool, 1)
	go func() { slow <- g.IsTrusted() }()
	<-c.entered

	recheck := make(chan bool, 1)
	go func() { recheck <- g.ForceRecheck() }()
	// Give the recheck time to reach the guard while the first check is held.
	time.Sleep(20 * time.Millisecond)
	close(c.release)

	assert.True(t, <-slow)
	assert.False(t, <-recheck)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Event{PermissionRevoked}, events)
	assert.Equal(t, 1, disables)
	assert.Zero(t, enables, "an older trusted answer must not re-enable after the revoke")
	assert.True(t, g.Revoked())
	assert.False(t, g.IsTrusted())
}

func TestGuard_WhileTrusted(t *testing.T) {
	g, c, _ := newTestGuard(true)
	ran := 0
	assert.True(t, g.WhileTrusted(func() { ran++ }))
	assert.Equal(t, 1, ran)

	c.trusted.Store(false)
	assert.False(t, g.WhileTrusted(func() { ran++ }))
	assert.True(t, g.Revoked())
	assert.False(t, g.WhileTrusted(func() { ran++ }), "still revoked")
	assert.Equal(t, 1, ran)

	granted := 0
	g.Subscribe(func(e Event) {
		if e == PermissionGranted {
			granted++
		}
	})
	c.trusted.Store(true)
	assert.True(t, g.WhileTrusted(func() { ran++ }))
	assert.Equal(t, 2, ran)
	assert.Equal(t, 1, granted, "fn runs only after the grant was emitted")
}

func TestGuard_Unsubscribe(t *testing.T) {
	g, c, _ := newTestGuard(true)
	g.ForceRecheck()

	calls := 0
	unsubscribe := g.Subscribe(func(Event) { calls++ })
	unsubscribe()

	c.trusted.Store(false)
	g.ForceRecheck()
	assert.Zero(t, calls)
}

func TestAllOf(t *testing.T) {
	yes := CheckerFunc(func() bool { return true })
	no := CheckerFunc(func() bool { return false })
	assert.True(t, AllOf(yes, yes).Trusted())
	assert.False(t, AllOf(yes, no).Trusted())
	assert.True(t, AllOf().Trusted())
}

func TestMonitor_RechecksOnFlow(t *testing.T) {
	c := &switchChecker{}
	c.trusted.Store(true)
	g := NewGuard(c, time.Hour, nil, nil)

	q := mainflow.NewQueue(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	revoked := make(chan struct{})
	g.Subscribe(func(e Event) {
		if e == PermissionRevoked {
			close(revoked)
		}
	})

	m := NewMonitor(MonitorConfig{Interval: 5 * time.Millisecond}, g, q)
	go m.Run(ctx)

	c.trusted.Store(false)
	select {
	case <-revoked:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor never observed the revocation")
	}
}
