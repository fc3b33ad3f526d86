// Package permission tracks whether the process may intercept global input
// and shuts interception down the moment that capability disappears.
package permission

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/paneswitch/internal/mainflow"
)

// DefaultCacheTTL bounds how often IsTrusted queries the platform.
const DefaultCacheTTL = 100 * time.Millisecond

// ErrUntrusted is returned by interception entry points that cannot run
// without the input capability.
var ErrUntrusted = errors.New("input capability not granted")

// Checker queries the platform for the input capability. It may be slow;
// the Guard caches its answers.
type Checker interface {
	Trusted() bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func() bool

// Trusted calls f.
func (f CheckerFunc) Trusted() bool { return f() }

// AllOf is trusted only when every checker is.
func AllOf(checkers ...Checker) Checker {
	return CheckerFunc(func() bool {
		for _, c := range checkers {
			if !c.Trusted() {
				return false
			}
		}
		return true
	})
}

// Event is a capability transition.
type Event int

const (
	PermissionRevoked Event = iota
	PermissionGranted
)

func (e Event) String() string {
	switch e {
	case PermissionRevoked:
		return "revoked"
	case PermissionGranted:
		return "granted"
	default:
		return "unknown"
	}
}

// Guard is the single source of truth for the input capability.
//
// When a check observes the capability is gone, the Guard runs every
// disabler (the interception taps) and then notifies observers, all before
// the check returns. Once revoked, IsTrusted stays false until a check
// observes the capability again and PermissionGranted has been emitted.
type Guard struct {
	checker Checker
	ttl     time.Duration
	clock   mainflow.Clock
	logger  *slog.Logger

	// transition serializes checks, state changes and their callbacks.
	transition sync.Mutex

	mu        sync.Mutex
	hasCache  bool
	cached    bool
	checkedAt time.Time
	revoked   bool
	nextID    int
	observers map[int]func(Event)
	disablers []func()
	enablers  []func()
}

// NewGuard creates a guard. A zero ttl uses DefaultCacheTTL.
func NewGuard(checker Checker, ttl time.Duration, clock mainflow.Clock, logger *slog.Logger) *Guard {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if clock == nil {
		clock = mainflow.RealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		checker:   checker,
		ttl:       ttl,
		clock:     clock,
		logger:    logger,
		observers: make(map[int]func(Event)),
	}
}

// SetTTL changes how long a check result is reused.
func (g *Guard) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ttl = ttl
}

// OnRevoke registers fn to run synchronously when the capability is lost,
// before observers are notified. Use it to disable interception.
func (g *Guard) OnRevoke(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disablers = append(g.disablers, fn)
}

// OnGrant registers fn to run when the capability returns, before
// observers are notified. Use it to re-enable interception.
func (g *Guard) OnGrant(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enablers = append(g.enablers, fn)
}

// Subscribe registers an observer for transitions. The returned function
// removes it.
func (g *Guard) Subscribe(fn func(Event)) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextID
	g.nextID++
	g.observers[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.observers, id)
	}
}

// IsTrusted returns the cached capability state, re-querying the platform
// when the cache is older than the TTL.
func (g *Guard) IsTrusted() bool {
	if v, ok := g.fresh(); ok {
		return v
	}
	g.transition.Lock()
	defer g.transition.Unlock()
	// Another check may have refreshed the cache while we waited.
	if v, ok := g.fresh(); ok {
		return v
	}
	return g.checkLocked()
}

// ForceRecheck queries the platform, bypassing the cache.
func (g *Guard) ForceRecheck() bool {
	g.transition.Lock()
	defer g.transition.Unlock()
	return g.checkLocked()
}

// WhileTrusted force-rechecks and, when the capability is present and not
// revoked, runs fn before any other check can be applied. It reports
// whether fn ran.
func (g *Guard) WhileTrusted(fn func()) bool {
	g.transition.Lock()
	defer g.transition.Unlock()
	if !g.checkLocked() {
		return false
	}
	g.mu.Lock()
	revoked := g.revoked
	g.mu.Unlock()
	if revoked {
		return false
	}
	fn()
	return true
}

// Revoked reports whether the last observation found the capability gone.
func (g *Guard) Revoked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.revoked
}

// Invalidate drops the cached answer so the next IsTrusted queries again.
func (g *Guard) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hasCache = false
}

func (g *Guard) fresh() (trusted, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.hasCache || g.clock.Now().Sub(g.checkedAt) >= g.ttl {
		return false, false
	}
	return g.cached && !g.revoked, true
}

// checkLocked queries the checker and applies the result. The caller holds
// g.transition, so checks never overlap and results apply in order.
func (g *Guard) checkLocked() bool {
	trusted := g.checker.Trusted()

	g.mu.Lock()
	g.hasCache = true
	g.cached = trusted
	g.checkedAt = g.clock.Now()

	var (
		event     Event
		changed   bool
		callbacks []func()
	)
	switch {
	case !trusted && !g.revoked:
		g.revoked = true
		event, changed = PermissionRevoked, true
		callbacks = append(callbacks, g.disablers...)
	case trusted && g.revoked:
		// revoked stays set until observers have seen the grant.
		event, changed = PermissionGranted, true
		callbacks = append(callbacks, g.enablers...)
	}
	var observers []func(Event)
	if changed {
		for id := 0; id < g.nextID; id++ {
			if fn, ok := g.observers[id]; ok {
				observers = append(observers, fn)
			}
		}
	}
	g.mu.Unlock()

	if !changed {
		return trusted
	}

	if event == PermissionRevoked {
		g.logger.Warn("input capability revoked, interception disabled")
	} else {
		g.logger.Info("input capability granted")
	}
	for _, fn := range callbacks {
		fn()
	}
	for _, fn := range observers {
		fn(event)
	}
	if event == PermissionGranted {
		g.mu.Lock()
		g.revoked = false
		g.mu.Unlock()
	}
	return trusted
}
