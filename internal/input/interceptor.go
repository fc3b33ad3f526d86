package input

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/paneswitch/internal/gesture"
	"github.com/1broseidon/paneswitch/internal/mainflow"
	"github.com/1broseidon/paneswitch/internal/platform"
)

// InputClassifier decides, synchronously, whether a raw event is swallowed.
type InputClassifier interface {
	Classify(ev RawEvent) Decision
}

// Tap is the platform hook delivering raw events.
type Tap interface {
	Enable() error
	Disable()
}

// Trust is the part of the permission guard the interceptor consults.
type Trust interface {
	IsTrusted() bool
	// WhileTrusted force-rechecks and runs fn only when the capability is
	// present and not revoked, with no other check applied in between.
	WhileTrusted(fn func()) bool
}

// Config selects which triggers are active.
type Config struct {
	EnableCommandTab   bool
	EnableControlSpace bool
	EnableGestures     bool
	Gesture            gesture.Config
}

// DefaultConfig enables every trigger.
func DefaultConfig() Config {
	return Config{
		EnableCommandTab:   true,
		EnableControlSpace: true,
		EnableGestures:     true,
	}
}

// Interceptor is the InputClassifier used by the platform tap. Classify runs
// in the tap's callback context: it never blocks and hands every command to
// the main flow.
type Interceptor struct {
	trust   Trust
	tap     Tap
	flow    mainflow.Dispatcher
	handle  func(Command)
	logger  *slog.Logger
	cfg     atomic.Pointer[Config]
	enabled atomic.Bool

	// Owned by the callback context.
	prevMods Modifiers
	detector *gesture.Detector

	// Pending detector updates from other goroutines, applied on the next
	// scroll sample.
	pendingMu      sync.Mutex
	pendingScreens []platform.Rect
	screensDirty   bool
	gestureDirty   bool
}

var _ InputClassifier = (*Interceptor)(nil)

// NewInterceptor creates an interceptor that posts commands to handle on flow.
func NewInterceptor(cfg Config, trust Trust, tap Tap, flow mainflow.Dispatcher, handle func(Command), logger *slog.Logger) *Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	ic := &Interceptor{
		trust:    trust,
		tap:      tap,
		flow:     flow,
		handle:   handle,
		logger:   logger,
		detector: gesture.NewDetector(cfg.Gesture),
	}
	ic.cfg.Store(&cfg)
	return ic
}

// SetTap attaches the tap after construction, for taps that need the
// interceptor themselves.
func (ic *Interceptor) SetTap(tap Tap) { ic.tap = tap }

// Configure swaps the trigger configuration. Safe from any goroutine.
func (ic *Interceptor) Configure(cfg Config) {
	ic.cfg.Store(&cfg)
	ic.pendingMu.Lock()
	ic.gestureDirty = true
	ic.pendingMu.Unlock()
}

// SetScreens updates the screen geometry used by the gesture detector.
// Safe from any goroutine.
func (ic *Interceptor) SetScreens(screens []platform.Rect) {
	ic.pendingMu.Lock()
	ic.pendingScreens = append([]platform.Rect(nil), screens...)
	ic.screensDirty = true
	ic.pendingMu.Unlock()
}

// Start enables the tap when the capability is present. When it is not, or
// the tap cannot be enabled, interception stays off until Enable is called
// by the permission guard.
func (ic *Interceptor) Start() {
	if !ic.trust.IsTrusted() {
		ic.logger.Warn("input capability missing, interception stays disabled until granted")
		return
	}
	ic.Enable()
}

// Enable turns the tap on. Registered as the permission guard's grant hook.
func (ic *Interceptor) Enable() {
	if ic.tap == nil {
		return
	}
	if err := ic.tap.Enable(); err != nil {
		ic.logger.Warn("enable input tap", "error", err)
		return
	}
	ic.enabled.Store(true)
}

// Disable turns the tap off. Registered as the permission guard's revoke hook.
func (ic *Interceptor) Disable() {
	ic.enabled.Store(false)
	if ic.tap != nil {
		ic.tap.Disable()
	}
}

// Enabled reports whether the tap is on.
func (ic *Interceptor) Enabled() bool { return ic.enabled.Load() }

// Classify applies the classification rules in order; the first match wins.
func (ic *Interceptor) Classify(ev RawEvent) Decision {
	switch ev.Kind {
	case KindTapDisabledByTimeout, KindTapDisabledByUser:
		// While revoked the guard's grant hook re-enables the tap.
		if ic.trust.WhileTrusted(ic.Enable) {
			ic.logger.Warn("input tap disabled by the system, re-enabled", "reason", ev.Kind)
		} else {
			ic.logger.Warn("input tap disabled and capability missing, waiting for grant", "reason", ev.Kind)
		}
		return PassThrough
	}

	prev := ic.prevMods
	if ev.Kind == KindFlagsChanged || ev.Kind == KindKeyDown {
		ic.prevMods = ev.Mods
	}

	if !ic.trust.IsTrusted() {
		return PassThrough
	}
	cfg := ic.cfg.Load()

	switch ev.Kind {
	case KindKeyDown:
		switch {
		case cfg.EnableControlSpace && ev.Key == KeySpace && ev.Mods.Has(ModControl):
			ic.post(Command{Kind: ShowSearchSwitcher})
			return Consume
		case cfg.EnableCommandTab && ev.Key == KeyTab && ev.Mods.Has(ModCommand):
			ic.post(Command{Kind: TabPressed, Shift: ev.Mods.Has(ModShift)})
			return Consume
		case ev.Key == KeyEscape:
			ic.post(Command{Kind: EscapePressed})
			return PassThrough
		}
	case KindFlagsChanged:
		if prev.Has(ModCommand) && !ev.Mods.Has(ModCommand) {
			ic.post(Command{Kind: CommandReleased})
		}
		return PassThrough
	case KindScroll:
		if !cfg.EnableGestures {
			return PassThrough
		}
		ic.applyPending(cfg)
		if g, ok := ic.detector.Process(ev.Scroll); ok {
			ic.post(Command{Kind: EdgeScrollDetected, Gesture: g})
			return Consume
		}
	}
	return PassThrough
}

func (ic *Interceptor) applyPending(cfg *Config) {
	ic.pendingMu.Lock()
	defer ic.pendingMu.Unlock()
	if ic.gestureDirty {
		ic.detector.Configure(cfg.Gesture)
		ic.gestureDirty = false
	}
	if ic.screensDirty {
		ic.detector.SetScreens(ic.pendingScreens)
		ic.screensDirty = false
	}
}

func (ic *Interceptor) post(cmd Command) {
	if ic.handle == nil {
		return
	}
	handle := ic.handle
	if !ic.flow.Post(func() { handle(cmd) }) {
		ic.logger.Warn("input command dropped", "command", cmd.Kind)
	}
}
