// Package hotkeys feeds X11 keyboard and edge-scroll input to the input
// classifier.
package hotkeys

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/paneswitch/internal/gesture"
	"github.com/1broseidon/paneswitch/internal/input"
	"github.com/1broseidon/paneswitch/internal/x11"
)

// Wheel clicks are turned into scroll samples of this size. A click within
// wheelGestureGap of the previous one continues the same gesture.
const (
	wheelStep       = 10.0
	wheelGestureGap = 300 * time.Millisecond
)

// Config selects the grabbed shortcuts.
type Config struct {
	CycleModifier string
	CommandTab    bool
	ControlSpace  bool
	Gestures      bool
}

// KeyEvent is a key typed while the keyboard is captured that the
// classifier does not handle.
type KeyEvent struct {
	// Name is the keysym string: the character for printable keys,
	// otherwise names such as "Return", "BackSpace" or "Up".
	Name string
	Mods input.Modifiers
}

// Tap is the X11 input tap. Global shortcuts are passive key grabs in
// synchronous keyboard mode: each press is classified, then consumed or
// replayed to the focused client. While a switch is in progress the
// keyboard is actively grabbed so modifier releases and typed keys are seen.
type Tap struct {
	conn       *x11.Connection
	classifier input.InputClassifier
	onKey      func(KeyEvent)

	mu        sync.Mutex
	cfg       Config
	cycle     uint16
	cycleName string
	bindings  []binding
	enabled   bool
	capture   bool
	attached  bool

	grab      *x11.KeyboardGrab
	strips    *x11.EdgeStrips
	lastWheel time.Time
}

// NewTap creates a tap. onKey receives captured keys; it runs on the X
// event loop and must not block.
func NewTap(conn *x11.Connection, classifier input.InputClassifier, cfg Config, onKey func(KeyEvent)) (*Tap, error) {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})
	t := &Tap{conn: conn, classifier: classifier, onKey: onKey}
	if err := t.Configure(cfg); err != nil {
		return nil, err
	}
	t.grab = x11.NewKeyboardGrab(conn, t.onCapturedPress, t.onCapturedRelease)
	t.strips = x11.NewEdgeStrips(conn, t.onWheel)
	return t, nil
}

// Configure replaces the shortcut configuration. An enabled tap re-grabs.
func (t *Tap) Configure(cfg Config) error {
	mask, name, err := cycleMask(cfg.CycleModifier)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.cfg = cfg
	t.cycle = mask
	t.cycleName = name
	enabled := t.enabled
	t.mu.Unlock()

	if enabled {
		return t.Enable()
	}
	return nil
}

// Enable grabs the global shortcuts and maps the edge strips. A grab held
// by another client makes Enable fail and leaves the tap disabled.
func (t *Tap) Enable() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ungrabLocked()
	if err := t.grabLocked(); err != nil {
		t.ungrabLocked()
		t.enabled = false
		return err
	}
	if !t.attached {
		xu := t.conn.XUtil
		xevent.KeyPressFun(func(_ *xgbutil.XUtil, ev xevent.KeyPressEvent) {
			t.onRootPress(ev)
		}).Connect(xu, t.conn.Root)
		xevent.MappingNotifyFun(func(_ *xgbutil.XUtil, _ xevent.MappingNotifyEvent) {
			t.onMappingChanged()
		}).Connect(xu, xevent.NoWindow)
		t.attached = true
	}
	if t.cfg.Gestures {
		if err := t.strips.Map(); err != nil {
			log.Printf("paneswitch: edge strips unavailable: %v", err)
		}
	} else {
		t.strips.Unmap()
	}
	t.enabled = true
	log.Printf("paneswitch: input tap enabled (%d shortcuts)", len(t.bindings))
	return nil
}

// Disable releases every grab. Nothing is intercepted afterwards.
func (t *Tap) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ungrabLocked()
	t.strips.Unmap()
	t.grab.Release()
	t.capture = false
	if t.enabled {
		log.Println("paneswitch: input tap disabled")
	}
	t.enabled = false
}

// Enabled reports whether the shortcuts are grabbed.
func (t *Tap) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Trusted reports whether this process can intercept input: the server
// answers and the shortcuts are, or can be, grabbed by us.
func (t *Tap) Trusted() bool {
	if err := t.conn.Ping(); err != nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.enabled {
		return true
	}
	err := t.grabLocked()
	t.ungrabLocked()
	return err == nil
}

// SetCapture holds or releases the active keyboard grab. The switcher
// keeps it while a switch is in progress or the panel is visible.
func (t *Tap) SetCapture(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if on == t.capture || (on && !t.enabled) {
		return
	}
	t.capture = on
	if !on {
		t.grab.Release()
		return
	}
	if err := t.grab.Acquire(); err != nil {
		log.Printf("paneswitch: keyboard capture failed: %v", err)
		t.capture = false
	}
}

func (t *Tap) grabLocked() error {
	xu := t.conn.XUtil
	t.bindings = t.bindings[:0]
	for _, s := range bindingSequences(t.cfg, t.cycleName) {
		mods, codes, err := keybind.ParseString(xu, s.seq)
		if err != nil {
			return fmt.Errorf("parse %q: %w", s.seq, err)
		}
		for _, code := range codes {
			for _, ignore := range xevent.IgnoreMods {
				err := xproto.GrabKeyChecked(
					xu.Conn(),
					false,
					t.conn.Root,
					mods|ignore,
					code,
					xproto.GrabModeAsync, // pointer
					xproto.GrabModeSync,  // keyboard: frozen until AllowEvents
				).Check()
				if err != nil {
					var access xproto.AccessError
					if errors.As(err, &access) {
						return fmt.Errorf("%s is grabbed by another client", s.seq)
					}
					return fmt.Errorf("grab %s: %w", s.seq, err)
				}
			}
		}
		t.bindings = append(t.bindings, binding{key: s.key, seq: s.seq, mods: mods, codes: codes})
	}
	return nil
}

func (t *Tap) ungrabLocked() {
	xproto.UngrabKey(t.conn.XUtil.Conn(), xproto.GrabAny, t.conn.Root, xproto.ModMaskAny)
	t.bindings = t.bindings[:0]
}

// match finds the grabbed shortcut for a key press on the root window.
func (t *Tap) match(code xproto.Keycode, state uint16) (input.Key, bool) {
	state = cleanState(state)
	for _, b := range t.bindings {
		if b.mods != state {
			continue
		}
		for _, c := range b.codes {
			if c == code {
				return b.key, true
			}
		}
	}
	return input.KeyOther, false
}

func (t *Tap) onRootPress(ev xevent.KeyPressEvent) {
	t.mu.Lock()
	key, ok := t.match(ev.Detail, ev.State)
	cycle := t.cycle
	t.mu.Unlock()

	mode := byte(xproto.AllowReplayKeyboard)
	if ok {
		raw := input.RawEvent{Kind: input.KindKeyDown, Key: key, Mods: modifiers(ev.State, cycle)}
		if t.classifier.Classify(raw) == input.Consume {
			mode = xproto.AllowAsyncKeyboard
			defer t.afterConsume(key)
		}
	}
	xproto.AllowEvents(t.conn.XUtil.Conn(), mode, ev.Time)
}

// afterConsume starts capturing after a consumed Tab, so the release of
// the cycle modifier is observed. A modifier already released before the
// grab landed is reported immediately.
func (t *Tap) afterConsume(key input.Key) {
	if key != input.KeyTab {
		return
	}
	t.SetCapture(true)

	t.mu.Lock()
	held := t.grab.Held()
	cycle := t.cycle
	t.mu.Unlock()
	if !held {
		t.classifier.Classify(input.RawEvent{Kind: input.KindTapDisabledByUser})
		return
	}

	pointer, err := xproto.QueryPointer(t.conn.XUtil.Conn(), t.conn.Root).Reply()
	if err != nil {
		return
	}
	if pointer.Mask&cycle == 0 {
		t.classifier.Classify(input.RawEvent{Kind: input.KindFlagsChanged, Mods: modifiers(pointer.Mask, cycle)})
	}
}

func (t *Tap) onCapturedPress(ev xevent.KeyPressEvent) {
	t.mu.Lock()
	cycle := t.cycle
	t.mu.Unlock()

	xu := t.conn.XUtil
	mods := modifiers(ev.State, cycle)
	name := keybind.LookupString(xu, ev.State, ev.Detail)

	switch name {
	case "Tab", "ISO_Left_Tab":
		t.classifier.Classify(input.RawEvent{Kind: input.KindKeyDown, Key: input.KeyTab, Mods: mods})
	case "Escape":
		t.classifier.Classify(input.RawEvent{Kind: input.KindKeyDown, Key: input.KeyEscape, Mods: mods})
	case "space":
		if mods.Has(input.ModControl) {
			t.classifier.Classify(input.RawEvent{Kind: input.KindKeyDown, Key: input.KeySpace, Mods: mods})
			return
		}
		t.key(KeyEvent{Name: " ", Mods: mods})
	default:
		if keybind.ModGet(xu, ev.Detail) != 0 {
			t.classifier.Classify(input.RawEvent{Kind: input.KindFlagsChanged, Mods: mods | modifiers(keybind.ModGet(xu, ev.Detail), cycle)})
			return
		}
		t.key(KeyEvent{Name: name, Mods: mods})
	}
}

func (t *Tap) onCapturedRelease(ev xevent.KeyReleaseEvent) {
	t.mu.Lock()
	cycle := t.cycle
	t.mu.Unlock()

	mask := keybind.ModGet(t.conn.XUtil, ev.Detail)
	if mask == 0 {
		return
	}
	// ev.State is the state before the release.
	t.classifier.Classify(input.RawEvent{Kind: input.KindFlagsChanged, Mods: modifiers(ev.State&^mask, cycle)})
}

func (t *Tap) key(ev KeyEvent) {
	if t.onKey != nil {
		t.onKey(ev)
	}
}

func (t *Tap) onWheel(x, y int, button xproto.Button) {
	now := time.Now()
	t.mu.Lock()
	phase := gesture.PhaseChanged
	if now.Sub(t.lastWheel) > wheelGestureGap {
		phase = gesture.PhaseBegan
	}
	t.lastWheel = now
	t.mu.Unlock()

	t.classifier.Classify(input.RawEvent{Kind: input.KindScroll, Scroll: wheelSample(x, y, button, phase)})
}

func (t *Tap) onMappingChanged() {
	if !t.Enabled() {
		return
	}
	log.Println("paneswitch: keyboard mapping changed, re-grabbing shortcuts")
	t.classifier.Classify(input.RawEvent{Kind: input.KindTapDisabledByUser})
}

func wheelSample(x, y int, button xproto.Button, phase gesture.Phase) gesture.Sample {
	s := gesture.Sample{X: float64(x), Y: float64(y), Phase: phase}
	switch button {
	case x11.ButtonWheelUp:
		s.DY = wheelStep
	case x11.ButtonWheelDown:
		s.DY = -wheelStep
	case x11.ButtonWheelLeft:
		s.DX = wheelStep
	case x11.ButtonWheelRight:
		s.DX = -wheelStep
	}
	return s
}
