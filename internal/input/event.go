// Package input classifies raw global input events into switcher commands.
package input

import (
	"strings"

	"github.com/1broseidon/paneswitch/internal/gesture"
)

// Kind is the type of a raw event delivered by the platform tap.
type Kind int

const (
	KindKeyDown Kind = iota
	KindFlagsChanged
	KindScroll
	// KindTapDisabledByTimeout and KindTapDisabledByUser are raised by the
	// platform when it switched the tap off on its own.
	KindTapDisabledByTimeout
	KindTapDisabledByUser
)

func (k Kind) String() string {
	switch k {
	case KindKeyDown:
		return "key-down"
	case KindFlagsChanged:
		return "flags-changed"
	case KindScroll:
		return "scroll"
	case KindTapDisabledByTimeout:
		return "tap-disabled-by-timeout"
	case KindTapDisabledByUser:
		return "tap-disabled-by-user"
	default:
		return "unknown"
	}
}

// Key identifies the keys the classifier cares about.
type Key int

const (
	KeyOther Key = iota
	KeyTab
	KeySpace
	KeyEscape
)

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	// ModCommand is the cycle modifier: Super by default, Alt when configured.
	ModCommand
	ModAlt
)

// Has reports whether every modifier in m2 is held.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

func (m Modifiers) String() string {
	var parts []string
	if m.Has(ModControl) {
		parts = append(parts, "control")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	if m.Has(ModCommand) {
		parts = append(parts, "command")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// RawEvent is one event as seen by the tap callback. Mods is the full
// modifier state after the event.
type RawEvent struct {
	Kind   Kind
	Key    Key
	Mods   Modifiers
	Scroll gesture.Sample
}

// Decision tells the platform what to do with the event.
type Decision int

const (
	PassThrough Decision = iota
	Consume
)

func (d Decision) String() string {
	if d == Consume {
		return "consume"
	}
	return "pass-through"
}

// CommandKind enumerates the abstract commands emitted to the main flow.
type CommandKind int

const (
	ShowSearchSwitcher CommandKind = iota
	TabPressed
	CommandReleased
	EscapePressed
	EdgeScrollDetected
)

func (k CommandKind) String() string {
	switch k {
	case ShowSearchSwitcher:
		return "show-search-switcher"
	case TabPressed:
		return "tab-pressed"
	case CommandReleased:
		return "command-released"
	case EscapePressed:
		return "escape-pressed"
	case EdgeScrollDetected:
		return "edge-scroll-detected"
	default:
		return "unknown"
	}
}

// Command is an abstract switcher command. Shift is set for TabPressed;
// Gesture is set for EdgeScrollDetected.
type Command struct {
	Kind    CommandKind
	Shift   bool
	Gesture gesture.Event
}
