package hotkeys

import (
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/paneswitch/internal/input"
)

// binding is one global shortcut grabbed on the root window.
type binding struct {
	key      input.Key
	seq      string
	mods     uint16
	codes    []xproto.Keycode
}

// cycleMask maps the configured cycle modifier to its X modifier mask.
func cycleMask(name string) (uint16, string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "super", "mod4":
		return xproto.ModMask4, "Mod4", nil
	case "alt", "mod1":
		return xproto.ModMask1, "Mod1", nil
	default:
		return 0, "", fmt.Errorf("unknown cycle modifier %q", name)
	}
}

type sequence struct {
	key input.Key
	seq string
}

// bindingSequences lists the key sequences to grab for cfg.
func bindingSequences(cfg Config, cycleName string) []sequence {
	var seqs []sequence
	if cfg.CommandTab {
		seqs = append(seqs,
			sequence{input.KeyTab, cycleName + "-Tab"},
			sequence{input.KeyTab, cycleName + "-Shift-Tab"},
		)
	}
	if cfg.ControlSpace {
		seqs = append(seqs, sequence{input.KeySpace, "Control-space"})
	}
	return seqs
}

// modifiers translates an X modifier state into input modifiers.
func modifiers(state uint16, cycle uint16) input.Modifiers {
	var m input.Modifiers
	if state&xproto.ModMaskShift != 0 {
		m |= input.ModShift
	}
	if state&xproto.ModMaskControl != 0 {
		m |= input.ModControl
	}
	if state&cycle != 0 {
		m |= input.ModCommand
	}
	if cycle != xproto.ModMask1 && state&xproto.ModMask1 != 0 {
		m |= input.ModAlt
	}
	return m
}

var ignoreModsOnce sync.Once

// configureIgnoreMods makes grabs and callbacks ignore CapsLock, NumLock
// and ScrollLock in every combination.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)
	base := []uint16{caps}
	for _, sym := range []string{"Num_Lock", "Scroll_Lock"} {
		mask := modMaskForKeysym(xu, sym)
		if mask == 0 {
			continue
		}
		dup := false
		for _, b := range base {
			dup = dup || b == mask
		}
		if !dup {
			base = append(base, mask)
		}
	}

	ignore := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}
	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}

// cleanState drops the ignored lock modifiers from an event state.
func cleanState(state uint16) uint16 {
	for _, m := range xevent.IgnoreMods {
		state &^= m
	}
	return state
}
