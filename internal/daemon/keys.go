package daemon

import (
	"unicode"
	"unicode/utf8"

	"github.com/1broseidon/paneswitch/internal/hotkeys"
	"github.com/1broseidon/paneswitch/internal/input"
)

// keyTarget is the switcher state typed keys act on.
type keyTarget interface {
	IsVisible() bool
	InSearchMode() bool
	Query() string
	SetQuery(string)
	SelectNext()
	SelectPrevious()
	ActivateSelected() bool
	ActivateByShortcut(rune) bool
}

// keysymRunes maps keysym names of common punctuation to their character.
var keysymRunes = map[string]rune{
	"space":      ' ',
	"period":     '.',
	"comma":      ',',
	"minus":      '-',
	"underscore": '_',
	"slash":      '/',
	"colon":      ':',
	"apostrophe": '\'',
	"at":         '@',
	"numbersign": '#',
	"plus":       '+',
	"equal":      '=',
}

// handleKey applies a key typed while the keyboard is captured. It reports
// whether the key was used.
func handleKey(t keyTarget, ev hotkeys.KeyEvent) bool {
	if !t.IsVisible() {
		return false
	}

	switch ev.Name {
	case "Up", "KP_Up":
		t.SelectPrevious()
		return true
	case "Down", "KP_Down":
		t.SelectNext()
		return true
	case "Return", "KP_Enter":
		t.ActivateSelected()
		return true
	}

	if t.InSearchMode() {
		switch ev.Name {
		case "BackSpace":
			q := []rune(t.Query())
			if len(q) > 0 {
				t.SetQuery(string(q[:len(q)-1]))
			}
			return true
		}
		if ev.Mods.Has(input.ModControl) || ev.Mods.Has(input.ModAlt) {
			return false
		}
		if r, ok := printable(ev.Name); ok {
			t.SetQuery(t.Query() + string(r))
			return true
		}
		return false
	}

	switch ev.Name {
	case "Left":
		t.SelectPrevious()
		return true
	case "Right":
		t.SelectNext()
		return true
	}
	if ev.Mods.Has(input.ModControl) || ev.Mods.Has(input.ModAlt) {
		return false
	}
	if r, ok := printable(ev.Name); ok {
		return t.ActivateByShortcut(unicode.ToLower(r))
	}
	return false
}

// printable returns the character typed for a keysym name.
func printable(name string) (rune, bool) {
	if r, ok := keysymRunes[name]; ok {
		return r, true
	}
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || size != len(name) || !unicode.IsPrint(r) {
		return 0, false
	}
	return r, true
}
