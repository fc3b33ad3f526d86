// Package switcher turns ranked windows into the navigable switcher list
// and owns the switcher's selection and visibility.
package switcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/paneswitch/internal/catalog"
	"github.com/1broseidon/paneswitch/internal/search"
)

// ShortcutAlphabet is the set of shortcut characters, in fallback order.
const ShortcutAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// FullScreenGroup is the title of the group holding fullscreen windows.
const FullScreenGroup = "Full Screen"

// ItemKind tags a list item.
type ItemKind int

const (
	KindWindow ItemKind = iota
	KindHeader
)

// Item is a section header or a window entry. Headers are never selectable.
type Item struct {
	Kind   ItemKind
	Header string

	Window   catalog.Record
	Shortcut rune // zero when every shortcut character is taken
	Ranges   []search.Range
	Field    search.Field
}

// IsHeader reports whether the item is a section header.
func (i Item) IsHeader() bool { return i.Kind == KindHeader }

// ShortcutString returns the shortcut as a string, or "" when unassigned.
func (i Item) ShortcutString() string {
	if i.Shortcut == 0 {
		return ""
	}
	return string(i.Shortcut)
}

// GroupOptions describes the desktop layout used for grouping.
type GroupOptions struct {
	// CurrentDesktop is the zero-based active desktop, or negative when the
	// window manager exposes no desktops.
	CurrentDesktop int
}

// List is one generated switcher list.
type List struct {
	Items     []Item
	shortcuts map[rune]int
}

type group struct {
	title      string
	desktop    int
	current    bool
	fullscreen bool
	results    []search.Result
}

// BuildList groups results by desktop, emits headers when there is more
// than one group and assigns unique single-character shortcuts.
func BuildList(results []search.Result, opts GroupOptions) List {
	groups := groupResults(results, opts)
	needHeaders := len(groups) > 1

	l := List{shortcuts: make(map[rune]int)}
	used := make(map[rune]bool)
	for _, g := range groups {
		if needHeaders {
			l.Items = append(l.Items, Item{Kind: KindHeader, Header: g.title})
		}
		for _, r := range g.results {
			sc := AssignShortcut(r.Window.Owner, used)
			if sc != 0 {
				used[sc] = true
				l.shortcuts[sc] = len(l.Items)
			}
			l.Items = append(l.Items, Item{
				Kind:     KindWindow,
				Window:   r.Window,
				Shortcut: sc,
				Ranges:   r.Ranges,
				Field:    r.Field,
			})
		}
	}
	return l
}

func groupResults(results []search.Result, opts GroupOptions) []*group {
	current := opts.CurrentDesktop
	if current < 0 {
		current = 0
	}

	byKey := make(map[string]*group)
	var groups []*group
	for _, r := range results {
		var key string
		var g *group
		switch {
		case r.Window.Fullscreen:
			key = FullScreenGroup
			if g = byKey[key]; g == nil {
				g = &group{title: FullScreenGroup, fullscreen: true}
			}
		default:
			desktop := r.Window.Desktop
			if desktop < 0 {
				desktop = current
			}
			key = fmt.Sprintf("Desktop %d", desktop+1)
			if g = byKey[key]; g == nil {
				g = &group{title: key, desktop: desktop, current: desktop == current}
			}
		}
		if byKey[key] == nil {
			byKey[key] = g
			groups = append(groups, g)
		}
		g.results = append(g.results, r)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.current != b.current {
			return a.current
		}
		if a.fullscreen != b.fullscreen {
			return b.fullscreen
		}
		return a.desktop < b.desktop
	})
	return groups
}

// AssignShortcut picks the shortcut for an owner name: its first letter,
// then any later letter of the name, then the next unused character of
// ShortcutAlphabet. It returns zero when all characters are used.
func AssignShortcut(owner string, used map[rune]bool) rune {
	for _, r := range cleanName(owner) {
		if !used[r] {
			return r
		}
	}
	for _, r := range ShortcutAlphabet {
		if !used[r] {
			return r
		}
	}
	return 0
}

func cleanName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, name)
}

// IndexForShortcut returns the item index bound to a shortcut character.
// Uppercase letters resolve to their lowercase shortcut.
func (l List) IndexForShortcut(r rune) (int, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	i, ok := l.shortcuts[r]
	return i, ok
}

// Len returns the number of items, headers included.
func (l List) Len() int { return len(l.Items) }

// Entries returns the number of selectable items.
func (l List) Entries() int {
	n := 0
	for _, it := range l.Items {
		if !it.IsHeader() {
			n++
		}
	}
	return n
}

// First returns the first selectable index, or 0 when there is none.
func (l List) First() int {
	for i, it := range l.Items {
		if !it.IsHeader() {
			return i
		}
	}
	return 0
}

// Next returns the next selectable index after from, wrapping around.
func (l List) Next(from int) int {
	n := len(l.Items)
	if n == 0 {
		return 0
	}
	next := mod(from+1, n)
	for tries := 0; l.Items[next].IsHeader() && tries < n; tries++ {
		next = mod(next+1, n)
	}
	return next
}

// Previous returns the previous selectable index before from, wrapping around.
func (l List) Previous(from int) int {
	n := len(l.Items)
	if n == 0 {
		return 0
	}
	prev := mod(from-1, n)
	for tries := 0; l.Items[prev].IsHeader() && tries < n; tries++ {
		prev = mod(prev-1, n)
	}
	return prev
}

// Selectable reports whether i addresses a window entry.
func (l List) Selectable(i int) bool {
	return i >= 0 && i < len(l.Items) && !l.Items[i].IsHeader()
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
