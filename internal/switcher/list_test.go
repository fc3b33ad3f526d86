package switcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/1broseidon/paneswitch/internal/catalog"
	"github.com/1broseidon/paneswitch/internal/search"
)

func results(records ...catalog.Record) []search.Result {
	out := make([]search.Result, len(records))
	for i, r := range records {
		out[i] = search.Result{Window: r, Score: 1}
	}
	return out
}

func window(id int64, owner string, desktop int) catalog.Record {
	return catalog.Record{ID: id, PID: int(id), Owner: owner, Desktop: desktop}
}

func shortcuts(l List) string {
	var b strings.Builder
	for _, it := range l.Items {
		if !it.IsHeader() {
			b.WriteString(it.ShortcutString())
		}
	}
	return b.String()
}

func TestAssignShortcut(t *testing.T) {
	l := BuildList(results(
		window(1, "Firefox", 0),
		window(2, "Files", 0),
		window(3, "fff", 0),
		window(4, "", 0),
		window(5, "Émacs", 0),
	), GroupOptions{CurrentDesktop: 0})

	// Firefox takes f; Files falls back to i; fff has no free letter of its
	// own and gets the next free character; an empty name does the same;
	// the accented name uses its first ASCII letter.
	assert.Equal(t, "fiabm", shortcuts(l))

	i, ok := l.IndexForShortcut('I')
	require.True(t, ok)
	assert.Equal(t, "Files", l.Items[i].Window.Owner)
}

func TestAssignShortcut_Exhausted(t *testing.T) {
	var records []catalog.Record
	for i := 0; i < 40; i++ {
		records = append(records, window(int64(i+1), "x", 0))
	}
	l := BuildList(results(records...), GroupOptions{})
	require.Len(t, l.Items, 40)
	for i, it := range l.Items {
		if i < 36 {
			assert.NotZero(t, it.Shortcut, "item %d", i)
		} else {
			assert.Zero(t, it.Shortcut, "item %d", i)
		}
	}
}

func TestBuildList_SingleGroupHasNoHeaders(t *testing.T) {
	l := BuildList(results(window(1, "a", -1), window(2, "b", -1)), GroupOptions{CurrentDesktop: -1})
	require.Len(t, l.Items, 2)
	assert.False(t, l.Items[0].IsHeader())
}

func TestBuildList_GroupOrder(t *testing.T) {
	full := window(4, "Game", 2)
	full.Fullscreen = true
	l := BuildList(results(
		window(1, "Mail", 2),
		window(2, "Term", 1),
		full,
		window(3, "Chat", 0),
		window(5, "Clock", -1),
	), GroupOptions{CurrentDesktop: 1})

	var titles []string
	for _, it := range l.Items {
		if it.IsHeader() {
			titles = append(titles, "#"+it.Header)
		} else {
			titles = append(titles, it.Window.Owner)
		}
	}
	assert.Equal(t, []string{
		"#Desktop 2", "Term", "Clock",
		"#Desktop 1", "Chat",
		"#Desktop 3", "Mail",
		"#Full Screen", "Game",
	}, titles)
}

func TestList_NavigationSkipsHeaders(t *testing.T) {
	l := BuildList(results(window(1, "a", 0), window(2, "b", 1)), GroupOptions{CurrentDesktop: 0})
	// [#Desktop 1, a, #Desktop 2, b]
	require.Len(t, l.Items, 4)
	assert.Equal(t, 1, l.First())
	assert.Equal(t, 3, l.Next(1))
	assert.Equal(t, 1, l.Next(3))
	assert.Equal(t, 3, l.Previous(1))
	assert.Equal(t, 1, l.Previous(3))
	assert.False(t, l.Selectable(0))
	assert.True(t, l.Selectable(3))
	assert.Equal(t, 2, l.Entries())
}

func TestList_EmptyNavigation(t *testing.T) {
	var l List
	assert.Equal(t, 0, l.First())
	assert.Equal(t, 0, l.Next(0))
	assert.Equal(t, 0, l.Previous(0))
	_, ok := l.IndexForShortcut('a')
	assert.False(t, ok)
}

func TestProperty_ShortcutsUniqueAndInAlphabet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 60).Draw(t, "n")
		var records []catalog.Record
		for i := 0; i < n; i++ {
			owner := rapid.StringN(0, 10, -1).Draw(t, "owner")
			desktop := rapid.IntRange(-1, 3).Draw(t, "desktop")
			rec := window(int64(i+1), owner, desktop)
			rec.Fullscreen = rapid.Bool().Draw(t, "fullscreen")
			records = append(records, rec)
		}
		l := BuildList(results(records...), GroupOptions{CurrentDesktop: rapid.IntRange(-1, 3).Draw(t, "current")})

		seen := make(map[rune]bool)
		entries := 0
		for i, it := range l.Items {
			if it.IsHeader() {
				continue
			}
			entries++
			if it.Shortcut == 0 {
				continue
			}
			if !strings.ContainsRune(ShortcutAlphabet, it.Shortcut) {
				t.Fatalf("shortcut %q outside alphabet", it.Shortcut)
			}
			if seen[it.Shortcut] {
				t.Fatalf("duplicate shortcut %q", it.Shortcut)
			}
			seen[it.Shortcut] = true
			if idx, ok := l.IndexForShortcut(it.Shortcut); !ok || idx != i {
				t.Fatalf("shortcut %q maps to %d, want %d", it.Shortcut, idx, i)
			}
		}
		if entries != n {
			t.Fatalf("got %d entries for %d windows", entries, n)
		}
		want := n
		if want > len(ShortcutAlphabet) {
			want = len(ShortcutAlphabet)
		}
		if len(seen) != want {
			t.Fatalf("assigned %d shortcuts, want %d", len(seen), want)
		}
	})
}
