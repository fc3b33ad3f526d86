package search

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/1broseidon/paneswitch/internal/catalog"
)

func rec(id int64, owner, title string) catalog.Record {
	return catalog.Record{ID: id, PID: int(id), Owner: owner, Title: title}
}

func owners(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Window.Owner
	}
	return out
}

func TestSearch_EmptyQueryReturnsAllInOrder(t *testing.T) {
	windows := []catalog.Record{rec(1, "Safari", "Apple"), rec(2, "Chrome", "Google")}
	results := New().Search("", windows)
	require.Len(t, results, 2)
	for i, r := range results {
		assert.Equal(t, windows[i], r.Window)
		assert.Equal(t, 1.0, r.Score)
		assert.Empty(t, r.Ranges)
	}
}

func TestSearch_Basic(t *testing.T) {
	windows := []catalog.Record{
		rec(1, "Safari", "Apple"),
		rec(2, "Chrome", "Google"),
		rec(3, "Visual Studio Code", "main.go"),
		rec(4, "Firefox", "GitHub - Repository"),
	}
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"exact", "Safari", []string{"Safari"}},
		{"case insensitive", "safari", []string{"Safari"}},
		{"prefix", "saf", []string{"Safari"}},
		{"non consecutive", "vsc", []string{"Visual Studio Code"}},
		{"title", "github", []string{"Firefox"}},
		{"no match", "xyz", []string{}},
	}
	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, owners(e.Search(tt.query, windows)))
		})
	}
}

func TestSearch_ExactMatchOutranksLongerText(t *testing.T) {
	windows := []catalog.Record{rec(1, "SafariTechnologyPreview", ""), rec(2, "Safari", "")}
	results := New().Search("Safari", windows)
	require.Len(t, results, 2)
	assert.Equal(t, "Safari", results[0].Window.Owner)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_StartOfStringOutranksMidString(t *testing.T) {
	windows := []catalog.Record{rec(1, "Apple Safari", ""), rec(2, "Safari", "Apple")}
	results := New().Search("Safari", windows)
	require.NotEmpty(t, results)
	assert.Equal(t, "Safari", results[0].Window.Owner)
}

func TestSearch_AcronymExactOutranksContains(t *testing.T) {
	windows := []catalog.Record{rec(1, "Calculator", "gctest"), rec(2, "Google Chrome", "Gmail")}
	results := New().Search("gc", windows)
	require.Len(t, results, 2)
	assert.Equal(t, "Google Chrome", results[0].Window.Owner)
	assert.Equal(t, FieldNone, results[0].Field, "acronym wins carry no ranges")
}

func TestSearch_RangesFollowBestField(t *testing.T) {
	results := New().Search("fox", []catalog.Record{rec(1, "Firefox", "Inbox")})
	require.Len(t, results, 1)
	assert.Equal(t, FieldOwner, results[0].Field)
	assert.Equal(t, []Range{{Start: 0, Length: 1}, {Start: 5, Length: 2}}, results[0].Ranges)

	results = New().Search("inb", []catalog.Record{rec(1, "Firefox", "Inbox")})
	require.Len(t, results, 1)
	assert.Equal(t, FieldTitle, results[0].Field)
	assert.Equal(t, []Range{{Start: 0, Length: 3}}, results[0].Ranges)
}

func TestSearch_TiesKeepCatalogOrder(t *testing.T) {
	windows := []catalog.Record{rec(1, "Term", "a"), rec(2, "Term", "b"), rec(3, "Term", "c")}
	results := New().Search("term", windows)
	require.Len(t, results, 3)
	assert.Equal(t, int64(1), results[0].Window.ID)
	assert.Equal(t, int64(2), results[1].Window.ID)
	assert.Equal(t, int64(3), results[2].Window.ID)
}

func TestFuzzy_Scoring(t *testing.T) {
	m := Fuzzy("ab", "ab")
	require.NotNil(t, m)
	// a: 1 + start 1 + boundary .75 + case .1; b: 1 + consecutive .5 + case .1
	assert.InDelta(t, (2.85+1.6)/2, m.Score, 1e-9)

	m = Fuzzy("b", "a-b")
	require.NotNil(t, m)
	assert.InDelta(t, (1+0.75+0.1)/3, m.Score, 1e-9)

	m = Fuzzy("A", "a")
	require.NotNil(t, m)
	assert.InDelta(t, 2.75, m.Score, 1e-9, "case mismatch earns no case bonus")

	assert.Nil(t, Fuzzy("abc", "acb"))
	assert.Nil(t, Fuzzy("a", ""))
}

func TestAcronym_Tiers(t *testing.T) {
	e := New()
	assert.Equal(t, "vscm", Initials("Visual Studio Code main.go"))
	assert.Equal(t, "mwn", Initials("my-window_name"))
	assert.Equal(t, 3.0, e.Acronym("vscm", "Visual Studio Code", "main.go"))
	assert.Equal(t, 2.0, e.Acronym("vs", "Visual Studio Code", "main.go"))
	assert.Equal(t, 1.5, e.Acronym("sc", "Visual Studio Code", "main.go"))
	assert.Equal(t, 0.0, e.Acronym("xy", "Visual Studio Code", "main.go"))
}

func TestIsPotentialAcronym(t *testing.T) {
	assert.True(t, IsPotentialAcronym("gc"))
	assert.True(t, IsPotentialAcronym("vsc"))
	assert.False(t, IsPotentialAcronym("Google Chrome"))
	assert.False(t, IsPotentialAcronym("VS Code"))
}

var textGen = rapid.StringOfN(rapid.RuneFrom([]rune("abcdeABCDE -_.xyz")), 0, 24, -1)

func lower(s string) string {
	return strings.Map(unicode.ToLower, s)
}

func TestProperty_EmptyQueryIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(t, "n")
		windows := make([]catalog.Record, n)
		for i := range windows {
			windows[i] = rec(int64(i), textGen.Draw(t, "owner"), textGen.Draw(t, "title"))
		}
		results := New().Search("", windows)
		if len(results) != len(windows) {
			t.Fatalf("got %d results for %d windows", len(results), len(windows))
		}
		for i, r := range results {
			if r.Window != windows[i] || r.Score != 1.0 {
				t.Fatalf("result %d = %+v, want window %+v with score 1", i, r, windows[i])
			}
		}
	})
}

func TestProperty_SubstringAlwaysMatches(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringOfN(rapid.RuneFrom([]rune("abcdeABCDE -_.xyz")), 1, 24, -1).Draw(t, "text")
		runes := []rune(text)
		start := rapid.IntRange(0, len(runes)-1).Draw(t, "start")
		end := rapid.IntRange(start+1, len(runes)).Draw(t, "end")
		query := string(runes[start:end])
		if rapid.Bool().Draw(t, "flipCase") {
			query = strings.ToUpper(query)
		}
		if Fuzzy(query, text) == nil {
			t.Fatalf("Fuzzy(%q, %q) = nil for a contained substring", query, text)
		}
	})
}

func isSubsequence(q, t string) bool {
	qr, tr := []rune(lower(q)), []rune(lower(t))
	i := 0
	for _, r := range tr {
		if i < len(qr) && qr[i] == r {
			i++
		}
	}
	return i == len(qr)
}

func TestProperty_NonSubsequenceNeverMatches(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		query := rapid.StringOfN(rapid.RuneFrom([]rune("abcxyz")), 1, 6, -1).Draw(t, "query")
		text := textGen.Draw(t, "text")
		m := Fuzzy(query, text)
		if isSubsequence(query, text) {
			if text != "" && m == nil {
				t.Fatalf("Fuzzy(%q, %q) = nil for a subsequence", query, text)
			}
			return
		}
		if m != nil {
			t.Fatalf("Fuzzy(%q, %q) matched a non-subsequence", query, text)
		}
	})
}

func TestProperty_ResultsSortedAndStable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 10).Draw(t, "n")
		windows := make([]catalog.Record, n)
		for i := range windows {
			windows[i] = rec(int64(i), textGen.Draw(t, "owner"), textGen.Draw(t, "title"))
		}
		query := rapid.StringOfN(rapid.RuneFrom([]rune("abcde")), 1, 3, -1).Draw(t, "query")
		results := New().Search(query, windows)
		for i := 1; i < len(results); i++ {
			prev, cur := results[i-1], results[i]
			if prev.Score < cur.Score {
				t.Fatalf("results not sorted: %v before %v", prev.Score, cur.Score)
			}
			if prev.Score == cur.Score && prev.Window.ID > cur.Window.ID {
				t.Fatalf("equal scores lost catalog order: %d before %d", prev.Window.ID, cur.Window.ID)
			}
		}
		for _, r := range results {
			if r.Score <= 0 {
				t.Fatalf("non-positive score %v returned", r.Score)
			}
		}
	})
}
