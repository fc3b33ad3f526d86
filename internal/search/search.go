// Package search ranks windows against free-text queries.
//
// Scoring is a greedy in-order subsequence match with bonuses for matches at
// the start of the text, consecutive matches, word boundaries and matching
// case, normalized by text length. Owner name, title and an acronym of both
// are scored independently and the best of the three wins.
package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/1broseidon/paneswitch/internal/catalog"
)

// Scoring constants.
const (
	DefaultAcronymBonus = 2.0

	matchScore         = 1.0
	startOfStringBonus = 1.0
	consecutiveBonus   = 0.5
	wordBoundaryBonus  = 0.75
	caseMatchBonus     = 0.1

	acronymExactFactor    = 1.5
	acronymPrefixFactor   = 1.0
	acronymContainsFactor = 0.75
)

// Range is a run of matched characters, in rune offsets of the matched text.
type Range struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Field identifies which text a result's ranges refer to.
type Field int

const (
	FieldNone Field = iota
	FieldOwner
	FieldTitle
)

func (f Field) String() string {
	switch f {
	case FieldOwner:
		return "owner"
	case FieldTitle:
		return "title"
	default:
		return "none"
	}
}

// Match is a successful fuzzy match of a query against one text.
type Match struct {
	Score  float64
	Ranges []Range
}

// Result is one ranked window.
type Result struct {
	Window catalog.Record
	Score  float64
	Ranges []Range
	Field  Field
}

// Engine scores windows. The zero value uses an acronym bonus of 0; use New.
type Engine struct {
	AcronymBonus float64
}

// New returns an engine with the default acronym bonus.
func New() *Engine {
	return &Engine{AcronymBonus: DefaultAcronymBonus}
}

// Search returns the windows matching query, best first. An empty query
// returns every window with score 1.0 in its original order. Windows with
// equal scores keep their relative input order.
func (e *Engine) Search(query string, windows []catalog.Record) []Result {
	if query == "" {
		out := make([]Result, len(windows))
		for i, w := range windows {
			out[i] = Result{Window: w, Score: 1.0}
		}
		return out
	}

	out := make([]Result, 0, len(windows))
	for _, w := range windows {
		if r, ok := e.score(query, w); ok {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func (e *Engine) score(query string, w catalog.Record) (Result, bool) {
	owner := Fuzzy(query, w.Owner)
	title := Fuzzy(query, w.Title)
	acronym := e.Acronym(query, w.Owner, w.Title)

	best := acronym
	if owner != nil && owner.Score > best {
		best = owner.Score
	}
	if title != nil && title.Score > best {
		best = title.Score
	}
	if best <= 0 {
		return Result{}, false
	}

	r := Result{Window: w, Score: best}
	switch {
	case owner != nil && owner.Score == best:
		r.Ranges, r.Field = owner.Ranges, FieldOwner
	case title != nil && title.Score == best:
		r.Ranges, r.Field = title.Ranges, FieldTitle
	}
	return r, true
}

// Fuzzy matches query against text as a case-insensitive subsequence. It
// returns nil when text is empty or query is not a subsequence of text.
func Fuzzy(query, text string) *Match {
	t := []rune(text)
	if len(t) == 0 {
		return nil
	}
	q := []rune(query)
	if len(q) == 0 {
		return &Match{}
	}

	var (
		score   float64
		ranges  []Range
		qi      int
		lastHit = -2
	)
	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if unicode.ToLower(q[qi]) != unicode.ToLower(t[ti]) {
			continue
		}

		score += matchScore
		if ti == 0 {
			score += startOfStringBonus
		}
		if lastHit == ti-1 {
			score += consecutiveBonus
		}
		if ti == 0 || isWordBoundary(t[ti-1]) {
			score += wordBoundaryBonus
		}
		if q[qi] == t[ti] {
			score += caseMatchBonus
		}

		if n := len(ranges); n > 0 && lastHit == ti-1 {
			ranges[n-1].Length++
		} else {
			ranges = append(ranges, Range{Start: ti, Length: 1})
		}
		lastHit = ti
		qi++
	}
	if qi < len(q) {
		return nil
	}
	return &Match{Score: score / float64(len(t)), Ranges: ranges}
}

// Acronym scores query against the first letters of the words in
// "owner title". Exact acronym equality ranks highest, then prefix, then
// containment.
func (e *Engine) Acronym(query, owner, title string) float64 {
	q := strings.ToLower(query)
	if q == "" {
		return 0
	}
	acronym := Initials(owner + " " + title)
	switch {
	case acronym == q:
		return e.AcronymBonus * acronymExactFactor
	case strings.HasPrefix(acronym, q):
		return e.AcronymBonus * acronymPrefixFactor
	case strings.Contains(acronym, q):
		return e.AcronymBonus * acronymContainsFactor
	}
	return 0
}

// Initials returns the lowercased first rune of every word in s, where
// words are separated by whitespace, '-' or '_'.
func Initials(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	var b strings.Builder
	for _, w := range words {
		for _, r := range w {
			b.WriteRune(unicode.ToLower(r))
			break
		}
	}
	return b.String()
}

// IsPotentialAcronym reports whether query looks like an acronym: short,
// lowercase and without spaces.
func IsPotentialAcronym(query string) bool {
	return len([]rune(query)) <= 5 && query == strings.ToLower(query) && !strings.Contains(query, " ")
}

func isWordBoundary(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || r == '-' || r == '_'
}
