// Package filter derives the visible subset and ordering of the recipe
// gallery from the current search, difficulty and sort controls, and keeps
// those control values in a per-browser preference store.
//
// The engine never owns the rendered cards. Each Summary carries an opaque
// Ref (the card's position in the page) and a View lists Refs to reveal.
package filter

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort is the order in which visible recipes are shown.
type Sort string

const (
	SortNewest         Sort = "newest"
	SortOldest         Sort = "oldest"
	SortDifficultyAsc  Sort = "difficulty-asc"
	SortDifficultyDesc Sort = "difficulty-desc"
	SortTitle          Sort = "title"
)

// Sorts lists every supported order, default first.
var Sorts = []Sort{SortNewest, SortOldest, SortDifficultyAsc, SortDifficultyDesc, SortTitle}

// Valid reports whether s is a known order.
func (s Sort) Valid() bool {
	for _, v := range Sorts {
		if v == s {
			return true
		}
	}
	return false
}

// Summary is the filterable metadata of one rendered recipe card.
type Summary struct {
	Ref        int
	Difficulty int
	Title      string
	CreatedAt  time.Time
}

// NewSummary builds a Summary, lowercasing the title for matching.
func NewSummary(ref, difficulty int, title string, createdAt time.Time) Summary {
	return Summary{
		Ref:        ref,
		Difficulty: difficulty,
		Title:      strings.ToLower(title),
		CreatedAt:  createdAt,
	}
}

// View is the outcome of one recomputation.
type View struct {
	// Visible holds the Refs to reveal, in display order. Every other card
	// is hidden.
	Visible []int
	// NoResults is set when nothing matched.
	NoResults bool
	// Delays is the staggered reveal delay for each entry of Visible.
	Delays []time.Duration
}

// IsVisible reports whether ref is part of the view.
func (v View) IsVisible(ref int) bool {
	for _, r := range v.Visible {
		if r == ref {
			return true
		}
	}
	return false
}

const (
	staggerStep = 50 * time.Millisecond
	staggerMax  = time.Second
)

// Engine owns the record set of one page and the current preferences.
type Engine struct {
	records  []Summary
	prefs    Preferences
	store    Store
	collator *collate.Collator
}

// New creates an engine over records and restores preferences from store.
// A nil store keeps preferences in memory only. Stored data that cannot be
// decoded is ignored and defaults apply.
func New(records []Summary, store Store) *Engine {
	e := &Engine{
		records:  records,
		prefs:    DefaultPreferences(),
		store:    store,
		collator: collate.New(language.Romanian),
	}
	if store != nil {
		if raw, ok := store.Load(); ok {
			e.prefs = Decode(raw)
		}
	}
	return e
}

// Preferences returns the current control values.
func (e *Engine) Preferences() Preferences {
	return e.prefs
}

// Apply records a control change, persists it and recomputes the view.
// The view is computed even when persisting fails.
func (e *Engine) Apply(p Preferences) (View, error) {
	e.prefs = p.normalized()
	var err error
	if e.store != nil {
		err = e.store.Save(Encode(e.prefs))
	}
	return e.Recompute(), err
}

// Recompute derives the view from the current preferences.
func (e *Engine) Recompute() View {
	matched := e.match()
	e.sort(matched)

	v := View{
		Visible:   make([]int, len(matched)),
		NoResults: len(matched) == 0,
		Delays:    make([]time.Duration, len(matched)),
	}
	for i, r := range matched {
		v.Visible[i] = r.Ref
		d := time.Duration(i) * staggerStep
		if d > staggerMax {
			d = staggerMax
		}
		v.Delays[i] = d
	}
	return v
}

func (e *Engine) match() []Summary {
	term := strings.ToLower(e.prefs.Search)
	wantDifficulty, filterDifficulty, valid := parseDifficulty(e.prefs.Difficulty)

	var out []Summary
	for _, r := range e.records {
		if !strings.Contains(r.Title, term) {
			continue
		}
		if filterDifficulty && (!valid || r.Difficulty != wantDifficulty) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// parseDifficulty reports the wanted difficulty, whether a filter is set at
// all, and whether the filter value is a number.
func parseDifficulty(s string) (int, bool, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, false
	}
	return n, true, true
}

func (e *Engine) sort(rs []Summary) {
	var less func(a, b Summary) bool
	switch e.prefs.Sort {
	case SortOldest:
		less = func(a, b Summary) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortDifficultyAsc:
		less = func(a, b Summary) bool { return a.Difficulty < b.Difficulty }
	case SortDifficultyDesc:
		less = func(a, b Summary) bool { return a.Difficulty > b.Difficulty }
	case SortTitle:
		less = func(a, b Summary) bool { return e.collator.CompareString(a.Title, b.Title) < 0 }
	default:
		less = func(a, b Summary) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(rs, func(i, j int) bool { return less(rs[i], rs[j]) })
}
