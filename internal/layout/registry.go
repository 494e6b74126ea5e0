package layout

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"
)

var (
	// ErrUndeterminedLayout is returned when no single layout covers a word.
	ErrUndeterminedLayout = errors.New("undetermined layout")
	// ErrInternalInconsistency marks a malformed registry.
	ErrInternalInconsistency = errors.New("layout registry inconsistency")
)

// UndeterminedError carries the word that could not be attributed to a layout.
type UndeterminedError struct {
	Word string
}

func (e *UndeterminedError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUndeterminedLayout, e.Word)
}

func (e *UndeterminedError) Unwrap() error { return ErrUndeterminedLayout }

type pair struct {
	from, to ID
}

// Registry is an immutable set of layouts with precomputed translation tables
// for every ordered pair. It is safe for concurrent use.
type Registry struct {
	layouts []Layout
	sets    map[ID]map[rune]struct{}
	tables  map[pair]map[rune]rune
	letters map[ID]Alphabet
}

// NewRegistry validates layouts and builds all pairwise tables. The order of
// layouts is the detection priority.
func NewRegistry(layouts ...Layout) (*Registry, error) {
	if len(layouts) == 0 {
		return nil, fmt.Errorf("%w: no layouts", ErrInternalInconsistency)
	}
	r := &Registry{
		layouts: make([]Layout, len(layouts)),
		sets:    make(map[ID]map[rune]struct{}, len(layouts)),
		tables:  make(map[pair]map[rune]rune, len(layouts)*len(layouts)),
		letters: make(map[ID]Alphabet, len(layouts)),
	}
	copy(r.layouts, layouts)

	keyCount := utf8.RuneCountInString(layouts[0].Keys)
	keys := make(map[ID][]rune, len(layouts))
	for _, l := range layouts {
		if l.ID == "" {
			return nil, fmt.Errorf("%w: layout without id", ErrInternalInconsistency)
		}
		if _, ok := keys[l.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate layout %s", ErrInternalInconsistency, l.ID)
		}
		runes := []rune(l.Keys)
		if len(runes) != keyCount {
			return nil, fmt.Errorf("%w: layout %s has %d keys, want %d", ErrInternalInconsistency, l.ID, len(runes), keyCount)
		}
		set := make(map[rune]struct{}, len(runes))
		for _, ch := range runes {
			if _, ok := set[ch]; ok {
				return nil, fmt.Errorf("%w: layout %s repeats %q", ErrInternalInconsistency, l.ID, ch)
			}
			set[ch] = struct{}{}
		}
		alphabet, err := NewAlphabet(l.letters())
		if err != nil {
			return nil, fmt.Errorf("%w: layout %s: %v", ErrInternalInconsistency, l.ID, err)
		}
		for _, ch := range alphabet.letters {
			if _, ok := set[ch]; !ok {
				return nil, fmt.Errorf("%w: layout %s letter %q is not on any key", ErrInternalInconsistency, l.ID, ch)
			}
		}
		keys[l.ID] = runes
		r.sets[l.ID] = set
		r.letters[l.ID] = alphabet
	}

	for _, from := range layouts {
		for _, to := range layouts {
			src, dst := keys[from.ID], keys[to.ID]
			table := make(map[rune]rune, keyCount)
			for i, ch := range src {
				table[ch] = dst[i]
			}
			r.tables[pair{from.ID, to.ID}] = table
		}
	}
	return r, nil
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return NewRegistry(builtin...)
})

// Default returns the registry of built-in layouts, built once.
func Default() *Registry {
	r, err := defaultRegistry()
	if err != nil {
		panic(fmt.Sprintf("built-in layouts: %v", err))
	}
	return r
}

// Select returns a registry restricted to ids, in the given priority order.
func (r *Registry) Select(ids ...ID) (*Registry, error) {
	picked := make([]Layout, 0, len(ids))
	for _, id := range ids {
		l, ok := r.Layout(id)
		if !ok {
			return nil, fmt.Errorf("unknown layout: %s", id)
		}
		picked = append(picked, l)
	}
	return NewRegistry(picked...)
}

// Layouts returns the layouts in priority order.
func (r *Registry) Layouts() []Layout {
	out := make([]Layout, len(r.layouts))
	copy(out, r.layouts)
	return out
}

// IDs returns layout IDs in priority order.
func (r *Registry) IDs() []ID {
	out := make([]ID, len(r.layouts))
	for i, l := range r.layouts {
		out[i] = l.ID
	}
	return out
}

// Layout returns the layout with the given ID.
func (r *Registry) Layout(id ID) (Layout, bool) {
	for _, l := range r.layouts {
		if l.ID == id {
			return l, true
		}
	}
	return Layout{}, false
}

// Letters returns the classification alphabet of a layout.
func (r *Registry) Letters(id ID) (Alphabet, bool) {
	a, ok := r.letters[id]
	return a, ok
}

// Contains reports whether layout id can produce ch.
func (r *Registry) Contains(id ID, ch rune) bool {
	_, ok := r.sets[id][ch]
	return ok
}

// Known reports whether any registered layout can produce ch.
func (r *Registry) Known(ch rune) bool {
	for _, l := range r.layouts {
		if _, ok := r.sets[l.ID][ch]; ok {
			return true
		}
	}
	return false
}

// Detect returns the first layout, in priority order, whose symbol set covers
// every character of word. The empty word belongs to the first layout.
func (r *Registry) Detect(word string) (ID, error) {
	for _, l := range r.layouts {
		if r.covers(l.ID, word) {
			return l.ID, nil
		}
	}
	return "", &UndeterminedError{Word: word}
}

func (r *Registry) covers(id ID, word string) bool {
	set := r.sets[id]
	for _, ch := range word {
		if _, ok := set[ch]; !ok {
			return false
		}
	}
	return true
}

// TranslateChar maps ch as typed in layout from to the same key in layout to.
// An empty from detects the layout of ch first.
func (r *Registry) TranslateChar(ch rune, from, to ID) (rune, error) {
	if from == "" {
		detected, err := r.Detect(string(ch))
		if err != nil {
			return 0, err
		}
		from = detected
	}
	table, ok := r.tables[pair{from, to}]
	if !ok {
		return 0, fmt.Errorf("unknown layout pair %s -> %s", from, to)
	}
	out, ok := table[ch]
	if !ok {
		if r.Contains(from, ch) {
			return 0, fmt.Errorf("%w: %q in %s has no mapping to %s", ErrInternalInconsistency, ch, from, to)
		}
		return 0, &UndeterminedError{Word: string(ch)}
	}
	return out, nil
}

// Translate maps every character of word from layout from to layout to.
func (r *Registry) Translate(word string, from, to ID) (string, error) {
	if _, ok := r.tables[pair{from, to}]; !ok {
		return "", fmt.Errorf("unknown layout pair %s -> %s", from, to)
	}
	out := make([]rune, 0, len(word))
	for _, ch := range word {
		mapped, err := r.TranslateChar(ch, from, to)
		if err != nil {
			return "", err
		}
		out = append(out, mapped)
	}
	return string(out), nil
}

// TranslateWord detects the layout of word and maps it to layout to.
func (r *Registry) TranslateWord(word string, to ID) (string, error) {
	from, err := r.Detect(word)
	if err != nil {
		return "", err
	}
	return r.Translate(word, from, to)
}
