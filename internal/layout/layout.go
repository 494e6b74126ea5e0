// Package layout holds keyboard layout tables and translation between them.
package layout

import (
	"fmt"
	"unicode"
)

// ID names a layout. It doubles as the language label produced by classifiers.
type ID string

// Built-in layout identifiers.
const (
	EnUS ID = "en_US"
	RuRU ID = "ru_RU"
)

// Layout assigns a character to each physical key. Position i of Keys is the
// character produced by the same physical key in every registered layout.
type Layout struct {
	ID   ID
	Name string
	Keys string
	// Letters is the lowercase classification alphabet. Empty means every
	// lowercase letter of Keys, in key order.
	Letters string
}

// Unshifted row by row, then the same rows with Shift held.
const (
	enUSKeys = "`1234567890-=" +
		"qwertyuiop[]\\" +
		"asdfghjkl;'" +
		"zxcvbnm,./" +
		"~!@#$%^&*()_+" +
		"QWERTYUIOP{}|" +
		"ASDFGHJKL:\"" +
		"ZXCVBNM<>?"

	ruRUKeys = "ё1234567890-=" +
		"йцукенгшщзхъ\\" +
		"фывапролджэ" +
		"ячсмитьбю." +
		"Ё!\"№;%:?*()_+" +
		"ЙЦУКЕНГШЩЗХЪ/" +
		"ФЫВАПРОЛДЖЭ" +
		"ЯЧСМИТЬБЮ,"
)

var builtin = []Layout{
	{ID: EnUS, Name: "English (US, QWERTY)", Keys: enUSKeys},
	{ID: RuRU, Name: "Russian (ЙЦУКЕН)", Keys: ruRUKeys},
}

// Builtin returns the built-in layouts in detection priority order.
func Builtin() []Layout {
	out := make([]Layout, len(builtin))
	copy(out, builtin)
	return out
}

// Lookup returns a built-in layout by ID.
func Lookup(id ID) (Layout, error) {
	for _, l := range builtin {
		if l.ID == id {
			return l, nil
		}
	}
	return Layout{}, fmt.Errorf("unknown layout: %s", id)
}

func (l Layout) letters() []rune {
	if l.Letters != "" {
		return []rune(l.Letters)
	}
	var out []rune
	for _, r := range l.Keys {
		if unicode.IsLetter(r) && unicode.IsLower(r) {
			out = append(out, r)
		}
	}
	return out
}

// Alphabet is an ordered set of letters.
type Alphabet struct {
	letters []rune
	index   map[rune]int
}

// NewAlphabet builds an alphabet from letters in order. Duplicates are an error.
func NewAlphabet(letters []rune) (Alphabet, error) {
	a := Alphabet{letters: make([]rune, 0, len(letters)), index: make(map[rune]int, len(letters))}
	for _, r := range letters {
		if _, ok := a.index[r]; ok {
			return Alphabet{}, fmt.Errorf("duplicate letter %q in alphabet", r)
		}
		a.index[r] = len(a.letters)
		a.letters = append(a.letters, r)
	}
	return a, nil
}

// Size returns the number of letters.
func (a Alphabet) Size() int { return len(a.letters) }

// Index returns the position of r.
func (a Alphabet) Index(r rune) (int, bool) {
	i, ok := a.index[r]
	return i, ok
}

// Contains reports whether r is a member.
func (a Alphabet) Contains(r rune) bool {
	_, ok := a.index[r]
	return ok
}

// Letter returns the letter at position i.
func (a Alphabet) Letter(i int) rune { return a.letters[i] }

func (a Alphabet) String() string { return string(a.letters) }
