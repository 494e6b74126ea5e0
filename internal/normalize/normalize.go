// Package normalize projects raw words onto the classification alphabet.
package normalize

import (
	"fmt"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/anprowh/LanguageCorrector/internal/layout"
)

// DefaultWindow is the number of leading letters considered for classification.
const DefaultWindow = 8

// Pad fills a Word past its last letter.
const Pad rune = 0

// Word is a fixed-width sequence of canonical letters followed by Pad.
type Word []rune

// Len returns the number of letters before padding.
func (w Word) Len() int {
	for i, r := range w {
		if r == Pad {
			return i
		}
	}
	return len(w)
}

// String returns the letters without padding.
func (w Word) String() string {
	return string(w[:w.Len()])
}

// Normalizer turns raw words into Words. It is immutable and safe for
// concurrent use.
type Normalizer struct {
	reg       *layout.Registry
	canonical layout.ID
	alphabet  layout.Alphabet
	window    int
}

// New returns a Normalizer that projects letters onto the canonical layout.
func New(reg *layout.Registry, canonical layout.ID, window int) (*Normalizer, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if window < 1 {
		return nil, fmt.Errorf("window must be > 0")
	}
	alphabet, ok := reg.Letters(canonical)
	if !ok {
		return nil, fmt.Errorf("canonical layout %s is not registered", canonical)
	}
	if alphabet.Size() == 0 {
		return nil, fmt.Errorf("canonical layout %s has no letters", canonical)
	}
	return &Normalizer{reg: reg, canonical: canonical, alphabet: alphabet, window: window}, nil
}

// Window returns the fixed Word width.
func (n *Normalizer) Window() int { return n.window }

// Alphabet returns the canonical alphabet.
func (n *Normalizer) Alphabet() layout.Alphabet { return n.alphabet }

// Canonical returns the layout whose letters form the alphabet.
func (n *Normalizer) Canonical() layout.ID { return n.canonical }

// Normalize lowercases the letters of word, maps them key-by-key onto the
// canonical layout and keeps the first Window of them, padding the rest.
// Letters no registered layout can produce are dropped before the window is
// applied.
func (n *Normalizer) Normalize(word string) Word {
	out := make(Word, 0, n.window)
	for _, r := range norm.NFC.String(word) {
		if len(out) == n.window {
			break
		}
		if !unicode.IsLetter(r) {
			continue
		}
		if projected, ok := n.Project(unicode.ToLower(r)); ok {
			out = append(out, projected)
		}
	}
	for len(out) < n.window {
		out = append(out, Pad)
	}
	return out
}

// NormalizeAll normalizes each word, preserving order.
func (n *Normalizer) NormalizeAll(words []string) []Word {
	out := make([]Word, len(words))
	for i, w := range words {
		out[i] = n.Normalize(w)
	}
	return out
}

// Project maps a lowercase letter onto the canonical alphabet.
func (n *Normalizer) Project(r rune) (rune, bool) {
	if n.alphabet.Contains(r) {
		return r, true
	}
	for _, id := range n.reg.IDs() {
		if id == n.canonical {
			continue
		}
		letters, _ := n.reg.Letters(id)
		if !letters.Contains(r) {
			continue
		}
		mapped, err := n.reg.TranslateChar(r, id, n.canonical)
		if err != nil {
			continue
		}
		if n.alphabet.Contains(mapped) {
			return mapped, true
		}
	}
	return 0, false
}
