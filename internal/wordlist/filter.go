// Package wordlist provides word list filtering helpers.
package wordlist

import (
	"unicode"

	"github.com/anprowh/LanguageCorrector/internal/layout"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLayout keeps non-empty words whose letters all belong to the
// classification alphabet of layout id.
func FilterForLayout(reg *layout.Registry, id layout.ID) FilterFunc {
	letters, ok := reg.Letters(id)
	if !ok {
		return func(string) bool { return false }
	}
	return func(word string) bool {
		if word == "" {
			return false
		}
		for _, r := range word {
			if !letters.Contains(unicode.ToLower(r)) {
				return false
			}
		}
		return true
	}
}

// LangCode maps a layout ID such as en_US to the wordfreq language code.
func LangCode(id layout.ID) string {
	s := string(id)
	for i, r := range s {
		if r == '_' || r == '-' {
			return toLowerASCII(s[:i])
		}
	}
	return toLowerASCII(s)
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
