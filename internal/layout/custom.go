package layout

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Custom builds a user-defined layout. Its keys must line up with the
// built-in physical-key order.
func Custom(id, name, keys, letters string) (Layout, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Layout{}, fmt.Errorf("custom layout: id is required")
	}
	if _, err := Lookup(ID(id)); err == nil {
		return Layout{}, fmt.Errorf("custom layout %s: id shadows a built-in layout", id)
	}
	want := utf8.RuneCountInString(enUSKeys)
	if got := utf8.RuneCountInString(keys); got != want {
		return Layout{}, fmt.Errorf("custom layout %s: %d keys, want %d", id, got, want)
	}
	if name == "" {
		name = id
	}
	return Layout{ID: ID(id), Name: name, Keys: keys, Letters: strings.ToLower(letters)}, nil
}
