package classifier

import (
	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/normalize"
)

// Encode returns the flattened window × alphabet one-hot matrix of w. Row i
// has a single 1 at the alphabet index of letter i; padded rows are all zero.
func Encode(w normalize.Word, alphabet layout.Alphabet) []float64 {
	size := alphabet.Size()
	out := make([]float64, len(w)*size)
	for _, k := range activeFeatures(w, alphabet) {
		out[k] = 1
	}
	return out
}

// activeFeatures lists the flattened indices set to 1 by Encode.
func activeFeatures(w normalize.Word, alphabet layout.Alphabet) []int {
	size := alphabet.Size()
	out := make([]int, 0, len(w))
	for pos, r := range w {
		if r == normalize.Pad {
			continue
		}
		idx, ok := alphabet.Index(r)
		if !ok {
			continue
		}
		out = append(out, pos*size+idx)
	}
	return out
}
