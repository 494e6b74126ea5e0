package classifier

import (
	"fmt"
	"math"

	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/normalize"
)

// Heuristic scores words with per-language letter bigram statistics gathered
// from word lists projected onto the canonical alphabet. Index size (one past
// the last letter) marks both word start and word end. A word found verbatim
// in a label's corpus outranks any bigram evidence.
type Heuristic struct {
	norm   *normalize.Normalizer
	labels []layout.ID
	logp   [][][]float64
	known  []map[string]struct{}
}

// knownWordBonus is larger than any bigram log-likelihood gap over one window
// of letters.
const knownWordBonus = 1e4

// NewHeuristic builds bigram tables for each label from its corpus. Every
// label needs at least one word with letters.
func NewHeuristic(n *normalize.Normalizer, labels []layout.ID, corpora map[layout.ID][]string) (*Heuristic, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no labels", ErrClassifierUnavailable)
	}
	h := &Heuristic{norm: n, labels: append([]layout.ID(nil), labels...)}
	size := n.Alphabet().Size()
	for _, id := range labels {
		counts, known := countBigrams(n, corpora[id])
		if len(known) == 0 {
			return nil, fmt.Errorf("%w: no corpus for layout %s", ErrClassifierUnavailable, id)
		}
		h.logp = append(h.logp, smooth(counts, size))
		h.known = append(h.known, known)
	}
	return h, nil
}

func countBigrams(n *normalize.Normalizer, words []string) ([][]float64, map[string]struct{}) {
	alphabet := n.Alphabet()
	size := alphabet.Size()
	counts := make([][]float64, size+1)
	for i := range counts {
		counts[i] = make([]float64, size+1)
	}
	known := make(map[string]struct{}, len(words))
	for _, word := range words {
		w := n.Normalize(word)
		if w.Len() == 0 {
			continue
		}
		known[w.String()] = struct{}{}
		prev := size
		for _, r := range w[:w.Len()] {
			idx, _ := alphabet.Index(r)
			counts[prev][idx]++
			prev = idx
		}
		counts[prev][size]++
	}
	return counts, known
}

// smooth applies add-one smoothing and converts counts to log-probabilities.
func smooth(counts [][]float64, size int) [][]float64 {
	out := make([][]float64, len(counts))
	for i, row := range counts {
		total := 0.0
		for _, c := range row {
			total += c
		}
		out[i] = make([]float64, len(row))
		for j, c := range row {
			out[i][j] = math.Log((c + 1) / (total + float64(size+1)))
		}
	}
	return out
}

// Labels returns the labels in tie-break priority order.
func (h *Heuristic) Labels() []layout.ID {
	return append([]layout.ID(nil), h.labels...)
}

// Scores returns the bigram log-likelihood of w under each label, plus
// knownWordBonus for every label whose corpus contains w. A word without
// letters scores zero everywhere.
func (h *Heuristic) Scores(w normalize.Word) []float64 {
	scores := make([]float64, len(h.labels))
	if w.Len() == 0 {
		return scores
	}
	alphabet := h.norm.Alphabet()
	size := alphabet.Size()
	key := w.String()
	for li, table := range h.logp {
		prev := size
		s := 0.0
		for _, r := range w[:w.Len()] {
			idx, ok := alphabet.Index(r)
			if !ok {
				continue
			}
			s += table[prev][idx]
			prev = idx
		}
		s += table[prev][size]
		if _, ok := h.known[li][key]; ok {
			s += knownWordBonus
		}
		scores[li] = s
	}
	return scores
}

// Classify implements Classifier.
func (h *Heuristic) Classify(words []normalize.Word) []layout.ID {
	return classifyWith(h, words)
}
