// Package classifier decides which language a normalized word was meant in.
package classifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/normalize"
)

// ErrClassifierUnavailable is returned when a classifier cannot be built,
// typically because its model artifact is missing or malformed.
var ErrClassifierUnavailable = errors.New("classifier unavailable")

// Classifier labels each normalized word with a registered layout. The result
// has the same length and order as words and never contains an unknown label.
// Implementations are deterministic and safe for concurrent use.
type Classifier interface {
	Classify(words []normalize.Word) []layout.ID
}

// Scorer exposes raw per-label scores, in Labels order.
type Scorer interface {
	Classifier
	Labels() []layout.ID
	Scores(word normalize.Word) []float64
}

// Kind selects a classifier implementation.
type Kind string

// Supported kinds.
const (
	KindHeuristic Kind = "heuristic"
	KindModel     Kind = "model"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindHeuristic, "":
		return KindHeuristic, nil
	case KindModel:
		return KindModel, nil
	default:
		return "", fmt.Errorf("unknown classifier %q (available: heuristic, model)", s)
	}
}

// Options configures New.
type Options struct {
	// ModelPath is the artifact for KindModel.
	ModelPath string
	// Corpora adds words per layout to the heuristic statistics.
	Corpora map[layout.ID][]string
}

// New builds a classifier of the given kind over the normalizer's alphabet.
// Labels follow the registry priority order.
func New(kind Kind, reg *layout.Registry, n *normalize.Normalizer, opts Options) (Scorer, error) {
	switch kind {
	case KindHeuristic, "":
		corpora := make(map[layout.ID][]string, len(reg.IDs()))
		for _, id := range reg.IDs() {
			words := append(SeedCorpus(id), opts.Corpora[id]...)
			corpora[id] = words
		}
		return NewHeuristic(n, reg.IDs(), corpora)
	case KindModel:
		if opts.ModelPath == "" {
			return nil, fmt.Errorf("%w: model path is empty", ErrClassifierUnavailable)
		}
		m, err := LoadModel(opts.ModelPath)
		if err != nil {
			return nil, err
		}
		return NewLinear(m, reg, n)
	default:
		return nil, fmt.Errorf("unknown classifier kind %q", kind)
	}
}

// argmax returns the index of the highest score; the earliest index wins ties.
func argmax(scores []float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}

func classifyWith(s Scorer, words []normalize.Word) []layout.ID {
	labels := s.Labels()
	out := make([]layout.ID, len(words))
	for i, w := range words {
		out[i] = labels[argmax(s.Scores(w))]
	}
	return out
}
