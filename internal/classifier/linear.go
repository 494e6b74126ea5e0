package classifier

import (
	"fmt"

	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/normalize"
)

// Linear classifies with a loaded Model. Scores are the model logits; the
// arg-max is the same as for the softmax probabilities.
type Linear struct {
	model    *Model
	labels   []layout.ID
	alphabet layout.Alphabet
}

// NewLinear checks that m accepts the normalizer's encoding and that every
// model label is a registered layout.
func NewLinear(m *Model, reg *layout.Registry, n *normalize.Normalizer) (*Linear, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	if m.Window != n.Window() {
		return nil, fmt.Errorf("%w: model window %d, normalizer window %d", ErrClassifierUnavailable, m.Window, n.Window())
	}
	if m.Alphabet != n.Alphabet().String() {
		return nil, fmt.Errorf("%w: model alphabet %q does not match %q", ErrClassifierUnavailable, m.Alphabet, n.Alphabet().String())
	}
	labels := make([]layout.ID, len(m.Labels))
	for i, label := range m.Labels {
		id := layout.ID(label)
		if _, ok := reg.Layout(id); !ok {
			return nil, fmt.Errorf("%w: model label %s is not an active layout", ErrClassifierUnavailable, label)
		}
		labels[i] = id
	}
	return &Linear{model: m, labels: labels, alphabet: n.Alphabet()}, nil
}

// Labels returns the model labels in tie-break order.
func (l *Linear) Labels() []layout.ID {
	return append([]layout.ID(nil), l.labels...)
}

// Scores returns one logit per label.
func (l *Linear) Scores(w normalize.Word) []float64 {
	return logits(l.model, activeFeatures(w, l.alphabet))
}

// Classify implements Classifier.
func (l *Linear) Classify(words []normalize.Word) []layout.ID {
	return classifyWith(l, words)
}

func logits(m *Model, active []int) []float64 {
	out := make([]float64, len(m.Labels))
	for li := range m.Labels {
		s := m.Bias[li]
		row := m.Weights[li]
		for _, k := range active {
			s += row[k]
		}
		out[li] = s
	}
	return out
}
