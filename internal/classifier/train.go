package classifier

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/normalize"
)

// Corpus is a word list written in one layout.
type Corpus struct {
	Label layout.ID
	Words []string
}

// TrainOptions tunes Train.
type TrainOptions struct {
	Epochs       int
	LearningRate float64
	L2           float64
	Seed         int64
}

// DefaultTrainOptions returns the settings used by the train command.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{Epochs: 30, LearningRate: 0.1, L2: 1e-4, Seed: 1}
}

type sample struct {
	active []int
	label  int
}

// Train fits a softmax regression over the one-hot encoding. Labels keep the
// order of corpora. Training is deterministic for a given Seed.
func Train(n *normalize.Normalizer, corpora []Corpus, opts TrainOptions) (*Model, error) {
	if len(corpora) < 2 {
		return nil, fmt.Errorf("need at least two corpora, got %d", len(corpora))
	}
	if opts.Epochs <= 0 {
		return nil, fmt.Errorf("epochs must be > 0")
	}
	if opts.LearningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be > 0")
	}

	alphabet := n.Alphabet()
	m := &Model{
		Window:   n.Window(),
		Alphabet: alphabet.String(),
		Labels:   make([]string, len(corpora)),
		Weights:  make([][]float64, len(corpora)),
		Bias:     make([]float64, len(corpora)),
	}
	var samples []sample
	for li, c := range corpora {
		m.Labels[li] = string(c.Label)
		m.Weights[li] = make([]float64, n.Window()*alphabet.Size())
		count := 0
		for _, word := range c.Words {
			w := n.Normalize(word)
			if w.Len() == 0 {
				continue
			}
			samples = append(samples, sample{active: activeFeatures(w, alphabet), label: li})
			count++
		}
		if count == 0 {
			return nil, fmt.Errorf("corpus for %s has no usable words", c.Label)
		}
	}

	rnd := rand.New(rand.NewSource(opts.Seed))
	probs := make([]float64, len(corpora))
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		rnd.Shuffle(len(samples), func(i, j int) {
			samples[i], samples[j] = samples[j], samples[i]
		})
		for _, s := range samples {
			softmax(logits(m, s.active), probs)
			for li := range m.Labels {
				grad := probs[li]
				if li == s.label {
					grad--
				}
				row := m.Weights[li]
				for _, k := range s.active {
					row[k] -= opts.LearningRate * (grad + opts.L2*row[k])
				}
				m.Bias[li] -= opts.LearningRate * grad
			}
		}
	}
	return m, nil
}

func softmax(in, out []float64) {
	top := in[argmax(in)]
	total := 0.0
	for i, v := range in {
		out[i] = math.Exp(v - top)
		total += out[i]
	}
	for i := range out {
		out[i] /= total
	}
}

// Accuracy returns the share of corpus words whose label is predicted.
func Accuracy(c Classifier, n *normalize.Normalizer, corpora []Corpus) float64 {
	total, hit := 0, 0
	for _, corpus := range corpora {
		words := n.NormalizeAll(corpus.Words)
		for _, got := range c.Classify(words) {
			total++
			if got == corpus.Label {
				hit++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hit) / float64(total)
}
