// Package generator builds evaluation text typed in the wrong layout.
package generator

import (
	"fmt"
	"math/rand"
	"unicode"

	"github.com/anprowh/LanguageCorrector/internal/layout"
)

// Sample is one word as intended and as it was typed.
type Sample struct {
	Text    string
	Typed   string
	Layout  layout.ID
	TypedIn layout.ID
}

// Mistyped reports whether the sample was typed in a foreign layout.
func (s Sample) Mistyped() bool { return s.Layout != s.TypedIn }

// Options controls sample generation. Percentages are in [0, 1].
type Options struct {
	Count      int
	CapsPct    float64
	PunctPct   float64
	MistypePct float64
	Punct      []rune
}

// DefaultOptions mirrors typical chat input.
func DefaultOptions() Options {
	return Options{
		Count:      1000,
		CapsPct:    0.1,
		PunctPct:   0.1,
		MistypePct: 0.5,
		Punct:      []rune{'!', ',', '.', '?'},
	}
}

// Generator produces reproducible samples.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with seed.
func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate picks a language uniformly among the registry layouts that have a
// corpus, a word uniformly from that corpus, applies caps and punctuation
// rules, then retypes it in another layout with probability MistypePct.
func (g *Generator) Generate(reg *layout.Registry, corpora map[layout.ID][]string, opts Options) ([]Sample, error) {
	var langs []layout.ID
	for _, id := range reg.IDs() {
		if len(corpora[id]) > 0 {
			langs = append(langs, id)
		}
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("no corpus for any registered layout")
	}
	ids := reg.IDs()

	result := make([]Sample, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		lang := langs[g.rnd.Intn(len(langs))]
		words := corpora[lang]
		word := words[g.rnd.Intn(len(words))]
		word = applyCaps(g.rnd, word, opts.CapsPct)
		word = applyPunct(g.rnd, word, opts.PunctPct, punctFor(reg, lang, opts.Punct))

		s := Sample{Text: word, Typed: word, Layout: lang, TypedIn: lang}
		if len(ids) > 1 && g.rnd.Float64() < opts.MistypePct {
			other := ids[g.rnd.Intn(len(ids)-1)]
			if other == lang {
				other = ids[len(ids)-1]
			}
			typed, err := reg.Translate(word, lang, other)
			if err != nil {
				return nil, fmt.Errorf("failed to retype %q in %s: %w", word, other, err)
			}
			s.Typed, s.TypedIn = typed, other
		}
		result = append(result, s)
	}
	return result, nil
}

func punctFor(reg *layout.Registry, id layout.ID, set []rune) []rune {
	out := make([]rune, 0, len(set))
	for _, r := range set {
		if reg.Contains(id, r) {
			out = append(out, r)
		}
	}
	return out
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}

// Result summarises an evaluation run.
type Result struct {
	Total    int
	Correct  int
	Mistyped int
	Fixed    int
	// Broken counts correctly typed samples that were changed.
	Broken int
}

// Accuracy returns the fraction of samples restored to their intended text.
func (r Result) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Evaluate runs correct over every typed sample and compares with the text.
func Evaluate(samples []Sample, correct func(string) string) Result {
	var res Result
	for _, s := range samples {
		out := correct(s.Typed)
		res.Total++
		ok := out == s.Text
		if ok {
			res.Correct++
		}
		if s.Mistyped() {
			res.Mistyped++
			if ok {
				res.Fixed++
			}
		} else if !ok {
			res.Broken++
		}
	}
	return res
}
