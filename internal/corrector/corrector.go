// Package corrector rewrites text typed in the wrong keyboard layout.
package corrector

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/anprowh/LanguageCorrector/internal/classifier"
	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/normalize"
)

// Token reports how one whitespace-separated token was handled.
type Token struct {
	Input      string
	Output     string
	Normalized string
	// Source is the layout the token was typed in; empty when Err is set.
	Source layout.ID
	// Target is the layout the token is rendered in.
	Target layout.ID
	// Err is a layout.UndeterminedError when no single layout covers the
	// token, or wraps layout.ErrInternalInconsistency when the classifier gave
	// no usable label for it. The token is left unchanged in both cases.
	Err error
}

// Changed reports whether the output differs from the input.
func (t Token) Changed() bool { return t.Input != t.Output }

// Corrector holds the immutable pieces of a correction pipeline. It keeps no
// state between calls and is safe for concurrent use.
type Corrector struct {
	reg  *layout.Registry
	norm *normalize.Normalizer
	cls  classifier.Classifier
}

// New assembles a Corrector.
func New(reg *layout.Registry, n *normalize.Normalizer, cls classifier.Classifier) (*Corrector, error) {
	if reg == nil || n == nil || cls == nil {
		return nil, fmt.Errorf("registry, normalizer and classifier are required")
	}
	if s, ok := cls.(classifier.Scorer); ok {
		for _, id := range s.Labels() {
			if _, ok := reg.Layout(id); !ok {
				return nil, fmt.Errorf("%w: classifier label %s is not registered", layout.ErrInternalInconsistency, id)
			}
		}
	}
	return &Corrector{reg: reg, norm: n, cls: cls}, nil
}

// Correct splits text on whitespace, corrects every token and joins them with
// single spaces. Original spacing is not preserved.
func (c *Corrector) Correct(text string) string {
	return Join(c.Analyze(strings.Fields(norm.NFC.String(text))))
}

// Explain is Correct with a per-token report.
func (c *Corrector) Explain(text string) []Token {
	return c.Analyze(strings.Fields(norm.NFC.String(text)))
}

// Analyze classifies all words in one batch and re-maps each of them.
func (c *Corrector) Analyze(words []string) []Token {
	normalized := c.norm.NormalizeAll(words)
	labels := c.cls.Classify(normalized)
	tokens := make([]Token, len(words))
	for i, word := range words {
		target, err := c.label(labels, len(words), i)
		tokens[i] = c.remap(word, normalized[i], target, err)
	}
	return tokens
}

// label returns the i-th classifier label if it names a registered layout.
func (c *Corrector) label(labels []layout.ID, words, i int) (layout.ID, error) {
	if len(labels) != words {
		return "", fmt.Errorf("%w: classifier returned %d labels for %d words", layout.ErrInternalInconsistency, len(labels), words)
	}
	if _, ok := c.reg.Layout(labels[i]); !ok {
		return "", fmt.Errorf("%w: classifier label %q is not registered", layout.ErrInternalInconsistency, labels[i])
	}
	return labels[i], nil
}

func (c *Corrector) remap(word string, w normalize.Word, target layout.ID, labelErr error) Token {
	t := Token{Input: word, Output: word, Normalized: w.String(), Target: target}
	source, err := c.detect(word)
	if err != nil {
		t.Err = err
		t.Target = ""
		return t
	}
	t.Source = source
	// Nothing to classify: keep the token as typed.
	if w.Len() == 0 {
		t.Target = source
		return t
	}
	if labelErr != nil {
		t.Target = source
		t.Err = labelErr
		return t
	}
	if source == target {
		return t
	}
	var b strings.Builder
	for _, ch := range word {
		if !c.reg.Known(ch) {
			b.WriteRune(ch)
			continue
		}
		mapped, err := c.reg.TranslateChar(ch, source, target)
		if err != nil {
			// detect guarantees ch is on a key of source.
			panic(fmt.Sprintf("corrector: %v", err))
		}
		b.WriteRune(mapped)
	}
	t.Output = b.String()
	return t
}

// detect finds the layout of the characters some layout knows about.
func (c *Corrector) detect(word string) (layout.ID, error) {
	var known strings.Builder
	for _, ch := range word {
		if c.reg.Known(ch) {
			known.WriteRune(ch)
		}
	}
	id, err := c.reg.Detect(known.String())
	if err != nil {
		return "", &layout.UndeterminedError{Word: word}
	}
	return id, nil
}

// Join renders tokens the way Correct does.
func Join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Output
	}
	return strings.Join(parts, " ")
}
