package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/anprowh/LanguageCorrector/internal/corrector"
	"github.com/anprowh/LanguageCorrector/internal/model"
	"github.com/anprowh/LanguageCorrector/internal/store"
)

// Undetermined marks the layout columns of tokens no layout covers.
const Undetermined = "?"

// NewCorrection converts corrector tokens into a storable correction.
func NewCorrection(input, classifierName string, tokens []corrector.Token, at time.Time) model.Correction {
	c := model.Correction{
		CreatedAt:  at,
		Input:      input,
		Output:     corrector.Join(tokens),
		Classifier: classifierName,
		Tokens:     make([]model.TokenRecord, len(tokens)),
	}
	for i, t := range tokens {
		source, target := string(t.Source), string(t.Target)
		if t.Err != nil {
			source, target = Undetermined, Undetermined
		}
		c.Tokens[i] = model.TokenRecord{Position: i, Input: t.Input, Output: t.Output, Source: source, Target: target}
	}
	return c
}

// Recorder writes corrections to the history store.
type Recorder struct {
	store      *store.Store
	classifier string
	now        func() time.Time
}

// NewRecorder returns a Recorder tagging rows with classifierName.
func NewRecorder(st *store.Store, classifierName string) *Recorder {
	return &Recorder{store: st, classifier: classifierName, now: time.Now}
}

// Record stores one corrected line. Empty lines are skipped.
func (r *Recorder) Record(ctx context.Context, input string, tokens []corrector.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	if _, err := r.store.InsertCorrection(ctx, NewCorrection(input, r.classifier, tokens, r.now())); err != nil {
		return fmt.Errorf("failed to record correction: %w", err)
	}
	return nil
}
