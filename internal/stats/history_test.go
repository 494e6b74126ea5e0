package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/anprowh/LanguageCorrector/internal/corrector"
	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/store"
)

func TestNewCorrection(t *testing.T) {
	tokens := []corrector.Token{
		{Input: "Ghbdtn", Output: "Привет", Source: layout.EnUS, Target: layout.RuRU},
		{Input: "hiпривет", Output: "hiпривет", Err: &layout.UndeterminedError{Word: "hiпривет"}},
	}
	c := NewCorrection("Ghbdtn  hiпривет", "heuristic", tokens, time.Unix(10, 0))
	if c.Output != "Привет hiпривет" {
		t.Fatalf("unexpected output: %q", c.Output)
	}
	if len(c.Tokens) != 2 || c.Tokens[1].Position != 1 {
		t.Fatalf("unexpected tokens: %+v", c.Tokens)
	}
	if c.Tokens[0].Source != "en_US" || c.Tokens[0].Target != "ru_RU" {
		t.Fatalf("unexpected first token: %+v", c.Tokens[0])
	}
	if c.Tokens[1].Source != Undetermined || c.Tokens[1].Target != Undetermined {
		t.Fatalf("expected undetermined token, got %+v", c.Tokens[1])
	}
}

func TestRecorder(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	rec := NewRecorder(st, "model")
	if err := rec.Record(ctx, "   ", nil); err != nil {
		t.Fatalf("record empty: %v", err)
	}
	tokens := []corrector.Token{{Input: "vbh", Output: "мир", Source: layout.EnUS, Target: layout.RuRU}}
	if err := rec.Record(ctx, "vbh", tokens); err != nil {
		t.Fatalf("record: %v", err)
	}

	list, err := st.ListCorrections(ctx, 10)
	if err != nil {
		t.Fatalf("list corrections: %v", err)
	}
	if len(list) != 1 || list[0].Output != "мир" || list[0].Classifier != "model" {
		t.Fatalf("unexpected corrections: %+v", list)
	}
}
