package generator

import (
	"testing"

	"github.com/anprowh/LanguageCorrector/internal/layout"
)

var testCorpora = map[layout.ID][]string{
	layout.EnUS: {"hello", "world", "keyboard"},
	layout.RuRU: {"привет", "мир", "клавиатура"},
}

func TestGenerateRetypesInAnotherLayout(t *testing.T) {
	reg := layout.Default()
	samples, err := New(7).Generate(reg, testCorpora, DefaultOptions())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(samples) != DefaultOptions().Count {
		t.Fatalf("expected %d samples, got %d", DefaultOptions().Count, len(samples))
	}
	mistyped := 0
	for _, s := range samples {
		if !s.Mistyped() {
			if s.Typed != s.Text {
				t.Fatalf("expected unchanged sample, got %+v", s)
			}
			continue
		}
		mistyped++
		back, err := reg.Translate(s.Typed, s.TypedIn, s.Layout)
		if err != nil {
			t.Fatalf("translate back failed: %v", err)
		}
		if back != s.Text {
			t.Fatalf("expected %q after translating back, got %q", s.Text, back)
		}
	}
	if mistyped == 0 || mistyped == len(samples) {
		t.Fatalf("expected a mix of mistyped samples, got %d of %d", mistyped, len(samples))
	}
}

func TestGenerateDeterministic(t *testing.T) {
	reg := layout.Default()
	a, err := New(3).Generate(reg, testCorpora, DefaultOptions())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := New(3).Generate(reg, testCorpora, DefaultOptions())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical samples at %d, got %+v and %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateWithoutCorpus(t *testing.T) {
	if _, err := New(1).Generate(layout.Default(), nil, DefaultOptions()); err == nil {
		t.Fatalf("expected error without corpora")
	}
}

func TestEvaluate(t *testing.T) {
	samples := []Sample{
		{Text: "hello", Typed: "hello", Layout: layout.EnUS, TypedIn: layout.EnUS},
		{Text: "мир", Typed: "vbh", Layout: layout.RuRU, TypedIn: layout.EnUS},
		{Text: "world", Typed: "world", Layout: layout.EnUS, TypedIn: layout.EnUS},
	}
	fixes := map[string]string{"vbh": "мир", "world": "цщкдв"}
	res := Evaluate(samples, func(s string) string {
		if out, ok := fixes[s]; ok {
			return out
		}
		return s
	})
	if res.Total != 3 || res.Correct != 2 || res.Mistyped != 1 || res.Fixed != 1 || res.Broken != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := res.Accuracy(); got < 0.66 || got > 0.67 {
		t.Fatalf("expected accuracy 2/3, got %f", got)
	}
}
