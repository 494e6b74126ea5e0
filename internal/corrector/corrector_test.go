package corrector

import (
	"errors"
	"sync"
	"testing"

	"github.com/anprowh/LanguageCorrector/internal/classifier"
	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/normalize"
)

// labelByWord returns a fixed label per normalized word and en_US otherwise.
type labelByWord map[string]layout.ID

func (l labelByWord) Classify(words []normalize.Word) []layout.ID {
	out := make([]layout.ID, len(words))
	for i, w := range words {
		if id, ok := l[w.String()]; ok {
			out[i] = id
			continue
		}
		out[i] = layout.EnUS
	}
	return out
}

func newTestCorrector(t *testing.T, cls classifier.Classifier) *Corrector {
	t.Helper()
	reg := layout.Default()
	n, err := normalize.New(reg, layout.RuRU, normalize.DefaultWindow)
	if err != nil {
		t.Fatalf("normalize.New failed: %v", err)
	}
	if cls == nil {
		cls, err = classifier.New(classifier.KindHeuristic, reg, n, classifier.Options{})
		if err != nil {
			t.Fatalf("classifier.New failed: %v", err)
		}
	}
	c, err := New(reg, n, cls)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestCorrectScenarios(t *testing.T) {
	c := newTestCorrector(t, labelByWord{
		"руддщ":  layout.EnUS,
		"привет": layout.RuRU,
		"рш":     layout.EnUS,
	})
	cases := []struct {
		in   string
		want string
	}{
		{"руддщ", "hello"},
		{"Ghbdtn", "Привет"},
		{"hi2024", "hi2024"},
		{"", ""},
		{"руддщ Ghbdtn", "hello Привет"},
		{"  руддщ \t\n Ghbdtn  ", "hello Привет"},
	}
	for _, tc := range cases {
		if got := c.Correct(tc.in); got != tc.want {
			t.Fatalf("Correct(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestCorrectWithHeuristic(t *testing.T) {
	c := newTestCorrector(t, nil)
	cases := []struct {
		in   string
		want string
	}{
		{"руддщ Ghbdtn", "hello Привет"},
		{"Ghbdtn vbh", "Привет мир"},
		{"hello world", "hello world"},
		{"привет, мир", "привет, мир"},
		{"hi2024", "hi2024"},
	}
	for _, tc := range cases {
		if got := c.Correct(tc.in); got != tc.want {
			t.Fatalf("Correct(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestCorrectKeepsShortWords(t *testing.T) {
	c := newTestCorrector(t, nil)
	cases := []struct {
		in   string
		want string
	}{
		{"I love you", "I love you"},
		{"в доме", "в доме"},
		{"of", "of"},
		{"к", "к"},
		{"у", "у"},
		{"Ш дщму нщг", "I love you"},
		{"d ljvt", "в доме"},
	}
	for _, tc := range cases {
		if got := c.Correct(tc.in); got != tc.want {
			t.Fatalf("Correct(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

// fixedLabels ignores its input and returns the same labels every time.
type fixedLabels []layout.ID

func (f fixedLabels) Classify([]normalize.Word) []layout.ID {
	return append([]layout.ID(nil), f...)
}

func TestAnalyzeKeepsTokensWithoutUsableLabels(t *testing.T) {
	cases := []struct {
		name string
		cls  fixedLabels
	}{
		{"too few", fixedLabels{layout.RuRU}},
		{"too many", fixedLabels{layout.RuRU, layout.RuRU, layout.RuRU}},
		{"unregistered", fixedLabels{"de_DE", layout.RuRU}},
	}
	for _, tc := range cases {
		c := newTestCorrector(t, tc.cls)
		tokens := c.Analyze([]string{"ghbdtn", "vbh"})
		if len(tokens) != 2 {
			t.Fatalf("%s: expected 2 tokens, got %d", tc.name, len(tokens))
		}
		first := tokens[0]
		if first.Output != "ghbdtn" || first.Source != layout.EnUS || first.Target != layout.EnUS {
			t.Fatalf("%s: expected first token unchanged, got %+v", tc.name, first)
		}
		if !errors.Is(first.Err, layout.ErrInternalInconsistency) {
			t.Fatalf("%s: expected ErrInternalInconsistency, got %v", tc.name, first.Err)
		}
	}
}

func TestCorrectPassesUnknownCharacters(t *testing.T) {
	c := newTestCorrector(t, labelByWord{"привет": layout.RuRU})
	got := c.Correct("«ghbdtn»☺")
	if got != "«привет»☺" {
		t.Fatalf("expected unknown characters in place, got %q", got)
	}
}

func TestCorrectLeavesMixedTokens(t *testing.T) {
	c := newTestCorrector(t, labelByWord{"ршпривет": layout.RuRU})
	tokens := c.Explain("hiпривет")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	if tokens[0].Output != "hiпривет" {
		t.Fatalf("expected mixed token unchanged, got %q", tokens[0].Output)
	}
	if !errors.Is(tokens[0].Err, layout.ErrUndeterminedLayout) {
		t.Fatalf("expected ErrUndeterminedLayout, got %v", tokens[0].Err)
	}
}

func TestCorrectKeepsLetterlessTokens(t *testing.T) {
	c := newTestCorrector(t, labelByWord{})
	for _, in := range []string{"№5", "2024", "?!", ":-)"} {
		if got := c.Correct(in); got != in {
			t.Fatalf("Correct(%q): expected unchanged, got %q", in, got)
		}
	}
}

func TestExplainReportsLayouts(t *testing.T) {
	c := newTestCorrector(t, labelByWord{"привет": layout.RuRU})
	tokens := c.Explain("Ghbdtn hello")
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	first := tokens[0]
	if first.Source != layout.EnUS || first.Target != layout.RuRU || first.Normalized != "привет" || !first.Changed() {
		t.Fatalf("unexpected first token: %+v", first)
	}
	if tokens[1].Changed() {
		t.Fatalf("expected second token unchanged: %+v", tokens[1])
	}
}

func TestCorrectIsDeterministicAndConcurrent(t *testing.T) {
	c := newTestCorrector(t, nil)
	const in = "Ghbdtn, rfr ltkf? руддщ цщкдв"
	want := c.Correct(in)
	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := c.Correct(in); got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("expected %q on every call, got %q", want, got)
	}
}

func TestNewRejectsUnregisteredLabels(t *testing.T) {
	reg, err := layout.Default().Select(layout.RuRU, layout.EnUS)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	n, err := normalize.New(reg, layout.RuRU, normalize.DefaultWindow)
	if err != nil {
		t.Fatalf("normalize.New failed: %v", err)
	}
	cls, err := classifier.New(classifier.KindHeuristic, layout.Default(), n, classifier.Options{})
	if err != nil {
		t.Fatalf("classifier.New failed: %v", err)
	}
	if _, err := New(reg, n, cls); err != nil {
		t.Fatalf("expected matching labels to be accepted: %v", err)
	}
	only, err := layout.Default().Select(layout.RuRU)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if _, err := New(only, n, cls); !errors.Is(err, layout.ErrInternalInconsistency) {
		t.Fatalf("expected ErrInternalInconsistency, got %v", err)
	}
}
