package classifier

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/normalize"
)

func newTestNormalizer(t *testing.T) *normalize.Normalizer {
	t.Helper()
	n, err := normalize.New(layout.Default(), layout.RuRU, normalize.DefaultWindow)
	if err != nil {
		t.Fatalf("normalize.New failed: %v", err)
	}
	return n
}

func newTestHeuristic(t *testing.T) (*normalize.Normalizer, Scorer) {
	t.Helper()
	n := newTestNormalizer(t)
	h, err := New(KindHeuristic, layout.Default(), n, Options{})
	if err != nil {
		t.Fatalf("New heuristic failed: %v", err)
	}
	return n, h
}

func TestHeuristicClassifiesMistypedWords(t *testing.T) {
	n, h := newTestHeuristic(t)
	cases := []struct {
		word string
		want layout.ID
	}{
		{"руддщ", layout.EnUS},
		{"hello", layout.EnUS},
		{"Ghbdtn", layout.RuRU},
		{"Привет", layout.RuRU},
		{"hi2024", layout.EnUS},
		{"цщкдв", layout.EnUS},
		{"computer", layout.EnUS},
		{"rfrjq", layout.RuRU},
		{"jxtym", layout.RuRU},
		{"ghjuhfvvf", layout.RuRU},
	}
	words := make([]string, len(cases))
	for i, tc := range cases {
		words[i] = tc.word
	}
	got := h.Classify(n.NormalizeAll(words))
	for i, tc := range cases {
		if got[i] != tc.want {
			t.Fatalf("Classify(%q): expected %s, got %s", tc.word, tc.want, got[i])
		}
	}
}

func TestHeuristicPrefersCorpusWords(t *testing.T) {
	n, h := newTestHeuristic(t)
	cases := []struct {
		word string
		want layout.ID
	}{
		{"I", layout.EnUS},
		{"a", layout.EnUS},
		{"of", layout.EnUS},
		{"to", layout.EnUS},
		{"в", layout.RuRU},
		{"к", layout.RuRU},
		{"у", layout.RuRU},
		{"с", layout.RuRU},
		{"и", layout.RuRU},
		{"d", layout.RuRU},
		{"r", layout.RuRU},
		{"ща", layout.EnUS},
		{"Ш", layout.EnUS},
	}
	words := make([]string, len(cases))
	for i, tc := range cases {
		words[i] = tc.word
	}
	got := h.Classify(n.NormalizeAll(words))
	for i, tc := range cases {
		if got[i] != tc.want {
			t.Fatalf("Classify(%q): expected %s, got %s", tc.word, tc.want, got[i])
		}
	}
}

func TestHeuristicCorpusWordTiesToFirstLabel(t *testing.T) {
	n := newTestNormalizer(t)
	h, err := NewHeuristic(n, []layout.ID{layout.EnUS, layout.RuRU}, map[layout.ID][]string{
		layout.EnUS: {"ns", "hello"},
		layout.RuRU: {"ты", "мир"},
	})
	if err != nil {
		t.Fatalf("NewHeuristic failed: %v", err)
	}
	got := h.Classify(n.NormalizeAll([]string{"ты", "мир"}))
	if got[0] != layout.EnUS {
		t.Fatalf("expected word known to both labels to resolve to en_US, got %s", got[0])
	}
	if got[1] != layout.RuRU {
		t.Fatalf("expected мир to resolve to ru_RU, got %s", got[1])
	}
}

func TestSeedCorporaDoNotOverlap(t *testing.T) {
	n := newTestNormalizer(t)
	seen := make(map[string]string)
	for _, word := range SeedCorpus(layout.EnUS) {
		seen[n.Normalize(word).String()] = word
	}
	for _, word := range SeedCorpus(layout.RuRU) {
		key := n.Normalize(word).String()
		if other, ok := seen[key]; ok {
			t.Fatalf("ru_RU seed %q collides with en_US seed %q", word, other)
		}
	}
}

func TestClassifierContract(t *testing.T) {
	n, h := newTestHeuristic(t)
	batch := n.NormalizeAll([]string{"", "123", "a", "ж", "qwertyuiopasdf", "мир", "world"})
	got := h.Classify(batch)
	if len(got) != len(batch) {
		t.Fatalf("expected %d labels, got %d", len(batch), len(got))
	}
	for i, label := range got {
		if _, ok := layout.Default().Layout(label); !ok {
			t.Fatalf("label %d (%q) is not a registered layout", i, label)
		}
	}
	if len(h.Classify(nil)) != 0 {
		t.Fatalf("expected empty result for empty batch")
	}
}

func TestEmptyWordTiesToFirstLabel(t *testing.T) {
	n, h := newTestHeuristic(t)
	got := h.Classify([]normalize.Word{n.Normalize("?!")})
	if got[0] != layout.EnUS {
		t.Fatalf("expected tie to resolve to en_US, got %s", got[0])
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	n, h := newTestHeuristic(t)
	batch := n.NormalizeAll([]string{"ghbdtn", "vbh", "руддщ", "ok"})
	first := h.Classify(batch)
	for i := 0; i < 5; i++ {
		again := h.Classify(batch)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d: label %d changed from %s to %s", i, j, first[j], again[j])
			}
		}
	}
}

func TestHeuristicRequiresCorpus(t *testing.T) {
	n := newTestNormalizer(t)
	_, err := NewHeuristic(n, []layout.ID{layout.EnUS, layout.RuRU}, map[layout.ID][]string{layout.EnUS: {"hello"}})
	if !errors.Is(err, ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable, got %v", err)
	}
}

func TestEncode(t *testing.T) {
	n := newTestNormalizer(t)
	alphabet := n.Alphabet()
	w := n.Normalize("ёж")
	vec := Encode(w, alphabet)
	if len(vec) != normalize.DefaultWindow*alphabet.Size() {
		t.Fatalf("expected %d features, got %d", normalize.DefaultWindow*alphabet.Size(), len(vec))
	}
	ones := 0
	for _, v := range vec {
		if v == 1 {
			ones++
		}
	}
	if ones != 2 {
		t.Fatalf("expected 2 active features, got %d", ones)
	}
	yo, _ := alphabet.Index('ё')
	zh, _ := alphabet.Index('ж')
	if vec[yo] != 1 || vec[alphabet.Size()+zh] != 1 {
		t.Fatalf("unexpected one-hot positions")
	}
}

func TestLinearUsesModelWeights(t *testing.T) {
	n := newTestNormalizer(t)
	alphabet := n.Alphabet()
	width := n.Window() * alphabet.Size()
	m := &Model{
		Window:   n.Window(),
		Alphabet: alphabet.String(),
		Labels:   []string{string(layout.EnUS), string(layout.RuRU)},
		Weights:  [][]float64{make([]float64, width), make([]float64, width)},
		Bias:     []float64{0, 0},
	}
	// A leading 'п' votes for ru_RU.
	pe, _ := alphabet.Index('п')
	m.Weights[1][pe] = 2
	lin, err := NewLinear(m, layout.Default(), n)
	if err != nil {
		t.Fatalf("NewLinear failed: %v", err)
	}
	got := lin.Classify(n.NormalizeAll([]string{"Ghbdtn", "hello", ""}))
	want := []layout.ID{layout.RuRU, layout.EnUS, layout.EnUS}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("word %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestNewLinearRejectsMismatchedModel(t *testing.T) {
	n := newTestNormalizer(t)
	m := &Model{Window: 4, Alphabet: n.Alphabet().String(), Labels: []string{"en_US"}, Weights: [][]float64{make([]float64, 4*33)}, Bias: []float64{0}}
	if _, err := NewLinear(m, layout.Default(), n); !errors.Is(err, ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable for window mismatch, got %v", err)
	}
}

func TestTrainSaveLoad(t *testing.T) {
	n := newTestNormalizer(t)
	corpora := []Corpus{
		{Label: layout.EnUS, Words: SeedCorpus(layout.EnUS)},
		{Label: layout.RuRU, Words: SeedCorpus(layout.RuRU)},
	}
	opts := DefaultTrainOptions()
	m, err := Train(n, corpora, opts)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	again, err := Train(n, corpora, opts)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if m.Bias[0] != again.Bias[0] || m.Weights[1][5] != again.Weights[1][5] {
		t.Fatalf("expected training to be deterministic")
	}

	path := filepath.Join(t.TempDir(), "model.toml")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s, err := New(KindModel, layout.Default(), n, Options{ModelPath: path})
	if err != nil {
		t.Fatalf("New model failed: %v", err)
	}
	if acc := Accuracy(s, n, corpora); acc < 0.9 {
		t.Fatalf("expected training accuracy >= 0.9, got %.3f", acc)
	}
}

func TestLoadModelUnavailable(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadModel(filepath.Join(dir, "missing.toml")); !errors.Is(err, ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable for missing file, got %v", err)
	}
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("window = 8\nalphabet = \"ab\"\nlabels = [\"en_US\"]\n"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	if _, err := LoadModel(bad); !errors.Is(err, ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable for malformed model, got %v", err)
	}
	n := newTestNormalizer(t)
	if _, err := New(KindModel, layout.Default(), n, Options{}); !errors.Is(err, ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable without a path, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("Model"); err != nil || k != KindModel {
		t.Fatalf("expected model kind, got %q (%v)", k, err)
	}
	if k, err := ParseKind(""); err != nil || k != KindHeuristic {
		t.Fatalf("expected heuristic default, got %q (%v)", k, err)
	}
	if _, err := ParseKind("neural"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
