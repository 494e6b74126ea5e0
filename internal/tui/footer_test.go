package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/anprowh/LanguageCorrector/internal/classifier"
	"github.com/anprowh/LanguageCorrector/internal/corrector"
	"github.com/anprowh/LanguageCorrector/internal/layout"
	"github.com/anprowh/LanguageCorrector/internal/normalize"
)

type memoryRecorder struct {
	lines []string
	err   error
}

func (r *memoryRecorder) Record(_ context.Context, input string, _ []corrector.Token) error {
	r.lines = append(r.lines, input)
	return r.err
}

func newTestModel(t *testing.T, rec Recorder) *Model {
	t.Helper()
	reg := layout.Default()
	n, err := normalize.New(reg, layout.RuRU, normalize.DefaultWindow)
	if err != nil {
		t.Fatalf("normalizer: %v", err)
	}
	cls, err := classifier.New(classifier.KindHeuristic, reg, n, classifier.Options{})
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	c, err := corrector.New(reg, n, cls)
	if err != nil {
		t.Fatalf("corrector: %v", err)
	}
	m := NewModel(c, rec, nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	return m
}

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{converted: 3, kept: 12, undetermined: 1}
	out := m.renderFooter()
	if !containsAll(out, []string{"Converted 3", "Kept 12", "Undetermined 1", "esc: quit"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
	m.errMsg = "disk full"
	if out := m.renderFooter(); !strings.Contains(out, "disk full") {
		t.Fatalf("expected error in footer, got %s", out)
	}
}

func TestEnterCorrectsAndRecords(t *testing.T) {
	rec := &memoryRecorder{}
	m := newTestModel(t, rec)
	m.input.SetValue("Ghbdtn vbh")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.input.Value() != "" {
		t.Fatalf("expected input reset, got %q", m.input.Value())
	}
	if len(m.entries) != 1 || corrector.Join(m.entries[0].tokens) != "Привет мир" {
		t.Fatalf("unexpected entries: %+v", m.entries)
	}
	if m.converted != 2 || len(rec.lines) != 1 || rec.lines[0] != "Ghbdtn vbh" {
		t.Fatalf("unexpected counters or recorder state: converted=%d lines=%v", m.converted, rec.lines)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(rec.lines) != 1 {
		t.Fatalf("expected blank line to be skipped")
	}
}

func TestRecorderFailureShownInFooter(t *testing.T) {
	m := newTestModel(t, &memoryRecorder{err: errors.New("database is locked")})
	m.submit("hello")
	if m.kept != 1 || !strings.Contains(m.renderFooter(), "database is locked") {
		t.Fatalf("expected recorder error in footer, got %q", m.renderFooter())
	}
}

func TestEscQuits(t *testing.T) {
	m := newTestModel(t, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
