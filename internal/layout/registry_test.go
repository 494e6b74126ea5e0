package layout

import (
	"errors"
	"strings"
	"testing"
)

func TestBuiltinLayoutsLineUp(t *testing.T) {
	reg := Default()
	if got := reg.IDs(); len(got) != 2 || got[0] != EnUS || got[1] != RuRU {
		t.Fatalf("unexpected priority order: %v", got)
	}
	en, _ := reg.Letters(EnUS)
	ru, _ := reg.Letters(RuRU)
	if en.Size() != 26 {
		t.Fatalf("expected 26 english letters, got %d", en.Size())
	}
	if ru.Size() != 33 {
		t.Fatalf("expected 33 russian letters, got %d", ru.Size())
	}
}

func TestDetect(t *testing.T) {
	reg := Default()
	cases := []struct {
		word string
		want ID
	}{
		{"hello", EnUS},
		{"Ghbdtn", EnUS},
		{"руддщ", RuRU},
		{"Привет.", RuRU},
		{"№1", RuRU},
		{"2024", EnUS},
		{"?!", EnUS},
		{"", EnUS},
	}
	for _, tc := range cases {
		got, err := reg.Detect(tc.word)
		if err != nil {
			t.Fatalf("Detect(%q) failed: %v", tc.word, err)
		}
		if got != tc.want {
			t.Fatalf("Detect(%q): expected %s, got %s", tc.word, tc.want, got)
		}
	}
}

func TestDetectMixedWord(t *testing.T) {
	_, err := Default().Detect("hiпривет")
	if !errors.Is(err, ErrUndeterminedLayout) {
		t.Fatalf("expected ErrUndeterminedLayout, got %v", err)
	}
	var uerr *UndeterminedError
	if !errors.As(err, &uerr) || uerr.Word != "hiпривет" {
		t.Fatalf("expected UndeterminedError carrying the word, got %#v", err)
	}
}

func TestTranslateWord(t *testing.T) {
	reg := Default()
	cases := []struct {
		word string
		to   ID
		want string
	}{
		{"руддщ", EnUS, "hello"},
		{"Ghbdtn", RuRU, "Привет"},
		{"hello", EnUS, "hello"},
		{"b,tl", RuRU, "ибед"},
		{"Ntcn?", RuRU, "Тест,"},
	}
	for _, tc := range cases {
		got, err := reg.TranslateWord(tc.word, tc.to)
		if err != nil {
			t.Fatalf("TranslateWord(%q) failed: %v", tc.word, err)
		}
		if got != tc.want {
			t.Fatalf("TranslateWord(%q, %s): expected %q, got %q", tc.word, tc.to, tc.want, got)
		}
	}
}

func TestTranslateRoundTrip(t *testing.T) {
	reg := Default()
	for _, l := range reg.Layouts() {
		for _, other := range reg.Layouts() {
			there, err := reg.Translate(l.Keys, l.ID, other.ID)
			if err != nil {
				t.Fatalf("translate %s -> %s: %v", l.ID, other.ID, err)
			}
			back, err := reg.Translate(there, other.ID, l.ID)
			if err != nil {
				t.Fatalf("translate %s -> %s: %v", other.ID, l.ID, err)
			}
			if back != l.Keys {
				t.Fatalf("round trip %s -> %s changed the key sequence", l.ID, other.ID)
			}
		}
	}
	for _, word := range []string{"Hello", "qwerty", "ПРИВЕТ", "ёжик"} {
		from, err := reg.Detect(word)
		if err != nil {
			t.Fatalf("Detect(%q) failed: %v", word, err)
		}
		for _, to := range reg.IDs() {
			there, err := reg.TranslateWord(word, to)
			if err != nil {
				t.Fatalf("TranslateWord(%q) failed: %v", word, err)
			}
			back, err := reg.TranslateWord(there, from)
			if err != nil {
				t.Fatalf("TranslateWord(%q) failed: %v", there, err)
			}
			if back != word {
				t.Fatalf("round trip of %q via %s: got %q", word, to, back)
			}
		}
	}
}

func TestTranslateCharDetectsSource(t *testing.T) {
	reg := Default()
	got, err := reg.TranslateChar('q', "", RuRU)
	if err != nil || got != 'й' {
		t.Fatalf("expected 'й', got %q (%v)", got, err)
	}
	if _, err := reg.TranslateChar('☺', "", RuRU); !errors.Is(err, ErrUndeterminedLayout) {
		t.Fatalf("expected ErrUndeterminedLayout, got %v", err)
	}
	if _, err := reg.TranslateChar('я', EnUS, RuRU); !errors.Is(err, ErrUndeterminedLayout) {
		t.Fatalf("expected ErrUndeterminedLayout for a foreign char, got %v", err)
	}
}

func TestNewRegistryRejectsMalformedLayouts(t *testing.T) {
	short := Layout{ID: "xx", Keys: "abc"}
	if _, err := NewRegistry(builtin[0], short); !errors.Is(err, ErrInternalInconsistency) {
		t.Fatalf("expected inconsistency for short layout, got %v", err)
	}
	dup := Layout{ID: "yy", Keys: strings.Replace(enUSKeys, "q", "w", 1)}
	if _, err := NewRegistry(builtin[0], dup); !errors.Is(err, ErrInternalInconsistency) {
		t.Fatalf("expected inconsistency for repeated key, got %v", err)
	}
	if _, err := NewRegistry(builtin[0], builtin[0]); !errors.Is(err, ErrInternalInconsistency) {
		t.Fatalf("expected inconsistency for duplicate id, got %v", err)
	}
}

func TestSelectKeepsRequestedOrder(t *testing.T) {
	reg, err := Default().Select(RuRU, EnUS)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	got, err := reg.Detect("2024")
	if err != nil || got != RuRU {
		t.Fatalf("expected ru_RU to win shared symbols, got %s (%v)", got, err)
	}
	if _, err := Default().Select("de_DE"); err == nil {
		t.Fatalf("expected error for unknown layout")
	}
}

func TestCustomLayout(t *testing.T) {
	keys := strings.Replace(enUSKeys, "q", "ä", 1)
	l, err := Custom("de_TEST", "", keys, "")
	if err != nil {
		t.Fatalf("Custom failed: %v", err)
	}
	reg, err := NewRegistry(builtin[0], l)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	got, err := reg.TranslateWord("äwerty", EnUS)
	if err != nil || got != "qwerty" {
		t.Fatalf("expected qwerty, got %q (%v)", got, err)
	}
	if _, err := Custom("en_US", "", enUSKeys, ""); err == nil {
		t.Fatalf("expected error when shadowing a built-in layout")
	}
	if _, err := Custom("short", "", "abc", ""); err == nil {
		t.Fatalf("expected error for wrong key count")
	}
}
