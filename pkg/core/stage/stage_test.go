package stage

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/talklike/pkg/core/rules"
	"github.com/matzehuels/talklike/pkg/errors"
)

func TestSubstitution(t *testing.T) {
	s, err := NewSubstitution(map[string]string{"hello": "ahoy", "friend": "matey"}, rules.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s.Transform("Hello my friend!", s.NewState()), "Ahoy my matey!"; got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
	if s.NewState() != nil {
		t.Error("Substitution should be stateless")
	}
	want := []string{`"friend" -> "matey"`, `"hello" -> "ahoy"`}
	if diff := cmp.Diff(want, s.Describe()); diff != "" {
		t.Errorf("Describe() mismatch (-want +got):\n%s", diff)
	}
}

func TestCharacters(t *testing.T) {
	c, err := NewCharacters(map[string]string{"th": "d", "w": "v"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := c.Transform("The weather is worth it", nil), "De veader is vord it"; got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}

func TestTranslation(t *testing.T) {
	tr, err := NewTranslation("helo", "w3l0")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tr.Transform("hello", nil), "w3ll0"; got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}

	tr, err = NewTranslation("aeö", "4€o")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tr.Transform("käse möbel", nil), "käs€ mob€l"; got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}

func TestTranslationErrors(t *testing.T) {
	for _, tt := range []struct{ from, to string }{{"abc", "ab"}, {"", ""}} {
		if _, err := NewTranslation(tt.from, tt.to); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
			t.Errorf("NewTranslation(%q, %q) error = %v", tt.from, tt.to, err)
		}
	}
}

func TestSuffixes(t *testing.T) {
	s, err := NewSuffixes(
		Affix{Literal: "s", Replacement: "z"},
		Affix{Literal: "ing", Replacement: "in'"},
		Affix{Literal: "ness", Replacement: "nezz", MinStem: 3},
	)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"-ness -> -nezz (min stem 3)", "-ing -> -in' (min stem 2)", "-s -> -z (min stem 2)"}
	if diff := cmp.Diff(want, s.Describe()); diff != "" {
		t.Errorf("Describe() mismatch (-want +got):\n%s", diff)
	}
	if got, want := s.Transform("goodness, singing cats", nil), "goodnezz, singin' catz"; got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}

func TestSuffixesInvalidMinStem(t *testing.T) {
	_, err := NewSuffixes(Affix{Literal: "ing", Replacement: "in'", MinStem: -1})
	if !errors.Is(err, errors.ErrCodeInvalidPattern) {
		t.Errorf("NewSuffixes() error = %v, want %s", err, errors.ErrCodeInvalidPattern)
	}
}

func TestPrefixes(t *testing.T) {
	p, err := NewPrefixes(Affix{Literal: "un", Replacement: "not-"}, Affix{Literal: "under", Replacement: "below-"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := p.Transform("unhappy understanding", nil), "not-happy below-standing"; got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}

func TestFunc(t *testing.T) {
	f := NewFunc("shout", strings.ToUpper)
	if got := f.Transform("hey", nil); got != "HEY" {
		t.Errorf("Transform() = %q", got)
	}
	if f.Kind() != KindFunc {
		t.Errorf("Kind() = %q", f.Kind())
	}
	if got := (Func{}).Transform("same", nil); got != "same" {
		t.Errorf("nil Fn Transform() = %q", got)
	}
	if diff := cmp.Diff([]string{"shout"}, f.Describe()); diff != "" {
		t.Errorf("Describe() mismatch (-want +got):\n%s", diff)
	}
}

func TestKinds(t *testing.T) {
	sub, _ := NewSubstitution(map[string]string{"a": "b"}, rules.DefaultOptions())
	chars, _ := NewCharacters(map[string]string{"a": "b"}, true)
	tr, _ := NewTranslation("a", "b")
	suf, _ := NewSuffixes()
	pre, _ := NewPrefixes()
	aug, _ := NewAugmenter()
	gl, _ := NewGlitch(10, 1)

	tests := []struct {
		stage Stage
		want  Kind
	}{
		{sub, KindSubstitution},
		{chars, KindCharacters},
		{tr, KindTranslation},
		{suf, KindSuffixes},
		{pre, KindPrefixes},
		{aug, KindAugmentation},
		{gl, KindGlitch},
		{NewStudly(1), KindStudly},
		{NewLolcat(1), KindLolcat},
		{NewDuck(), KindDuck},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			if got := tt.stage.Kind(); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvalidUTF8PassesThrough(t *testing.T) {
	tr, err := NewTranslation("xyz", "XYZ")
	if err != nil {
		t.Fatal(err)
	}
	glitch, err := NewGlitch(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	full, err := NewGlitch(100, 1)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		stage Stage
		in    string
		want  string
	}{
		{"translation", tr, "x\xffy\xfe", "X\xffY\xfe"},
		{"glitch none", glitch, "ab\xffcd", "ab\xffcd"},
		{"glitch all keeps invalid byte", full, "\xff", "\xff"},
		{"studly without letters", NewStudly(1), "1\xff2", "1\xff2"},
		{"duck", NewDuck(), "\xff!", "\xff!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stage.Transform(tt.in, tt.stage.NewState()); got != tt.want {
				t.Errorf("Transform(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStudlyKeepsInvalidBytes(t *testing.T) {
	out := NewStudly(3).Transform("ab\xffcd", nil)
	if len(out) != 5 || out[2] != 0xff {
		t.Errorf("Transform() = %q, want the invalid byte kept at index 2", out)
	}
	if !strings.EqualFold(out, "ab\xffcd") {
		t.Errorf("Transform() = %q, want a re-cased %q", out, "ab\xffcd")
	}
}
