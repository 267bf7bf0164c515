package stage

import (
	"strings"
	"unicode/utf8"
)

// Kind identifies a stage variant.
type Kind string

// Stage kinds. The string values match the definition keys that produce them.
const (
	KindSubstitution Kind = "substitutions"
	KindCharacters   Kind = "characters"
	KindTranslation  Kind = "translate"
	KindSuffixes     Kind = "suffixes"
	KindPrefixes     Kind = "prefixes"
	KindAugmentation Kind = "sentence_augmentation"
	KindGlitch       Kind = "glitch"
	KindStudly       Kind = "studly"
	KindLolcat       Kind = "lolcat"
	KindDuck         Kind = "duck"
	KindScript       Kind = "script"
	KindFunc         Kind = "custom"
)

// State is the mutable record a stateful stage threads through successive
// Transform calls. Stateless stages use nil.
type State any

// Stage is one step of a filter pipeline.
type Stage interface {
	// Kind reports the stage variant.
	Kind() Kind
	// NewState returns a fresh state record, or nil for stateless stages.
	NewState() State
	// Transform rewrites text. st must come from NewState on the same stage,
	// or be nil.
	Transform(text string, st State) string
	// Describe returns one human-readable line per rule, in application order.
	Describe() []string
}

// Func adapts a plain function into a stateless [Stage].
type Func struct {
	Name string
	Fn   func(string) string
}

// NewFunc returns a custom stage calling fn.
func NewFunc(name string, fn func(string) string) Func {
	return Func{Name: name, Fn: fn}
}

// Kind returns [KindFunc].
func (f Func) Kind() Kind { return KindFunc }

// NewState returns nil; a Func keeps no state of its own.
func (f Func) NewState() State { return nil }

// Transform calls Fn, or returns text unchanged when Fn is nil.
func (f Func) Transform(text string, _ State) string {
	if f.Fn == nil {
		return text
	}
	return f.Fn(text)
}

// Describe returns the function's name.
func (f Func) Describe() []string {
	if f.Name == "" {
		return []string{"custom function"}
	}
	return []string{f.Name}
}

// mapRunes writes fn(r) for every rune of text. Bytes that are not valid
// UTF-8 are copied through unchanged instead of becoming U+FFFD.
func mapRunes(text string, fn func(rune) rune) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(text[i])
		} else {
			b.WriteRune(fn(r))
		}
		i += size
	}
	return b.String()
}
