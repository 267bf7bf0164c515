package stage

import (
	"fmt"
	"unicode/utf8"

	"github.com/matzehuels/talklike/pkg/core/rules"
	"github.com/matzehuels/talklike/pkg/errors"
)

// Substitution replaces words and phrases.
type Substitution struct {
	rules rules.Set
}

// NewSubstitution compiles a word and phrase mapping. Keys are tried
// longest first so phrases win over the words they contain.
func NewSubstitution(mapping map[string]string, opts rules.Options) (*Substitution, error) {
	set, err := rules.CompileWords(mapping, opts)
	if err != nil {
		return nil, err
	}
	return &Substitution{rules: set}, nil
}

// Kind returns [KindSubstitution].
func (s *Substitution) Kind() Kind { return KindSubstitution }

// NewState returns nil; word rules keep no state.
func (s *Substitution) NewState() State { return nil }

// Transform applies each word rule in turn, longest key first. Every rule
// is one left-to-right pass, so a replacement is never matched again by the
// same rule.
func (s *Substitution) Transform(text string, _ State) string {
	return s.rules.Apply(text)
}

// Describe lists the rules as "key" -> "replacement".
func (s *Substitution) Describe() []string { return describeSet(s.rules) }

// Characters replaces character sequences anywhere in the text.
type Characters struct {
	rules rules.Set
}

// NewCharacters compiles a character-sequence mapping, longest sequence
// first.
func NewCharacters(mapping map[string]string, preserveCase bool) (*Characters, error) {
	set, err := rules.CompileChars(mapping, preserveCase)
	if err != nil {
		return nil, err
	}
	return &Characters{rules: set}, nil
}

// Kind returns [KindCharacters].
func (c *Characters) Kind() Kind { return KindCharacters }

// NewState returns nil; character rules keep no state.
func (c *Characters) NewState() State { return nil }

// Transform replaces character sequences anywhere in the text, including
// inside words.
func (c *Characters) Transform(text string, _ State) string {
	return c.rules.Apply(text)
}

// Describe lists each character rule.
func (c *Characters) Describe() []string { return describeSet(c.rules) }

// Translation maps runes one to one, like tr(1).
type Translation struct {
	from, to string
	table    map[rune]rune
}

// NewTranslation builds a rune translation table. from and to must have the
// same number of runes; when a rune repeats in from, its last mapping wins.
func NewTranslation(from, to string) (*Translation, error) {
	if from == "" {
		return nil, errors.Configuration("translate: from must not be empty")
	}
	if utf8.RuneCountInString(from) != utf8.RuneCountInString(to) {
		return nil, errors.Configuration("translate: from and to must have the same length (%d != %d)",
			utf8.RuneCountInString(from), utf8.RuneCountInString(to))
	}
	table := make(map[rune]rune, len(from))
	dst := []rune(to)
	i := 0
	for _, r := range from {
		table[r] = dst[i]
		i++
	}
	return &Translation{from: from, to: to, table: table}, nil
}

// Kind returns [KindTranslation].
func (t *Translation) Kind() Kind { return KindTranslation }

// NewState returns nil; translation keeps no state.
func (t *Translation) NewState() State { return nil }

// Transform maps every rune found in the table. All other runes, and bytes
// that are not valid UTF-8, are kept as they are.
func (t *Translation) Transform(text string, _ State) string {
	return mapRunes(text, func(r rune) rune {
		if m, ok := t.table[r]; ok {
			return m
		}
		return r
	})
}

// Describe shows the translation table.
func (t *Translation) Describe() []string {
	return []string{fmt.Sprintf("tr/%s/%s/", t.from, t.to)}
}

func describeSet(set rules.Set) []string {
	lines := make([]string, len(set))
	for i, r := range set {
		lines[i] = fmt.Sprintf("%q -> %q", r.Key, r.Replacement)
	}
	return lines
}
