package stage

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/talklike/pkg/core/rules"
)

// Affix is one suffix or prefix rule before compilation.
type Affix struct {
	Literal     string
	Replacement string
	// MinStem is the minimum stem length for suffix rules. Zero means
	// [rules.DefaultMinStem]. Ignored for prefixes.
	MinStem int
}

// Suffixes replaces word endings while keeping the stem.
type Suffixes struct {
	rules   rules.Set
	minStem []int
}

// NewSuffixes compiles suffix rules, longest suffix first.
func NewSuffixes(affixes ...Affix) (*Suffixes, error) {
	affixes = sortAffixes(affixes)
	s := &Suffixes{}
	for _, a := range affixes {
		minStem := a.MinStem
		if minStem == 0 {
			minStem = rules.DefaultMinStem
		}
		r, err := rules.CompileSuffix(a.Literal, a.Replacement, minStem)
		if err != nil {
			return nil, err
		}
		s.rules = append(s.rules, r)
		s.minStem = append(s.minStem, minStem)
	}
	return s, nil
}

// Kind returns [KindSuffixes].
func (s *Suffixes) Kind() Kind { return KindSuffixes }

// NewState returns nil; suffix rules keep no state.
func (s *Suffixes) NewState() State { return nil }

// Transform swaps the suffix of every word whose stem is long enough. Each
// rule sees the output of the longer suffixes before it.
func (s *Suffixes) Transform(text string, _ State) string {
	return s.rules.Apply(text)
}

// Describe lists the rules with their minimum stem.
func (s *Suffixes) Describe() []string {
	lines := make([]string, len(s.rules))
	for i, r := range s.rules {
		lines[i] = fmt.Sprintf("-%s -> -%s (min stem %d)", r.Key, r.Replacement, s.minStem[i])
	}
	return lines
}

// Prefixes replaces word beginnings while keeping the rest of the word.
type Prefixes struct {
	rules rules.Set
}

// NewPrefixes compiles prefix rules, longest prefix first.
func NewPrefixes(affixes ...Affix) (*Prefixes, error) {
	affixes = sortAffixes(affixes)
	p := &Prefixes{}
	for _, a := range affixes {
		r, err := rules.CompilePrefix(a.Literal, a.Replacement)
		if err != nil {
			return nil, err
		}
		p.rules = append(p.rules, r)
	}
	return p, nil
}

// Kind returns [KindPrefixes].
func (p *Prefixes) Kind() Kind { return KindPrefixes }

// NewState returns nil; prefix rules keep no state.
func (p *Prefixes) NewState() State { return nil }

// Transform swaps the prefix at the start of every word that continues with
// at least one letter.
func (p *Prefixes) Transform(text string, _ State) string {
	return p.rules.Apply(text)
}

// Describe lists each prefix rule.
func (p *Prefixes) Describe() []string {
	lines := make([]string, len(p.rules))
	for i, r := range p.rules {
		lines[i] = fmt.Sprintf("%s- -> %s-", r.Key, r.Replacement)
	}
	return lines
}

// sortAffixes orders rules longest literal first, ties by literal, so that
// "ness" is tried before "s" regardless of map iteration order upstream.
func sortAffixes(affixes []Affix) []Affix {
	sorted := slices.Clone(affixes)
	slices.SortStableFunc(sorted, func(a, b Affix) int {
		la, lb := utf8.RuneCountInString(a.Literal), utf8.RuneCountInString(b.Literal)
		if la != lb {
			return cmp.Compare(lb, la)
		}
		return strings.Compare(a.Literal, b.Literal)
	})
	return sorted
}
