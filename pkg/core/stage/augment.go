package stage

import (
	"fmt"
	"strings"

	"github.com/matzehuels/talklike/pkg/errors"
)

// AugmentRule inserts additions after a punctuation mark.
type AugmentRule struct {
	Punctuation string
	Additions   []string
	// Frequency 1 augments every occurrence; n > 1 augments every n-th
	// occurrence, counted across Transform calls on the same state.
	Frequency int
}

// Augmenter inserts phrases at sentence boundaries.
//
// Rules run in registration order, and each rule splits the text produced
// by the previous one. An addition that itself contains a later rule's
// punctuation is therefore augmented again by that rule; the same happens
// to a rule's own additions on the next Transform call.
type Augmenter struct {
	rules []AugmentRule
}

// AugmenterState holds the per-punctuation occurrence counters of the rules
// with a frequency above one.
type AugmenterState struct {
	Counters map[string]int
}

// NewAugmenter validates and registers rules.
func NewAugmenter(rules ...AugmentRule) (*Augmenter, error) {
	a := &Augmenter{}
	for _, r := range rules {
		if err := a.addRule(r); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Augmenter) addRule(r AugmentRule) error {
	switch {
	case r.Punctuation == "":
		return errors.Configuration("sentence_augmentation: punctuation must not be empty")
	case len(r.Additions) == 0:
		return errors.Configuration("sentence_augmentation %q: additions must not be empty", r.Punctuation)
	case r.Frequency <= 0:
		return errors.Configuration("sentence_augmentation %q: frequency must be positive, got %d", r.Punctuation, r.Frequency)
	}
	r.Additions = append([]string(nil), r.Additions...)
	a.rules = append(a.rules, r)
	return nil
}

// Kind returns [KindAugmentation].
func (a *Augmenter) Kind() Kind { return KindAugmentation }

// NewState returns counters starting at zero for every punctuation that has
// a frequency above one.
func (a *Augmenter) NewState() State {
	st := &AugmenterState{Counters: make(map[string]int)}
	for _, r := range a.rules {
		if r.Frequency > 1 {
			st.Counters[r.Punctuation] = 0
		}
	}
	return st
}

// Transform runs the rules in registration order. Each rule splits the
// current text on its punctuation and inserts additions after the
// occurrences its frequency selects; the counters in st carry over to the
// next call.
func (a *Augmenter) Transform(text string, st State) string {
	state, ok := st.(*AugmenterState)
	if !ok || state == nil {
		state = a.NewState().(*AugmenterState)
	}
	for _, r := range a.rules {
		text = a.apply(r, text, state)
	}
	return text
}

func (a *Augmenter) apply(r AugmentRule, text string, st *AugmenterState) string {
	parts := strings.Split(text, r.Punctuation)
	n := len(r.Additions)

	var b strings.Builder
	b.Grow(len(text))
	k := st.Counters[r.Punctuation]
	for i, part := range parts[:len(parts)-1] {
		b.WriteString(part)
		b.WriteString(r.Punctuation)
		if r.Frequency == 1 {
			b.WriteString(r.Additions[i%n])
			continue
		}
		if k%r.Frequency == 0 {
			b.WriteString(r.Additions[k%n])
		}
		k++
	}
	b.WriteString(parts[len(parts)-1])

	if r.Frequency > 1 {
		st.Counters[r.Punctuation] = k
	}
	return b.String()
}

// Describe lists each sentence rule with its additions.
func (a *Augmenter) Describe() []string {
	lines := make([]string, len(a.rules))
	for i, r := range a.rules {
		every := "every"
		if r.Frequency > 1 {
			every = fmt.Sprintf("every %d", r.Frequency)
		}
		lines[i] = fmt.Sprintf("%q: %s occurrence, cycling %d additions", r.Punctuation, every, len(r.Additions))
	}
	return lines
}
