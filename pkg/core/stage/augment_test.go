package stage

import (
	"testing"

	"github.com/matzehuels/talklike/pkg/errors"
)

func mustAugmenter(t *testing.T, rules ...AugmentRule) *Augmenter {
	t.Helper()
	a, err := NewAugmenter(rules...)
	if err != nil {
		t.Fatalf("NewAugmenter: %v", err)
	}
	return a
}

func TestAugmenterEveryOccurrence(t *testing.T) {
	a := mustAugmenter(t, AugmentRule{Punctuation: "!", Additions: []string{" Yeah!", " Dig it."}, Frequency: 1})
	// The "!" inside " Yeah!" is not re-split within the same rule pass.
	got := a.Transform("Hi! Bye! Later!", a.NewState())
	want := "Hi! Yeah! Bye! Dig it. Later! Yeah!"
	if got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}

func TestAugmenterFrequencyCycling(t *testing.T) {
	a := mustAugmenter(t, AugmentRule{Punctuation: ".", Additions: []string{"A", "B"}, Frequency: 3})
	st := a.NewState()

	// Occurrences 0 and 3 are augmented, cycling through the additions by counter.
	if got, want := a.Transform("1.2.3.4.5.6.", st), "1.A2.3.4.B5.6."; got != want {
		t.Errorf("first call = %q, want %q", got, want)
	}
	if got := st.(*AugmenterState).Counters["."]; got != 6 {
		t.Errorf("counter after first call = %d, want 6", got)
	}

	// Counter continues at 6 instead of restarting.
	if got, want := a.Transform("7.", st), "7.A"; got != want {
		t.Errorf("second call = %q, want %q", got, want)
	}
	if got := st.(*AugmenterState).Counters["."]; got != 7 {
		t.Errorf("counter after second call = %d, want 7", got)
	}
}

func TestAugmenterContinuesAcrossCalls(t *testing.T) {
	a := mustAugmenter(t, AugmentRule{Punctuation: ".", Additions: []string{" Far out."}, Frequency: 3})
	st := a.NewState()

	a.Transform("a. b. c. d.", st) // counter ends at 4

	if got, want := a.Transform("e.", st), "e."; got != want {
		t.Errorf("continued state = %q, want %q", got, want)
	}
	if got, want := a.Transform("e.", a.NewState()), "e. Far out."; got != want {
		t.Errorf("fresh state = %q, want %q", got, want)
	}
}

func TestAugmenterNilStateIsFresh(t *testing.T) {
	a := mustAugmenter(t, AugmentRule{Punctuation: ".", Additions: []string{"!"}, Frequency: 2})
	for range 3 {
		if got, want := a.Transform("x.y.", nil), "x.!y."; got != want {
			t.Fatalf("Transform(nil state) = %q, want %q", got, want)
		}
	}
}

func TestAugmenterNoPunctuation(t *testing.T) {
	a := mustAugmenter(t, AugmentRule{Punctuation: ".", Additions: []string{"!"}, Frequency: 2})
	st := a.NewState()
	if got := a.Transform("no boundaries here", st); got != "no boundaries here" {
		t.Errorf("Transform() = %q", got)
	}
	if got := st.(*AugmenterState).Counters["."]; got != 0 {
		t.Errorf("counter = %d, want 0", got)
	}
}

// Later rules re-split text produced by earlier rules, including their
// additions.
func TestAugmenterCascadesAcrossRules(t *testing.T) {
	a := mustAugmenter(t,
		AugmentRule{Punctuation: ".", Additions: []string{" Right on!"}, Frequency: 1},
		AugmentRule{Punctuation: "!", Additions: []string{" Dig it."}, Frequency: 1},
	)
	got := a.Transform("Hi.", a.NewState())
	want := "Hi. Right on! Dig it."
	if got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}

// A rule's own additions are augmented again when fed back in.
func TestAugmenterCascadesAcrossCalls(t *testing.T) {
	a := mustAugmenter(t, AugmentRule{Punctuation: ".", Additions: []string{" Yes."}, Frequency: 1})
	st := a.NewState()
	once := a.Transform("Hi.", st)
	if once != "Hi. Yes." {
		t.Fatalf("first pass = %q", once)
	}
	if got, want := a.Transform(once, st), "Hi. Yes. Yes. Yes."; got != want {
		t.Errorf("second pass = %q, want %q", got, want)
	}
}

func TestAugmenterSharedPunctuationCounter(t *testing.T) {
	a := mustAugmenter(t,
		AugmentRule{Punctuation: "?", Additions: []string{"1"}, Frequency: 2},
		AugmentRule{Punctuation: "?", Additions: []string{"2"}, Frequency: 2},
	)
	st := a.NewState()
	// The second rule picks up the counter the first rule left behind.
	if got, want := a.Transform("a?b?", st), "a?21b?"; got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}

func TestNewAugmenterErrors(t *testing.T) {
	tests := []struct {
		name string
		rule AugmentRule
	}{
		{"zero frequency", AugmentRule{Punctuation: ".", Additions: []string{"x"}, Frequency: 0}},
		{"negative frequency", AugmentRule{Punctuation: ".", Additions: []string{"x"}, Frequency: -2}},
		{"no additions", AugmentRule{Punctuation: ".", Frequency: 1}},
		{"empty punctuation", AugmentRule{Additions: []string{"x"}, Frequency: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAugmenter(tt.rule)
			if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
				t.Errorf("NewAugmenter() error = %v, want %s", err, errors.ErrCodeInvalidConfiguration)
			}
		})
	}
}
