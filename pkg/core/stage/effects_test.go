package stage

import (
	"slices"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/talklike/pkg/core/rng"
	"github.com/matzehuels/talklike/pkg/errors"
)

func TestGlitchZeroIsIdentity(t *testing.T) {
	g, err := NewGlitch(0, rng.DefaultSeed)
	if err != nil {
		t.Fatal(err)
	}
	in := "Hello, World 2024! ünïcödé"
	if got := g.Transform(in, g.NewState()); got != in {
		t.Errorf("Transform() = %q, want %q", got, in)
	}
}

func TestGlitchFullReplacesEveryAlnum(t *testing.T) {
	g, err := NewGlitch(100, rng.DefaultSeed)
	if err != nil {
		t.Fatal(err)
	}
	in := "Hello, World 42!"
	got := []rune(g.Transform(in, g.NewState()))
	src := []rune(in)
	if len(got) != len(src) {
		t.Fatalf("rune count = %d, want %d", len(got), len(src))
	}
	for i, r := range src {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if !slices.Contains(GlitchGlyphs, got[i]) {
				t.Errorf("position %d: %q not replaced by a glyph", i, got[i])
			}
		} else if got[i] != r {
			t.Errorf("position %d: %q changed to %q", i, r, got[i])
		}
	}
}

func TestGlitchDeterministic(t *testing.T) {
	g, _ := NewGlitch(50, 7)
	in := "The quick brown fox jumps over the lazy dog"
	a := g.Transform(in, g.NewState())
	b := g.Transform(in, g.NewState())
	if a != b {
		t.Errorf("same seed produced %q and %q", a, b)
	}

	st := g.NewState()
	first := g.Transform(in, st)
	second := g.Transform(in, st)
	if first == second {
		t.Error("continued state repeated the same corruption pattern")
	}
}

func TestGlitchPercentageRange(t *testing.T) {
	for _, p := range []int{-1, 101} {
		if _, err := NewGlitch(p, 1); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
			t.Errorf("NewGlitch(%d) error = %v", p, err)
		}
	}
}

func TestGlitchGlyphSet(t *testing.T) {
	if len(GlitchGlyphs) != 80 {
		t.Errorf("len(GlitchGlyphs) = %d, want 80", len(GlitchGlyphs))
	}
}

func TestStudly(t *testing.T) {
	s := NewStudly(rng.DefaultSeed)
	in := "studly caps are totally rad, 100%"
	got := s.Transform(in, s.NewState())

	if !strings.EqualFold(got, in) {
		t.Errorf("Transform() = %q changed more than letter case", got)
	}
	if got == strings.ToLower(in) || got == strings.ToUpper(in) {
		t.Errorf("Transform() = %q, expected mixed case", got)
	}
	if again := s.Transform(in, s.NewState()); again != got {
		t.Errorf("fresh state produced %q, want %q", again, got)
	}
}

func TestStudlyFollowsGenerator(t *testing.T) {
	s := NewStudly(9)
	gen := rng.New(9)
	in := "abcdefgh"
	var want strings.Builder
	for _, r := range in {
		if gen.Float64() < 0.5 {
			want.WriteRune(unicode.ToUpper(r))
		} else {
			want.WriteRune(r)
		}
	}
	if got := s.Transform(in, s.NewState()); got != want.String() {
		t.Errorf("Transform() = %q, want %q", got, want.String())
	}
}

func TestLolcat(t *testing.T) {
	l := NewLolcat(rng.DefaultSeed)
	tests := []struct {
		in   string
		want string // compared case-insensitively
	}{
		{"Thanks for the cute kitty, please", "thx 4 teh kyoot kitty, plz"},
		{"What are you doing?", "wut r u doing?"},
		{"you're okay", "u're k"},
		{"I love my cat too", "i luv mah cat 2"},
		{"theater", "theater"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := l.Transform(tt.in, l.NewState())
			if !strings.EqualFold(got, tt.want) {
				t.Errorf("Transform(%q) = %q, want %q ignoring case", tt.in, got, tt.want)
			}
		})
	}
}

func TestLolcatRecasesAllLetters(t *testing.T) {
	l := NewLolcat(rng.DefaultSeed)
	got := l.Transform(strings.Repeat("CAT ", 50), l.NewState())
	upper := strings.Count(got, "C") + strings.Count(got, "A") + strings.Count(got, "T")
	lower := strings.Count(got, "c") + strings.Count(got, "a") + strings.Count(got, "t")
	if lower == 0 || upper == 0 {
		t.Fatalf("Transform() = %q, expected a mix of cases", got)
	}
	if upper > lower {
		t.Errorf("upper = %d, lower = %d: expected roughly 30%% upper", upper, lower)
	}
}

func TestDuck(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello, I am extraordinary!", "Quack, QUA qua quackquack!"},
		{"a bird SINGS", "qua quack QUACK"},
		{"don't", "qua'qua"},
		{"42 ducks", "42 quack"},
		{"naïve", "quaïqua"},
		{"", ""},
	}
	d := NewDuck()
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := d.Transform(tt.in, nil); got != tt.want {
				t.Errorf("Transform(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRandomStagesIndependentStates(t *testing.T) {
	g, _ := NewGlitch(100, 5)
	s := NewStudly(5)
	gst, sst := g.NewState(), s.NewState()

	in := "independent"
	want := s.Transform(in, s.NewState())
	g.Transform(in, gst)
	if got := s.Transform(in, sst); got != want {
		t.Errorf("studly output %q affected by glitch draws, want %q", got, want)
	}
	if utf8.RuneCountInString(g.Transform(in, gst)) != len(in) {
		t.Error("glitch changed rune count")
	}
}
