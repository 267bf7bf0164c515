package stage

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/matzehuels/talklike/pkg/core/casing"
	"github.com/matzehuels/talklike/pkg/core/rng"
	"github.com/matzehuels/talklike/pkg/core/rules"
	"github.com/matzehuels/talklike/pkg/errors"
)

// DefaultGlitchPercentage corrupts every letter and digit.
const DefaultGlitchPercentage = 100

// GlitchGlyphs are the block and geometric shapes glitched characters are
// drawn from.
var GlitchGlyphs = []rune(
	"█▓▒░▀▄▌▐■□" +
		"▪▫▬▭▮▯▰▱▲△" +
		"▴▵▶▷▸▹►▻▼▽" +
		"▾▿◀◁◂◃◄◅◆◇" +
		"◈◉◊○◌◍◎●◐◑" +
		"◒◓◔◕◖◗◘◙◚◛" +
		"◜◝◞◟◠◡◢◣◤◥" +
		"◦◧◨◩◪◫◬◭◮◯")

// RandomState carries the generator of a randomized stage.
type RandomState struct {
	Gen *rng.Generator
}

func randomState(st State, seed int64) *rng.Generator {
	if rs, ok := st.(*RandomState); ok && rs != nil && rs.Gen != nil {
		return rs.Gen
	}
	return rng.New(seed)
}

// Glitch replaces a percentage of letters and digits with block glyphs.
type Glitch struct {
	Percentage int
	Seed       int64
}

// NewGlitch returns a glitch stage. percentage must be within [0, 100].
func NewGlitch(percentage int, seed int64) (*Glitch, error) {
	if percentage < 0 || percentage > 100 {
		return nil, errors.Configuration("glitch: percentage must be between 0 and 100, got %d", percentage)
	}
	return &Glitch{Percentage: percentage, Seed: seed}, nil
}

// Kind returns [KindGlitch].
func (g *Glitch) Kind() Kind { return KindGlitch }

// NewState returns a generator seeded with Seed.
func (g *Glitch) NewState() State { return &RandomState{Gen: rng.New(g.Seed)} }

// Transform draws once per letter or digit and swaps it for a random glyph
// when the draw falls within Percentage. Everything else, including bytes
// that are not valid UTF-8, passes through.
func (g *Glitch) Transform(text string, st State) string {
	gen := randomState(st, g.Seed)
	return mapRunes(text, func(r rune) rune {
		if isAlnum(r) && gen.IntRange(1, 100) <= g.Percentage {
			return rng.Pick(gen, GlitchGlyphs)
		}
		return r
	})
}

// Describe reports the glitch percentage.
func (g *Glitch) Describe() []string {
	return []string{fmt.Sprintf("corrupt %d%% of letters and digits (seed %d)", g.Percentage, g.Seed)}
}

// Studly randomly upper- or lower-cases each letter with equal odds.
type Studly struct {
	Seed int64
}

// NewStudly returns a studly caps stage.
func NewStudly(seed int64) *Studly { return &Studly{Seed: seed} }

// Kind returns [KindStudly].
func (s *Studly) Kind() Kind { return KindStudly }

// NewState returns a generator seeded with Seed.
func (s *Studly) NewState() State { return &RandomState{Gen: rng.New(s.Seed)} }

// Transform upper-cases each letter on a draw below 0.5 and lower-cases it
// otherwise.
func (s *Studly) Transform(text string, st State) string {
	return recase(text, randomState(st, s.Seed), 0.5)
}

// Describe reports the upper-case odds and seed.
func (s *Studly) Describe() []string {
	return []string{fmt.Sprintf("random caps, 50%% upper (seed %d)", s.Seed)}
}

// lolcatTable is applied in order; "you" runs before "you're", so
// "you're" comes out as "u're".
var lolcatTable = []rules.Entry{
	{Key: "you", Replacement: "u"},
	{Key: "your", Replacement: "ur"},
	{Key: "you're", Replacement: "ur"},
	{Key: "ok", Replacement: "k"},
	{Key: "okay", Replacement: "k"},
	{Key: "the", Replacement: "teh"},
	{Key: "more", Replacement: "moar"},
	{Key: "my", Replacement: "mah"},
	{Key: "are", Replacement: "r"},
	{Key: "what", Replacement: "wut"},
	{Key: "cute", Replacement: "kyoot"},
	{Key: "please", Replacement: "plz"},
	{Key: "thanks", Replacement: "thx"},
	{Key: "because", Replacement: "cuz"},
	{Key: "love", Replacement: "luv"},
	{Key: "oh", Replacement: "o"},
	{Key: "to", Replacement: "2"},
	{Key: "too", Replacement: "2"},
	{Key: "for", Replacement: "4"},
}

var lolcatRules = mustCompileTable(lolcatTable, rules.Options{WordBoundary: true, FoldCase: true})

// Lolcat applies the lolcat vocabulary, then upper-cases about 30% of the
// letters and lower-cases the rest.
type Lolcat struct {
	Seed int64
}

// NewLolcat returns a lolcat stage.
func NewLolcat(seed int64) *Lolcat { return &Lolcat{Seed: seed} }

// Kind returns [KindLolcat].
func (l *Lolcat) Kind() Kind { return KindLolcat }

// NewState returns a generator seeded with Seed.
func (l *Lolcat) NewState() State { return &RandomState{Gen: rng.New(l.Seed)} }

// Transform rewrites the lolcat vocabulary, then re-cases every letter.
func (l *Lolcat) Transform(text string, st State) string {
	return recase(lolcatRules.Apply(text), randomState(st, l.Seed), 0.3)
}

// Describe lists the word rules and the random caps.
func (l *Lolcat) Describe() []string {
	lines := describeSet(lolcatRules)
	return append(lines, fmt.Sprintf("random caps, 30%% upper (seed %d)", l.Seed))
}

// Duck turns every word into a quack sized by the word's length.
type Duck struct{}

// NewDuck returns a duck stage.
func NewDuck() Duck { return Duck{} }

func (Duck) Kind() Kind      { return KindDuck }
func (Duck) NewState() State { return nil }

// Transform replaces each run of ASCII letters: up to 3 letters become
// "qua", 10 or more become "quackquack", anything between becomes "quack".
func (Duck) Transform(text string, _ State) string {
	var b strings.Builder
	b.Grow(len(text))
	start := -1
	flush := func(end int) {
		if start >= 0 {
			b.WriteString(quack(text[start:end]))
			start = -1
		}
	}
	for i := 0; i < len(text); i++ {
		if isASCIILetter(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		b.WriteByte(text[i])
	}
	flush(len(text))
	return b.String()
}

func (Duck) Describe() []string {
	return []string{"words of 1-3 letters -> qua", "words of 4-9 letters -> quack", "words of 10+ letters -> quackquack"}
}

func quack(word string) string {
	token := "quack"
	switch n := len(word); {
	case n <= 3:
		token = "qua"
	case n >= 10:
		token = "quackquack"
	}
	return casing.Project(word, token)
}

// recase draws once per letter and upper-cases it when the draw is below
// upper, lower-cases it otherwise.
func recase(text string, gen *rng.Generator, upper float64) string {
	return mapRunes(text, func(r rune) rune {
		if !unicode.IsLetter(r) {
			return r
		}
		if gen.Float64() < upper {
			return unicode.ToUpper(r)
		}
		return unicode.ToLower(r)
	})
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func mustCompileTable(entries []rules.Entry, opts rules.Options) rules.Set {
	set, err := rules.CompileTable(entries, opts)
	if err != nil {
		panic(err)
	}
	return set
}
