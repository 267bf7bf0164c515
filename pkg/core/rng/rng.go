// Package rng provides the deterministic random source behind the
// randomized effect stages (glitch, studly caps, lolcat).
//
// Effects must be reproducible: the same filter, seed and input always yield
// the same output, so results can be cached, snapshot tested and compared
// across machines. [Generator] is a linear congruential generator with the
// classic glibc constants; its sequence is fully defined by the seed and
// does not depend on the Go runtime or math/rand implementation.
//
//	g := rng.New(rng.DefaultSeed)
//	u := g.Float64()          // in [0, 1)
//	n := g.IntRange(1, 100)   // in [1, 100]
//	c := rng.Pick(g, glyphs)  // uniform element
//
// A Generator is not safe for concurrent use. Each filter session owns its
// own generators, one per randomized stage.
package rng

// LCG parameters: state' = (Multiplier*state + Increment) mod Modulus.
const (
	Multiplier = 1103515245
	Increment  = 12345
	Modulus    = 1 << 31
)

// DefaultSeed is used when a filter does not configure a seed.
const DefaultSeed int64 = 42

// Generator is a seeded linear congruential generator.
type Generator struct {
	seed  int64
	state uint64
}

// New returns a generator whose sequence is determined by seed.
// Negative seeds are reduced modulo [Modulus].
func New(seed int64) *Generator {
	g := &Generator{seed: seed}
	g.Reset()
	return g
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() int64 { return g.seed }

// Reset rewinds the generator to the start of its sequence.
func (g *Generator) Reset() {
	s := g.seed % Modulus
	if s < 0 {
		s += Modulus
	}
	g.state = uint64(s)
}

// Clone returns an independent generator at the same position.
func (g *Generator) Clone() *Generator {
	c := *g
	return &c
}

// Next advances the generator and returns the new state in [0, Modulus).
func (g *Generator) Next() uint64 {
	g.state = (Multiplier*g.state + Increment) % Modulus
	return g.state
}

// Float64 returns a uniform draw in [0, 1).
func (g *Generator) Float64() float64 {
	return float64(g.Next()) / Modulus
}

// IntRange returns a uniform integer in [lo, hi], both inclusive.
// If hi < lo the bounds are swapped.
func (g *Generator) IntRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + int(g.Float64()*float64(hi-lo+1))
}

// Pick returns a uniformly chosen element of items.
// It panics if items is empty.
func Pick[T any](g *Generator, items []T) T {
	return items[g.IntRange(0, len(items)-1)]
}
