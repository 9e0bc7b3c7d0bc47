package rand

import (
	stdrand "math/rand/v2"

	"github.com/pkg/errors"
	"github.com/seehuhn/mt19937"
)

// A Generator is a seeded 64-bit Mersenne twister with the handful of draws
// the samplers need. A chain is fully determined by its seed. A Generator
// is not safe for concurrent use: give each chain its own.
type Generator struct {
	mt  *mt19937.MT19937
	std *stdrand.Rand
}

// NewGenerator creates a generator from a single seed
func NewGenerator(seed int64) (*Generator, error) {
	mt := mt19937.New()
	mt.Seed(seed)
	return newGenerator(mt), nil
}

// NewGeneratorSlice creates a generator from a seed array, as the reference
// MT19937-64 init_by_array does.
func NewGeneratorSlice(seed []uint64) (*Generator, error) {
	if len(seed) < 1 {
		return nil, errors.New("At least one seed value is required")
	}

	mt := mt19937.New()
	mt.SeedFromSlice(seed)
	return newGenerator(mt), nil
}

func newGenerator(mt *mt19937.MT19937) *Generator {
	g := &Generator{mt: mt}
	g.std = stdrand.New(g)
	return g
}

// Uint64 makes Generator a math/rand/v2 Source.
func (g *Generator) Uint64() uint64 {
	return g.mt.Uint64()
}

// Int63 provides the same interface as Go's math/rand.
func (g *Generator) Int63() int64 {
	return g.mt.Int63()
}

// Int63n is a copy of the Go code
func (g *Generator) Int63n(n int64) int64 {
	if n <= 0 {
		panic("invalid argument to Int63n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int63() & (n - 1)
	}

	max := int64((1 << 63) - 1 - (1<<63)%uint64(n))
	v := g.Int63()
	for v > max {
		v = g.Int63()
	}

	return v % n
}

// Float64 returns a uniform draw from [0, 1). It uses the simple
// implementation since we don't have the same support requirements as the
// standard library.
func (g *Generator) Float64() float64 {
	return float64(g.Int63n(1<<53)) / (1 << 53)
}

// NormFloat64 returns a standard normal draw (ziggurat, via math/rand/v2)
// driven by this generator's stream.
func (g *Generator) NormFloat64() float64 {
	return g.std.NormFloat64()
}
