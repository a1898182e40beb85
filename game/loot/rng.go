package loot

import "math/rand/v2"

// RandomSource abstracts the uniform generator so rolls can be replayed.
type RandomSource interface {
	Float64() float64 // [0, 1)
}

type globalRNG struct{}

func (globalRNG) Float64() float64 { return rand.Float64() }

// DefaultRNG draws from the runtime-seeded global generator.
func DefaultRNG() RandomSource { return globalRNG{} }

// seededRNG is a replicable source for simulations and tests.
type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a deterministic PCG-backed source.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// intN maps a uniform float onto [0, n).
func intN(rng RandomSource, n int) int {
	i := int(rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
