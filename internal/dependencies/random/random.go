package random

import (
	"math/rand/v2"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Float64 returns a random float in [0, 1)
	Float64() float64
}

// PCGRandom implements Random with a seeded PCG source. Game randomness
// (colors, spawn positions, bot names) does not need crypto strength.
type PCGRandom struct {
	r *rand.Rand
}

// New creates a PCGRandom seeded from the runtime's random source
func New() *PCGRandom {
	return NewSeeded(rand.Uint64(), rand.Uint64())
}

// NewSeeded creates a PCGRandom with a fixed seed
func NewSeeded(seed1, seed2 uint64) *PCGRandom {
	return &PCGRandom{r: rand.New(rand.NewPCG(seed1, seed2))}
}

// Intn returns a random int in [0, n), or 0 if n <= 0
func (p *PCGRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return p.r.IntN(n)
}

// Float64 returns a random float in [0, 1)
func (p *PCGRandom) Float64() float64 {
	return p.r.Float64()
}
