// Package rng is the seeded random source shared by map generation and the
// room simulation. Everything here is deterministic for a given seed.
package rng

// RNG is a 64-bit linear congruential generator.
type RNG struct {
	state uint64
}

// New creates a generator for the given seed.
func New(seed int64) *RNG {
	r := &RNG{state: uint64(seed)}
	// Warm up so that nearby seeds diverge quickly.
	r.Uint64()
	r.Uint64()
	return r
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	// Knuth's MMIX constants
	r.state = r.state*6364136223846793005 + 1442695040888963407
	x := r.state
	x ^= x >> 33
	return x
}

// Float64 returns a pseudo-random float64 in [0, 1).
func (r *RNG) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// Intn returns a pseudo-random int in [0, n). Returns 0 when n <= 0.
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Uint64() % uint64(n))
}

// IntRange returns a pseudo-random int in [min, max].
func (r *RNG) IntRange(min, max int) int {
	if min >= max {
		return min
	}
	return min + r.Intn(max-min+1)
}

// Chance reports true with probability p.
func (r *RNG) Chance(p float64) bool {
	return r.Float64() < p
}

// Shuffle reorders n elements using swap.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}
