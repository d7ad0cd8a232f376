package opt

import (
	"math/rand"
	"time"
)

// NewRand returns the single random source an engine threads through every
// stochastic choice. seed==0 yields a time-based, non-reproducible stream;
// any other seed gives bit-identical cost sequences across runs.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// RandPerm returns a uniformly random permutation of 0..n-1 drawn from rng
// (Fisher-Yates).
func RandPerm(n int, rng *rand.Rand) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}
