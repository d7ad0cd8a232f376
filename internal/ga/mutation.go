package ga

import "math/rand"

type swapMutation struct {
	rng *rand.Rand
}

// Mutate exchanges two distinct random positions.
func (m *swapMutation) Mutate(individual []int) {
	n := len(individual)
	if n < 2 {
		return
	}
	i, j := distinctPair(n, m.rng)
	individual[i], individual[j] = individual[j], individual[i]
}

type insertMutation struct {
	rng *rand.Rand
}

// Mutate removes the element at one random position and reinserts it at a
// different one, shifting the elements in between.
func (m *insertMutation) Mutate(individual []int) {
	n := len(individual)
	if n < 2 {
		return
	}
	i, j := distinctPair(n, m.rng)
	gene := individual[i]
	if i < j {
		copy(individual[i:j], individual[i+1:j+1])
	} else {
		copy(individual[j+1:i+1], individual[j:i])
	}
	individual[j] = gene
}

func distinctPair(n int, rng *rand.Rand) (int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}
