package ga

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

const defaultRouletteEpsilon = 1e-9

type tournamentSelection struct {
	rate float64
	rng  *rand.Rand
}

func newTournament(rate float64, rng *rand.Rand) (*tournamentSelection, error) {
	if rate <= 0 || rate > 1 {
		return nil, fmt.Errorf("ga: tournament rate must be in (0,1], got %v", rate)
	}
	return &tournamentSelection{rate: rate, rng: rng}, nil
}

// Select samples k individuals without replacement and returns the cheapest.
func (t *tournamentSelection) Select(population [][]int, costs []float64) []int {
	n := len(population)
	k := int(math.Round(t.rate * float64(n)))
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	best := -1
	for i := 0; i < k; i++ {
		j := i + t.rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
		if best == -1 || costs[idx[i]] < costs[best] {
			best = idx[i]
		}
	}
	return population[best]
}

type rouletteSelection struct {
	epsilon float64
	rng     *rand.Rand
}

func newRoulette(epsilon float64, rng *rand.Rand) *rouletteSelection {
	if epsilon <= 0 {
		epsilon = defaultRouletteEpsilon
	}
	return &rouletteSelection{epsilon: epsilon, rng: rng}
}

// Select draws one individual with probability proportional to 1/(cost+ε),
// so cheaper tours are favored.
func (s *rouletteSelection) Select(population [][]int, costs []float64) []int {
	total := 0.0
	for _, c := range costs {
		total += 1.0 / (c + s.epsilon)
	}
	r := s.rng.Float64()
	cum := 0.0
	for i, c := range costs {
		cum += (1.0 / (c + s.epsilon)) / total
		if r <= cum {
			return population[i]
		}
	}
	return population[len(population)-1]
}

type rankSelection struct {
	rng *rand.Rand
}

// Select sorts by cost and samples with linear rank weights N..1, giving the
// best individual the highest weight.
func (s *rankSelection) Select(population [][]int, costs []float64) []int {
	n := len(population)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return costs[order[a]] < costs[order[b]] })

	total := float64(n*(n+1)) / 2
	r := s.rng.Float64()
	cum := 0.0
	for pos, i := range order {
		cum += float64(n-pos) / total
		if r <= cum {
			return population[i]
		}
	}
	return population[order[n-1]]
}
