package ga

import (
	"fmt"
	"math"
	"sort"
)

type elitistSuccession struct {
	eliteRate float64
}

func newElitist(eliteRate float64) (*elitistSuccession, error) {
	if eliteRate <= 0 || eliteRate > 1 {
		return nil, fmt.Errorf("ga: elite rate must be in (0,1], got %v", eliteRate)
	}
	return &elitistSuccession{eliteRate: eliteRate}, nil
}

// Replace keeps the elite_count cheapest parents and fills the rest of the
// population with the cheapest offspring.
func (s *elitistSuccession) Replace(parents, offspring [][]int, parentCosts, offspringCosts []float64) ([][]int, []float64) {
	size := len(parents)
	elite := int(math.Round(s.eliteRate * float64(size)))
	if elite < 1 {
		elite = 1
	}
	if elite > size {
		elite = size
	}
	pIdx := sortedByCost(parentCosts)
	oIdx := sortedByCost(offspringCosts)

	pop := make([][]int, 0, size)
	costs := make([]float64, 0, size)
	for _, i := range pIdx[:elite] {
		pop = append(pop, parents[i])
		costs = append(costs, parentCosts[i])
	}
	for _, i := range oIdx[:size-elite] {
		pop = append(pop, offspring[i])
		costs = append(costs, offspringCosts[i])
	}
	return pop, costs
}

type steadyStateSuccession struct {
	replacementRate float64
}

func newSteadyState(replacementRate float64) (*steadyStateSuccession, error) {
	if replacementRate <= 0 || replacementRate > 1 {
		return nil, fmt.Errorf("ga: replacement rate must be in (0,1], got %v", replacementRate)
	}
	return &steadyStateSuccession{replacementRate: replacementRate}, nil
}

// Replace keeps the best parents and injects the replace_count cheapest
// offspring in their place.
func (s *steadyStateSuccession) Replace(parents, offspring [][]int, parentCosts, offspringCosts []float64) ([][]int, []float64) {
	size := len(parents)
	replace := int(math.Round(s.replacementRate * float64(size)))
	if replace < 1 {
		replace = 1
	}
	if replace > size {
		replace = size
	}
	pIdx := sortedByCost(parentCosts)
	oIdx := sortedByCost(offspringCosts)

	pop := make([][]int, 0, size)
	costs := make([]float64, 0, size)
	for _, i := range pIdx[:size-replace] {
		pop = append(pop, parents[i])
		costs = append(costs, parentCosts[i])
	}
	for _, i := range oIdx[:replace] {
		pop = append(pop, offspring[i])
		costs = append(costs, offspringCosts[i])
	}
	return pop, costs
}

func sortedByCost(costs []float64) []int {
	idx := make([]int, len(costs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return costs[idx[a]] < costs[idx[b]] })
	return idx
}
