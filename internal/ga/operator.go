// Package ga implements the genetic algorithm engine and its pluggable
// operator families: selection, crossover, mutation, and succession. Every
// operator works on permutations of 0..N-1; stochastic operators draw from
// the single *rand.Rand handed to their constructor so a fixed seed
// reproduces a run exactly.
package ga

import (
	"fmt"
	"math/rand"
)

// Selection picks one parent from the population. Lower cost means fitter.
type Selection interface {
	Select(population [][]int, costs []float64) []int
}

// Crossover produces two children from two equal-length parent permutations.
// Each child is a permutation of its primary parent's element set.
type Crossover interface {
	Crossover(p1, p2 []int) ([]int, []int)
}

// Mutation perturbs an individual in place.
type Mutation interface {
	Mutate(individual []int)
}

// Succession forms the next generation from parents and offspring, keeping
// the population size constant.
type Succession interface {
	Replace(parents, offspring [][]int, parentCosts, offspringCosts []float64) ([][]int, []float64)
}

// Operator configuration as it appears in experiment files and API requests.
type (
	SelectionConfig struct {
		Name    string  `yaml:"name" json:"name"`
		Rate    float64 `yaml:"rate,omitempty" json:"rate,omitempty"`
		Epsilon float64 `yaml:"epsilon,omitempty" json:"epsilon,omitempty"`
	}
	CrossoverConfig struct {
		Name string `yaml:"name" json:"name"`
	}
	MutationConfig struct {
		Name string `yaml:"name" json:"name"`
	}
	SuccessionConfig struct {
		Name            string  `yaml:"name" json:"name"`
		EliteRate       float64 `yaml:"elite_rate,omitempty" json:"eliteRate,omitempty"`
		ReplacementRate float64 `yaml:"replacement_rate,omitempty" json:"replacementRate,omitempty"`
	}
)

// NewSelection maps a configuration name to a constructed selection operator.
func NewSelection(cfg SelectionConfig, rng *rand.Rand) (Selection, error) {
	switch cfg.Name {
	case "tournament":
		return newTournament(cfg.Rate, rng)
	case "roulette":
		return newRoulette(cfg.Epsilon, rng), nil
	case "rank":
		return &rankSelection{rng: rng}, nil
	default:
		return nil, fmt.Errorf("ga: unknown selection %q", cfg.Name)
	}
}

// NewCrossover maps a configuration name to a constructed crossover operator.
func NewCrossover(cfg CrossoverConfig, rng *rand.Rand) (Crossover, error) {
	switch cfg.Name {
	case "ox":
		return &orderCrossover{rng: rng}, nil
	case "pmx":
		return &pmxCrossover{rng: rng}, nil
	case "cx":
		return &cycleCrossover{}, nil
	default:
		return nil, fmt.Errorf("ga: unknown crossover %q", cfg.Name)
	}
}

// NewMutation maps a configuration name to a constructed mutation operator.
func NewMutation(cfg MutationConfig, rng *rand.Rand) (Mutation, error) {
	switch cfg.Name {
	case "swap":
		return &swapMutation{rng: rng}, nil
	case "insert":
		return &insertMutation{rng: rng}, nil
	default:
		return nil, fmt.Errorf("ga: unknown mutation %q", cfg.Name)
	}
}

// NewSuccession maps a configuration name to a constructed succession
// strategy. Succession is deterministic and takes no random source.
func NewSuccession(cfg SuccessionConfig) (Succession, error) {
	switch cfg.Name {
	case "elitist":
		return newElitist(cfg.EliteRate)
	case "steady_state":
		return newSteadyState(cfg.ReplacementRate)
	default:
		return nil, fmt.Errorf("ga: unknown succession %q", cfg.Name)
	}
}
