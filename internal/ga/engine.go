package ga

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"tsplab/internal/opt"
	"tsplab/internal/tsplib"
)

// DefaultStagnationLimit stops a run after this long without improvement
// when the config leaves StagnationLimit zero.
const DefaultStagnationLimit = 2 * time.Second

// Config carries every GA parameter. Seed 0 means non-reproducible.
type Config struct {
	PopulationSize int           `yaml:"population_size" json:"populationSize"`
	CrossoverRate  float64       `yaml:"crossover_rate" json:"crossoverRate"`
	MutationRate   float64       `yaml:"mutation_rate" json:"mutationRate"`
	MaxTime        time.Duration `yaml:"-" json:"-"`
	// MaxGenerations optionally caps the generational loop (0 = unlimited);
	// useful for bounded benchmark runs.
	MaxGenerations  int           `yaml:"max_generations,omitempty" json:"maxGenerations,omitempty"`
	StagnationLimit time.Duration `yaml:"-" json:"-"`
	Seed            int64         `yaml:"-" json:"seed,omitempty"`

	Selection  SelectionConfig  `yaml:"selection_config" json:"selection"`
	Crossover  CrossoverConfig  `yaml:"crossover_config" json:"crossover"`
	Mutation   MutationConfig   `yaml:"mutation_config" json:"mutation"`
	Succession SuccessionConfig `yaml:"succession_config" json:"succession"`
}

func (c Config) validate() error {
	if c.PopulationSize < 2 {
		return fmt.Errorf("ga: population_size must be >= 2, got %d", c.PopulationSize)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("ga: crossover_rate must be in [0,1], got %v", c.CrossoverRate)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("ga: mutation_rate must be in [0,1], got %v", c.MutationRate)
	}
	if c.MaxTime <= 0 {
		return fmt.Errorf("ga: max_time must be positive")
	}
	return nil
}

// Engine drives the generational loop against one instance. It is single
// use: Solve runs once and a fresh Engine is needed for another run.
type Engine struct {
	inst *tsplib.Instance
	cfg  Config
	rng  *rand.Rand

	selection  Selection
	crossover  Crossover
	mutation   Mutation
	succession Succession

	progress opt.ProgressFunc
	ran      bool
}

// New validates the configuration, seeds the engine's random source, and
// builds the four operators from their configured names.
func New(inst *tsplib.Instance, cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.StagnationLimit <= 0 {
		cfg.StagnationLimit = DefaultStagnationLimit
	}
	rng := opt.NewRand(cfg.Seed)
	sel, err := NewSelection(cfg.Selection, rng)
	if err != nil {
		return nil, err
	}
	cx, err := NewCrossover(cfg.Crossover, rng)
	if err != nil {
		return nil, err
	}
	mut, err := NewMutation(cfg.Mutation, rng)
	if err != nil {
		return nil, err
	}
	succ, err := NewSuccession(cfg.Succession)
	if err != nil {
		return nil, err
	}
	return &Engine{
		inst:       inst,
		cfg:        cfg,
		rng:        rng,
		selection:  sel,
		crossover:  cx,
		mutation:   mut,
		succession: succ,
	}, nil
}

// OnProgress registers a callback invoked with every appended history
// sample. Must be set before Solve.
func (e *Engine) OnProgress(fn opt.ProgressFunc) { e.progress = fn }

// Solve runs the generational loop until the time budget or the stagnation
// limit is hit. The returned history carries one sample per generation with
// a non-increasing best cost.
func (e *Engine) Solve(ctx context.Context) (opt.Result, error) {
	if e.ran {
		return opt.Result{}, opt.ErrAlreadyRun
	}
	e.ran = true

	start := time.Now()
	n := e.inst.Dimension
	size := e.cfg.PopulationSize

	population := make([][]int, size)
	costs := make([]float64, size)
	for i := 0; i < size; i++ {
		population[i] = opt.RandPerm(n, e.rng)
		costs[i] = e.inst.Evaluate(population[i])
	}

	bestTour := make([]int, n)
	bestCost := costs[0]
	copy(bestTour, population[0])
	for i := 1; i < size; i++ {
		if costs[i] < bestCost {
			bestCost = costs[i]
			copy(bestTour, population[i])
		}
	}
	lastImprovement := start

	var history opt.History
	for gen := 0; ; gen++ {
		if err := ctx.Err(); err != nil {
			return e.result(bestTour, bestCost, history, start), err
		}
		now := time.Now()
		if now.Sub(start) >= e.cfg.MaxTime || now.Sub(lastImprovement) >= e.cfg.StagnationLimit {
			break
		}
		if e.cfg.MaxGenerations > 0 && gen >= e.cfg.MaxGenerations {
			break
		}

		offspring := make([][]int, 0, size+1)
		for len(offspring) < size {
			p1 := e.selection.Select(population, costs)
			p2 := e.selection.Select(population, costs)

			var c1, c2 []int
			if e.rng.Float64() < e.cfg.CrossoverRate {
				c1, c2 = e.crossover.Crossover(p1, p2)
			} else {
				c1 = append([]int(nil), p1...)
				c2 = append([]int(nil), p2...)
			}
			if e.rng.Float64() < e.cfg.MutationRate {
				e.mutation.Mutate(c1)
			}
			if e.rng.Float64() < e.cfg.MutationRate {
				e.mutation.Mutate(c2)
			}
			offspring = append(offspring, c1, c2)
		}
		offspring = offspring[:size]
		offspringCosts := make([]float64, size)
		for i, child := range offspring {
			offspringCosts[i] = e.inst.Evaluate(child)
		}

		population, costs = e.succession.Replace(population, offspring, costs, offspringCosts)

		for i, c := range costs {
			if c < bestCost {
				bestCost = c
				copy(bestTour, population[i])
				lastImprovement = time.Now()
			}
		}

		sample := opt.Sample{
			ElapsedMs: float64(time.Since(start).Nanoseconds()) / 1e6,
			BestCost:  bestCost,
		}
		history = append(history, sample)
		if e.progress != nil {
			e.progress(sample)
		}
	}

	return e.result(bestTour, bestCost, history, start), nil
}

func (e *Engine) result(tour []int, cost float64, history opt.History, start time.Time) opt.Result {
	return opt.Result{
		BestTour: tour,
		BestCost: cost,
		History:  history,
		Duration: time.Since(start),
	}
}
