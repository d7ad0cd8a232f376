// Package acs implements the Ant Colony System engine: pheromone-guided
// probabilistic tour construction with local and global pheromone updates
// over a symmetric pheromone matrix.
package acs

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"tsplab/internal/opt"
	"tsplab/internal/tsplib"
)

// DefaultStagnationLimit stops a run after this long without improvement
// when the config leaves StagnationLimit zero.
const DefaultStagnationLimit = 2 * time.Second

// Config carries every ACS parameter. Seed 0 means non-reproducible.
type Config struct {
	NumAnts int     `yaml:"num_ants" json:"numAnts"`
	Alpha   float64 `yaml:"alpha" json:"alpha"`
	Beta    float64 `yaml:"beta" json:"beta"`
	// Rho is the global evaporation rate, Phi the local one; both in (0,1].
	Rho float64 `yaml:"rho" json:"rho"`
	Phi float64 `yaml:"phi" json:"phi"`
	// Q0 is the exploitation probability of the pseudorandom-proportional rule.
	Q0      float64       `yaml:"q0" json:"q0"`
	MaxTime time.Duration `yaml:"-" json:"-"`
	// MaxIterations optionally caps the loop (0 = unlimited).
	MaxIterations   int           `yaml:"max_iterations,omitempty" json:"maxIterations,omitempty"`
	StagnationLimit time.Duration `yaml:"-" json:"-"`
	Seed            int64         `yaml:"-" json:"seed,omitempty"`
}

func (c Config) validate() error {
	if c.NumAnts < 1 {
		return fmt.Errorf("acs: num_ants must be >= 1, got %d", c.NumAnts)
	}
	if c.Alpha < 0 || c.Beta < 0 {
		return fmt.Errorf("acs: alpha and beta must be >= 0")
	}
	if c.Rho <= 0 || c.Rho > 1 {
		return fmt.Errorf("acs: rho must be in (0,1], got %v", c.Rho)
	}
	if c.Phi <= 0 || c.Phi > 1 {
		return fmt.Errorf("acs: phi must be in (0,1], got %v", c.Phi)
	}
	if c.Q0 < 0 || c.Q0 > 1 {
		return fmt.Errorf("acs: q0 must be in [0,1], got %v", c.Q0)
	}
	if c.MaxTime <= 0 {
		return fmt.Errorf("acs: max_time must be positive")
	}
	return nil
}

// Engine owns the pheromone and heuristic matrices for one run. Single use.
type Engine struct {
	inst *tsplib.Instance
	cfg  Config
	rng  *rand.Rand

	pheromone [][]float64
	heuristic [][]float64

	progress opt.ProgressFunc
	ran      bool
}

// New validates the configuration and builds both matrices: pheromone all
// 1.0, heuristic 1/D[i][j] (0 on the diagonal and for zero-distance pairs).
func New(inst *tsplib.Instance, cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.StagnationLimit <= 0 {
		cfg.StagnationLimit = DefaultStagnationLimit
	}
	n := inst.Dimension
	pheromone := make([][]float64, n)
	heuristic := make([][]float64, n)
	for i := 0; i < n; i++ {
		pheromone[i] = make([]float64, n)
		heuristic[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			pheromone[i][j] = 1.0
			if i != j && inst.Matrix[i][j] > 0 {
				heuristic[i][j] = 1.0 / float64(inst.Matrix[i][j])
			}
		}
	}
	return &Engine{
		inst:      inst,
		cfg:       cfg,
		rng:       opt.NewRand(cfg.Seed),
		pheromone: pheromone,
		heuristic: heuristic,
	}, nil
}

// OnProgress registers a callback invoked with every appended history
// sample. Must be set before Solve.
func (e *Engine) OnProgress(fn opt.ProgressFunc) { e.progress = fn }

// Solve iterates ant construction, local updates, and the global update
// until the time budget or the stagnation limit is hit.
func (e *Engine) Solve(ctx context.Context) (opt.Result, error) {
	if e.ran {
		return opt.Result{}, opt.ErrAlreadyRun
	}
	e.ran = true

	start := time.Now()
	bestCost := math.Inf(1)
	var bestTour []int
	lastImprovement := start

	var history opt.History
	for iter := 0; ; iter++ {
		if err := ctx.Err(); err != nil {
			return e.result(bestTour, bestCost, history, start), err
		}
		now := time.Now()
		if now.Sub(start) >= e.cfg.MaxTime || now.Sub(lastImprovement) >= e.cfg.StagnationLimit {
			break
		}
		if e.cfg.MaxIterations > 0 && iter >= e.cfg.MaxIterations {
			break
		}

		iterBestCost := math.Inf(1)
		var iterBestTour []int
		for ant := 0; ant < e.cfg.NumAnts; ant++ {
			tour := e.buildTour()
			cost := e.inst.Evaluate(tour)
			if cost < iterBestCost {
				iterBestCost = cost
				iterBestTour = tour
			}
		}

		if iterBestCost < bestCost {
			bestCost = iterBestCost
			bestTour = append([]int(nil), iterBestTour...)
			lastImprovement = time.Now()
		}
		e.globalUpdate(iterBestTour, iterBestCost)

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

// buildTour constructs one ant's tour from a random start city, applying the
// local pheromone update to every traversed edge as it goes.
func (e *Engine) buildTour() []int {
	n := e.inst.Dimension
	tour := make([]int, 0, n)
	visited := make([]bool, n)

	current := e.rng.Intn(n)
	tour = append(tour, current)
	visited[current] = true

	for len(tour) < n {
		next := e.chooseNext(current, visited)
		e.localUpdate(current, next)
		tour = append(tour, next)
		visited[next] = true
		current = next
	}
	return tour
}

// chooseNext applies the pseudorandom-proportional rule: with probability q0
// exploit the unvisited city maximizing τ^α·η^β, otherwise sample one
// proportionally to that weight, falling back to a uniform choice when every
// weight is zero.
func (e *Engine) chooseNext(current int, visited []bool) int {
	n := e.inst.Dimension
	candidates := make([]int, 0, n)
	weights := make([]float64, 0, n)
	total := 0.0
	for j := 0; j < n; j++ {
		if visited[j] {
			continue
		}
		w := math.Pow(e.pheromone[current][j], e.cfg.Alpha) * math.Pow(e.heuristic[current][j], e.cfg.Beta)
		candidates = append(candidates, j)
		weights = append(weights, w)
		total += w
	}

	if e.rng.Float64() <= e.cfg.Q0 {
		best := candidates[0]
		bestW := weights[0]
		for i, j := range candidates[1:] {
			if weights[i+1] > bestW {
				bestW = weights[i+1]
				best = j
			}
		}
		return best
	}

	if total == 0 {
		return candidates[e.rng.Intn(len(candidates))]
	}
	r := e.rng.Float64()
	cum := 0.0
	for i, j := range candidates {
		cum += weights[i] / total
		if r <= cum {
			return j
		}
	}
	return candidates[len(candidates)-1]
}

// localUpdate decays the traversed edge toward the initial level,
// symmetrically in both directions.
func (e *Engine) localUpdate(i, j int) {
	v := (1-e.cfg.Phi)*e.pheromone[i][j] + e.cfg.Phi*1.0
	e.pheromone[i][j] = v
	e.pheromone[j][i] = v
}

// globalUpdate reinforces only the iteration-best tour's edges with a
// deposit of 1/cost, symmetrically.
func (e *Engine) globalUpdate(tour []int, cost float64) {
	deposit := 1.0 / cost
	n := len(tour)
	for k := 0; k < n; k++ {
		a := tour[k]
		b := tour[(k+1)%n]
		v := (1-e.cfg.Rho)*e.pheromone[a][b] + e.cfg.Rho*deposit
		e.pheromone[a][b] = v
		e.pheromone[b][a] = v
	}
}

func (e *Engine) result(tour []int, cost float64, history opt.History, start time.Time) opt.Result {
	return opt.Result{
		BestTour: tour,
		BestCost: cost,
		History:  history,
		Duration: time.Since(start),
	}
}
