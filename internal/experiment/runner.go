package experiment

import (
	"context"
	"fmt"
	"log"
	"time"

	"tsplab/internal/acs"
	"tsplab/internal/ga"
	"tsplab/internal/metrics"
	"tsplab/internal/opt"
	"tsplab/internal/tsplib"
)

// BuildSolver constructs the engine an algorithm config names, seeded for
// one run.
func BuildSolver(inst *tsplib.Instance, alg Algorithm, seed int64) (opt.Solver, error) {
	switch alg.Name {
	case "ga":
		return ga.New(inst, alg.GAConfig(seed))
	case "acs":
		return acs.New(inst, alg.ACSConfig(seed))
	default:
		return nil, fmt.Errorf("experiment: unknown algorithm %q", alg.Name)
	}
}

// RunResult is the outcome of a single seeded run.
type RunResult struct {
	Run      int         `json:"run"`
	Seed     int64       `json:"seed"`
	BestCost float64     `json:"bestCost"`
	BestTour []int       `json:"bestTour,omitempty"`
	History  opt.History `json:"history"`
	Duration float64     `json:"durationMs"`
}

// Summary aggregates all runs of one configuration.
type Summary struct {
	ConfigName string      `json:"config_name"`
	Instance   string      `json:"instance"`
	Algorithm  string      `json:"algorithm"`
	Runs       int         `json:"runs"`
	MeanError  float64     `json:"mean_relative_error"`
	BestCost   float64     `json:"best_cost"`
	Results    []RunResult `json:"results,omitempty"`
	FinishedAt time.Time   `json:"finished_at"`
}

// ProgressFunc receives live samples from a run in flight.
type ProgressFunc func(configName string, run int, s opt.Sample)

// Runner executes experiment configurations against a catalog of instances.
type Runner struct {
	Catalog  *tsplib.Catalog
	Progress ProgressFunc
}

// RunAll executes every configuration in order. A failing configuration is
// logged and skipped; the remaining configurations still run.
func (r *Runner) RunAll(ctx context.Context, configs []ExperimentConfig) []Summary {
	summaries := make([]Summary, 0, len(configs))
	for _, cfg := range configs {
		sum, err := r.Run(ctx, cfg)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("experiment: aborting, context done: %v", ctx.Err())
				return summaries
			}
			log.Printf("experiment: config %s failed: %v", cfg.Name, err)
			continue
		}
		summaries = append(summaries, sum)
	}
	return summaries
}

// Run executes all runs of one configuration and aggregates them.
func (r *Runner) Run(ctx context.Context, cfg ExperimentConfig) (Summary, error) {
	inst, err := r.resolve(cfg.Problem)
	if err != nil {
		return Summary{}, err
	}
	results := make([]RunResult, 0, cfg.Runs)
	costs := make([]float64, 0, cfg.Runs)
	for run := 1; run <= cfg.Runs; run++ {
		if ctx.Err() != nil {
			return Summary{}, ctx.Err()
		}
		seed := cfg.SeedBase + int64(run)
		res, err := r.runOnce(ctx, inst, cfg, run, seed)
		if err != nil {
			return Summary{}, fmt.Errorf("run %d: %w", run, err)
		}
		results = append(results, res)
		costs = append(costs, res.BestCost)
	}
	return Summary{
		ConfigName: cfg.Name,
		Instance:   inst.Name,
		Algorithm:  cfg.Algorithm.Name,
		Runs:       cfg.Runs,
		MeanError:  MeanRelativeError(costs, inst.Optimal),
		BestCost:   BestCost(costs),
		Results:    results,
		FinishedAt: time.Now().UTC(),
	}, nil
}

func (r *Runner) runOnce(ctx context.Context, inst *tsplib.Instance, cfg ExperimentConfig, run int, seed int64) (RunResult, error) {
	solver, err := BuildSolver(inst, cfg.Algorithm, seed)
	if err != nil {
		return RunResult{}, err
	}
	if r.Progress != nil {
		name, n := cfg.Name, run
		type progressable interface{ OnProgress(opt.ProgressFunc) }
		if p, ok := solver.(progressable); ok {
			p.OnProgress(func(s opt.Sample) { r.Progress(name, n, s) })
		}
	}
	res, err := solver.Solve(ctx)
	if err != nil {
		return RunResult{}, err
	}
	metrics.ObserveSolverRun(cfg.Algorithm.Name, res.Duration, res.BestCost)
	return RunResult{
		Run:      run,
		Seed:     seed,
		BestCost: res.BestCost,
		BestTour: res.BestTour,
		History:  res.History,
		Duration: float64(res.Duration.Nanoseconds()) / 1e6,
	}, nil
}

func (r *Runner) resolve(p Problem) (*tsplib.Instance, error) {
	if p.Instance != "" {
		if r.Catalog == nil {
			return nil, fmt.Errorf("experiment: no catalog loaded, cannot resolve %q", p.Instance)
		}
		inst, ok := r.Catalog.Get(p.Instance)
		if !ok {
			return nil, fmt.Errorf("experiment: instance %q not in catalog", p.Instance)
		}
		return inst, nil
	}
	return tsplib.ParseFile(p.FilePath)
}
