// Package experiment loads YAML experiment definitions, expands parameter
// sweeps into concrete configurations, runs them against cataloged TSP
// instances, and aggregates per-config statistics.
package experiment

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tsplab/internal/acs"
	"tsplab/internal/ga"
)

// Problem names the instance a configuration runs against: either a catalog
// entry or a direct .tsp file path.
type Problem struct {
	Instance string `yaml:"instance,omitempty" json:"instance,omitempty"`
	FilePath string `yaml:"file_path,omitempty" json:"filePath,omitempty"`
}

// Algorithm is one concrete, fully-scalar algorithm configuration. Name
// selects the engine ("ga" or "acs"); only the matching parameter block is
// consulted.
type Algorithm struct {
	Name string `yaml:"name" json:"name"`
	// MaxTime and StagnationLimit are seconds.
	MaxTime         float64 `yaml:"max_time" json:"maxTime"`
	StagnationLimit float64 `yaml:"stagnation_limit,omitempty" json:"stagnationLimit,omitempty"`

	// GA parameters.
	PopulationSize int                 `yaml:"population_size,omitempty" json:"populationSize,omitempty"`
	CrossoverRate  float64             `yaml:"crossover_rate,omitempty" json:"crossoverRate,omitempty"`
	MutationRate   float64             `yaml:"mutation_rate,omitempty" json:"mutationRate,omitempty"`
	MaxGenerations int                 `yaml:"max_generations,omitempty" json:"maxGenerations,omitempty"`
	Selection      ga.SelectionConfig  `yaml:"selection_config,omitempty" json:"selection,omitempty"`
	Crossover      ga.CrossoverConfig  `yaml:"crossover_config,omitempty" json:"crossover,omitempty"`
	Mutation       ga.MutationConfig   `yaml:"mutation_config,omitempty" json:"mutation,omitempty"`
	Succession     ga.SuccessionConfig `yaml:"succession_config,omitempty" json:"succession,omitempty"`

	// ACS parameters.
	NumAnts       int     `yaml:"num_ants,omitempty" json:"numAnts,omitempty"`
	Alpha         float64 `yaml:"alpha,omitempty" json:"alpha,omitempty"`
	Beta          float64 `yaml:"beta,omitempty" json:"beta,omitempty"`
	Rho           float64 `yaml:"rho,omitempty" json:"rho,omitempty"`
	Phi           float64 `yaml:"phi,omitempty" json:"phi,omitempty"`
	Q0            float64 `yaml:"q0,omitempty" json:"q0,omitempty"`
	MaxIterations int     `yaml:"max_iterations,omitempty" json:"maxIterations,omitempty"`
}

// GAConfig converts the scalar parameters into the GA engine config.
func (a Algorithm) GAConfig(seed int64) ga.Config {
	return ga.Config{
		PopulationSize:  a.PopulationSize,
		CrossoverRate:   a.CrossoverRate,
		MutationRate:    a.MutationRate,
		MaxGenerations:  a.MaxGenerations,
		MaxTime:         secondsToDuration(a.MaxTime),
		StagnationLimit: secondsToDuration(a.StagnationLimit),
		Seed:            seed,
		Selection:       a.Selection,
		Crossover:       a.Crossover,
		Mutation:        a.Mutation,
		Succession:      a.Succession,
	}
}

// ACSConfig converts the scalar parameters into the ACS engine config.
func (a Algorithm) ACSConfig(seed int64) acs.Config {
	return acs.Config{
		NumAnts:         a.NumAnts,
		Alpha:           a.Alpha,
		Beta:            a.Beta,
		Rho:             a.Rho,
		Phi:             a.Phi,
		Q0:              a.Q0,
		MaxIterations:   a.MaxIterations,
		MaxTime:         secondsToDuration(a.MaxTime),
		StagnationLimit: secondsToDuration(a.StagnationLimit),
		Seed:            seed,
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ExperimentConfig is one fully-expanded experiment: run it Runs times, run
// i seeded with SeedBase+i.
type ExperimentConfig struct {
	Name      string    `yaml:"name" json:"name"`
	Runs      int       `yaml:"runs" json:"runs"`
	SeedBase  int64     `yaml:"seed_base" json:"seedBase"`
	Problem   Problem   `yaml:"problem" json:"problem"`
	Algorithm Algorithm `yaml:"algorithm" json:"algorithm"`
}

// File is the top-level YAML document: explicit experiments, parameter
// sweeps, or both.
type File struct {
	Experiments []ExperimentConfig `yaml:"experiments"`
	Sweeps      []Sweep            `yaml:"sweep"`
}

// Load reads a YAML experiment file and returns every concrete
// configuration it defines, with sweeps expanded and all configs validated.
func Load(path string) ([]ExperimentConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("experiment: parsing %s: %w", path, err)
	}
	if len(f.Experiments) == 0 && len(f.Sweeps) == 0 {
		return nil, fmt.Errorf("experiment: %s defines neither experiments nor sweep", path)
	}

	configs := make([]ExperimentConfig, 0, len(f.Experiments))
	for i, cfg := range f.Experiments {
		if cfg.Name == "" {
			return nil, fmt.Errorf("experiment: experiments[%d] has no name", i)
		}
		if err := ValidateConfig(cfg); err != nil {
			return nil, fmt.Errorf("experiment %q: %w", cfg.Name, err)
		}
		configs = append(configs, cfg)
	}
	for i, sw := range f.Sweeps {
		expanded, err := sw.expand()
		if err != nil {
			return nil, fmt.Errorf("experiment: sweep[%d]: %w", i, err)
		}
		configs = append(configs, expanded...)
	}
	return configs, nil
}

// ValidateConfig checks a concrete configuration before it is queued or run.
func ValidateConfig(cfg ExperimentConfig) error {
	if cfg.Runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", cfg.Runs)
	}
	if cfg.Problem.Instance == "" && cfg.Problem.FilePath == "" {
		return fmt.Errorf("problem needs instance or file_path")
	}
	return ValidateAlgorithm(cfg.Algorithm)
}

// ValidateAlgorithm checks one algorithm block in isolation.
func ValidateAlgorithm(a Algorithm) error {
	if a.MaxTime <= 0 {
		return fmt.Errorf("max_time must be positive")
	}
	switch a.Name {
	case "ga":
		if a.PopulationSize < 2 {
			return fmt.Errorf("population_size must be >= 2")
		}
		for _, sec := range []struct{ field, name string }{
			{"selection_config", a.Selection.Name},
			{"crossover_config", a.Crossover.Name},
			{"mutation_config", a.Mutation.Name},
			{"succession_config", a.Succession.Name},
		} {
			if sec.name == "" {
				return fmt.Errorf("missing %s", sec.field)
			}
		}
	case "acs":
		if a.NumAnts < 1 {
			return fmt.Errorf("num_ants must be >= 1")
		}
	default:
		return fmt.Errorf("unknown algorithm %q", a.Name)
	}
	return nil
}
