package experiment

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"tsplab/internal/ga"
)

// Floats decodes a YAML scalar or list of floats into a slice, so sweep
// fields accept `rho: 0.1` and `rho: [0.1, 0.2]` alike.
type Floats []float64

func (f *Floats) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var vals []float64
		if err := value.Decode(&vals); err != nil {
			return err
		}
		*f = vals
		return nil
	}
	var v float64
	if err := value.Decode(&v); err != nil {
		return err
	}
	*f = Floats{v}
	return nil
}

// Ints is the integer counterpart of Floats.
type Ints []int

func (i *Ints) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var vals []int
		if err := value.Decode(&vals); err != nil {
			return err
		}
		*i = vals
		return nil
	}
	var v int
	if err := value.Decode(&v); err != nil {
		return err
	}
	*i = Ints{v}
	return nil
}

// OperatorSweep is one operator variant in a sweep, with every tunable field
// allowed to be a list.
type OperatorSweep struct {
	Name            string `yaml:"name"`
	Rate            Floats `yaml:"rate"`
	Epsilon         Floats `yaml:"epsilon"`
	EliteRate       Floats `yaml:"elite_rate"`
	ReplacementRate Floats `yaml:"replacement_rate"`
}

// OperatorSweeps decodes either a single operator mapping or a list of them.
type OperatorSweeps []OperatorSweep

func (o *OperatorSweeps) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var vals []OperatorSweep
		if err := value.Decode(&vals); err != nil {
			return err
		}
		*o = vals
		return nil
	}
	var v OperatorSweep
	if err := value.Decode(&v); err != nil {
		return err
	}
	*o = OperatorSweeps{v}
	return nil
}

// SweepAlgorithm mirrors Algorithm with list-valued fields.
type SweepAlgorithm struct {
	Name            string `yaml:"name"`
	MaxTime         Floats `yaml:"max_time"`
	StagnationLimit Floats `yaml:"stagnation_limit"`

	PopulationSize Ints           `yaml:"population_size"`
	CrossoverRate  Floats         `yaml:"crossover_rate"`
	MutationRate   Floats         `yaml:"mutation_rate"`
	Selection      OperatorSweeps `yaml:"selection_config"`
	Crossover      OperatorSweeps `yaml:"crossover_config"`
	Mutation       OperatorSweeps `yaml:"mutation_config"`
	Succession     OperatorSweeps `yaml:"succession_config"`

	NumAnts Ints   `yaml:"num_ants"`
	Alpha   Floats `yaml:"alpha"`
	Beta    Floats `yaml:"beta"`
	Rho     Floats `yaml:"rho"`
	Phi     Floats `yaml:"phi"`
	Q0      Floats `yaml:"q0"`
}

// Sweep is a Cartesian parameter grid over one algorithm. Expansion
// produces one ExperimentConfig per combination, named from its
// parameters, with duplicates removed.
type Sweep struct {
	Runs      int            `yaml:"runs"`
	SeedBase  int64          `yaml:"seed_base"`
	Problem   Problem        `yaml:"problem"`
	Algorithm SweepAlgorithm `yaml:"algorithm"`
}

func (s Sweep) expand() ([]ExperimentConfig, error) {
	algs, err := s.Algorithm.combinations()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(algs))
	configs := make([]ExperimentConfig, 0, len(algs))
	for _, alg := range algs {
		cfg := ExperimentConfig{
			Runs:      s.Runs,
			SeedBase:  s.SeedBase,
			Problem:   s.Problem,
			Algorithm: alg,
		}
		cfg.Name = configName(cfg)
		key, err := json.Marshal(cfg)
		if err != nil {
			return nil, err
		}
		if seen[string(key)] {
			continue
		}
		seen[string(key)] = true
		if err := ValidateConfig(cfg); err != nil {
			return nil, fmt.Errorf("expanded config %q: %w", cfg.Name, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (s SweepAlgorithm) combinations() ([]Algorithm, error) {
	switch s.Name {
	case "ga":
		return s.gaCombinations()
	case "acs":
		return s.acsCombinations()
	default:
		return nil, fmt.Errorf("unknown algorithm %q", s.Name)
	}
}

func (s SweepAlgorithm) gaCombinations() ([]Algorithm, error) {
	var out []Algorithm
	for _, pop := range orInts(s.PopulationSize, 100) {
		for _, cx := range orFloats(s.CrossoverRate, 0) {
			for _, mut := range orFloats(s.MutationRate, 0) {
				for _, mt := range orFloats(s.MaxTime, 0) {
					for _, st := range orFloats(s.StagnationLimit, 0) {
						for _, sel := range s.Selection.selections() {
							for _, cross := range s.Crossover.names() {
								for _, m := range s.Mutation.names() {
									for _, succ := range s.Succession.successions() {
										a := Algorithm{
											Name:            "ga",
											MaxTime:         mt,
											StagnationLimit: st,
											PopulationSize:  pop,
											CrossoverRate:   cx,
											MutationRate:    mut,
											Selection:       sel,
											Succession:      succ,
										}
										a.Crossover.Name = cross
										a.Mutation.Name = m
										out = append(out, a)
									}
								}
							}
						}
					}
				}
			}
		}
	}
	return out, nil
}

func (s SweepAlgorithm) acsCombinations() ([]Algorithm, error) {
	var out []Algorithm
	for _, ants := range orInts(s.NumAnts, 10) {
		for _, alpha := range orFloats(s.Alpha, 1) {
			for _, beta := range orFloats(s.Beta, 2) {
				for _, rho := range orFloats(s.Rho, 0.1) {
					for _, phi := range orFloats(s.Phi, 0.1) {
						for _, q0 := range orFloats(s.Q0, 0.9) {
							for _, mt := range orFloats(s.MaxTime, 0) {
								for _, st := range orFloats(s.StagnationLimit, 0) {
									out = append(out, Algorithm{
										Name:            "acs",
										MaxTime:         mt,
										StagnationLimit: st,
										NumAnts:         ants,
										Alpha:           alpha,
										Beta:            beta,
										Rho:             rho,
										Phi:             phi,
										Q0:              q0,
									})
								}
							}
						}
					}
				}
			}
		}
	}
	return out, nil
}

// selections expands each selection variant across its list-valued fields.
func (o OperatorSweeps) selections() []ga.SelectionConfig {
	if len(o) == 0 {
		return []ga.SelectionConfig{{}}
	}
	var out []ga.SelectionConfig
	for _, op := range o {
		for _, rate := range orFloats(op.Rate, 0) {
			for _, eps := range orFloats(op.Epsilon, 0) {
				out = append(out, ga.SelectionConfig{Name: op.Name, Rate: rate, Epsilon: eps})
			}
		}
	}
	return out
}

func (o OperatorSweeps) successions() []ga.SuccessionConfig {
	if len(o) == 0 {
		return []ga.SuccessionConfig{{}}
	}
	var out []ga.SuccessionConfig
	for _, op := range o {
		for _, er := range orFloats(op.EliteRate, 0) {
			for _, rr := range orFloats(op.ReplacementRate, 0) {
				out = append(out, ga.SuccessionConfig{Name: op.Name, EliteRate: er, ReplacementRate: rr})
			}
		}
	}
	return out
}

func (o OperatorSweeps) names() []string {
	if len(o) == 0 {
		return []string{""}
	}
	out := make([]string, len(o))
	for i, op := range o {
		out[i] = op.Name
	}
	return out
}

func orInts(vals Ints, def int) []int {
	if len(vals) == 0 {
		return []int{def}
	}
	return vals
}

func orFloats(vals Floats, def float64) []float64 {
	if len(vals) == 0 {
		return []float64{def}
	}
	return vals
}
