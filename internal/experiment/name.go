package experiment

import (
	"fmt"
	"path/filepath"
	"strings"
)

// configName derives a stable, filesystem-safe name for a generated
// configuration from its instance and parameters. Dots become underscores so
// the name can serve as a file stem or metric label.
func configName(cfg ExperimentConfig) string {
	inst := cfg.Problem.Instance
	if inst == "" {
		inst = strings.TrimSuffix(filepath.Base(cfg.Problem.FilePath), ".tsp")
	}
	a := cfg.Algorithm
	var parts []string
	switch a.Name {
	case "ga":
		parts = []string{
			"tsp", inst, "ga",
			"pop", num(a.PopulationSize),
			"time", num(a.MaxTime),
			"sel", a.Selection.Name, num(a.Selection.Rate),
			"cx", a.Crossover.Name, num(a.CrossoverRate),
			"mut", a.Mutation.Name, num(a.MutationRate),
			"succ", a.Succession.Name, num(a.Succession.EliteRate),
		}
	case "acs":
		parts = []string{
			"tsp", inst, "acs",
			"ants", num(a.NumAnts),
			"time", num(a.MaxTime),
			"alpha", num(a.Alpha),
			"beta", num(a.Beta),
			"rho", num(a.Rho),
			"phi", num(a.Phi),
			"q0", num(a.Q0),
		}
	default:
		parts = []string{"tsp", inst, a.Name}
	}
	return strings.Join(parts, "_")
}

func num(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%v", v), ".", "_")
}
