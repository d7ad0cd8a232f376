package experiment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiments.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExplicitExperiments(t *testing.T) {
	doc := `
experiments:
  - name: berlin_ga
    runs: 3
    seed_base: 100
    problem:
      instance: berlin52
    algorithm:
      name: ga
      population_size: 50
      crossover_rate: 0.9
      mutation_rate: 0.1
      max_time: 2
      selection_config: {name: tournament, rate: 0.2}
      crossover_config: {name: ox}
      mutation_config: {name: swap}
      succession_config: {name: elitist, elite_rate: 0.1}
  - name: berlin_acs
    runs: 2
    seed_base: 7
    problem:
      instance: berlin52
    algorithm:
      name: acs
      num_ants: 10
      alpha: 1
      beta: 2
      rho: 0.1
      phi: 0.1
      q0: 0.9
      max_time: 2
`
	configs, err := Load(writeConfig(t, doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(configs) != 2 {
		t.Fatalf("got %d configs, want 2", len(configs))
	}
	ga := configs[0]
	if ga.Name != "berlin_ga" || ga.Runs != 3 || ga.SeedBase != 100 {
		t.Fatalf("bad ga config: %+v", ga)
	}
	if ga.Algorithm.Selection.Name != "tournament" || ga.Algorithm.Selection.Rate != 0.2 {
		t.Fatalf("bad selection: %+v", ga.Algorithm.Selection)
	}
	gaCfg := ga.Algorithm.GAConfig(101)
	if gaCfg.MaxTime != 2*time.Second || gaCfg.Seed != 101 {
		t.Fatalf("bad ga engine config: %+v", gaCfg)
	}
	acsCfg := configs[1].Algorithm.ACSConfig(8)
	if acsCfg.NumAnts != 10 || acsCfg.Q0 != 0.9 {
		t.Fatalf("bad acs engine config: %+v", acsCfg)
	}
}

func TestLoadSweepExpansion(t *testing.T) {
	doc := `
sweep:
  - runs: 2
    seed_base: 10
    problem:
      instance: berlin52
    algorithm:
      name: ga
      population_size: [50, 100]
      crossover_rate: [0.8, 0.9]
      mutation_rate: 0.1
      max_time: 2
      selection_config:
        - {name: tournament, rate: [0.1, 0.2]}
        - {name: rank}
      crossover_config: [{name: ox}, {name: pmx}]
      mutation_config: {name: swap}
      succession_config: {name: elitist, elite_rate: 0.1}
`
	configs, err := Load(writeConfig(t, doc))
	if err != nil {
		t.Fatal(err)
	}
	// 2 pops × 2 cx rates × 3 selections (tournament×2 rates + rank) × 2
	// crossovers = 24 combinations.
	if len(configs) != 24 {
		t.Fatalf("got %d configs, want 24", len(configs))
	}
	names := map[string]bool{}
	for _, cfg := range configs {
		if cfg.Name == "" {
			t.Fatal("expanded config has no name")
		}
		if names[cfg.Name] {
			t.Fatalf("duplicate generated name %q", cfg.Name)
		}
		names[cfg.Name] = true
		if cfg.Runs != 2 || cfg.SeedBase != 10 {
			t.Fatalf("sweep fields not propagated: %+v", cfg)
		}
		if strings.Contains(cfg.Name, ".") {
			t.Fatalf("name %q contains a dot", cfg.Name)
		}
	}
}

func TestSweepDeduplicates(t *testing.T) {
	doc := `
sweep:
  - runs: 1
    seed_base: 1
    problem:
      instance: x
    algorithm:
      name: acs
      num_ants: [10, 10]
      max_time: 1
`
	configs, err := Load(writeConfig(t, doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(configs) != 1 {
		t.Fatalf("got %d configs, want 1 after dedupe", len(configs))
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty file": `{}`,
		"no name": `
experiments:
  - runs: 1
    problem: {instance: x}
    algorithm: {name: acs, num_ants: 5, max_time: 1}
`,
		"zero runs": `
experiments:
  - name: a
    runs: 0
    problem: {instance: x}
    algorithm: {name: acs, num_ants: 5, max_time: 1}
`,
		"no problem": `
experiments:
  - name: a
    runs: 1
    algorithm: {name: acs, num_ants: 5, max_time: 1}
`,
		"unknown algorithm": `
experiments:
  - name: a
    runs: 1
    problem: {instance: x}
    algorithm: {name: tabu, max_time: 1}
`,
		"ga missing operators": `
experiments:
  - name: a
    runs: 1
    problem: {instance: x}
    algorithm: {name: ga, population_size: 10, max_time: 1}
`,
	}
	for name, doc := range cases {
		if _, err := Load(writeConfig(t, doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestConfigName(t *testing.T) {
	cfg := ExperimentConfig{
		Problem: Problem{Instance: "berlin52"},
		Algorithm: Algorithm{
			Name: "acs", NumAnts: 10, MaxTime: 2.5,
			Alpha: 1, Beta: 2, Rho: 0.1, Phi: 0.1, Q0: 0.9,
		},
	}
	name := configName(cfg)
	if !strings.HasPrefix(name, "tsp_berlin52_acs_ants_10_time_2_5") {
		t.Fatalf("unexpected name %q", name)
	}
	if strings.Contains(name, ".") {
		t.Fatalf("name %q contains a dot", name)
	}
}

func TestStats(t *testing.T) {
	opt := 100.0
	costs := []float64{150, 250, 100}
	if got := MeanRelativeError(costs, &opt); got-2.0/3 > 1e-12 || 2.0/3-got > 1e-12 {
		t.Fatalf("mean error = %v, want 2/3", got)
	}
	if got := MeanRelativeError(costs, nil); got != 0 {
		t.Fatalf("mean error without optimum = %v, want 0", got)
	}
	if got := BestCost(costs); got != 100 {
		t.Fatalf("best = %v, want 100", got)
	}
	if got := BestCost(nil); got != 0 {
		t.Fatalf("best of empty = %v, want 0", got)
	}
}
