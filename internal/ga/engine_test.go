package ga

import (
	"context"
	"errors"
	"testing"
	"time"

	"tsplab/internal/opt"
	"tsplab/internal/tsplib"
)

func testInstance(t *testing.T) *tsplib.Instance {
	t.Helper()
	coords := [][2]float64{
		{0, 0}, {10, 0}, {20, 5}, {15, 15}, {5, 20},
		{-5, 15}, {-10, 5}, {0, 10}, {8, 8}, {12, 3},
	}
	in, err := tsplib.FromCoords(tsplib.WeightEuc2D, coords)
	if err != nil {
		t.Fatal(err)
	}
	return in
}

func testConfig(seed int64) Config {
	return Config{
		PopulationSize:  20,
		CrossoverRate:   0.9,
		MutationRate:    0.2,
		MaxTime:         time.Minute,
		MaxGenerations:  40,
		StagnationLimit: time.Minute,
		Seed:            seed,
		Selection:       SelectionConfig{Name: "tournament", Rate: 0.2},
		Crossover:       CrossoverConfig{Name: "ox"},
		Mutation:        MutationConfig{Name: "swap"},
		Succession:      SuccessionConfig{Name: "elitist", EliteRate: 0.1},
	}
}

func TestEngineDeterministicWithEqualSeeds(t *testing.T) {
	in := testInstance(t)
	run := func() opt.Result {
		e, err := New(in, testConfig(42))
		if err != nil {
			t.Fatal(err)
		}
		res, err := e.Solve(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	a, b := run(), run()
	if a.BestCost != b.BestCost {
		t.Fatalf("costs differ: %v vs %v", a.BestCost, b.BestCost)
	}
	if len(a.BestTour) != len(b.BestTour) {
		t.Fatalf("tour lengths differ")
	}
	for i := range a.BestTour {
		if a.BestTour[i] != b.BestTour[i] {
			t.Fatalf("tours differ at %d: %v vs %v", i, a.BestTour, b.BestTour)
		}
	}
	if len(a.History) != len(b.History) {
		t.Fatalf("history lengths differ: %d vs %d", len(a.History), len(b.History))
	}
	for i := range a.History {
		if a.History[i].BestCost != b.History[i].BestCost {
			t.Fatalf("history costs differ at %d", i)
		}
	}
}

func TestEngineHistoryNonIncreasing(t *testing.T) {
	in := testInstance(t)
	e, err := New(in, testConfig(7))
	if err != nil {
		t.Fatal(err)
	}
	var samples []opt.Sample
	e.OnProgress(func(s opt.Sample) { samples = append(samples, s) })
	res, err := e.Solve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.History) == 0 {
		t.Fatal("empty history")
	}
	for i := 1; i < len(res.History); i++ {
		if res.History[i].BestCost > res.History[i-1].BestCost {
			t.Fatalf("best cost increased at %d", i)
		}
		if res.History[i].ElapsedMs < res.History[i-1].ElapsedMs {
			t.Fatalf("elapsed time went backwards at %d", i)
		}
	}
	if len(samples) != len(res.History) {
		t.Fatalf("progress got %d samples, history has %d", len(samples), len(res.History))
	}
	if best, ok := res.History.Best(); !ok || best != res.BestCost {
		t.Fatalf("history best %v, result best %v", best, res.BestCost)
	}
}

func TestEngineBestTourIsPermutation(t *testing.T) {
	in := testInstance(t)
	e, err := New(in, testConfig(3))
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Solve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	isPermutation(t, res.BestTour, in.Dimension)
	if got := in.Evaluate(res.BestTour); got != res.BestCost {
		t.Fatalf("reported cost %v, recomputed %v", res.BestCost, got)
	}
}

func TestEngineSingleUse(t *testing.T) {
	in := testInstance(t)
	e, err := New(in, testConfig(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Solve(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Solve(context.Background()); !errors.Is(err, opt.ErrAlreadyRun) {
		t.Fatalf("second Solve: got %v, want ErrAlreadyRun", err)
	}
}

func TestEngineContextCancel(t *testing.T) {
	in := testInstance(t)
	cfg := testConfig(1)
	cfg.MaxGenerations = 0
	e, err := New(in, cfg)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := e.Solve(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	// Partial result still reports the initial best.
	if len(res.BestTour) != in.Dimension {
		t.Fatalf("partial result missing tour")
	}
}

func TestEngineConfigValidation(t *testing.T) {
	in := testInstance(t)
	bad := []func(*Config){
		func(c *Config) { c.PopulationSize = 1 },
		func(c *Config) { c.CrossoverRate = 1.5 },
		func(c *Config) { c.MutationRate = -0.1 },
		func(c *Config) { c.MaxTime = 0 },
		func(c *Config) { c.Selection.Name = "nope" },
		func(c *Config) { c.Succession.EliteRate = 0 },
	}
	for i, mutate := range bad {
		cfg := testConfig(1)
		mutate(&cfg)
		if _, err := New(in, cfg); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
