package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tsplab/internal/experiment"
	"tsplab/internal/metrics"
	"tsplab/internal/opt"
	"tsplab/internal/tsplib"
)

func main() {
	var (
		configPath = flag.String("config", "experiments.yaml", "experiment YAML file")
		dataDir    = flag.String("data", "data", "directory of .tsp instance files")
		optimaPath = flag.String("optima", "", "JSON file of known optimal costs")
		outPath    = flag.String("out", "summary.json", "results file, appended to")
		verbose    = flag.Bool("v", false, "log every improvement sample")
	)
	flag.Parse()

	metrics.RegisterDefault()

	configs, err := experiment.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	catalog, err := tsplib.LoadCatalog(*dataDir, *optimaPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	log.Printf("loaded %d configurations, %d instances", len(configs), catalog.Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &experiment.Runner{Catalog: catalog}
	if *verbose {
		runner.Progress = func(name string, run int, s opt.Sample) {
			log.Printf("%s run %d: t=%.0fms best=%.1f", name, run, s.ElapsedMs, s.BestCost)
		}
	}
	summaries := runner.RunAll(ctx, configs)
	for _, sum := range summaries {
		log.Printf("%s: runs=%d best=%.1f mean_err=%.4f", sum.ConfigName, sum.Runs, sum.BestCost, sum.MeanError)
	}

	coll := &experiment.Collector{Path: *outPath}
	if err := coll.Append(summaries); err != nil {
		log.Fatalf("write results: %v", err)
	}
	log.Printf("wrote %d summaries to %s", len(summaries), *outPath)
}
