// Package jobs runs queued experiment batches in the background.
package jobs

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"tsplab/internal/experiment"
	"tsplab/internal/model"
	"tsplab/internal/opt"
	"tsplab/internal/store"
	"tsplab/internal/tsplib"
)

type Worker struct {
	Store    store.Store
	Catalog  *tsplib.Catalog
	Stop     chan struct{}
	Interval time.Duration
	FetchN   int
	// Publish, when set, receives live progress and lifecycle events.
	Publish func(jobID, evtType string, data map[string]any)
}

func NewWorker(s store.Store, catalog *tsplib.Catalog) *Worker {
	n := 2
	if v := os.Getenv("JOB_FETCH_LIMIT"); v != "" {
		if x, err := strconv.Atoi(v); err == nil && x > 0 {
			n = x
		}
	}
	return &Worker{Store: s, Catalog: catalog, Stop: make(chan struct{}), Interval: time.Second, FetchN: n}
}

func (w *Worker) Start() {
	go func() {
		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.Stop:
				return
			case <-ticker.C:
				w.processOnce()
			}
		}
	}()
}

func (w *Worker) processOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	jobs, err := w.Store.FetchDueJobs(ctx, w.FetchN)
	cancel()
	if err != nil {
		log.Printf("jobs: fetch failed: %v", err)
		return
	}
	for _, job := range jobs {
		w.runJob(job)
	}
}

// runJob executes one claimed job to completion. Solver runs own their
// time budgets, so the job context is not bounded here.
func (w *Worker) runJob(job model.ExperimentJob) {
	ctx := context.Background()
	runner := &experiment.Runner{
		Catalog: w.Catalog,
		Progress: func(configName string, run int, s opt.Sample) {
			w.publish(job.ID, "experiment.progress", map[string]any{
				"jobId":      job.ID,
				"configName": configName,
				"run":        run,
				"elapsedMs":  s.ElapsedMs,
				"bestCost":   s.BestCost,
			})
		},
	}
	summaries := runner.RunAll(ctx, job.Configs)
	if len(summaries) == 0 && len(job.Configs) > 0 {
		msg := "all configurations failed"
		if err := w.Store.FailJob(ctx, job.ID, msg); err != nil {
			log.Printf("jobs: fail %s: %v", job.ID, err)
		}
		w.publish(job.ID, "experiment.failed", map[string]any{"jobId": job.ID, "error": msg})
		return
	}
	if err := w.Store.CompleteJob(ctx, job.ID, summaries); err != nil {
		log.Printf("jobs: complete %s: %v", job.ID, err)
		return
	}
	w.publish(job.ID, "experiment.completed", map[string]any{"jobId": job.ID, "summaries": len(summaries)})
}

func (w *Worker) publish(jobID, evtType string, data map[string]any) {
	if w.Publish != nil {
		w.Publish(jobID, evtType, data)
	}
}
