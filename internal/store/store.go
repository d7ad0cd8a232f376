package store

import (
	"context"
	"errors"

	"tsplab/internal/experiment"
	"tsplab/internal/model"
)

// Store is the persistence interface used by the API server and the
// experiment worker.
type Store interface {
	// Experiment jobs
	CreateJob(ctx context.Context, configs []experiment.ExperimentConfig) (model.ExperimentJob, error)
	GetJob(ctx context.Context, id string) (model.ExperimentJob, error)
	ListJobs(ctx context.Context, status string, limit int) ([]model.ExperimentJob, error)
	// FetchDueJobs claims up to limit queued jobs, moving them to running.
	FetchDueJobs(ctx context.Context, limit int) ([]model.ExperimentJob, error)
	CompleteJob(ctx context.Context, id string, summaries []experiment.Summary) error
	FailJob(ctx context.Context, id string, errMsg string) error

	// Ad-hoc solve records
	SaveSolve(ctx context.Context, res model.SolveResponse) (string, error)
	GetSolve(ctx context.Context, id string) (model.SolveResponse, error)

	// Aggregated results across completed jobs
	ListSummaries(ctx context.Context, limit int) ([]experiment.Summary, error)

	Close() error
}

var ErrNotFound = errors.New("not found")
