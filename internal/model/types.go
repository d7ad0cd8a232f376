package model

import (
	"tsplab/internal/experiment"
	"tsplab/internal/opt"
)

// InstanceIn is an inline problem definition for ad-hoc solve requests:
// either node coordinates with a weight type, or an explicit weight matrix.
type InstanceIn struct {
	Name             string       `json:"name,omitempty"`
	EdgeWeightType   string       `json:"edgeWeightType,omitempty"`
	EdgeWeightFormat string       `json:"edgeWeightFormat,omitempty"`
	Coords           [][2]float64 `json:"coords,omitempty"`
	Weights          []int        `json:"weights,omitempty"`
	Dimension        int          `json:"dimension,omitempty"`
}

// SolveRequest runs one algorithm once against a catalog instance or an
// inline one.
type SolveRequest struct {
	Instance  string               `json:"instance,omitempty"`
	Inline    *InstanceIn          `json:"inline,omitempty"`
	Seed      int64                `json:"seed,omitempty"`
	Algorithm experiment.Algorithm `json:"algorithm"`
}

// SolveResponse reports the outcome of a single solve.
type SolveResponse struct {
	Instance   string      `json:"instance"`
	Algorithm  string      `json:"algorithm"`
	Seed       int64       `json:"seed"`
	BestCost   float64     `json:"bestCost"`
	BestTour   []int       `json:"bestTour"`
	History    opt.History `json:"history"`
	DurationMs float64     `json:"durationMs"`
}

// InstanceOut is a catalog listing entry.
type InstanceOut struct {
	Name           string   `json:"name"`
	Dimension      int      `json:"dimension"`
	EdgeWeightType string   `json:"edgeWeightType"`
	Comment        string   `json:"comment,omitempty"`
	Optimal        *float64 `json:"optimal,omitempty"`
}

// ExperimentRequest queues a batch of configurations for the worker.
type ExperimentRequest struct {
	Configs []experiment.ExperimentConfig `json:"configs"`
}

// Experiment job states
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// ExperimentJob is a queued experiment batch and its lifecycle state.
type ExperimentJob struct {
	ID         string                        `json:"id"`
	Status     string                        `json:"status"`
	Configs    []experiment.ExperimentConfig `json:"configs"`
	Summaries  []experiment.Summary          `json:"summaries,omitempty"`
	Error      string                        `json:"error,omitempty"`
	CreatedAt  string                        `json:"createdAt"`
	StartedAt  string                        `json:"startedAt,omitempty"`
	FinishedAt string                        `json:"finishedAt,omitempty"`
}

// ProgressEvent is published while an experiment job is in flight.
type ProgressEvent struct {
	JobID      string  `json:"jobId"`
	ConfigName string  `json:"configName"`
	Run        int     `json:"run"`
	ElapsedMs  float64 `json:"elapsedMs"`
	BestCost   float64 `json:"bestCost"`
}
