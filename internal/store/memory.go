package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tsplab/internal/experiment"
	"tsplab/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu     sync.Mutex
	jobs   map[string]model.ExperimentJob // id -> job
	order  []string                       // job ids in creation order
	solves map[string]model.SolveResponse // id -> solve record
}

func NewMemory() *Memory {
	return &Memory{
		jobs:   map[string]model.ExperimentJob{},
		solves: map[string]model.SolveResponse{},
	}
}

func (m *Memory) CreateJob(ctx context.Context, configs []experiment.ExperimentConfig) (model.ExperimentJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := model.ExperimentJob{
		ID:        uuid.New().String(),
		Status:    model.JobQueued,
		Configs:   configs,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	m.jobs[job.ID] = job
	m.order = append(m.order, job.ID)
	return job, nil
}

func (m *Memory) GetJob(ctx context.Context, id string) (model.ExperimentJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return model.ExperimentJob{}, ErrNotFound
	}
	return job, nil
}

func (m *Memory) ListJobs(ctx context.Context, status string, limit int) ([]model.ExperimentJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	out := []model.ExperimentJob{}
	for _, id := range m.order {
		job := m.jobs[id]
		if status != "" && job.Status != status {
			continue
		}
		out = append(out, job)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) FetchDueJobs(ctx context.Context, limit int) ([]model.ExperimentJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 10
	}
	out := []model.ExperimentJob{}
	for _, id := range m.order {
		job := m.jobs[id]
		if job.Status != model.JobQueued {
			continue
		}
		job.Status = model.JobRunning
		job.StartedAt = time.Now().UTC().Format(time.RFC3339)
		m.jobs[id] = job
		out = append(out, job)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) CompleteJob(ctx context.Context, id string, summaries []experiment.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.Status = model.JobCompleted
	job.Summaries = summaries
	job.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	m.jobs[id] = job
	return nil
}

func (m *Memory) FailJob(ctx context.Context, id string, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.Status = model.JobFailed
	job.Error = errMsg
	job.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	m.jobs[id] = job
	return nil
}

func (m *Memory) SaveSolve(ctx context.Context, res model.SolveResponse) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.solves[id] = res
	return id, nil
}

func (m *Memory) GetSolve(ctx context.Context, id string) (model.SolveResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.solves[id]
	if !ok {
		return model.SolveResponse{}, ErrNotFound
	}
	return res, nil
}

func (m *Memory) ListSummaries(ctx context.Context, limit int) ([]experiment.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	out := []experiment.Summary{}
	for _, id := range m.order {
		job := m.jobs[id]
		if job.Status != model.JobCompleted {
			continue
		}
		for _, s := range job.Summaries {
			out = append(out, s)
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
