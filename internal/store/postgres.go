package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tsplab/internal/experiment"
	"tsplab/internal/model"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	p := &Postgres{db: db}
	if err := p.migrate(context.Background()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS experiment_jobs (
    id          uuid PRIMARY KEY,
    status      text NOT NULL,
    configs     jsonb NOT NULL,
    summaries   jsonb,
    error       text,
    created_at  timestamptz NOT NULL DEFAULT now(),
    started_at  timestamptz,
    finished_at timestamptz
);
CREATE INDEX IF NOT EXISTS experiment_jobs_status_idx ON experiment_jobs (status, created_at);
CREATE TABLE IF NOT EXISTS solves (
    id         uuid PRIMARY KEY,
    instance   text NOT NULL,
    algorithm  text NOT NULL,
    seed       bigint NOT NULL,
    best_cost  double precision NOT NULL,
    result     jsonb NOT NULL,
    created_at timestamptz NOT NULL DEFAULT now()
);`)
	return err
}

func (p *Postgres) CreateJob(ctx context.Context, configs []experiment.ExperimentConfig) (model.ExperimentJob, error) {
	job := model.ExperimentJob{
		ID:        uuid.New().String(),
		Status:    model.JobQueued,
		Configs:   configs,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	raw, err := json.Marshal(configs)
	if err != nil {
		return model.ExperimentJob{}, err
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO experiment_jobs (id, status, configs) VALUES ($1,$2,$3)`, job.ID, job.Status, raw)
	if err != nil {
		return model.ExperimentJob{}, err
	}
	return job, nil
}

func (p *Postgres) GetJob(ctx context.Context, id string) (model.ExperimentJob, error) {
	row := p.db.QueryRowContext(ctx, `SELECT id::text, status, configs, summaries, error, created_at, started_at, finished_at FROM experiment_jobs WHERE id=$1`, id)
	return scanJob(row)
}

func (p *Postgres) ListJobs(ctx context.Context, status string, limit int) ([]model.ExperimentJob, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = p.db.QueryContext(ctx, `SELECT id::text, status, configs, summaries, error, created_at, started_at, finished_at FROM experiment_jobs WHERE status=$1 ORDER BY created_at LIMIT $2`, status, limit)
	} else {
		rows, err = p.db.QueryContext(ctx, `SELECT id::text, status, configs, summaries, error, created_at, started_at, finished_at FROM experiment_jobs ORDER BY created_at LIMIT $1`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ExperimentJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// FetchDueJobs claims queued jobs with SKIP LOCKED so concurrent workers
// never run the same job twice.
func (p *Postgres) FetchDueJobs(ctx context.Context, limit int) ([]model.ExperimentJob, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := p.db.QueryContext(ctx, `
UPDATE experiment_jobs SET status='running', started_at=now()
WHERE id IN (
    SELECT id FROM experiment_jobs WHERE status='queued'
    ORDER BY created_at LIMIT $1 FOR UPDATE SKIP LOCKED
)
RETURNING id::text, status, configs, summaries, error, created_at, started_at, finished_at`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ExperimentJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (p *Postgres) CompleteJob(ctx context.Context, id string, summaries []experiment.Summary) error {
	raw, err := json.Marshal(summaries)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, `UPDATE experiment_jobs SET status='completed', summaries=$2, finished_at=now() WHERE id=$1`, id, raw)
	if err != nil {
		return err
	}
	return oneRow(res)
}

func (p *Postgres) FailJob(ctx context.Context, id string, errMsg string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE experiment_jobs SET status='failed', error=$2, finished_at=now() WHERE id=$1`, id, errMsg)
	if err != nil {
		return err
	}
	return oneRow(res)
}

func (p *Postgres) SaveSolve(ctx context.Context, res model.SolveResponse) (string, error) {
	id := uuid.New().String()
	raw, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO solves (id, instance, algorithm, seed, best_cost, result) VALUES ($1,$2,$3,$4,$5,$6)`,
		id, res.Instance, res.Algorithm, res.Seed, res.BestCost, raw)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) GetSolve(ctx context.Context, id string) (model.SolveResponse, error) {
	var raw []byte
	err := p.db.QueryRowContext(ctx, `SELECT result FROM solves WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SolveResponse{}, ErrNotFound
	}
	if err != nil {
		return model.SolveResponse{}, err
	}
	var res model.SolveResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return model.SolveResponse{}, err
	}
	return res, nil
}

func (p *Postgres) ListSummaries(ctx context.Context, limit int) ([]experiment.Summary, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `SELECT summaries FROM experiment_jobs WHERE status='completed' AND summaries IS NOT NULL ORDER BY finished_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []experiment.Summary{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var sums []experiment.Summary
		if err := json.Unmarshal(raw, &sums); err != nil {
			return nil, err
		}
		for _, s := range sums {
			out = append(out, s)
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error { return p.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (model.ExperimentJob, error) {
	var job model.ExperimentJob
	var configs, summaries []byte
	var errMsg sql.NullString
	var created time.Time
	var started, finished sql.NullTime
	if err := row.Scan(&job.ID, &job.Status, &configs, &summaries, &errMsg, &created, &started, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return job, ErrNotFound
		}
		return job, err
	}
	if err := json.Unmarshal(configs, &job.Configs); err != nil {
		return job, err
	}
	if len(summaries) > 0 {
		if err := json.Unmarshal(summaries, &job.Summaries); err != nil {
			return job, err
		}
	}
	job.Error = errMsg.String
	job.CreatedAt = created.UTC().Format(time.RFC3339)
	if started.Valid {
		job.StartedAt = started.Time.UTC().Format(time.RFC3339)
	}
	if finished.Valid {
		job.FinishedAt = finished.Time.UTC().Format(time.RFC3339)
	}
	return job, nil
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
