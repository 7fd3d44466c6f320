package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// JobRepo implements ports.JobRepository.
type JobRepo struct {
	db *DB
}

func NewJobRepo(db *DB) *JobRepo {
	return &JobRepo{db: db}
}

func (r *JobRepo) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO jobs (id, zone, dest, status, input, created_at, updated_at)
		VALUES ($1::text::uuid, $2, $3, $4, $5, $6, $7)
	`, job.ID, job.Zone, job.Dest, string(job.Status), []byte(job.Input), job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// parseJobID turns an external job ID into the primary key. IDs that are not
// UUIDs cannot exist, so they report domain.ErrNotFound.
func parseJobID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrNotFound
	}
	return uid, nil
}

func (r *JobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	uid, err := parseJobID(id)
	if err != nil {
		return nil, err
	}
	var (
		job           domain.Job
		status        string
		input, output []byte
		errMsg        *string
	)
	err = r.db.Pool.QueryRow(ctx, `
		SELECT id::text, zone, dest, status, input, output, pairs, error, created_at, updated_at
		FROM jobs
		WHERE id = $1
	`, uid).Scan(&job.ID, &job.Zone, &job.Dest, &status, &input, &output,
		&job.Pairs, &errMsg, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	job.Status = domain.JobStatus(status)
	job.Input = json.RawMessage(input)
	if output != nil {
		job.Output = json.RawMessage(output)
	}
	if errMsg != nil {
		job.Error = *errMsg
	}
	return &job, nil
}

func (r *JobRepo) MarkRunning(ctx context.Context, id string) error {
	return r.setStatus(ctx, `
		UPDATE jobs SET status = 'running', updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'running')
	`, id)
}

func (r *JobRepo) Complete(ctx context.Context, id string, output json.RawMessage, pairs int) error {
	return r.setStatus(ctx, `
		UPDATE jobs SET status = 'succeeded', output = $2, pairs = $3, error = NULL, updated_at = now()
		WHERE id = $1
	`, id, []byte(output), pairs)
}

func (r *JobRepo) Fail(ctx context.Context, id string, reason string) error {
	return r.setStatus(ctx, `
		UPDATE jobs SET status = 'failed', error = $2, updated_at = now()
		WHERE id = $1 AND status <> 'succeeded'
	`, id, nilIfEmpty(reason))
}

// setStatus runs an update whose first argument is the job ID.
func (r *JobRepo) setStatus(ctx context.Context, sql string, id string, args ...any) error {
	uid, err := parseJobID(id)
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, sql, append([]any{uid}, args...)...)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
