package renderjobinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/kernel"
	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/Abraxas-365/hojavida/recruitment/renderjob"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PostgresJobRepository struct {
	db *sqlx.DB
}

func NewPostgresJobRepository(db *sqlx.DB) renderjob.Repository {
	return &PostgresJobRepository{db: db}
}

// dbJob carries the nullable columns of render_jobs
type dbJob struct {
	ID             string         `db:"id"`
	Identification string         `db:"identificacion"`
	Status         string         `db:"status"`
	AttemptCount   int            `db:"attempt_count"`
	MaxAttempts    int            `db:"max_attempts"`
	StorageKey     sql.NullString `db:"storage_key"`
	AccessURL      sql.NullString `db:"access_url"`
	ErrorMessage   sql.NullString `db:"error_message"`
	ErrorDetails   []byte         `db:"error_details"`
	CreatedAt      time.Time      `db:"created_at"`
	StartedAt      *time.Time     `db:"started_at"`
	CompletedAt    *time.Time     `db:"completed_at"`
	FailedAt       *time.Time     `db:"failed_at"`
	NextRetryAt    *time.Time     `db:"next_retry_at"`
}

func (r *PostgresJobRepository) Create(ctx context.Context, job *renderjob.RenderJob) error {
	query := `
		INSERT INTO render_jobs (
			id, identificacion, status, attempt_count, max_attempts, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		job.ID.String(),
		job.Identification.String(),
		string(job.Status),
		job.AttemptCount,
		job.MaxAttempts,
		job.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("job already exists: %w", err)
		}
		return fmt.Errorf("create job: %w", err)
	}

	logx.Infof("Created render job: %s", job.ID)
	return nil
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id kernel.RenderJobID) (*renderjob.RenderJob, error) {
	query := `
		SELECT
			id, identificacion, status, attempt_count, max_attempts,
			storage_key, access_url, error_message, error_details,
			created_at, started_at, completed_at, failed_at, next_retry_at
		FROM render_jobs
		WHERE id = $1
	`

	var row dbJob
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, renderjob.ErrJobNotFound().WithDetail("job_id", id)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}

	return toDomainJob(&row)
}

// MarkAsProcessing only moves pending jobs, so a redelivered payload for a
// finished job is rejected
func (r *PostgresJobRepository) MarkAsProcessing(ctx context.Context, id kernel.RenderJobID) error {
	query := `
		UPDATE render_jobs
		SET status = $2, started_at = $3, next_retry_at = NULL
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		id.String(),
		string(renderjob.JobStatusProcessing),
		time.Now(),
		string(renderjob.JobStatusPending),
	)
	if err != nil {
		return fmt.Errorf("mark as processing: %w", err)
	}
	return expectOneRow(result, id, "job not found or not in pending status")
}

func (r *PostgresJobRepository) MarkAsCompleted(ctx context.Context, id kernel.RenderJobID, storageKey, accessURL string) error {
	query := `
		UPDATE render_jobs
		SET
			status = $2,
			storage_key = $3,
			access_url = $4,
			completed_at = $5,
			error_message = NULL,
			error_details = NULL,
			next_retry_at = NULL
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		id.String(),
		string(renderjob.JobStatusCompleted),
		storageKey,
		accessURL,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("mark as completed: %w", err)
	}
	return expectOneRow(result, id, "job not found")
}

func (r *PostgresJobRepository) MarkAsFailed(ctx context.Context, id kernel.RenderJobID, message string, details map[string]any) error {
	query := `
		UPDATE render_jobs
		SET
			status = $2,
			error_message = $3,
			error_details = $4,
			failed_at = $5,
			next_retry_at = NULL
		WHERE id = $1
	`

	detailsJSON, err := marshalDetails(details)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query,
		id.String(),
		string(renderjob.JobStatusFailed),
		message,
		detailsJSON,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("mark as failed: %w", err)
	}
	return expectOneRow(result, id, "job not found")
}

// ScheduleRetry puts the job back to pending with the attempt recorded
func (r *PostgresJobRepository) ScheduleRetry(ctx context.Context, id kernel.RenderJobID, attempt int, nextRetry time.Time, message string, details map[string]any) error {
	query := `
		UPDATE render_jobs
		SET
			status = $2,
			attempt_count = $3,
			next_retry_at = $4,
			error_message = $5,
			error_details = $6
		WHERE id = $1
	`

	detailsJSON, err := marshalDetails(details)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query,
		id.String(),
		string(renderjob.JobStatusPending),
		attempt,
		nextRetry,
		message,
		detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("schedule retry: %w", err)
	}
	return expectOneRow(result, id, "job not found")
}

// ============================================================================
// Helpers
// ============================================================================

func expectOneRow(result sql.Result, id kernel.RenderJobID, msg string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %s", msg, id)
	}
	return nil
}

func marshalDetails(details map[string]any) (any, error) {
	if len(details) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("marshal error details: %w", err)
	}
	return string(data), nil
}

func toDomainJob(row *dbJob) (*renderjob.RenderJob, error) {
	job := &renderjob.RenderJob{
		ID:             kernel.NewRenderJobID(row.ID),
		Identification: kernel.Identification(row.Identification),
		Status:         renderjob.JobStatus(row.Status),
		AttemptCount:   row.AttemptCount,
		MaxAttempts:    row.MaxAttempts,
		StorageKey:     row.StorageKey.String,
		AccessURL:      row.AccessURL.String,
		ErrorMessage:   row.ErrorMessage.String,
		CreatedAt:      row.CreatedAt,
		StartedAt:      row.StartedAt,
		CompletedAt:    row.CompletedAt,
		FailedAt:       row.FailedAt,
		NextRetryAt:    row.NextRetryAt,
	}

	if len(row.ErrorDetails) > 0 {
		if err := json.Unmarshal(row.ErrorDetails, &job.ErrorDetails); err != nil {
			return nil, fmt.Errorf("unmarshal error details: %w", err)
		}
	}
	return job, nil
}
