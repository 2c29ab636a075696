package renderjob

import (
	"time"

	"github.com/Abraxas-365/hojavida/pkg/kernel"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// DefaultMaxAttempts bounds how often one regeneration is tried
const DefaultMaxAttempts = 3

// RenderJob is one out-of-band résumé regeneration
type RenderJob struct {
	ID             kernel.RenderJobID    `db:"id" json:"id"`
	Identification kernel.Identification `db:"identificacion" json:"identificacion"`
	Status         JobStatus             `db:"status" json:"status"`

	AttemptCount int `db:"attempt_count" json:"attempt_count"`
	MaxAttempts  int `db:"max_attempts" json:"max_attempts"`

	StorageKey string `db:"storage_key" json:"storage_key,omitempty"`
	AccessURL  string `db:"access_url" json:"access_url,omitempty"`

	ErrorMessage string         `db:"error_message" json:"error_message,omitempty"`
	ErrorDetails map[string]any `db:"-" json:"error_details,omitempty"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	FailedAt    *time.Time `db:"failed_at" json:"failed_at,omitempty"`
	NextRetryAt *time.Time `db:"next_retry_at" json:"next_retry_at,omitempty"`
}

// CanRetry reports whether another attempt is allowed after the current one
func (j *RenderJob) CanRetry() bool {
	return j.AttemptCount < j.MaxAttempts
}

// RetryDelay is base * 2^attempt
func (j *RenderJob) RetryDelay(base time.Duration) time.Duration {
	return time.Duration(1<<uint(j.AttemptCount)) * base
}

func (j *RenderJob) IsFinished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
