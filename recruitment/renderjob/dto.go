package renderjob

import (
	"time"

	"github.com/Abraxas-365/hojavida/pkg/kernel"
)

// JobStatusResponse - Response for job status queries
type JobStatusResponse struct {
	JobID          kernel.RenderJobID    `json:"job_id"`
	Identification kernel.Identification `json:"identificacion"`
	Status         JobStatus             `json:"status"`
	Message        string                `json:"message"`
	PDFURL         string                `json:"pdf_url,omitempty"`
	StorageKey     string                `json:"pdf_gcs_path,omitempty"`
	Error          *JobError             `json:"error,omitempty"`

	AttemptCount int        `json:"attempt_count"`
	MaxAttempts  int        `json:"max_attempts"`
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
}

// JobError - Error details for failed jobs
type JobError struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

var statusMessages = map[JobStatus]string{
	JobStatusPending:    "Regeneración en cola",
	JobStatusProcessing: "Generando hoja de vida",
	JobStatusCompleted:  "Hoja de vida generada",
	JobStatusFailed:     "No se pudo generar la hoja de vida",
}

func NewJobStatusResponse(job *RenderJob) *JobStatusResponse {
	resp := &JobStatusResponse{
		JobID:          job.ID,
		Identification: job.Identification,
		Status:         job.Status,
		Message:        statusMessages[job.Status],
		PDFURL:         job.AccessURL,
		StorageKey:     job.StorageKey,
		AttemptCount:   job.AttemptCount,
		MaxAttempts:    job.MaxAttempts,
		NextRetryAt:    job.NextRetryAt,
		CreatedAt:      job.CreatedAt,
		StartedAt:      job.StartedAt,
		CompletedAt:    job.CompletedAt,
		FailedAt:       job.FailedAt,
	}
	if job.ErrorMessage != "" {
		resp.Error = &JobError{Message: job.ErrorMessage, Details: job.ErrorDetails}
	}
	return resp
}
