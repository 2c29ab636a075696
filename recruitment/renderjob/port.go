package renderjob

import (
	"context"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/kernel"
	"github.com/Abraxas-365/hojavida/recruitment/applicant"
)

// Repository persists render job state
type Repository interface {
	Create(ctx context.Context, job *RenderJob) error
	GetByID(ctx context.Context, id kernel.RenderJobID) (*RenderJob, error)
	MarkAsProcessing(ctx context.Context, id kernel.RenderJobID) error
	MarkAsCompleted(ctx context.Context, id kernel.RenderJobID, storageKey, accessURL string) error
	MarkAsFailed(ctx context.Context, id kernel.RenderJobID, message string, details map[string]any) error
	ScheduleRetry(ctx context.Context, id kernel.RenderJobID, attempt int, nextRetry time.Time, message string, details map[string]any) error
}

// JobQueue moves job payloads between the API and the workers
type JobQueue interface {
	Enqueue(ctx context.Context, jobID kernel.RenderJobID, payload any) error
	Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error)
	EnqueueDelayed(ctx context.Context, jobID kernel.RenderJobID, payload any, delay time.Duration) error
	MoveDelayedToReady(ctx context.Context) (int, error)
	GetStats(ctx context.Context) (map[string]any, error)
}

// DocumentRenderer is the applicant side of a regeneration
type DocumentRenderer interface {
	GetByIdentification(ctx context.Context, identification string) (*applicant.LookupResponse, error)
	RegenerateDocument(ctx context.Context, identification kernel.Identification) (*applicant.DocumentResponse, error)
}
