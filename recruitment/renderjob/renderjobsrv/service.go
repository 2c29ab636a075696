package renderjobsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/errx"
	"github.com/Abraxas-365/hojavida/pkg/kernel"
	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/Abraxas-365/hojavida/recruitment/renderjob"
	"github.com/google/uuid"
)

// Config tunes retries
type Config struct {
	MaxAttempts int
	RetryBase   time.Duration
}

type Service struct {
	jobRepo  renderjob.Repository
	queue    renderjob.JobQueue
	renderer renderjob.DocumentRenderer
	cfg      Config
	now      func() time.Time
}

func NewService(jobRepo renderjob.Repository, queue renderjob.JobQueue, renderer renderjob.DocumentRenderer, cfg Config) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = renderjob.DefaultMaxAttempts
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Minute
	}
	return &Service{
		jobRepo:  jobRepo,
		queue:    queue,
		renderer: renderer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Enqueue queues a regeneration of the applicant's résumé
func (s *Service) Enqueue(ctx context.Context, identification string) (*renderjob.JobStatusResponse, error) {
	id := kernel.Identification(identification).Normalize()
	if !id.IsValid() || !id.IsPathSafe() {
		return nil, renderjob.ErrInvalidIdentification().WithDetail("identificacion", identification)
	}

	lookup, err := s.renderer.GetByIdentification(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if !lookup.Exists {
		return nil, renderjob.ErrApplicantNotFound().WithDetail("identificacion", id)
	}

	job := &renderjob.RenderJob{
		ID:             kernel.NewRenderJobID(uuid.NewString()),
		Identification: id,
		Status:         renderjob.JobStatusPending,
		MaxAttempts:    s.cfg.MaxAttempts,
		CreatedAt:      s.now(),
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, renderjob.ErrJobCreationFailed(err).WithDetail("identificacion", id)
	}

	if err := s.queue.Enqueue(ctx, job.ID, job); err != nil {
		_ = s.jobRepo.MarkAsFailed(ctx, job.ID, "failed to enqueue", map[string]any{
			"error": err.Error(),
		})
		return nil, renderjob.ErrQueueEnqueueFailed(err).WithDetail("job_id", job.ID)
	}

	logx.Infof("Render job queued: JobID=%s, Identificacion=%s", job.ID, id)
	return renderjob.NewJobStatusResponse(job), nil
}

func (s *Service) GetStatus(ctx context.Context, jobID string) (*renderjob.JobStatusResponse, error) {
	if jobID == "" {
		return nil, renderjob.ErrJobNotFound()
	}
	job, err := s.jobRepo.GetByID(ctx, kernel.NewRenderJobID(jobID))
	if err != nil {
		return nil, err
	}
	return renderjob.NewJobStatusResponse(job), nil
}

// QueueStats reports ready and delayed job counts
func (s *Service) QueueStats(ctx context.Context) (map[string]any, error) {
	return s.queue.GetStats(ctx)
}

// ProcessJob runs one attempt of a queued job
func (s *Service) ProcessJob(ctx context.Context, job *renderjob.RenderJob) error {
	logx.Infof("Processing render job: JobID=%s, Attempt=%d/%d", job.ID, job.AttemptCount+1, job.MaxAttempts)

	if err := s.jobRepo.MarkAsProcessing(ctx, job.ID); err != nil {
		return renderjob.ErrJobUpdateFailed(err).
			WithDetail("job_id", job.ID).
			WithDetail("status", renderjob.JobStatusProcessing)
	}

	doc, err := s.renderer.RegenerateDocument(ctx, job.Identification)
	if err != nil {
		return s.handleJobError(ctx, job, err)
	}

	if err := s.jobRepo.MarkAsCompleted(ctx, job.ID, doc.StorageKey, doc.AccessURL); err != nil {
		// the résumé is already stored on the applicant
		logx.Errorf("Failed to mark render job %s as completed: %v", job.ID, err)
	}

	logx.Infof("Render job completed: JobID=%s, Key=%s", job.ID, doc.StorageKey)
	return nil
}

// handleJobError reschedules with exponential backoff or marks the job failed
func (s *Service) handleJobError(ctx context.Context, job *renderjob.RenderJob, cause error) error {
	// bookkeeping must outlive a worker shutdown
	ctx = context.WithoutCancel(ctx)
	job.AttemptCount++

	details := map[string]any{
		"error":          cause.Error(),
		"attempt":        job.AttemptCount,
		"max_attempts":   job.MaxAttempts,
		"identificacion": job.Identification,
	}
	if e, ok := errx.As(cause); ok {
		details["code"] = e.Code
	}

	if isPermanent(cause) || !job.CanRetry() {
		logx.Errorf("Render job failed: JobID=%s, Attempt=%d/%d, Error=%v", job.ID, job.AttemptCount, job.MaxAttempts, cause)
		if err := s.jobRepo.MarkAsFailed(ctx, job.ID, cause.Error(), details); err != nil {
			logx.Errorf("Failed to mark render job %s as failed: %v", job.ID, err)
		}
		return renderjob.ErrJobAttemptsExhausted(cause).WithDetails(details)
	}

	delay := job.RetryDelay(s.cfg.RetryBase)
	nextRetry := s.now().Add(delay)
	job.Status = renderjob.JobStatusPending
	job.NextRetryAt = &nextRetry

	logx.Warnf("Render job failed, will retry: JobID=%s, Attempt=%d/%d, NextRetry=%v, Error=%v",
		job.ID, job.AttemptCount, job.MaxAttempts, nextRetry, cause)

	if err := s.jobRepo.ScheduleRetry(ctx, job.ID, job.AttemptCount, nextRetry, cause.Error(), details); err != nil {
		logx.Errorf("Failed to record retry for render job %s: %v", job.ID, err)
	}

	if err := s.queue.EnqueueDelayed(ctx, job.ID, job, delay); err != nil {
		_ = s.jobRepo.MarkAsFailed(ctx, job.ID, "retry enqueue failed", details)
		return renderjob.ErrJobRetryFailed(err).WithDetail("job_id", job.ID)
	}
	return cause
}

// isPermanent reports failures another attempt cannot fix
func isPermanent(err error) bool {
	return errx.IsType(err, errx.TypeNotFound) || errx.IsType(err, errx.TypeValidation)
}
