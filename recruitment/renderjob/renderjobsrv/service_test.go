package renderjobsrv

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/hojavida/internal/document"
	"github.com/Abraxas-365/hojavida/pkg/errx"
	"github.com/Abraxas-365/hojavida/pkg/kernel"
	"github.com/Abraxas-365/hojavida/recruitment/applicant"
	"github.com/Abraxas-365/hojavida/recruitment/renderjob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[kernel.RenderJobID]*renderjob.RenderJob
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: map[kernel.RenderJobID]*renderjob.RenderJob{}}
}

func (r *memJobRepo) Create(_ context.Context, job *renderjob.RenderJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *memJobRepo) GetByID(_ context.Context, id kernel.RenderJobID) (*renderjob.RenderJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, renderjob.ErrJobNotFound()
	}
	cp := *job
	return &cp, nil
}

func (r *memJobRepo) update(id kernel.RenderJobID, fn func(*renderjob.RenderJob) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("job not found")
	}
	return fn(job)
}

func (r *memJobRepo) MarkAsProcessing(_ context.Context, id kernel.RenderJobID) error {
	return r.update(id, func(j *renderjob.RenderJob) error {
		if j.Status != renderjob.JobStatusPending {
			return errors.New("job not in pending status")
		}
		now := time.Now()
		j.Status, j.StartedAt = renderjob.JobStatusProcessing, &now
		return nil
	})
}

func (r *memJobRepo) MarkAsCompleted(_ context.Context, id kernel.RenderJobID, key, url string) error {
	return r.update(id, func(j *renderjob.RenderJob) error {
		now := time.Now()
		j.Status, j.StorageKey, j.AccessURL, j.CompletedAt = renderjob.JobStatusCompleted, key, url, &now
		return nil
	})
}

func (r *memJobRepo) MarkAsFailed(_ context.Context, id kernel.RenderJobID, msg string, details map[string]any) error {
	return r.update(id, func(j *renderjob.RenderJob) error {
		now := time.Now()
		j.Status, j.ErrorMessage, j.ErrorDetails, j.FailedAt = renderjob.JobStatusFailed, msg, details, &now
		return nil
	})
}

func (r *memJobRepo) ScheduleRetry(_ context.Context, id kernel.RenderJobID, attempt int, next time.Time, msg string, details map[string]any) error {
	return r.update(id, func(j *renderjob.RenderJob) error {
		j.Status, j.AttemptCount, j.NextRetryAt = renderjob.JobStatusPending, attempt, &next
		j.ErrorMessage, j.ErrorDetails = msg, details
		return nil
	})
}

type delayed struct {
	payload []byte
	delay   time.Duration
}

type memQueue struct {
	ready      [][]byte
	delayed    []delayed
	enqueueErr error
}

func (q *memQueue) Enqueue(_ context.Context, _ kernel.RenderJobID, payload any) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	data, _ := json.Marshal(payload)
	q.ready = append(q.ready, data)
	return nil
}

func (q *memQueue) Dequeue(context.Context, time.Duration) ([]byte, error) {
	if len(q.ready) == 0 {
		return nil, nil
	}
	data := q.ready[0]
	q.ready = q.ready[1:]
	return data, nil
}

func (q *memQueue) EnqueueDelayed(_ context.Context, _ kernel.RenderJobID, payload any, delay time.Duration) error {
	data, _ := json.Marshal(payload)
	q.delayed = append(q.delayed, delayed{payload: data, delay: delay})
	return nil
}

func (q *memQueue) MoveDelayedToReady(context.Context) (int, error) {
	n := len(q.delayed)
	for _, d := range q.delayed {
		q.ready = append(q.ready, d.payload)
	}
	q.delayed = nil
	return n, nil
}

func (q *memQueue) GetStats(context.Context) (map[string]any, error) {
	return map[string]any{"ready_jobs": len(q.ready), "delayed_jobs": len(q.delayed)}, nil
}

type scriptedRenderer struct {
	known map[kernel.Identification]bool
	errs  []error
	calls int
}

func (r *scriptedRenderer) GetByIdentification(_ context.Context, id string) (*applicant.LookupResponse, error) {
	return &applicant.LookupResponse{Exists: r.known[kernel.Identification(id)]}, nil
}

func (r *scriptedRenderer) RegenerateDocument(_ context.Context, id kernel.Identification) (*applicant.DocumentResponse, error) {
	r.calls++
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	key := document.StorageKey(id.String(), applicant.DocumentKeyPrefix, 1700000000000)
	return &applicant.DocumentResponse{Identification: id, StorageKey: key, AccessURL: "https://cdn.example/" + key}, nil
}

func setup() (*Service, *memJobRepo, *memQueue, *scriptedRenderer) {
	repo := newMemJobRepo()
	queue := &memQueue{}
	renderer := &scriptedRenderer{known: map[kernel.Identification]bool{"12345": true}}
	svc := NewService(repo, queue, renderer, Config{MaxAttempts: 3, RetryBase: time.Second})
	return svc, repo, queue, renderer
}

func dequeueJob(t *testing.T, q *memQueue) *renderjob.RenderJob {
	t.Helper()
	data, err := q.Dequeue(context.Background(), 0)
	require.NoError(t, err)
	require.NotNil(t, data)
	var job renderjob.RenderJob
	require.NoError(t, json.Unmarshal(data, &job))
	return &job
}

func TestEnqueue(t *testing.T) {
	svc, repo, queue, _ := setup()

	resp, err := svc.Enqueue(context.Background(), " 12345 ")
	require.NoError(t, err)
	assert.Equal(t, renderjob.JobStatusPending, resp.Status)
	assert.Equal(t, kernel.Identification("12345"), resp.Identification)
	assert.Equal(t, 3, resp.MaxAttempts)
	assert.Len(t, queue.ready, 1)
	assert.Contains(t, repo.jobs, resp.JobID)
}

func TestEnqueue_Rejections(t *testing.T) {
	svc, repo, queue, _ := setup()
	ctx := context.Background()

	_, err := svc.Enqueue(ctx, "../etc")
	assert.True(t, errx.IsCode(err, renderjob.CodeInvalidIdentification))

	_, err = svc.Enqueue(ctx, "99999")
	assert.True(t, errx.IsCode(err, renderjob.CodeApplicantNotFound))

	queue.enqueueErr = errors.New("redis down")
	_, err = svc.Enqueue(ctx, "12345")
	assert.True(t, errx.IsCode(err, renderjob.CodeQueueEnqueueFailed))
	for _, job := range repo.jobs {
		assert.Equal(t, renderjob.JobStatusFailed, job.Status)
	}
}

func TestProcessJob_Success(t *testing.T) {
	svc, repo, queue, _ := setup()
	ctx := context.Background()

	resp, err := svc.Enqueue(ctx, "12345")
	require.NoError(t, err)

	require.NoError(t, svc.ProcessJob(ctx, dequeueJob(t, queue)))

	status, err := svc.GetStatus(ctx, resp.JobID.String())
	require.NoError(t, err)
	assert.Equal(t, renderjob.JobStatusCompleted, status.Status)
	assert.Equal(t, "12345/hoja_vida_1700000000000.pdf", status.StorageKey)
	assert.NotNil(t, repo.jobs[resp.JobID].CompletedAt)
}

func TestProcessJob_RetriesWithBackoffThenFails(t *testing.T) {
	svc, repo, queue, renderer := setup()
	ctx := context.Background()
	transient := document.ErrRenderTimeout(context.DeadlineExceeded)
	renderer.errs = []error{transient, transient, transient}

	resp, err := svc.Enqueue(ctx, "12345")
	require.NoError(t, err)

	require.Error(t, svc.ProcessJob(ctx, dequeueJob(t, queue)))
	require.Len(t, queue.delayed, 1)
	assert.Equal(t, 2*time.Second, queue.delayed[0].delay)
	assert.Equal(t, renderjob.JobStatusPending, repo.jobs[resp.JobID].Status)
	assert.Equal(t, 1, repo.jobs[resp.JobID].AttemptCount)

	_, _ = queue.MoveDelayedToReady(ctx)
	require.Error(t, svc.ProcessJob(ctx, dequeueJob(t, queue)))
	require.Len(t, queue.delayed, 1)
	assert.Equal(t, 4*time.Second, queue.delayed[0].delay)

	_, _ = queue.MoveDelayedToReady(ctx)
	err = svc.ProcessJob(ctx, dequeueJob(t, queue))
	assert.True(t, errx.IsCode(err, renderjob.CodeJobAttemptsExhausted))
	assert.Empty(t, queue.delayed)

	status, err := svc.GetStatus(ctx, resp.JobID.String())
	require.NoError(t, err)
	assert.Equal(t, renderjob.JobStatusFailed, status.Status)
	require.NotNil(t, status.Error)
	assert.Equal(t, document.CodeRenderTimeout, status.Error.Details["code"])
	assert.Equal(t, 3, renderer.calls)
}

func TestProcessJob_RecoversOnRetry(t *testing.T) {
	svc, repo, queue, renderer := setup()
	ctx := context.Background()
	renderer.errs = []error{errors.New("chrome crashed")}

	resp, err := svc.Enqueue(ctx, "12345")
	require.NoError(t, err)

	require.Error(t, svc.ProcessJob(ctx, dequeueJob(t, queue)))
	_, _ = queue.MoveDelayedToReady(ctx)
	require.NoError(t, svc.ProcessJob(ctx, dequeueJob(t, queue)))

	assert.Equal(t, renderjob.JobStatusCompleted, repo.jobs[resp.JobID].Status)
}

func TestProcessJob_PermanentFailureNotRetried(t *testing.T) {
	svc, repo, queue, renderer := setup()
	ctx := context.Background()
	renderer.errs = []error{applicant.ErrApplicantNotFound()}

	resp, err := svc.Enqueue(ctx, "12345")
	require.NoError(t, err)

	err = svc.ProcessJob(ctx, dequeueJob(t, queue))
	assert.True(t, errx.IsCode(err, renderjob.CodeJobAttemptsExhausted))
	assert.Empty(t, queue.delayed)
	assert.Equal(t, renderjob.JobStatusFailed, repo.jobs[resp.JobID].Status)
}

func TestProcessJob_RedeliveredFinishedJob(t *testing.T) {
	svc, _, queue, renderer := setup()
	ctx := context.Background()

	_, err := svc.Enqueue(ctx, "12345")
	require.NoError(t, err)
	job := dequeueJob(t, queue)

	require.NoError(t, svc.ProcessJob(ctx, job))
	err = svc.ProcessJob(ctx, job)
	assert.True(t, errx.IsCode(err, renderjob.CodeJobUpdateFailed))
	assert.Equal(t, 1, renderer.calls)
}

func TestGetStatus_NotFound(t *testing.T) {
	svc, _, _, _ := setup()

	_, err := svc.GetStatus(context.Background(), "missing")
	assert.True(t, errx.IsCode(err, renderjob.CodeJobNotFound))
}
