package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/Abraxas-365/hojavida/recruitment/renderjob"
	"github.com/Abraxas-365/hojavida/recruitment/renderjob/renderjobsrv"
)

const (
	defaultPollTimeout  = 5 * time.Second
	defaultPromoteEvery = 30 * time.Second
	minimumWorkerCount  = 1
)

type RenderWorker struct {
	service *renderjobsrv.Service
	queue   renderjob.JobQueue
	workers int

	PollTimeout  time.Duration
	PromoteEvery time.Duration

	wg sync.WaitGroup
}

func NewRenderWorker(service *renderjobsrv.Service, queue renderjob.JobQueue, workers int) *RenderWorker {
	if workers < minimumWorkerCount {
		workers = minimumWorkerCount
	}
	return &RenderWorker{
		service:      service,
		queue:        queue,
		workers:      workers,
		PollTimeout:  defaultPollTimeout,
		PromoteEvery: defaultPromoteEvery,
	}
}

// Start launches the worker pool and the delayed-job mover. They run until
// ctx is cancelled; Wait blocks until all of them returned.
func (w *RenderWorker) Start(ctx context.Context) {
	logx.Infof("Starting %d render workers", w.workers)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.moveDelayedJobs(ctx)
	}()

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.processJobs(ctx, id)
		}(i)
	}
}

func (w *RenderWorker) Wait() {
	w.wg.Wait()
}

func (w *RenderWorker) processJobs(ctx context.Context, workerID int) {
	logx.Infof("Worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			logx.Infof("Worker %d stopping", workerID)
			return
		default:
		}

		data, err := w.queue.Dequeue(ctx, w.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logx.Errorf("Worker %d dequeue error: %v", workerID, err)
			sleep(ctx, time.Second)
			continue
		}
		if len(data) == 0 {
			continue
		}

		var job renderjob.RenderJob
		if err := json.Unmarshal(data, &job); err != nil {
			logx.Errorf("Worker %d unmarshal error: %v (data: %s)", workerID, err, string(data))
			continue
		}

		logx.Infof("Worker %d processing job: %s", workerID, job.ID)
		if err := w.service.ProcessJob(ctx, &job); err != nil {
			logx.Errorf("Worker %d job failed: %v", workerID, err)
		}
	}
}

func (w *RenderWorker) moveDelayedJobs(ctx context.Context) {
	ticker := time.NewTicker(w.PromoteEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := w.queue.MoveDelayedToReady(ctx)
			if err != nil {
				logx.Errorf("Failed to move delayed jobs: %v", err)
			} else if count > 0 {
				logx.Infof("Moved %d delayed jobs to ready queue", count)
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
