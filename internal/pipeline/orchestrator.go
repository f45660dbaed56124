package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/headslug/internal/config"
	"github.com/dgallion1/headslug/internal/metrics"
	"github.com/dgallion1/headslug/internal/parser"
)

// ErrQueueFull is returned by Submit when the job queue has no room.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("pipeline stopped")

// Orchestrator manages the asynchronous slug pipeline.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	worker  *Worker
	log     *slog.Logger
	cfg     config.Config
	metrics metrics.Recorder

	mu      sync.Mutex
	stopped bool

	cancel    context.CancelFunc
	workersWG sync.WaitGroup
	cleanupWG sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, log *slog.Logger, rec metrics.Recorder) *Orchestrator {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	opts := parser.Options{
		UnsafeHTML:           cfg.RenderUnsafeHTML,
		PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
	}
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		worker:  NewWorker(opts, log, NewLatencyStats(cfg.StatsWindow), rec),
		log:     log,
		cfg:     cfg,
		metrics: rec,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.workersWG.Add(1)
		go func() {
			defer o.workersWG.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.metrics.SetQueueDepth(len(o.queue))
					o.worker.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.cleanupWG.Add(1)
	go func() {
		defer o.cleanupWG.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop closes the queue, lets workers finish queued jobs, then stops cleanup.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	o.workersWG.Wait()
	if o.cancel != nil {
		o.cancel()
	}
	o.cleanupWG.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return ErrStopped
	}

	o.jobs.Put(job)
	select {
	case o.queue <- job:
		o.metrics.SetQueueDepth(len(o.queue))
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		o.metrics.IncJobsRejected()
		o.log.Warn("job rejected", "job_id", job.ID, "filename", job.Filename, "queue_size", o.cfg.MaxQueueSize)
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Worker returns the worker used for synchronous requests.
func (o *Orchestrator) Worker() *Worker {
	return o.worker
}

// Stats returns recent processing latency, overall and per format.
func (o *Orchestrator) Stats() LatencyReport {
	return o.worker.Stats().Snapshot()
}
