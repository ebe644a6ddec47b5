// Package jobs runs review jobs in the background.
package jobs

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sevigo/hybrid-warden/internal/core"
)

// DefaultQueueSize is used when NewDispatcher gets a non-positive queue size.
const DefaultQueueSize = 100

// Dispatcher implements core.JobDispatcher and manages a pool of worker goroutines
// for processing review events.
type Dispatcher struct {
	job        core.Job               // Job implementation executed by each worker.
	jobQueue   chan *core.ReviewEvent // Queue of accepted events.
	maxWorkers int                    // Number of concurrent workers.
	wg         sync.WaitGroup         // Tracks active workers for graceful shutdown.
	logger     *slog.Logger

	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(job core.Job, maxWorkers, queueSize int, logger *slog.Logger) *Dispatcher {
	if job == nil {
		panic("job cannot be nil")
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	d := &Dispatcher{
		job:        job,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.ReviewEvent, queueSize),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process jobs from the queue.
func (d *Dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes events from the queue until it's closed.
func (d *Dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Debug("starting review worker", "id", workerID)

	for event := range d.jobQueue {
		d.processEvent(workerID, event)
	}

	d.logger.Debug("shutting down review worker", "id", workerID)
}

func (d *Dispatcher) processEvent(workerID int, event *core.ReviewEvent) {
	d.logger.Info("worker processing job",
		"worker_id", workerID,
		"delivery", event.DeliveryID,
		"repo", event.RepoFullName,
		"pr", event.PRNumber,
	)

	if err := d.job.Run(context.Background(), event); err != nil {
		d.logger.Error("review job failed",
			"repo", event.RepoFullName,
			"pr", event.PRNumber,
			"error", err,
		)
	}
}

// Dispatch queues an event for processing by a worker. It never blocks: a full
// queue, or a stopped dispatcher, yields core.ErrQueueFull.
func (d *Dispatcher) Dispatch(_ context.Context, event *core.ReviewEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return core.ErrQueueFull
	}

	select {
	case d.jobQueue <- event:
		d.logger.Info("queued review job", "repo", event.RepoFullName, "pr", event.PRNumber, "delivery", event.DeliveryID)
		return nil
	default:
		d.logger.Warn("review queue is full, rejecting job", "repo", event.RepoFullName, "pr", event.PRNumber)
		return core.ErrQueueFull
	}
}

// Stop gracefully shuts down the dispatcher, waiting for queued jobs to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobQueue)
	d.mu.Unlock()

	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	d.wg.Wait()
	d.logger.Info("all review jobs have finished")
}
