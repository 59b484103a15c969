package tryon

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/VaishaliGajapathi/GlamArTryon/app/repository"
)

const (
	// DefaultWorkers bounds how many provider calls run concurrently.
	DefaultWorkers = 3
	// DefaultCallTimeout bounds one provider call. A timed-out call fails
	// the job, it does not retry.
	DefaultCallTimeout = 2 * time.Minute

	taskBuffer = 1024
)

// Task is one queued generation to run against the provider.
type Task struct {
	JobID           string
	HumanImageURL   string
	GarmentImageURL string
}

// Dispatcher runs the asynchronous continuation of submitted jobs on a
// bounded worker pool: mark processing, call the provider, finalize the job.
type Dispatcher struct {
	jobs        repository.TryOnJobRepository
	gateway     Gateway
	workers     int
	callTimeout time.Duration
	tasks       chan Task
	stopCh      chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	running     bool
}

// NewDispatcher creates a dispatcher with the given worker count.
func NewDispatcher(jobs repository.TryOnJobRepository, gateway Gateway, workers int, callTimeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Dispatcher{
		jobs:        jobs,
		gateway:     gateway,
		workers:     workers,
		callTimeout: callTimeout,
		tasks:       make(chan Task, taskBuffer),
		stopCh:      make(chan struct{}),
	}
}

// Start starts the dispatcher workers
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}

	d.stopCh = make(chan struct{})
	d.running = true
	log.Infof("[TryOn Dispatcher] Starting %d workers", d.workers)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

// Stop stops the dispatcher workers. Queued tasks that have not started are
// left for the next start cycle's purge sweep to expire.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}

	log.Info("[TryOn Dispatcher] Stopping workers...")
	close(d.stopCh)
	d.running = false
	d.wg.Wait()
	log.Info("[TryOn Dispatcher] All workers stopped")
}

// Enqueue hands a task to the worker pool. When the buffer is full the job
// fails immediately instead of blocking the request path.
func (d *Dispatcher) Enqueue(task Task) {
	select {
	case d.tasks <- task:
	default:
		log.Errorf("[TryOn Dispatcher] Task buffer full, failing job %s", task.JobID)
		if err := d.jobs.MarkFailed(task.JobID); err != nil {
			log.Errorf("[TryOn Dispatcher] Failed to mark job %s failed: %v", task.JobID, err)
		}
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	log.Infof("[TryOn Dispatcher] Worker %d started", id)

	for {
		select {
		case <-d.stopCh:
			log.Infof("[TryOn Dispatcher] Worker %d stopping", id)
			return
		case task := <-d.tasks:
			d.process(task)
		}
	}
}

// process runs one job through the provider and finalizes its status. Any
// error path ends in failed; credits are not refunded.
func (d *Dispatcher) process(task Task) {
	if err := d.jobs.MarkProcessing(task.JobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Job deleted or finalized between submit and pickup; nothing
			// left to generate for.
			log.Infof("[TryOn Dispatcher] Job %s no longer queued, skipping", task.JobID)
			return
		}
		log.Errorf("[TryOn Dispatcher] Failed to mark job %s processing: %v", task.JobID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.callTimeout)
	defer cancel()

	result, err := d.gateway.Generate(ctx, task.HumanImageURL, task.GarmentImageURL)
	if err != nil || result == nil || !result.Success || result.OutputURL == "" {
		if err != nil {
			log.Errorf("[TryOn Dispatcher] Provider call for job %s failed: %v", task.JobID, err)
		} else {
			log.Warnf("[TryOn Dispatcher] Provider returned no output for job %s", task.JobID)
		}
		if mErr := d.jobs.MarkFailed(task.JobID); mErr != nil {
			log.Errorf("[TryOn Dispatcher] Failed to mark job %s failed: %v", task.JobID, mErr)
		}
		return
	}

	if err := d.jobs.MarkDone(task.JobID, result.OutputURL, result.Metadata); err != nil {
		log.Errorf("[TryOn Dispatcher] Failed to mark job %s done: %v", task.JobID, err)
		return
	}
	log.Infof("[TryOn Dispatcher] Job %s completed", task.JobID)
}
