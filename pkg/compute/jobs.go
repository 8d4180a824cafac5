package compute

import (
	"context"
	"fmt"
	"sync"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/charmbracelet/log"

	"github.com/oxygene76/orbitalsim/internal/types"
	"github.com/oxygene76/orbitalsim/pkg/analysis"
	"github.com/oxygene76/orbitalsim/pkg/astronomy/ephemerides"
	"github.com/oxygene76/orbitalsim/pkg/astronomy/nbody"
)

const codespace = "compute"

var (
	ErrJobNotFound   = errorsmod.Register(codespace, 2, "job not found")
	ErrQueueFull     = errorsmod.Register(codespace, 3, "job queue full")
	ErrJobFinished   = errorsmod.Register(codespace, 4, "job already finished")
	ErrShutdown      = errorsmod.Register(codespace, 5, "job manager shut down")
	ErrInvalidJobArg = errorsmod.Register(codespace, 6, "invalid job")
)

// JobStatus represents the status of a simulation job
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

func (s JobStatus) finished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// JobSpec describes one simulation run
type JobSpec struct {
	Catalog   ephemerides.Catalog
	TimeStep  float32
	Asteroids int
	Policy    nbody.ForcePolicy
	Options   []nbody.Option
	Steps     int
}

// Job is a point-in-time view of a submitted run
type Job struct {
	ID          string           `json:"id"`
	Status      JobStatus        `json:"status"`
	StepsDone   int64            `json:"steps_done"`
	Steps       int              `json:"steps"`
	Report      *types.RunReport `json:"report,omitempty"`
	Error       string           `json:"error,omitempty"`
	SubmittedAt time.Time        `json:"submitted_at"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

type job struct {
	Job
	spec   JobSpec
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// JobManager runs simulation jobs on a fixed pool of workers
type JobManager struct {
	mu      sync.RWMutex
	jobs    map[string]*job
	order   []string
	counter int64

	queue    chan *job
	shutdown chan struct{}
	closed   bool
	workers  int
	wg       sync.WaitGroup

	logger *log.Logger
}

// NewJobManager starts workers goroutines pulling from a queue of at most
// maxQueued jobs
func NewJobManager(workers, maxQueued int, logger *log.Logger) *JobManager {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	jm := &JobManager{
		jobs:     make(map[string]*job),
		queue:    make(chan *job, maxQueued),
		shutdown: make(chan struct{}),
		workers:  workers,
		logger:   logger,
	}
	for i := 0; i < workers; i++ {
		jm.wg.Add(1)
		go jm.worker()
	}
	return jm
}

func (jm *JobManager) worker() {
	defer jm.wg.Done()

	for {
		select {
		case <-jm.shutdown:
			return
		case j := <-jm.queue:
			jm.processJob(j)
		}
	}
}

// SubmitJob queues a run and returns its ID
func (jm *JobManager) SubmitJob(spec JobSpec) (string, error) {
	if spec.Steps < 0 {
		return "", errorsmod.Wrapf(ErrInvalidJobArg, "negative step count %d", spec.Steps)
	}

	jm.mu.Lock()
	defer jm.mu.Unlock()

	if jm.closed {
		return "", ErrShutdown
	}

	jm.counter++
	ctx, cancel := context.WithCancel(context.Background())
	j := &job{
		Job: Job{
			ID:          fmt.Sprintf("run-%d", jm.counter),
			Status:      StatusQueued,
			Steps:       spec.Steps,
			SubmittedAt: time.Now(),
		},
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	select {
	case jm.queue <- j:
	default:
		cancel()
		return "", errorsmod.Wrapf(ErrQueueFull, "%d jobs waiting", cap(jm.queue))
	}

	jm.jobs[j.ID] = j
	jm.order = append(jm.order, j.ID)
	return j.ID, nil
}

// processJob runs one job to completion, failure or cancellation
func (jm *JobManager) processJob(j *job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			jm.finish(j, StatusFailed, nil, fmt.Sprintf("job panicked: %v", r))
		}
	}()

	if j.ctx.Err() != nil {
		jm.finish(j, StatusCancelled, nil, "")
		return
	}

	jm.mu.Lock()
	now := time.Now()
	j.Status = StatusRunning
	j.StartedAt = &now
	jm.mu.Unlock()

	spec := j.spec
	sim, err := nbody.New(spec.Catalog, spec.TimeStep, spec.Asteroids, spec.Policy, spec.Options...)
	if err != nil {
		jm.finish(j, StatusFailed, nil, err.Error())
		return
	}
	defer sim.Release()

	report := &types.RunReport{
		Catalog:     spec.Catalog.Name,
		Policy:      sim.Policy().String(),
		Accumulator: sim.AccumulatorMode().String(),
		Bodies:      len(sim.Bodies()),
		Asteroids:   sim.AsteroidCount(),
		TimeStep:    sim.TimeStep(),
		EnergyStart: analysis.Energy(sim),
	}

	for n := 0; n < spec.Steps; n++ {
		if j.ctx.Err() != nil {
			jm.finish(j, StatusCancelled, nil, "")
			return
		}
		if err := sim.Step(); err != nil {
			jm.finish(j, StatusFailed, nil, err.Error())
			return
		}
		jm.mu.Lock()
		j.StepsDone = sim.Steps()
		jm.mu.Unlock()
	}

	report.Steps = sim.Steps()
	report.Elapsed = sim.ElapsedTime()
	report.Date = sim.Date(nbody.DefaultEpoch).Format(time.DateOnly)
	report.Duration = time.Since(*j.StartedAt)
	report.EnergyEnd = analysis.Energy(sim)
	if sim.AsteroidCount() > 0 {
		if report.Belt, err = analysis.BeltStatistics(sim, jm.logger); err != nil {
			jm.finish(j, StatusFailed, nil, err.Error())
			return
		}
	}

	jm.finish(j, StatusCompleted, report, "")
}

func (jm *JobManager) finish(j *job, status JobStatus, report *types.RunReport, errMsg string) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if j.Status.finished() {
		return
	}
	now := time.Now()
	j.Status = status
	j.Report = report
	j.Error = errMsg
	j.CompletedAt = &now
	j.cancel()

	jm.logger.Debug("job finished", "id", j.ID, "status", status, "steps", j.StepsDone)
	if status == StatusFailed {
		jm.logger.Warn("job failed", "id", j.ID, "err", errMsg)
	}
}

// GetJob returns a copy of the job's current state
func (jm *JobManager) GetJob(jobID string) (Job, error) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	j, exists := jm.jobs[jobID]
	if !exists {
		return Job{}, errorsmod.Wrap(ErrJobNotFound, jobID)
	}
	return j.Job, nil
}

// ListJobs returns jobs in submission order, optionally filtered by status
func (jm *JobManager) ListJobs(status JobStatus) []Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	var out []Job
	for _, id := range jm.order {
		j := jm.jobs[id]
		if status != "" && j.Status != status {
			continue
		}
		out = append(out, j.Job)
	}
	return out
}

// Wait blocks until the job finishes or ctx is done
func (jm *JobManager) Wait(ctx context.Context, jobID string) (Job, error) {
	jm.mu.RLock()
	j, exists := jm.jobs[jobID]
	jm.mu.RUnlock()
	if !exists {
		return Job{}, errorsmod.Wrap(ErrJobNotFound, jobID)
	}

	select {
	case <-j.done:
		return jm.GetJob(jobID)
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// CancelJob cancels a queued or running job
func (jm *JobManager) CancelJob(jobID string) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	j, exists := jm.jobs[jobID]
	if !exists {
		return errorsmod.Wrap(ErrJobNotFound, jobID)
	}
	if j.Status.finished() {
		return errorsmod.Wrapf(ErrJobFinished, "%s is %s", jobID, j.Status)
	}
	j.cancel()
	return nil
}

// Shutdown stops accepting jobs, cancels everything still pending and
// waits for the workers
func (jm *JobManager) Shutdown(timeout time.Duration) error {
	jm.mu.Lock()
	if jm.closed {
		jm.mu.Unlock()
		return nil
	}
	jm.closed = true
	for _, j := range jm.jobs {
		if !j.Status.finished() {
			j.cancel()
		}
	}
	jm.mu.Unlock()

	close(jm.shutdown)

	done := make(chan struct{})
	go func() {
		jm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}

	// jobs still queued never reached a worker
	for {
		select {
		case j := <-jm.queue:
			jm.finish(j, StatusCancelled, nil, "")
			close(j.done)
		default:
			return nil
		}
	}
}

// GetStatistics counts jobs per status
func (jm *JobManager) GetStatistics() JobStatistics {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	stats := JobStatistics{
		TotalJobs:  len(jm.jobs),
		MaxWorkers: jm.workers,
	}
	for _, j := range jm.jobs {
		switch j.Status {
		case StatusQueued:
			stats.QueuedJobs++
		case StatusRunning:
			stats.RunningJobs++
		case StatusCompleted:
			stats.CompletedJobs++
		case StatusFailed:
			stats.FailedJobs++
		case StatusCancelled:
			stats.CancelledJobs++
		}
	}
	return stats
}

// JobStatistics represents job manager statistics
type JobStatistics struct {
	TotalJobs     int `json:"total_jobs"`
	QueuedJobs    int `json:"queued_jobs"`
	RunningJobs   int `json:"running_jobs"`
	CompletedJobs int `json:"completed_jobs"`
	FailedJobs    int `json:"failed_jobs"`
	CancelledJobs int `json:"cancelled_jobs"`
	MaxWorkers    int `json:"max_workers"`
}
