package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	jobrepos "github.com/yungbote/shelfmind-backend/internal/data/repos/jobs"
	types "github.com/yungbote/shelfmind-backend/internal/domain/jobs"
	"github.com/yungbote/shelfmind-backend/internal/jobs/runtime"
	"github.com/yungbote/shelfmind-backend/internal/observability"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

// Runner executes registered handlers and records each execution as a job_run row.
type Runner struct {
	log      *logger.Logger
	repo     jobrepos.JobRunRepo
	registry *runtime.Registry
	now      func() time.Time

	// one execution per job type at a time
	mu      sync.Mutex
	running map[string]bool
}

func NewRunner(baseLog *logger.Logger, repo jobrepos.JobRunRepo, registry *runtime.Registry) *Runner {
	return &Runner{
		log:      baseLog.With("component", "JobRunner"),
		repo:     repo,
		registry: registry,
		now:      time.Now,
		running:  map[string]bool{},
	}
}

// ErrAlreadyRunning is returned when the job type has an execution in flight in this process.
var ErrAlreadyRunning = errors.New("job already running")

// RunOnce executes jobType synchronously. The returned run is always non-nil when the handler
// was dispatched; a failed run is reported through its Status, not the error.
func (r *Runner) RunOnce(ctx context.Context, jobType, trigger string) (*types.JobRun, error) {
	h, ok := r.registry.Get(jobType)
	if !ok {
		return nil, &missingHandlerError{JobType: jobType}
	}
	if !r.acquire(jobType) {
		return nil, ErrAlreadyRunning
	}
	defer r.release(jobType)

	start := r.now()
	job := &types.JobRun{
		JobType:   jobType,
		Trigger:   trigger,
		Status:    types.StatusRunning,
		Stage:     "start",
		StartedAt: start.UTC(),
	}
	if r.repo != nil {
		if err := r.repo.Create(dbctx.New(ctx), job); err != nil {
			// The job still runs; only its audit row is lost.
			r.log.Warn("job_run create failed", "job_type", jobType, "error", err)
		}
	}

	jc := runtime.NewContext(ctx, job, r.repo, r.log, start)
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("Job handler panic", "job_id", job.ID, "job_type", jobType, "panic", rec)
				jc.Fail("panic", errFromRecover(rec))
			}
		}()
		if runErr := h.Run(jc); runErr != nil {
			jc.Fail("run", runErr)
			return
		}
		// Handlers that return nil without finishing are treated as done.
		if !job.Terminal() {
			jc.Succeed("done", nil)
		}
	}()

	dur := time.Since(start)
	observability.Current().ObserveJob(jobType, job.Status, dur)
	if job.Status == types.StatusFailed {
		r.log.Warn("Job failed", "job_id", job.ID, "job_type", jobType, "trigger", trigger, "stage", job.Stage, "error", job.Error, "duration", dur)
	} else {
		r.log.Info("Job succeeded", "job_id", job.ID, "job_type", jobType, "trigger", trigger, "duration", dur)
	}
	return job, nil
}

func (r *Runner) acquire(jobType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running[jobType] {
		return false
	}
	r.running[jobType] = true
	return true
}

func (r *Runner) release(jobType string) {
	r.mu.Lock()
	delete(r.running, jobType)
	r.mu.Unlock()
}

// Schedule runs JobType every Interval. RunOnStart fires one run immediately.
type Schedule struct {
	JobType    string
	Interval   time.Duration
	RunOnStart bool
}

// Worker drives the in-process schedules. It is the fallback when Temporal is not configured.
type Worker struct {
	log       *logger.Logger
	runner    *Runner
	schedules []Schedule
	wg        sync.WaitGroup
}

func NewWorker(baseLog *logger.Logger, runner *Runner, schedules ...Schedule) *Worker {
	return &Worker{
		log:       baseLog.With("component", "JobWorker"),
		runner:    runner,
		schedules: schedules,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting job worker", "schedules", len(w.schedules))
	for _, s := range w.schedules {
		if s.Interval <= 0 {
			w.log.Warn("Skipping schedule with no interval", "job_type", s.JobType)
			continue
		}
		w.wg.Add(1)
		go w.runLoop(ctx, s)
	}
}

// Wait blocks until every loop has observed ctx cancellation.
func (w *Worker) Wait() { w.wg.Wait() }

func (w *Worker) runLoop(ctx context.Context, s Schedule) {
	defer w.wg.Done()
	if s.RunOnStart {
		w.tick(ctx, s)
	}
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "job_type", s.JobType)
			return
		case <-ticker.C:
			w.tick(ctx, s)
		}
	}
}

func (w *Worker) tick(ctx context.Context, s Schedule) {
	if _, err := w.runner.RunOnce(ctx, s.JobType, types.TriggerScheduler); err != nil {
		w.log.Warn("Scheduled job not run", "job_type", s.JobType, "error", err)
	}
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string { return "no handler registered for job_type=" + e.JobType }

func errFromRecover(v any) error { return &panicError{Val: v} }

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
