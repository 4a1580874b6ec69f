package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/shelfmind-backend/internal/platform/envutil"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
	"github.com/yungbote/shelfmind-backend/internal/temporalx"
	"github.com/yungbote/shelfmind-backend/internal/temporalx/jobrun"
)

// CronJob is a job type Temporal triggers on a cron schedule.
type CronJob struct {
	JobType string
	Cron    string
}

type Runner struct {
	log    *logger.Logger
	cfg    temporalx.Config
	tc     temporalsdkclient.Client
	jobs   jobrun.JobRunner
	crons  []CronJob
}

func NewRunner(log *logger.Logger, cfg temporalx.Config, tc temporalsdkclient.Client, jobs jobrun.JobRunner, crons ...CronJob) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if jobs == nil {
		return nil, fmt.Errorf("temporal worker missing job runner")
	}
	return &Runner{
		log:   log.With("component", "TemporalWorker"),
		cfg:   cfg,
		tc:    tc,
		jobs:  jobs,
		crons: crons,
	}, nil
}

// Start polls the task queue until ctx is done and makes sure every cron workflow exists.
func (r *Runner) Start(ctx context.Context) error {
	r.log.Info("Starting Temporal worker", "address", r.cfg.Address, "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue)

	maxWait := envutil.Duration("TEMPORAL_WORKER_START_MAX_WAIT_SECONDS", time.Second, 60*time.Second)
	deadline := time.Now().Add(maxWait)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		w := r.newWorker()
		startErr := w.Start()
		if startErr == nil {
			go func() {
				<-ctx.Done()
				w.Stop()
			}()
			r.log.Info("Temporal worker started", "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue, "attempts", attempt)
			break
		}
		w.Stop()

		var nfe *serviceerror.NamespaceNotFound
		if errors.As(startErr, &nfe) && r.cfg.AutoRegisterNamespace {
			if err := temporalx.EnsureNamespace(ctx, r.log, r.cfg); err != nil {
				r.log.Warn("Temporal namespace ensure failed", "namespace", r.cfg.Namespace, "error", err)
			}
		}
		if maxWait <= 0 || time.Now().After(deadline) {
			if errors.As(startErr, &nfe) {
				return fmt.Errorf("temporal namespace not found (namespace=%s): %w", r.cfg.Namespace, startErr)
			}
			return startErr
		}
		r.log.Warn("Temporal worker failed to start; retrying", "task_queue", r.cfg.TaskQueue, "attempt", attempt, "error", startErr)
		time.Sleep(250 * time.Millisecond * time.Duration(min(attempt, 20)))
	}

	for _, c := range r.crons {
		if err := jobrun.EnsureCron(ctx, r.log, r.tc, r.cfg.TaskQueue, c.JobType, c.Cron); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) newWorker() worker.Worker {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})
	acts := &jobrun.Activities{Log: r.log, Runner: r.jobs}
	w.RegisterWorkflowWithOptions(jobrun.Workflow, workflow.RegisterOptions{Name: jobrun.WorkflowName})
	w.RegisterActivityWithOptions(acts.Execute, activity.RegisterOptions{Name: jobrun.ActivityRun})
	return w
}
