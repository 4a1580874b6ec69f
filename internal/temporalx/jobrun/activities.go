package jobrun

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	jobtypes "github.com/yungbote/shelfmind-backend/internal/domain/jobs"
	"github.com/yungbote/shelfmind-backend/internal/jobs/worker"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

// JobRunner is the subset of worker.Runner the activity needs.
type JobRunner interface {
	RunOnce(ctx context.Context, jobType, trigger string) (*jobtypes.JobRun, error)
}

type Activities struct {
	Log    *logger.Logger
	Runner JobRunner
}

func (a *Activities) Execute(ctx context.Context, jobType string) (RunResult, error) {
	res := RunResult{JobType: jobType}
	if a == nil || a.Runner == nil {
		return res, temporal.NewNonRetryableApplicationError("jobrun: activity not configured", "misconfigured", nil)
	}

	stopHB := startHeartbeat(ctx)
	defer stopHB()

	job, err := a.Runner.RunOnce(ctx, jobType, jobtypes.TriggerTemporal)
	if errors.Is(err, worker.ErrAlreadyRunning) {
		// Another trigger in this process is already doing the work.
		if a.Log != nil {
			a.Log.Info("Job already running; skipping Temporal run", "job_type", jobType)
		}
		res.Status = jobtypes.StatusSucceeded
		res.Stage = "skipped"
		return res, nil
	}
	if err != nil {
		return res, temporal.NewNonRetryableApplicationError(fmt.Sprintf("jobrun: %v", err), "dispatch", err)
	}

	res.JobID = job.ID.String()
	res.Status = job.Status
	res.Stage = job.Stage
	res.Error = job.Error
	return res, nil
}

func startHeartbeat(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(10 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				activity.RecordHeartbeat(ctx)
			}
		}
	}()
	return func() { close(done) }
}
