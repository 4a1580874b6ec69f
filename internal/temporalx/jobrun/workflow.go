package jobrun

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	jobtypes "github.com/yungbote/shelfmind-backend/internal/domain/jobs"
)

// Workflow executes one run of jobType. Under a cron schedule Temporal starts a fresh run per
// tick, so the workflow itself never loops.
func Workflow(ctx workflow.Context, jobType string) (RunResult, error) {
	jobType = strings.TrimSpace(jobType)
	if jobType == "" {
		return RunResult{}, temporal.NewNonRetryableApplicationError("jobrun: missing job_type", "invalid_input", nil)
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Hour,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    30 * time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	})

	var out RunResult
	if err := workflow.ExecuteActivity(ctx, ActivityRun, jobType).Get(ctx, &out); err != nil {
		return out, err
	}
	if out.Status == jobtypes.StatusFailed {
		return out, fmt.Errorf("job %s failed (stage=%s): %s", jobType, out.Stage, out.Error)
	}
	workflow.GetLogger(ctx).Info("Job run finished", "job_type", jobType, "job_id", out.JobID, "status", out.Status)
	return out, nil
}
