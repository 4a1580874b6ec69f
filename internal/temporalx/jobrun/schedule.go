package jobrun

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

// EnsureCron starts the cron workflow for jobType unless one is already running.
func EnsureCron(ctx context.Context, log *logger.Logger, tc temporalsdkclient.Client, taskQueue, jobType, cron string) error {
	if tc == nil {
		return fmt.Errorf("jobrun: temporal client is nil")
	}
	id := CronWorkflowID(jobType)
	_, err := tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:           id,
		TaskQueue:    taskQueue,
		CronSchedule: cron,
	}, WorkflowName, jobType)
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		if log != nil {
			log.Info("Cron workflow already scheduled", "workflow_id", id, "cron", cron)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("start cron workflow %s: %w", id, err)
	}
	if log != nil {
		log.Info("Cron workflow scheduled", "workflow_id", id, "cron", cron, "task_queue", taskQueue)
	}
	return nil
}
