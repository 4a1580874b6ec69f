package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/shelfmind-backend/internal/app"
	jobtypes "github.com/yungbote/shelfmind-backend/internal/domain/jobs"
	"github.com/yungbote/shelfmind-backend/internal/jobs/pipeline/trending_refresh"
)

// Runs one trending aggregation outside any schedule and exits non-zero on failure.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}

	job, err := a.Services.JobRunner.RunOnce(ctx, trending_refresh.JobType, jobtypes.TriggerManual)
	failed := err != nil || job.Status == jobtypes.StatusFailed
	if err != nil {
		a.Log.Error("Trending refresh failed", "error", err)
	} else if failed {
		a.Log.Error("Trending refresh failed", "job_id", job.ID, "stage", job.Stage, "error", job.Error)
	} else {
		a.Log.Info("Trending refresh finished", "job_id", job.ID, "status", job.Status, "result", string(job.Result))
	}
	a.Close()
	if failed {
		os.Exit(1)
	}
}
