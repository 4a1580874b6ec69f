package jobrun

const (
	WorkflowName = "job_run"
	ActivityRun  = "job_run_execute"
)

// RunResult is the activity's view of one finished job run.
type RunResult struct {
	JobID   string `json:"job_id"`
	JobType string `json:"job_type"`
	Status  string `json:"status"`
	Stage   string `json:"stage,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CronWorkflowID is the stable workflow id for a job type's cron schedule.
func CronWorkflowID(jobType string) string { return "cron-" + jobType }
