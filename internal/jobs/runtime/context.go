package runtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	jobrepos "github.com/yungbote/shelfmind-backend/internal/data/repos/jobs"
	types "github.com/yungbote/shelfmind-backend/internal/domain/jobs"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

/*
Context is the execution handle for a single job run.
Handlers report progress and terminate through it; they never write job_run rows directly.
	- Ctx: cancellation for the run
	- Job: the in-memory job_run row, kept in sync with every write
	- Repo: optional; without it state changes stay in memory (one-off CLI runs in tests)
*/
type Context struct {
	Ctx  context.Context
	Job  *types.JobRun
	Repo jobrepos.JobRunRepo
	Log  *logger.Logger
	// Now is the logical run time handed to handlers.
	Now time.Time
}

func NewContext(ctx context.Context, job *types.JobRun, repo jobrepos.JobRunRepo, log *logger.Logger, now time.Time) *Context {
	return &Context{Ctx: ctx, Job: job, Repo: repo, Log: log, Now: now.UTC()}
}

// Progress records a non-terminal stage. Writes are best-effort.
func (c *Context) Progress(stage string, pct int, msg string) {
	if c == nil || c.Job == nil || c.Job.Terminal() {
		return
	}
	c.write(map[string]interface{}{
		"stage":    stage,
		"progress": pct,
		"message":  msg,
	})
	c.Job.Stage = stage
	c.Job.Progress = pct
	c.Job.Message = msg
}

// Fail marks the run terminally failed. A run that already finished is left alone.
func (c *Context) Fail(stage string, err error) {
	if c == nil || c.Job == nil || c.Job.Terminal() {
		return
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	now := time.Now().UTC()
	c.write(map[string]interface{}{
		"status":      types.StatusFailed,
		"stage":       stage,
		"message":     "",
		"error":       msg,
		"finished_at": now,
	})
	c.Job.Status = types.StatusFailed
	c.Job.Stage = stage
	c.Job.Message = ""
	c.Job.Error = msg
	c.Job.FinishedAt = &now
}

// Succeed marks the run terminally succeeded and stores result as JSON.
func (c *Context) Succeed(finalStage string, result any) {
	if c == nil || c.Job == nil || c.Job.Terminal() {
		return
	}
	var res datatypes.JSON
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			c.Fail("encode_result", err)
			return
		}
		res = datatypes.JSON(b)
	}
	now := time.Now().UTC()
	c.write(map[string]interface{}{
		"status":      types.StatusSucceeded,
		"stage":       finalStage,
		"progress":    100,
		"message":     "",
		"error":       "",
		"result":      res,
		"finished_at": now,
	})
	c.Job.Status = types.StatusSucceeded
	c.Job.Stage = finalStage
	c.Job.Progress = 100
	c.Job.Message = ""
	c.Job.Error = ""
	c.Job.Result = res
	c.Job.FinishedAt = &now
}

func (c *Context) write(updates map[string]interface{}) {
	if c.Repo == nil || c.Job.ID == uuid.Nil {
		return
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := c.Repo.UpdateFieldsUnlessTerminal(dbctx.New(ctx), c.Job.ID, updates); err != nil && c.Log != nil {
		c.Log.Warn("job_run update failed", "job_id", c.Job.ID, "job_type", c.Job.JobType, "error", err)
	}
}
