package trending_refresh

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	repos "github.com/yungbote/shelfmind-backend/internal/data/repos/reading"
	"github.com/yungbote/shelfmind-backend/internal/data/repos/testutil"
	jobtypes "github.com/yungbote/shelfmind-backend/internal/domain/jobs"
	types "github.com/yungbote/shelfmind-backend/internal/domain/reading"
	jobrt "github.com/yungbote/shelfmind-backend/internal/jobs/runtime"
	"github.com/yungbote/shelfmind-backend/internal/trending"
)

func TestRun(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	book := testutil.SeedBook(t, ctx, db, "달러구트 꿈 백화점", now.Add(-30*24*time.Hour))
	at := testutil.PtrTime(now.Add(-24 * time.Hour))
	testutil.SeedRecord(t, ctx, db, uuid.New(), book.ID, types.RecordStatusCompleted, at, at)

	agg := trending.NewAggregator(log,
		repos.NewReadingRecordRepo(db, log),
		repos.NewTrendingRepo(db, log),
		repos.NewRecommendationCacheRepo(db, log),
		trending.Config{},
	)
	p := New(log, agg)

	job := &jobtypes.JobRun{ID: uuid.New(), JobType: JobType, Status: jobtypes.StatusRunning}
	jc := jobrt.NewContext(ctx, job, nil, log, now)
	if err := p.Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if job.Status != jobtypes.StatusSucceeded {
		t.Fatalf("status=%s error=%s", job.Status, job.Error)
	}
	var sum trending.Summary
	if err := json.Unmarshal(job.Result, &sum); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if sum.Ranked != 1 || !sum.WindowEnd.Equal(now) {
		t.Fatalf("summary=%+v", sum)
	}
}

func TestRunWithoutAggregatorFails(t *testing.T) {
	job := &jobtypes.JobRun{ID: uuid.New(), JobType: JobType, Status: jobtypes.StatusRunning}
	p := New(testutil.Logger(t), nil)
	if err := p.Run(jobrt.NewContext(context.Background(), job, nil, nil, time.Now())); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if job.Status != jobtypes.StatusFailed || job.Stage != "validate" {
		t.Fatalf("job=%+v", job)
	}
}
