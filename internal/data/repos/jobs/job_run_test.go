package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/shelfmind-backend/internal/data/repos/testutil"
	types "github.com/yungbote/shelfmind-backend/internal/domain/jobs"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
)

func TestJobRunRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.New(ctx)
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	old := &types.JobRun{JobType: "test_job", Status: types.StatusRunning, StartedAt: now.Add(-48 * time.Hour)}
	latest := &types.JobRun{JobType: "test_job", Status: types.StatusRunning, StartedAt: now.Add(-time.Hour)}
	other := &types.JobRun{JobType: "other_job", Status: types.StatusRunning, StartedAt: now}
	for _, j := range []*types.JobRun{old, latest, other} {
		if err := repo.Create(dbc, j); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.LatestByType(dbc, "test_job")
	if err != nil {
		t.Fatalf("LatestByType: %v", err)
	}
	if got == nil || got.ID != latest.ID {
		t.Fatalf("LatestByType=%v want %s", got, latest.ID)
	}
	if none, err := repo.LatestByType(dbc, "missing"); err != nil || none != nil {
		t.Fatalf("LatestByType(missing)=%v err=%v", none, err)
	}

	finished := now.Add(-47 * time.Hour)
	ok, err := repo.UpdateFieldsUnlessTerminal(dbc, old.ID, map[string]interface{}{
		"status":      types.StatusSucceeded,
		"finished_at": finished,
	})
	if err != nil || !ok {
		t.Fatalf("finish old: ok=%v err=%v", ok, err)
	}
	ok, err = repo.UpdateFieldsUnlessTerminal(dbc, old.ID, map[string]interface{}{"status": types.StatusFailed})
	if err != nil {
		t.Fatalf("update terminal: %v", err)
	}
	if ok {
		t.Fatalf("terminal run should not be updated")
	}

	rows, err := repo.GetByIDs(dbc, nil)
	if err != nil || len(rows) != 0 {
		t.Fatalf("GetByIDs(nil)=%v err=%v", rows, err)
	}

	n, err := repo.DeleteFinishedBefore(dbc, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteFinishedBefore: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted=%d want 1", n)
	}
	rows, err = repo.GetByIDs(dbc, []uuid.UUID{old.ID, latest.ID, other.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d want 2", len(rows))
	}
}
