package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/shelfmind-backend/internal/domain/jobs"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

type JobRunRepo interface {
	Create(dbc dbctx.Context, job *types.JobRun) error
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.JobRun, error)
	// LatestByType returns the most recently started run of jobType, or nil.
	LatestByType(dbc dbctx.Context, jobType string) (*types.JobRun, error)
	// UpdateFieldsUnlessTerminal applies updates unless the run already finished. It reports
	// whether a row changed.
	UpdateFieldsUnlessTerminal(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	// DeleteFinishedBefore trims the audit log.
	DeleteFinishedBefore(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type jobRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return &jobRunRepo{
		db:  db,
		log: baseLog.With("repo", "JobRunRepo"),
	}
}

func (r *jobRunRepo) Create(dbc dbctx.Context, job *types.JobRun) error {
	if job == nil {
		return nil
	}
	now := time.Now().UTC()
	if job.StartedAt.IsZero() {
		job.StartedAt = now
	}
	job.UpdatedAt = now
	return dbc.DB(r.db).Create(job).Error
}

func (r *jobRunRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.JobRun, error) {
	var out []*types.JobRun
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobRunRepo) LatestByType(dbc dbctx.Context, jobType string) (*types.JobRun, error) {
	var out []*types.JobRun
	if err := dbc.DB(r.db).
		Where("job_type = ?", jobType).
		Order("started_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *jobRunRepo) UpdateFieldsUnlessTerminal(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := dbc.DB(r.db).
		Model(&types.JobRun{}).
		Where("id = ?", id).
		Where("status NOT IN ?", []string{types.StatusSucceeded, types.StatusFailed}).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *jobRunRepo) DeleteFinishedBefore(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	res := dbc.DB(r.db).
		Where("finished_at IS NOT NULL AND finished_at < ?", cutoff.UTC()).
		Delete(&types.JobRun{})
	return res.RowsAffected, res.Error
}
