package reading

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/shelfmind-backend/internal/domain/reading"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

type OnboardingReportRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.OnboardingReport, error)
	Upsert(dbc dbctx.Context, row *types.OnboardingReport) error
}

type onboardingReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOnboardingReportRepo(db *gorm.DB, baseLog *logger.Logger) OnboardingReportRepo {
	return &onboardingReportRepo{db: db, log: baseLog.With("repo", "OnboardingReportRepo")}
}

func (r *onboardingReportRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.OnboardingReport, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.OnboardingReport
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// Upsert keeps a single row per user. The row id follows the latest report.
func (r *onboardingReportRepo) Upsert(dbc dbctx.Context, row *types.OnboardingReport) error {
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"id", "report_json", "created_at", "updated_at"}),
		}).
		Create(row).Error
}
