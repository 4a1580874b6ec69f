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

type PreferenceRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserPreference, error)
	Upsert(dbc dbctx.Context, row *types.UserPreference) error
}

type preferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	return &preferenceRepo{db: db, log: baseLog.With("repo", "PreferenceRepo")}
}

// GetByUserID returns (nil, nil) when the user has not completed the survey.
func (r *preferenceRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserPreference, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.UserPreference
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *preferenceRepo) Upsert(dbc dbctx.Context, row *types.UserPreference) error {
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	row.UpdatedAt = time.Now().UTC()
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"genres",
				"moods",
				"emotions",
				"themes",
				"narrative_styles",
				"purposes",
				"length",
				"pace",
				"difficulty",
				"completed_at",
				"updated_at",
			}),
		}).
		Create(row).Error
}
