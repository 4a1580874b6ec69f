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

type RecommendationCacheRepo interface {
	// ListFresh returns rows with expires_at strictly after now, highest score first.
	ListFresh(dbc dbctx.Context, userID uuid.UUID, recType string, now time.Time) ([]*types.RecommendationCache, error)
	Upsert(dbc dbctx.Context, rows []*types.RecommendationCache) error
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID, recType string) (int64, error)
	DeleteExpired(dbc dbctx.Context, now time.Time) (int64, error)
}

type recommendationCacheRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationCacheRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationCacheRepo {
	return &recommendationCacheRepo{db: db, log: baseLog.With("repo", "RecommendationCacheRepo")}
}

func (r *recommendationCacheRepo) ListFresh(dbc dbctx.Context, userID uuid.UUID, recType string, now time.Time) ([]*types.RecommendationCache, error) {
	var out []*types.RecommendationCache
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND recommendation_type = ? AND expires_at > ?", userID, recType, now.UTC()).
		Order("score DESC").
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert writes rows keyed by (user_id, book_id, recommendation_type); the last writer wins.
func (r *recommendationCacheRepo) Upsert(dbc dbctx.Context, rows []*types.RecommendationCache) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "book_id"}, {Name: "recommendation_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"score",
				"reason",
				"candidate_json",
				"created_at",
				"expires_at",
			}),
		}).
		Create(&rows).Error
}

func (r *recommendationCacheRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID, recType string) (int64, error) {
	if userID == uuid.Nil {
		return 0, nil
	}
	q := dbc.DB(r.db).Where("user_id = ?", userID)
	if recType != "" {
		q = q.Where("recommendation_type = ?", recType)
	}
	res := q.Delete(&types.RecommendationCache{})
	return res.RowsAffected, res.Error
}

func (r *recommendationCacheRepo) DeleteExpired(dbc dbctx.Context, now time.Time) (int64, error) {
	res := dbc.DB(r.db).Where("expires_at <= ?", now.UTC()).Delete(&types.RecommendationCache{})
	return res.RowsAffected, res.Error
}
