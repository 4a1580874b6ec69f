package reading

import (
	"gorm.io/gorm"

	types "github.com/yungbote/shelfmind-backend/internal/domain/reading"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

type TrendingRepo interface {
	ListTop(dbc dbctx.Context, limit int) ([]*types.TrendingBook, error)
	// ReplaceAll deletes the previous ranking and inserts rows in one transaction.
	ReplaceAll(dbc dbctx.Context, rows []*types.TrendingBook) error
}

type trendingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrendingRepo(db *gorm.DB, baseLog *logger.Logger) TrendingRepo {
	return &trendingRepo{db: db, log: baseLog.With("repo", "TrendingRepo")}
}

func (r *trendingRepo) ListTop(dbc dbctx.Context, limit int) ([]*types.TrendingBook, error) {
	var out []*types.TrendingBook
	q := dbc.DB(r.db).Preload("Book").Order("ranking ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *trendingRepo) ReplaceAll(dbc dbctx.Context, rows []*types.TrendingBook) error {
	return dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&types.TrendingBook{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Omit("Book").Create(&rows).Error
	})
}
