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

type WishlistRepo interface {
	ListRecentByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.WishlistItem, error)
	Add(dbc dbctx.Context, userID, bookID uuid.UUID) error
}

type wishlistRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWishlistRepo(db *gorm.DB, baseLog *logger.Logger) WishlistRepo {
	return &wishlistRepo{db: db, log: baseLog.With("repo", "WishlistRepo")}
}

func (r *wishlistRepo) ListRecentByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.WishlistItem, error) {
	var out []*types.WishlistItem
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Preload("Book").Where("user_id = ?", userID).Order("created_at DESC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Add is idempotent per (user, book).
func (r *wishlistRepo) Add(dbc dbctx.Context, userID, bookID uuid.UUID) error {
	if userID == uuid.Nil || bookID == uuid.Nil {
		return nil
	}
	row := &types.WishlistItem{UserID: userID, BookID: bookID, CreatedAt: time.Now().UTC()}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
			DoNothing: true,
		}).
		Create(row).Error
}
