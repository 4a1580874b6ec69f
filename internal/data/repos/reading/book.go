package reading

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/shelfmind-backend/internal/data/db"
	types "github.com/yungbote/shelfmind-backend/internal/domain/reading"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

type BookRepo interface {
	// Resolve returns the existing row for the book (matched by ISBN-13, else title+author) or
	// creates it. The returned row always has an ID.
	Resolve(dbc dbctx.Context, book *types.Book) (*types.Book, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Book, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.Book, error)
}

type bookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookRepo(db *gorm.DB, baseLog *logger.Logger) BookRepo {
	return &bookRepo{db: db, log: baseLog.With("repo", "BookRepo")}
}

func (r *bookRepo) Resolve(dbc dbctx.Context, book *types.Book) (*types.Book, error) {
	if book == nil || strings.TrimSpace(book.Title) == "" {
		return nil, errors.New("book title required")
	}
	if existing, err := r.find(dbc, book); err != nil || existing != nil {
		return existing, err
	}
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now().UTC()
	}
	err := dbc.DB(r.db).Create(book).Error
	if err == nil {
		return book, nil
	}
	// Concurrent resolution of the same ISBN: the other writer won, read its row.
	if errors.Is(db.Classify(err), db.ErrConflict) {
		existing, findErr := r.find(dbc, book)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, err
}

func (r *bookRepo) find(dbc dbctx.Context, book *types.Book) (*types.Book, error) {
	var row types.Book
	q := dbc.DB(r.db)
	if book.ISBN13 != nil && strings.TrimSpace(*book.ISBN13) != "" {
		q = q.Where("isbn13 = ?", strings.TrimSpace(*book.ISBN13))
	} else {
		q = q.Where("title = ? AND author = ?", book.Title, book.Author)
	}
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *bookRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Book, error) {
	var out []*types.Book
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecent returns the most recently cataloged books.
func (r *bookRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.Book, error) {
	var out []*types.Book
	q := dbc.DB(r.db).Order("created_at DESC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
