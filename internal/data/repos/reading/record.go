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

// BookActivity is the per-book event count inside a time window.
type BookActivity struct {
	BookID      uuid.UUID
	Starts      int
	Completions int
}

type ReadingRecordRepo interface {
	ListRecentByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ReadingRecord, error)
	Upsert(dbc dbctx.Context, row *types.ReadingRecord) error
	CountActivitySince(dbc dbctx.Context, since, until time.Time) ([]BookActivity, error)
}

type readingRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReadingRecordRepo(db *gorm.DB, baseLog *logger.Logger) ReadingRecordRepo {
	return &readingRecordRepo{db: db, log: baseLog.With("repo", "ReadingRecordRepo")}
}

// ListRecentByUser returns completed and in-progress records, most recently touched first.
func (r *readingRecordRepo) ListRecentByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ReadingRecord, error) {
	var out []*types.ReadingRecord
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).
		Preload("Book").
		Where("user_id = ? AND status IN ?", userID, []string{types.RecordStatusReading, types.RecordStatusCompleted}).
		Order("updated_at DESC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *readingRecordRepo) Upsert(dbc dbctx.Context, row *types.ReadingRecord) error {
	if row == nil || row.UserID == uuid.Nil || row.BookID == uuid.Nil {
		return nil
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "rating", "started_at", "completed_at", "updated_at"}),
		}).
		Create(row).Error
}

type activityRow struct {
	BookID uuid.UUID
	N      int
}

// CountActivitySince counts start and completion events per book in [since, until).
func (r *readingRecordRepo) CountActivitySince(dbc dbctx.Context, since, until time.Time) ([]BookActivity, error) {
	var starts []activityRow
	if err := dbc.DB(r.db).
		Model(&types.ReadingRecord{}).
		Select("book_id, COUNT(*) AS n").
		Where("started_at >= ? AND started_at < ?", since, until).
		Group("book_id").
		Scan(&starts).Error; err != nil {
		return nil, err
	}
	var completions []activityRow
	if err := dbc.DB(r.db).
		Model(&types.ReadingRecord{}).
		Select("book_id, COUNT(*) AS n").
		Where("status = ? AND completed_at >= ? AND completed_at < ?", types.RecordStatusCompleted, since, until).
		Group("book_id").
		Scan(&completions).Error; err != nil {
		return nil, err
	}

	byBook := map[uuid.UUID]*BookActivity{}
	order := make([]uuid.UUID, 0, len(starts)+len(completions))
	get := func(id uuid.UUID) *BookActivity {
		a, ok := byBook[id]
		if !ok {
			a = &BookActivity{BookID: id}
			byBook[id] = a
			order = append(order, id)
		}
		return a
	}
	for _, s := range starts {
		get(s.BookID).Starts += s.N
	}
	for _, c := range completions {
		get(c.BookID).Completions += c.N
	}
	out := make([]BookActivity, 0, len(order))
	for _, id := range order {
		out = append(out, *byBook[id])
	}
	return out, nil
}
