package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/shelfmind-backend/internal/domain/reading"
)

func SeedBook(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, createdAt time.Time) *types.Book {
	tb.Helper()
	b := &types.Book{
		ID:        uuid.New(),
		Title:     title,
		Author:    "author of " + title,
		CreatedAt: createdAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed book: %v", err)
	}
	return b
}

func SeedRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, bookID uuid.UUID, status string, startedAt, completedAt *time.Time) *types.ReadingRecord {
	tb.Helper()
	r := &types.ReadingRecord{
		ID:          uuid.New(),
		UserID:      userID,
		BookID:      bookID,
		Status:      status,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		UpdatedAt:   time.Now().UTC(),
	}
	if completedAt != nil {
		r.UpdatedAt = completedAt.UTC()
	} else if startedAt != nil {
		r.UpdatedAt = startedAt.UTC()
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed reading record: %v", err)
	}
	return r
}

func PtrTime(v time.Time) *time.Time { return &v }

func PtrString(v string) *string { return &v }

func PtrInt(v int) *int { return &v }
