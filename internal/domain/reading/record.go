package reading

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RecordStatusReading   = "reading"
	RecordStatusCompleted = "completed"
	RecordStatusDropped   = "dropped"
)

// ReadingRecord is one user's relationship with one book. StartedAt and CompletedAt double as
// the start/completion events the trending batch counts.
type ReadingRecord struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reading_record_user_book,priority:1;index" json:"user_id"`
	BookID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reading_record_user_book,priority:2;index" json:"book_id"`
	Book        *Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Status      string     `gorm:"not null;default:'reading';index" json:"status"`
	Rating      *int       `json:"rating,omitempty"`
	StartedAt   *time.Time `gorm:"index" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"index" json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `gorm:"not null;index" json:"updated_at"`
}

func (ReadingRecord) TableName() string { return "reading_records" }

func (r *ReadingRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type WishlistItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_book,priority:1;index" json:"user_id"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_book,priority:2" json:"book_id"`
	Book      *Book     `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (WishlistItem) TableName() string { return "wishlist_items" }

func (w *WishlistItem) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
