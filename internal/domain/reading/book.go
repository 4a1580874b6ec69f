package reading

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Book is the local catalog row. Rows are created lazily when a catalog lookup resolves a
// recommended title, or by the bookshelf CRUD surface.
type Book struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ISBN13      *string   `gorm:"column:isbn13;size:13;uniqueIndex" json:"isbn13,omitempty"`
	Title       string    `gorm:"not null;index" json:"title"`
	Author      string    `gorm:"not null;default:''" json:"author"`
	CoverURL    string    `gorm:"column:cover_url;not null;default:''" json:"cover_url"`
	Description string    `gorm:"not null;default:''" json:"description"`
	Category    string    `gorm:"not null;default:''" json:"category"`
	Source      string    `gorm:"not null;default:''" json:"source"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
}

func (Book) TableName() string { return "books" }

func (b *Book) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
