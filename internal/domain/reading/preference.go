package reading

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserPreference is the survey answer set a user gives during onboarding and may later edit.
// One row per user.
type UserPreference struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	Genres          datatypes.JSONSlice[string] `gorm:"column:genres" json:"genres"`
	Moods           datatypes.JSONSlice[string] `gorm:"column:moods" json:"moods"`
	Emotions        datatypes.JSONSlice[string] `gorm:"column:emotions" json:"emotions"`
	Themes          datatypes.JSONSlice[string] `gorm:"column:themes" json:"themes"`
	NarrativeStyles datatypes.JSONSlice[string] `gorm:"column:narrative_styles" json:"narrative_styles"`
	Purposes        datatypes.JSONSlice[string] `gorm:"column:purposes" json:"purposes"`

	Length     string `gorm:"not null;default:''" json:"length"`
	Pace       string `gorm:"not null;default:''" json:"pace"`
	Difficulty string `gorm:"not null;default:''" json:"difficulty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `gorm:"not null;index" json:"updated_at"`
}

func (UserPreference) TableName() string { return "user_preferences" }

func (p *UserPreference) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
