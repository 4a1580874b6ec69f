package reading

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RecommendationPersonalized = "personalized"
	RecommendationTrending     = "trending"
	RecommendationSimilar      = "similar"
)

// RecommendationCache holds one generated recommendation for (user, book, type).
// CandidateJSON keeps the full candidate (reasons included) so a cache hit needs no joins.
type RecommendationCache struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_rec_cache_key,priority:1" json:"user_id"`
	BookID             uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_rec_cache_key,priority:2" json:"book_id"`
	RecommendationType string         `gorm:"column:recommendation_type;not null;uniqueIndex:idx_rec_cache_key,priority:3" json:"recommendation_type"`
	Score              int            `gorm:"not null;default:0" json:"score"`
	Reason             string         `gorm:"not null;default:''" json:"reason"`
	CandidateJSON      datatypes.JSON `gorm:"column:candidate_json" json:"candidate_json"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	ExpiresAt          time.Time      `gorm:"not null;index" json:"expires_at"`
}

func (RecommendationCache) TableName() string { return "recommendation_cache" }

func (r *RecommendationCache) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TrendingBook is one row of the global popularity ranking. The table is replaced wholesale
// on every aggregation run.
type TrendingBook struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookID      uuid.UUID `gorm:"type:uuid;not null;index" json:"book_id"`
	Book        *Book     `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Rank        int       `gorm:"column:ranking;not null;index" json:"rank"`
	Score       float64   `gorm:"not null" json:"score"`
	Completions int       `gorm:"not null;default:0" json:"completions"`
	Starts      int       `gorm:"not null;default:0" json:"starts"`
	WindowStart time.Time `gorm:"not null" json:"window_start"`
	WindowEnd   time.Time `gorm:"not null" json:"window_end"`
	ComputedAt  time.Time `gorm:"not null" json:"computed_at"`
}

func (TrendingBook) TableName() string { return "trending_books" }

func (t *TrendingBook) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// OnboardingReport is the single active report per user; regeneration overwrites it.
type OnboardingReport struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	ReportJSON datatypes.JSON `gorm:"column:report_json" json:"report_json"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

func (OnboardingReport) TableName() string { return "onboarding_reports" }

func (r *OnboardingReport) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
