package db

import (
	"gorm.io/gorm"

	jobtypes "github.com/yungbote/shelfmind-backend/internal/domain/jobs"
	types "github.com/yungbote/shelfmind-backend/internal/domain/reading"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Catalog
		&types.Book{},

		// User-owned reading data
		&types.UserPreference{},
		&types.ReadingRecord{},
		&types.WishlistItem{},

		// Derived / regenerable
		&types.RecommendationCache{},
		&types.TrendingBook{},
		&types.OnboardingReport{},

		// Batch job audit
		&jobtypes.JobRun{},
	)
}
