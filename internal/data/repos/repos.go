package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/shelfmind-backend/internal/data/repos/jobs"
	"github.com/yungbote/shelfmind-backend/internal/data/repos/reading"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

type BookRepo = reading.BookRepo
type PreferenceRepo = reading.PreferenceRepo
type ReadingRecordRepo = reading.ReadingRecordRepo
type WishlistRepo = reading.WishlistRepo
type RecommendationCacheRepo = reading.RecommendationCacheRepo
type TrendingRepo = reading.TrendingRepo
type OnboardingReportRepo = reading.OnboardingReportRepo

type JobRunRepo = jobs.JobRunRepo

func NewBookRepo(db *gorm.DB, baseLog *logger.Logger) BookRepo {
	return reading.NewBookRepo(db, baseLog)
}
func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	return reading.NewPreferenceRepo(db, baseLog)
}
func NewReadingRecordRepo(db *gorm.DB, baseLog *logger.Logger) ReadingRecordRepo {
	return reading.NewReadingRecordRepo(db, baseLog)
}
func NewWishlistRepo(db *gorm.DB, baseLog *logger.Logger) WishlistRepo {
	return reading.NewWishlistRepo(db, baseLog)
}
func NewRecommendationCacheRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationCacheRepo {
	return reading.NewRecommendationCacheRepo(db, baseLog)
}
func NewTrendingRepo(db *gorm.DB, baseLog *logger.Logger) TrendingRepo {
	return reading.NewTrendingRepo(db, baseLog)
}
func NewOnboardingReportRepo(db *gorm.DB, baseLog *logger.Logger) OnboardingReportRepo {
	return reading.NewOnboardingReportRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}
