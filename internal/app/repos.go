package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/shelfmind-backend/internal/data/repos"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

type Repos struct {
	Book                repos.BookRepo
	Preference          repos.PreferenceRepo
	ReadingRecord       repos.ReadingRecordRepo
	Wishlist            repos.WishlistRepo
	RecommendationCache repos.RecommendationCacheRepo
	Trending            repos.TrendingRepo
	OnboardingReport    repos.OnboardingReportRepo
	JobRun              repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Book:                repos.NewBookRepo(db, log),
		Preference:          repos.NewPreferenceRepo(db, log),
		ReadingRecord:       repos.NewReadingRecordRepo(db, log),
		Wishlist:            repos.NewWishlistRepo(db, log),
		RecommendationCache: repos.NewRecommendationCacheRepo(db, log),
		Trending:            repos.NewTrendingRepo(db, log),
		OnboardingReport:    repos.NewOnboardingReportRepo(db, log),
		JobRun:              repos.NewJobRunRepo(db, log),
	}
}
