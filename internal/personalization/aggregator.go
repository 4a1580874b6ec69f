package personalization

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	repos "github.com/yungbote/shelfmind-backend/internal/data/repos/reading"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

const (
	DefaultHistoryLimit  = 20
	DefaultWishlistLimit = 10
)

// Aggregator reads a user's stored preferences and reading behavior into a Snapshot.
type Aggregator struct {
	log           *logger.Logger
	prefs         repos.PreferenceRepo
	records       repos.ReadingRecordRepo
	wishlist      repos.WishlistRepo
	historyLimit  int
	wishlistLimit int
}

func NewAggregator(baseLog *logger.Logger, prefs repos.PreferenceRepo, records repos.ReadingRecordRepo, wishlist repos.WishlistRepo) *Aggregator {
	return &Aggregator{
		log:           baseLog.With("service", "PreferenceAggregator"),
		prefs:         prefs,
		records:       records,
		wishlist:      wishlist,
		historyLimit:  DefaultHistoryLimit,
		wishlistLimit: DefaultWishlistLimit,
	}
}

// Aggregate never fails on a missing preference row; it returns a snapshot whose
// OnboardingComplete is false. Store errors are returned as-is.
func (a *Aggregator) Aggregate(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	dbc := dbctx.New(ctx)

	pref, err := a.prefs.GetByUserID(dbc, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load preferences: %w", err)
	}
	var snap Snapshot
	if pref != nil {
		snap = SnapshotFromSurvey(OnboardingData{
			Genres:          pref.Genres,
			Moods:           pref.Moods,
			Emotions:        pref.Emotions,
			Themes:          pref.Themes,
			NarrativeStyles: pref.NarrativeStyles,
			Purposes:        pref.Purposes,
			Length:          pref.Length,
			Pace:            pref.Pace,
			Difficulty:      pref.Difficulty,
		})
	} else {
		snap = SnapshotFromSurvey(OnboardingData{})
	}

	records, err := a.records.ListRecentByUser(dbc, userID, a.historyLimit)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load reading history: %w", err)
	}
	for _, r := range records {
		if r == nil || r.Book == nil || trimmed(r.Book.Title) == "" {
			continue
		}
		snap.ReadHistory = append(snap.ReadHistory, BookRef{Title: r.Book.Title, Author: r.Book.Author, Rating: r.Rating})
	}

	items, err := a.wishlist.ListRecentByUser(dbc, userID, a.wishlistLimit)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load wishlist: %w", err)
	}
	for _, w := range items {
		if w == nil || w.Book == nil || trimmed(w.Book.Title) == "" {
			continue
		}
		snap.Wishlist = append(snap.Wishlist, BookRef{Title: w.Book.Title, Author: w.Book.Author})
	}

	a.log.Debug("Aggregated preference snapshot",
		"user_id", userID,
		"onboarding_complete", snap.OnboardingComplete(),
		"history", len(snap.ReadHistory),
		"wishlist", len(snap.Wishlist),
	)
	return snap, nil
}
