package recommend

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	repos "github.com/yungbote/shelfmind-backend/internal/data/repos/reading"
	"github.com/yungbote/shelfmind-backend/internal/data/repos/testutil"
	"github.com/yungbote/shelfmind-backend/internal/narrative"
	"github.com/yungbote/shelfmind-backend/internal/personalization"
	"github.com/yungbote/shelfmind-backend/internal/platform/googlebooks"
)

type fakeNarrator struct {
	calls atomic.Int32
	out   narrative.Output
}

func (f *fakeNarrator) Generate(_ context.Context, kind narrative.Kind, _ narrative.Input) narrative.Output {
	f.calls.Add(1)
	out := f.out
	out.Kind = kind
	return out
}

func degradedNarrator() *fakeNarrator {
	return &fakeNarrator{out: narrative.Output{Degraded: true, Cause: narrative.CauseTimeout}}
}

type fakeCatalog struct {
	// alias maps a queried title onto the volume it resolves to.
	alias   map[string]string
	delay   map[string]time.Duration
	missing map[string]bool
	failing map[string]bool
}

func (f *fakeCatalog) SearchByTitle(ctx context.Context, title string) (*googlebooks.Record, error) {
	if d := f.delay[title]; d > 0 {
		time.Sleep(d)
	}
	if f.failing[title] {
		return nil, errors.New("catalog unavailable")
	}
	if f.missing[title] {
		return nil, nil
	}
	if canonical, ok := f.alias[title]; ok {
		title = canonical
	}
	return &googlebooks.Record{ID: "cat-" + title, Title: title, Author: "author of " + title}, nil
}

type fakeSnapshots struct {
	snap personalization.Snapshot
	err  error
}

func (f fakeSnapshots) Aggregate(context.Context, uuid.UUID) (personalization.Snapshot, error) {
	return f.snap, f.err
}

type harness struct {
	db       *gorm.DB
	cache    repos.RecommendationCacheRepo
	books    repos.BookRepo
	trending repos.TrendingRepo
}

func newHarness(t *testing.T) harness {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	return harness{
		db:       gdb,
		cache:    repos.NewRecommendationCacheRepo(gdb, log),
		books:    repos.NewBookRepo(gdb, log),
		trending: repos.NewTrendingRepo(gdb, log),
	}
}

func (h harness) controller(t *testing.T, snaps SnapshotSource, narrator Narrator, catalog googlebooks.Lookup) *Controller {
	t.Helper()
	log := testutil.Logger(t)
	synth := NewSynthesizer(log, narrator, catalog, 4)
	return NewController(log, snaps, synth, h.cache, h.books, h.trending, DefaultTTL)
}

func onboardedSnapshot() personalization.Snapshot {
	return personalization.SnapshotFromSurvey(personalization.OnboardingData{
		Genres: []string{"판타지", "SF"},
		Moods:  []string{"따뜻한"},
		Themes: []string{"가족"},
	})
}

func ideas(titles ...string) narrative.Output {
	out := narrative.Output{}
	for _, title := range titles {
		out.Books = append(out.Books, narrative.BookIdea{Title: title, Author: "author of " + title, Reason: "LLM 추천 이유", Score: 0.8})
	}
	return out
}
