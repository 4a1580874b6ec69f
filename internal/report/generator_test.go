package report

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	repos "github.com/yungbote/shelfmind-backend/internal/data/repos/reading"
	"github.com/yungbote/shelfmind-backend/internal/data/repos/testutil"
	types "github.com/yungbote/shelfmind-backend/internal/domain/reading"
	"github.com/yungbote/shelfmind-backend/internal/narrative"
	"github.com/yungbote/shelfmind-backend/internal/personalization"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
	"github.com/yungbote/shelfmind-backend/internal/recommend"
)

var survey = personalization.OnboardingData{
	Genres:     []string{"판타지", "SF"},
	Moods:      []string{"밝은", "따뜻한"},
	Emotions:   []string{"설렘"},
	Themes:     []string{"우정"},
	Purposes:   []string{"휴식"},
	Pace:       "느린",
	Difficulty: "보통",
}

type scriptedNarrator struct {
	out   map[narrative.Kind]narrative.Output
	calls []narrative.Kind
}

func (n *scriptedNarrator) Generate(_ context.Context, kind narrative.Kind, _ narrative.Input) narrative.Output {
	n.calls = append(n.calls, kind)
	return n.out[kind]
}

type fakeBooks struct {
	items     []recommend.Candidate
	err       error
	genreSeen string
	general   int
}

func (f *fakeBooks) Synthesize(context.Context, personalization.Snapshot, int) ([]recommend.Candidate, error) {
	f.general++
	return f.items, f.err
}

func (f *fakeBooks) SynthesizeGenre(_ context.Context, _ personalization.Snapshot, genre string, _ int) ([]recommend.Candidate, error) {
	f.genreSeen = genre
	return f.items, f.err
}

type failingReports struct{}

func (failingReports) GetByUserID(dbctx.Context, uuid.UUID) (*types.OnboardingReport, error) {
	return nil, errors.New("db down")
}

func (failingReports) Upsert(dbctx.Context, *types.OnboardingReport) error {
	return errors.New("db down")
}

func TestGenerateRequiresUser(t *testing.T) {
	g := NewGenerator(testutil.Logger(t), &scriptedNarrator{}, nil, nil)
	if _, err := g.Generate(context.Background(), uuid.Nil, survey); !errors.Is(err, ErrMissingUser) {
		t.Fatalf("err=%v want ErrMissingUser", err)
	}
}

// With no LLM both narrative steps and the book step fall back to static content, and two
// runs over the same survey agree on everything except identity and time.
func TestGenerateWithoutLLMIsIdempotent(t *testing.T) {
	log := testutil.Logger(t)
	gdb := testutil.DB(t)
	ctx := context.Background()

	narr := narrative.NewGenerator(log, nil, narrative.Config{})
	synth := recommend.NewSynthesizer(log, narr, nil, 2)
	g := NewGenerator(log, narr, synth, repos.NewOnboardingReportRepo(gdb, log))
	userID := uuid.New()

	first, err := g.Generate(ctx, userID, survey)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := g.Generate(ctx, userID, survey)
	if err != nil {
		t.Fatalf("Generate again: %v", err)
	}

	if !first.NarrativeDegraded {
		t.Fatalf("expected degraded narrative")
	}
	if first.CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at location=%v want UTC", first.CreatedAt.Location())
	}
	if len(first.InsightSections) == 0 || first.SummaryText == "" || first.ClosingText == "" {
		t.Fatalf("static narrative missing: %+v", first)
	}
	if !reflect.DeepEqual(first.TraitProfile, second.TraitProfile) ||
		!reflect.DeepEqual(first.Persona, second.Persona) ||
		!reflect.DeepEqual(first.RadarPoints, second.RadarPoints) ||
		!reflect.DeepEqual(first.InsightSections, second.InsightSections) ||
		first.SummaryText != second.SummaryText ||
		first.ClosingText != second.ClosingText ||
		!reflect.DeepEqual(first.Recommendations, second.Recommendations) {
		t.Fatalf("reports differ:\n%+v\n%+v", first, second)
	}

	wantRecs := FallbackRecommendations(personalization.SnapshotFromSurvey(survey))
	if !reflect.DeepEqual(first.Recommendations, wantRecs) {
		t.Fatalf("recommendations=%+v want static list", first.Recommendations)
	}

	stored, err := g.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored == nil || stored.ReportID != second.ReportID {
		t.Fatalf("stored report=%+v want id %s", stored, second.ReportID)
	}
	if !reflect.DeepEqual(stored.TraitProfile, second.TraitProfile) {
		t.Fatalf("stored profile=%+v", stored.TraitProfile)
	}
}

func TestGenerateUsesNarrativeAndCapsBooks(t *testing.T) {
	narr := &scriptedNarrator{out: map[narrative.Kind]narrative.Output{
		narrative.KindReportAnalysis: {Sections: []narrative.Section{{Title: "t", Body: "b"}}},
		narrative.KindReportSummary:  {Summary: "요약", Closing: "마무리"},
	}}
	books := &fakeBooks{}
	for i := 0; i < 5; i++ {
		books.items = append(books.items, recommend.Candidate{Title: string(rune('A' + i)), MatchScore: 80})
	}
	g := NewGenerator(testutil.Logger(t), narr, books, nil)

	rep, err := g.Generate(context.Background(), uuid.New(), survey)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rep.NarrativeDegraded || rep.SummaryText != "요약" || rep.ClosingText != "마무리" || len(rep.InsightSections) != 1 {
		t.Fatalf("narrative not applied: %+v", rep)
	}
	if !reflect.DeepEqual(narr.calls, []narrative.Kind{narrative.KindReportAnalysis, narrative.KindReportSummary}) {
		t.Fatalf("calls=%v", narr.calls)
	}
	if len(rep.Recommendations) != MaxRecommendations || rep.Recommendations[0].Title != "A" {
		t.Fatalf("recommendations=%+v", rep.Recommendations)
	}
	// genres normalise to sorted order, so "sf" comes first
	if books.genreSeen != "sf" || books.general != 0 {
		t.Fatalf("genreSeen=%q general=%d", books.genreSeen, books.general)
	}
}

func TestGenerateWithoutGenresUsesPersonalizedList(t *testing.T) {
	books := &fakeBooks{err: recommend.ErrNoCandidates}
	g := NewGenerator(testutil.Logger(t), &scriptedNarrator{}, books, nil)

	rep, err := g.Generate(context.Background(), uuid.New(), personalization.OnboardingData{Moods: []string{"잔잔한"}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if books.general != 1 {
		t.Fatalf("Synthesize calls=%d want 1", books.general)
	}
	if len(rep.Recommendations) != 2 || rep.Recommendations[0].Title != "아몬드" {
		t.Fatalf("recommendations=%+v want default static list", rep.Recommendations)
	}
}

func TestGenerateSwallowsPersistFailure(t *testing.T) {
	g := NewGenerator(testutil.Logger(t), &scriptedNarrator{}, nil, failingReports{})
	rep, err := g.Generate(context.Background(), uuid.New(), survey)
	if err != nil || rep == nil {
		t.Fatalf("rep=%v err=%v", rep, err)
	}
	if _, err := g.Get(context.Background(), rep.UserID); err == nil {
		t.Fatalf("Get should surface read errors")
	}
}
