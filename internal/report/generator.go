package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/shelfmind-backend/internal/data/db"
	repos "github.com/yungbote/shelfmind-backend/internal/data/repos/reading"
	types "github.com/yungbote/shelfmind-backend/internal/domain/reading"
	"github.com/yungbote/shelfmind-backend/internal/narrative"
	"github.com/yungbote/shelfmind-backend/internal/observability"
	"github.com/yungbote/shelfmind-backend/internal/personalization"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
	"github.com/yungbote/shelfmind-backend/internal/recommend"
)

var ErrMissingUser = errors.New("report: user id required")

type Narrator interface {
	Generate(ctx context.Context, kind narrative.Kind, in narrative.Input) narrative.Output
}

// BookSource proposes report recommendations.
type BookSource interface {
	Synthesize(ctx context.Context, snap personalization.Snapshot, limit int) ([]recommend.Candidate, error)
	SynthesizeGenre(ctx context.Context, snap personalization.Snapshot, genre string, limit int) ([]recommend.Candidate, error)
}

// Generator builds onboarding reports. Every step after input validation tolerates failure,
// so Generate only errors on a missing user.
type Generator struct {
	log      *logger.Logger
	narrator Narrator
	books    BookSource
	reports  repos.OnboardingReportRepo
	now      func() time.Time
}

func NewGenerator(baseLog *logger.Logger, narrator Narrator, books BookSource, reports repos.OnboardingReportRepo) *Generator {
	return &Generator{
		log:      baseLog.With("service", "ReportGenerator"),
		narrator: narrator,
		books:    books,
		reports:  reports,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (g *Generator) Generate(ctx context.Context, userID uuid.UUID, data personalization.OnboardingData) (rep *OnboardingReport, err error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}
	ctx, span := observability.StartSpan(ctx, "report.generate", attribute.String("user.id", userID.String()))
	defer func() { observability.EndSpan(span, err) }()

	snap := personalization.SnapshotFromSurvey(data)
	profile := personalization.ScoreTraits(snap)
	persona := personalization.Classify(snap, profile)
	in := narrative.Input{Snapshot: snap, Profile: profile, Persona: persona}

	analysis := g.narrator.Generate(ctx, narrative.KindReportAnalysis, in)
	radar := RadarPoints(profile)
	recs := g.recommendations(ctx, snap)
	growth := Growth(snap)
	stats := Stats(snap)

	in.Sections = analysis.Sections
	summary := g.narrator.Generate(ctx, narrative.KindReportSummary, in)

	rep = &OnboardingReport{
		ReportID:          uuid.New(),
		UserID:            userID,
		CreatedAt:         g.now(),
		Persona:           persona,
		TraitProfile:      profile,
		InsightSections:   analysis.Sections,
		RadarPoints:       radar,
		Recommendations:   recs,
		GrowthPotential:   growth,
		Statistics:        stats,
		SummaryText:       summary.Summary,
		ClosingText:       summary.Closing,
		NarrativeDegraded: analysis.Degraded || summary.Degraded,
	}
	g.persist(ctx, rep)

	span.SetAttributes(
		attribute.String("report.persona", persona.Key),
		attribute.Bool("report.narrative_degraded", rep.NarrativeDegraded),
	)
	observability.Current().IncReportGenerated(persona.Key, rep.NarrativeDegraded)
	g.log.Info("Onboarding report generated",
		"user_id", userID,
		"report_id", rep.ReportID,
		"persona", persona.Key,
		"recommendations", len(recs),
		"narrative_degraded", rep.NarrativeDegraded,
	)
	return rep, nil
}

// Get returns the user's stored report, or nil when none exists.
func (g *Generator) Get(ctx context.Context, userID uuid.UUID) (*OnboardingReport, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}
	row, err := g.reports.GetByUserID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if row == nil || len(row.ReportJSON) == 0 {
		return nil, nil
	}
	var rep OnboardingReport
	if err := json.Unmarshal(row.ReportJSON, &rep); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", row.ID, err)
	}
	return &rep, nil
}

// recommendations prefers books for the reader's first genre, then a general personalized
// list, then the static catalog.
func (g *Generator) recommendations(ctx context.Context, snap personalization.Snapshot) []recommend.Candidate {
	if g.books != nil {
		var (
			out []recommend.Candidate
			err error
		)
		if len(snap.Genres) > 0 {
			out, err = g.books.SynthesizeGenre(ctx, snap, snap.Genres[0], MaxRecommendations)
		} else {
			out, err = g.books.Synthesize(ctx, snap, MaxRecommendations)
		}
		if err != nil {
			g.log.Warn("Report recommendations unavailable, using static list", "error", err)
		}
		if len(out) > 0 {
			if len(out) > MaxRecommendations {
				out = out[:MaxRecommendations]
			}
			return out
		}
	}
	return FallbackRecommendations(snap)
}

func (g *Generator) persist(ctx context.Context, rep *OnboardingReport) {
	if g.reports == nil {
		return
	}
	raw, err := json.Marshal(rep)
	if err != nil {
		g.log.Warn("Report encode failed", "user_id", rep.UserID, "error", err)
		return
	}
	row := &types.OnboardingReport{
		ID:         rep.ReportID,
		UserID:     rep.UserID,
		ReportJSON: raw,
		CreatedAt:  rep.CreatedAt,
	}
	if err := g.reports.Upsert(dbctx.New(ctx), row); err != nil {
		g.log.Warn("Report persist failed", "user_id", rep.UserID, "error", err, "error_kind", db.Kind(err))
	}
}
