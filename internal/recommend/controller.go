package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/shelfmind-backend/internal/data/db"
	repos "github.com/yungbote/shelfmind-backend/internal/data/repos/reading"
	types "github.com/yungbote/shelfmind-backend/internal/domain/reading"
	"github.com/yungbote/shelfmind-backend/internal/observability"
	"github.com/yungbote/shelfmind-backend/internal/personalization"
	"github.com/yungbote/shelfmind-backend/internal/platform/dbctx"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
	DefaultTTL   = 24 * time.Hour

	recentFallbackScore = 30
	catalogSource       = "google_books"
)

// Source names the rung that produced a Result.
type Source string

const (
	SourceCache     Source = "cache"
	SourceGenerated Source = "generated"
	SourceTrending  Source = "trending"
	SourceRecent    Source = "recent"
	SourceEmpty     Source = "empty"
)

type Options struct {
	Limit        int
	ForceRefresh bool
}

type Result struct {
	Items  []Candidate `json:"items"`
	Source Source      `json:"source"`
}

// SnapshotSource builds a user's preference snapshot.
type SnapshotSource interface {
	Aggregate(ctx context.Context, userID uuid.UUID) (personalization.Snapshot, error)
}

// CandidateSource synthesizes fresh candidates.
type CandidateSource interface {
	Synthesize(ctx context.Context, snap personalization.Snapshot, limit int) ([]Candidate, error)
	SynthesizeSimilar(ctx context.Context, snap personalization.Snapshot, seedTitle string, limit int) ([]Candidate, error)
}

// Controller decides between cached, freshly generated and fallback recommendations.
// Its public operations never fail: every upstream error degrades to the next rung.
type Controller struct {
	log      *logger.Logger
	snaps    SnapshotSource
	synth    CandidateSource
	cache    repos.RecommendationCacheRepo
	books    repos.BookRepo
	trending repos.TrendingRepo
	ttl      time.Duration
	now      func() time.Time
}

func NewController(
	baseLog *logger.Logger,
	snaps SnapshotSource,
	synth CandidateSource,
	cache repos.RecommendationCacheRepo,
	books repos.BookRepo,
	trending repos.TrendingRepo,
	ttl time.Duration,
) *Controller {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Controller{
		log:      baseLog.With("service", "RecommendationController"),
		snaps:    snaps,
		synth:    synth,
		cache:    cache,
		books:    books,
		trending: trending,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func (c *Controller) GetPersonalizedRecommendations(ctx context.Context, userID uuid.UUID, opts Options) (res Result) {
	limit := normalizeLimit(opts.Limit)
	ctx, span := observability.StartSpan(ctx, "recommend.personalized",
		attribute.Int("recommend.limit", limit),
		attribute.Bool("recommend.force_refresh", opts.ForceRefresh),
	)
	defer func() {
		span.SetAttributes(attribute.String("recommend.source", string(res.Source)), attribute.Int("recommend.items", len(res.Items)))
		observability.Current().IncRecommendationPath(string(res.Source))
		span.End()
	}()

	if !opts.ForceRefresh {
		if items, ok := c.freshFromCache(ctx, userID, types.RecommendationPersonalized, limit, nil); ok {
			return Result{Items: items, Source: SourceCache}
		}
	}

	snap, err := c.snaps.Aggregate(ctx, userID)
	if err != nil {
		c.log.Warn("Preference aggregation failed; using fallback", "user_id", userID, "error", err)
		return c.fallback(ctx, limit)
	}
	if !snap.OnboardingComplete() {
		c.log.Debug("Onboarding incomplete; using fallback", "user_id", userID)
		return c.fallback(ctx, limit)
	}

	items, err := c.synth.Synthesize(ctx, snap, limit)
	if err != nil {
		c.log.Warn("Recommendation synthesis failed; using fallback", "user_id", userID, "error", err)
		return c.fallback(ctx, limit)
	}
	items = c.persist(ctx, userID, types.RecommendationPersonalized, items)
	return Result{Items: items, Source: SourceGenerated}
}

// GetSimilarRecommendations returns books like seedTitle. The cache holds one seed per user;
// a new seed replaces the previous list.
func (c *Controller) GetSimilarRecommendations(ctx context.Context, userID uuid.UUID, seedTitle string, limit int) (res Result) {
	limit = normalizeLimit(limit)
	seedTitle = strings.TrimSpace(seedTitle)
	ctx, span := observability.StartSpan(ctx, "recommend.similar", attribute.Int("recommend.limit", limit))
	defer func() {
		span.SetAttributes(attribute.String("recommend.source", string(res.Source)))
		observability.Current().IncRecommendationPath("similar_" + string(res.Source))
		span.End()
	}()

	if seedTitle == "" {
		return c.fallback(ctx, limit)
	}
	sameSeed := func(cand Candidate) bool { return strings.EqualFold(strings.TrimSpace(cand.SeedTitle), seedTitle) }
	if items, ok := c.freshFromCache(ctx, userID, types.RecommendationSimilar, limit, sameSeed); ok {
		return Result{Items: items, Source: SourceCache}
	}

	snap, err := c.snaps.Aggregate(ctx, userID)
	if err != nil {
		c.log.Warn("Preference aggregation failed for similar books; continuing without preferences", "user_id", userID, "error", err)
		snap = personalization.Snapshot{}
	}
	items, err := c.synth.SynthesizeSimilar(ctx, snap, seedTitle, limit)
	if err != nil {
		c.log.Warn("Similar-book synthesis failed; using fallback", "user_id", userID, "error", err)
		return c.fallback(ctx, limit)
	}
	if _, err := c.cache.DeleteByUser(dbctx.New(ctx), userID, types.RecommendationSimilar); err != nil {
		c.log.Warn("Clearing previous similar-book cache failed", "user_id", userID, "error", err, "error_kind", db.Kind(err))
	}
	items = c.persist(ctx, userID, types.RecommendationSimilar, items)
	return Result{Items: items, Source: SourceGenerated}
}

// InvalidateUser drops the user's cached recommendations, e.g. after preferences change.
func (c *Controller) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	dbc := dbctx.New(ctx)
	for _, t := range []string{types.RecommendationPersonalized, types.RecommendationSimilar} {
		if _, err := c.cache.DeleteByUser(dbc, userID, t); err != nil {
			return fmt.Errorf("invalidate %s recommendations: %w", t, err)
		}
	}
	return nil
}

// freshFromCache reports a hit only when at least limit fresh, decodable rows (passing keep,
// if set) exist. Rows come back score-descending from the store.
func (c *Controller) freshFromCache(ctx context.Context, userID uuid.UUID, recType string, limit int, keep func(Candidate) bool) ([]Candidate, bool) {
	rows, err := c.cache.ListFresh(dbctx.New(ctx), userID, recType, c.now())
	if err != nil {
		c.log.Warn("Recommendation cache read failed", "user_id", userID, "type", recType, "error", err, "error_kind", db.Kind(err))
		return nil, false
	}
	if len(rows) < limit {
		return nil, false
	}
	items := make([]Candidate, 0, limit)
	for _, row := range rows {
		var cand Candidate
		if err := json.Unmarshal(row.CandidateJSON, &cand); err != nil {
			c.log.Warn("Skipping undecodable cache row", "cache_id", row.ID, "error", err)
			continue
		}
		if keep != nil && !keep(cand) {
			continue
		}
		cand.MatchScore = clampScore(row.Score)
		cand.BookID = row.BookID.String()
		items = append(items, cand)
		if len(items) == limit {
			return items, true
		}
	}
	return nil, false
}

// persist stores candidates with a fresh expiry. Failures are logged and swallowed. The
// returned slice keeps input order, fills BookIDs and drops candidates that resolved to a book
// already listed.
func (c *Controller) persist(ctx context.Context, userID uuid.UUID, recType string, items []Candidate) []Candidate {
	dbc := dbctx.New(ctx)
	now := c.now()
	expires := now.Add(c.ttl)

	seen := map[uuid.UUID]bool{}
	kept := make([]Candidate, 0, len(items))
	rows := make([]*types.RecommendationCache, 0, len(items))
	for i := range items {
		cand := &items[i]
		book := &types.Book{
			Title:       cand.Title,
			Author:      cand.Author,
			CoverURL:    cand.CoverURL,
			Description: cand.Description,
			Category:    cand.Category,
			Source:      catalogSource,
		}
		if isbn := strings.TrimSpace(cand.ISBN13); isbn != "" {
			book.ISBN13 = &isbn
		}
		row, err := c.books.Resolve(dbc, book)
		if err != nil {
			c.log.Warn("Book resolution failed; candidate not cached", "title", cand.Title, "error", err, "error_kind", db.Kind(err))
			kept = append(kept, *cand)
			continue
		}
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		cand.BookID = row.ID.String()
		kept = append(kept, *cand)

		raw, err := json.Marshal(cand)
		if err != nil {
			continue
		}
		reason := ""
		if len(cand.Reasons) > 0 {
			reason = cand.Reasons[0].Text
		}
		rows = append(rows, &types.RecommendationCache{
			UserID:             userID,
			BookID:             row.ID,
			RecommendationType: recType,
			Score:              cand.MatchScore,
			Reason:             reason,
			CandidateJSON:      raw,
			CreatedAt:          now,
			ExpiresAt:          expires,
		})
	}
	if len(rows) == 0 {
		return kept
	}
	if err := c.cache.Upsert(dbc, rows); err != nil {
		c.log.Warn("Recommendation cache write failed", "user_id", userID, "type", recType, "rows", len(rows), "error", err, "error_kind", db.Kind(err))
	}
	return kept
}

// fallback walks trending, then recently cataloged books, then an empty list.
func (c *Controller) fallback(ctx context.Context, limit int) Result {
	dbc := dbctx.New(ctx)

	rows, err := c.trending.ListTop(dbc, limit)
	if err != nil {
		c.log.Warn("Trending fallback unavailable", "error", err, "error_kind", db.Kind(err))
	}
	items := make([]Candidate, 0, limit)
	for _, row := range rows {
		if row == nil || row.Book == nil {
			continue
		}
		items = append(items, trendingCandidate(row))
	}
	if len(items) > 0 {
		return Result{Items: items, Source: SourceTrending}
	}

	books, err := c.books.ListRecent(dbc, limit)
	if err != nil {
		c.log.Warn("Recent-books fallback unavailable", "error", err, "error_kind", db.Kind(err))
	}
	for _, b := range books {
		if b == nil {
			continue
		}
		items = append(items, recentCandidate(b))
	}
	if len(items) > 0 {
		return Result{Items: items, Source: SourceRecent}
	}
	return Result{Items: []Candidate{}, Source: SourceEmpty}
}

func trendingCandidate(row *types.TrendingBook) Candidate {
	score := clampScore(90 - 3*(row.Rank-1))
	cand := bookCandidate(row.Book, score)
	cand.Reasons = []Reason{{
		Category:           ReasonPersonality,
		MatchScore:         score,
		Text:               fmt.Sprintf("이번 주 인기 %d위, 많은 독자가 읽고 있는 책이에요.", row.Rank),
		RelatedPreferences: []string{},
	}}
	return cand
}

func recentCandidate(b *types.Book) Candidate {
	cand := bookCandidate(b, recentFallbackScore)
	cand.Reasons = []Reason{{
		Category:           ReasonPersonality,
		MatchScore:         recentFallbackScore,
		Text:               "새로 들어온 책이에요.",
		RelatedPreferences: []string{},
	}}
	return cand
}

func bookCandidate(b *types.Book, score int) Candidate {
	cand := Candidate{
		Title:       b.Title,
		Author:      b.Author,
		CoverURL:    b.CoverURL,
		MatchScore:  score,
		Description: b.Description,
		Category:    b.Category,
		BookID:      b.ID.String(),
	}
	if b.ISBN13 != nil {
		cand.ISBN13 = *b.ISBN13
	}
	return cand
}
