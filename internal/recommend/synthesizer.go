package recommend

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/shelfmind-backend/internal/narrative"
	"github.com/yungbote/shelfmind-backend/internal/observability"
	"github.com/yungbote/shelfmind-backend/internal/personalization"
	"github.com/yungbote/shelfmind-backend/internal/platform/googlebooks"
	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

const (
	DefaultLookupConcurrency = 4
	tagBoost                 = 5
	noMatchPenalty           = 5
)

// Narrator is the narrative generation collaborator.
type Narrator interface {
	Generate(ctx context.Context, kind narrative.Kind, in narrative.Input) narrative.Output
}

// Synthesizer turns narrative book ideas into catalog-resolved, scored candidates.
type Synthesizer struct {
	log         *logger.Logger
	narrator    Narrator
	catalog     googlebooks.Lookup
	concurrency int
}

func NewSynthesizer(baseLog *logger.Logger, narrator Narrator, catalog googlebooks.Lookup, concurrency int) *Synthesizer {
	if concurrency <= 0 {
		concurrency = DefaultLookupConcurrency
	}
	return &Synthesizer{
		log:         baseLog.With("service", "RecommendationSynthesizer"),
		narrator:    narrator,
		catalog:     catalog,
		concurrency: concurrency,
	}
}

// Synthesize returns up to limit personalized candidates in the narrator's ranking order.
// Fewer than limit is normal when titles fail to resolve.
func (s *Synthesizer) Synthesize(ctx context.Context, snap personalization.Snapshot, limit int) ([]Candidate, error) {
	return s.synthesize(ctx, narrative.KindPersonalizedList, narrative.Input{Snapshot: snap, Limit: limit}, snap)
}

// SynthesizeSimilar proposes books like seedTitle, biased by the reader's snapshot.
func (s *Synthesizer) SynthesizeSimilar(ctx context.Context, snap personalization.Snapshot, seedTitle string, limit int) ([]Candidate, error) {
	seedTitle = strings.TrimSpace(seedTitle)
	if seedTitle == "" {
		return nil, fmt.Errorf("seed title required")
	}
	out, err := s.synthesize(ctx, narrative.KindSimilarBooks, narrative.Input{Snapshot: snap, SeedTitle: seedTitle, Limit: limit}, snap)
	for i := range out {
		out[i].SeedTitle = seedTitle
	}
	return out, err
}

// SynthesizeGenre proposes well-loved books in one genre.
func (s *Synthesizer) SynthesizeGenre(ctx context.Context, snap personalization.Snapshot, genre string, limit int) ([]Candidate, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, fmt.Errorf("genre required")
	}
	return s.synthesize(ctx, narrative.KindGenreBooks, narrative.Input{Snapshot: snap, Genre: genre, Limit: limit}, snap)
}

func (s *Synthesizer) synthesize(ctx context.Context, kind narrative.Kind, in narrative.Input, snap personalization.Snapshot) (out []Candidate, err error) {
	ctx, span := observability.StartSpan(ctx, "recommend.synthesize", attribute.String("narrative.kind", string(kind)))
	defer func() {
		span.SetAttributes(attribute.Int("recommend.candidates", len(out)))
		observability.EndSpan(span, err)
	}()

	gen := s.narrator.Generate(ctx, kind, in)
	if gen.Degraded {
		return nil, fmt.Errorf("%w (%s)", ErrNarrativeDegraded, gen.Cause)
	}
	ideas := gen.Books
	if in.Limit > 0 && len(ideas) > in.Limit {
		ideas = ideas[:in.Limit]
	}

	records := s.resolve(ctx, ideas)

	// Distinct titles can resolve to one volume (series, translations); the best-ranked idea wins.
	out = make([]Candidate, 0, len(ideas))
	seen := map[string]bool{}
	for i, idea := range ideas {
		rec := records[i]
		if rec == nil {
			continue
		}
		key := recordKey(rec)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, buildCandidate(snap, idea, rec))
	}
	if len(out) == 0 {
		return nil, ErrNoCandidates
	}
	s.log.Debug("Synthesized candidates", "kind", string(kind), "proposed", len(ideas), "resolved", len(out))
	return out, nil
}

// resolve looks every idea up concurrently. records[i] belongs to ideas[i]; a nil slot means
// the title could not be resolved.
func (s *Synthesizer) resolve(ctx context.Context, ideas []narrative.BookIdea) []*googlebooks.Record {
	records := make([]*googlebooks.Record, len(ideas))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, idea := range ideas {
		i, idea := i, idea
		g.Go(func() error {
			rec, err := s.catalog.SearchByTitle(ctx, idea.Title)
			if err != nil {
				s.log.Debug("Catalog lookup failed", "title", idea.Title, "error", err)
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	_ = g.Wait()
	return records
}

type tagCategory struct {
	category ReasonCategory
	prefs    func(personalization.Snapshot) []string
	tags     func(narrative.BookIdea, *googlebooks.Record) []string
	text     string
}

// tagCategories is also the order in which reasons are attached.
var tagCategories = []tagCategory{
	{
		category: ReasonGenre,
		prefs:    func(s personalization.Snapshot) []string { return s.Genres },
		tags: func(b narrative.BookIdea, r *googlebooks.Record) []string {
			if r != nil && r.Category != "" {
				return append(append([]string{}, b.Genres...), r.Category)
			}
			return b.Genres
		},
		text: "좋아하는 %s 장르의 책이에요.",
	},
	{
		category: ReasonMood,
		prefs:    func(s personalization.Snapshot) []string { return s.Moods },
		tags:     func(b narrative.BookIdea, _ *googlebooks.Record) []string { return b.Moods },
		text:     "%s 분위기를 좋아하는 취향과 잘 맞아요.",
	},
	{
		category: ReasonTheme,
		prefs:    func(s personalization.Snapshot) []string { return append(append([]string{}, s.Themes...), s.Emotions...) },
		tags:     func(b narrative.BookIdea, _ *googlebooks.Record) []string { return b.Themes },
		text:     "관심 있는 %s 이야기를 다뤄요.",
	},
	{
		category: ReasonStyle,
		prefs:    func(s personalization.Snapshot) []string { return s.NarrativeStyles },
		tags:     func(b narrative.BookIdea, _ *googlebooks.Record) []string { return b.Styles },
		text:     "선호하는 %s 서술 방식이에요.",
	},
}

const defaultPersonalityReason = "당신의 독서 성향에 어울리는 책이에요."

func recordKey(rec *googlebooks.Record) string {
	if isbn := strings.TrimSpace(rec.ISBN13); isbn != "" {
		return "isbn:" + isbn
	}
	if id := strings.TrimSpace(rec.ID); id != "" {
		return "id:" + id
	}
	return "title:" + strings.ToLower(strings.TrimSpace(rec.Title)) + "|" + strings.ToLower(strings.TrimSpace(rec.Author))
}

func buildCandidate(snap personalization.Snapshot, idea narrative.BookIdea, rec *googlebooks.Record) Candidate {
	base := int(math.Round(idea.Score * 100))

	type match struct {
		cat     tagCategory
		related []string
	}
	var matches []match
	for _, tc := range tagCategories {
		if related := intersect(tc.prefs(snap), tc.tags(idea, rec)); len(related) > 0 {
			matches = append(matches, match{cat: tc, related: related})
		}
	}

	score := base + tagBoost*len(matches)
	if len(matches) == 0 {
		score = base - noMatchPenalty
	}
	score = clampScore(score)

	reasons := make([]Reason, 0, MaxReasons)
	for _, m := range matches {
		if len(reasons) == MaxReasons {
			break
		}
		reasons = append(reasons, Reason{
			Category:           m.cat.category,
			MatchScore:         score,
			Text:               fmt.Sprintf(m.cat.text, strings.Join(m.related, ", ")),
			RelatedPreferences: m.related,
		})
	}
	if len(reasons) == 0 {
		text := strings.TrimSpace(idea.Reason)
		if text == "" {
			text = defaultPersonalityReason
		}
		reasons = append(reasons, Reason{
			Category:           ReasonPersonality,
			MatchScore:         score,
			Text:               text,
			RelatedPreferences: []string{},
		})
	}

	title, author := rec.Title, rec.Author
	if title == "" {
		title = idea.Title
	}
	if author == "" {
		author = idea.Author
	}
	return Candidate{
		Title:       title,
		Author:      author,
		CoverURL:    rec.CoverURL,
		MatchScore:  score,
		Reasons:     reasons,
		CatalogID:   rec.ID,
		ISBN13:      rec.ISBN13,
		Description: rec.Description,
		Category:    rec.Category,
	}
}

// intersect returns the preferences (in snapshot order) that match any tag.
func intersect(prefs, tags []string) []string {
	var out []string
	for _, p := range prefs {
		for _, t := range tags {
			if personalization.LabelsMatch(p, t) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
