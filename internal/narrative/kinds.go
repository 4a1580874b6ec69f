package narrative

import (
	"errors"

	"github.com/yungbote/shelfmind-backend/internal/personalization"
)

type Kind string

const (
	KindGenreBooks       Kind = "genre_books"
	KindPersonalizedList Kind = "personalized_list"
	KindSimilarBooks     Kind = "similar_books"
	KindReportAnalysis   Kind = "report_analysis"
	KindReportSummary    Kind = "report_summary"
)

// Kinds lists every kind the generator knows, in a stable order.
var Kinds = []Kind{KindGenreBooks, KindPersonalizedList, KindSimilarBooks, KindReportAnalysis, KindReportSummary}

// IsBookList reports whether the kind produces book ideas rather than prose.
func (k Kind) IsBookList() bool {
	return k == KindGenreBooks || k == KindPersonalizedList || k == KindSimilarBooks
}

// ErrInvalidResponse marks an LLM response that parsed as JSON but failed validation.
var ErrInvalidResponse = errors.New("narrative: invalid llm response")

// Degradation causes reported on Output.Cause and in metrics.
const (
	CauseUnconfigured    = "unconfigured"
	CauseUnknownKind     = "unknown_kind"
	CauseTimeout         = "timeout"
	CauseBreakerOpen     = "breaker_open"
	CauseUpstream        = "upstream_error"
	CauseInvalidResponse = "invalid_response"
	CauseCanceled        = "canceled"
)

// Input is everything a prompt or fallback template may draw on. Fields a kind does not use
// are ignored.
type Input struct {
	Snapshot personalization.Snapshot
	Profile  personalization.TraitProfile
	Persona  personalization.Persona

	// Genre seeds genre_books.
	Genre string
	// SeedTitle and SeedAuthor seed similar_books.
	SeedTitle  string
	SeedAuthor string
	// Sections carries the reading analysis into report_summary.
	Sections []Section

	Limit int
}

// BookIdea is one LLM-proposed book before catalog resolution.
type BookIdea struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Reason string `json:"reason"`
	// Score is the model's confidence in [0,1].
	Score float64 `json:"score"`

	Genres []string `json:"genres"`
	Moods  []string `json:"moods"`
	Themes []string `json:"themes"`
	Styles []string `json:"styles"`
}

type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Output is the generator's result. Exactly one of Books, Sections or Summary/Closing is
// populated depending on the kind. Degraded is true when the static fallback was used.
type Output struct {
	Kind Kind `json:"kind"`

	Books    []BookIdea `json:"books,omitempty"`
	Sections []Section  `json:"sections,omitempty"`
	Summary  string     `json:"summary,omitempty"`
	Closing  string     `json:"closing,omitempty"`
	// Message is a user-facing note for degraded book lists.
	Message string `json:"message,omitempty"`

	Degraded bool   `json:"degraded"`
	Cause    string `json:"cause,omitempty"`
}
