package recommend

import (
	"errors"
)

type ReasonCategory string

const (
	ReasonGenre       ReasonCategory = "genre"
	ReasonMood        ReasonCategory = "mood"
	ReasonTheme       ReasonCategory = "theme"
	ReasonStyle       ReasonCategory = "style"
	ReasonPersonality ReasonCategory = "personality"
)

// MaxReasons caps Candidate.Reasons.
const MaxReasons = 2

type Reason struct {
	Category           ReasonCategory `json:"category"`
	MatchScore         int            `json:"match_score"`
	Text               string         `json:"text"`
	RelatedPreferences []string       `json:"related_preferences"`
}

// Candidate is a recommended book with its score and at most MaxReasons explanations.
type Candidate struct {
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	CoverURL   string   `json:"cover_url,omitempty"`
	MatchScore int      `json:"match_score"`
	Reasons    []Reason `json:"reasons"`
	CatalogID  string   `json:"catalog_id,omitempty"`

	ISBN13      string `json:"isbn13,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	// BookID is the stored book row, set once the candidate is persisted or read from the store.
	BookID string `json:"book_id,omitempty"`
	// SeedTitle is set on similar-book candidates.
	SeedTitle string `json:"seed_title,omitempty"`
}

var (
	// ErrNarrativeDegraded means the narrative step fell back to static text, so there is
	// nothing to resolve.
	ErrNarrativeDegraded = errors.New("recommend: narrative degraded")
	// ErrNoCandidates means no proposed title survived catalog resolution.
	ErrNoCandidates = errors.New("recommend: no candidates resolved")
)

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
