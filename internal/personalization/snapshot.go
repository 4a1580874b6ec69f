package personalization

import (
	"sort"
	"strings"
)

const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"

	PaceSlow     = "slow"
	PaceModerate = "moderate"
	PaceFast     = "fast"

	DifficultyEasy        = "easy"
	DifficultyModerate    = "moderate"
	DifficultyChallenging = "challenging"
)

// BookRef is a title the user has read or wishlisted.
type BookRef struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Rating *int   `json:"rating,omitempty"`
}

// Snapshot is the per-request view of a user's stated preferences and reading behavior.
// Tag sets are normalised (trimmed, de-duplicated, sorted) so equal answers compare equal.
// Callers treat a Snapshot as read-only.
type Snapshot struct {
	Genres          []string `json:"genres"`
	Moods           []string `json:"moods"`
	Emotions        []string `json:"emotions"`
	Themes          []string `json:"themes"`
	NarrativeStyles []string `json:"narrative_styles"`
	Purposes        []string `json:"purposes"`

	Length     string `json:"length,omitempty"`
	Pace       string `json:"pace,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`

	ReadHistory []BookRef `json:"read_history,omitempty"`
	Wishlist    []BookRef `json:"wishlist,omitempty"`
}

// OnboardingData is the survey payload a user submits during onboarding.
type OnboardingData struct {
	Genres          []string `json:"genres"`
	Moods           []string `json:"moods"`
	Emotions        []string `json:"emotions"`
	Themes          []string `json:"themes"`
	NarrativeStyles []string `json:"narrative_styles"`
	Purposes        []string `json:"purposes"`
	Length          string   `json:"length"`
	Pace            string   `json:"pace"`
	Difficulty      string   `json:"difficulty"`
}

// SnapshotFromSurvey builds a snapshot with no reading history from survey answers.
func SnapshotFromSurvey(d OnboardingData) Snapshot {
	return Snapshot{
		Genres:          normalizeSet(d.Genres),
		Moods:           normalizeSet(d.Moods),
		Emotions:        normalizeSet(d.Emotions),
		Themes:          normalizeSet(d.Themes),
		NarrativeStyles: normalizeSet(d.NarrativeStyles),
		Purposes:        normalizeSet(d.Purposes),
		Length:          content.canonicalEnum("length", d.Length),
		Pace:            content.canonicalEnum("pace", d.Pace),
		Difficulty:      content.canonicalEnum("difficulty", d.Difficulty),
	}
}

// OnboardingComplete is false when the user never answered any preference question.
func (s Snapshot) OnboardingComplete() bool {
	return len(s.Genres)+len(s.Moods)+len(s.Emotions)+len(s.Themes)+len(s.NarrativeStyles)+len(s.Purposes) > 0 ||
		s.Length != "" || s.Pace != "" || s.Difficulty != ""
}

// SelectedOptionCount is the number of multi-select answers across all tag sets.
func (s Snapshot) SelectedOptionCount() int {
	return len(s.Genres) + len(s.Moods) + len(s.Emotions) + len(s.Themes) + len(s.NarrativeStyles) + len(s.Purposes)
}

// AnsweredFieldCount counts the nine tracked preference fields that carry an answer.
func (s Snapshot) AnsweredFieldCount() int {
	n := 0
	for _, set := range [][]string{s.Genres, s.Moods, s.Emotions, s.Themes, s.NarrativeStyles, s.Purposes} {
		if len(set) > 0 {
			n++
		}
	}
	for _, v := range []string{s.Length, s.Pace, s.Difficulty} {
		if v != "" {
			n++
		}
	}
	return n
}

// TrackedFieldCount is the denominator of AnsweredFieldCount.
const TrackedFieldCount = 9

// HasConcept reports whether any label in set maps onto the canonical concept.
func HasConcept(set []string, concept string) bool {
	for _, label := range set {
		for _, c := range content.conceptsOf(label) {
			if c == concept {
				return true
			}
		}
	}
	return false
}

func normalizeSet(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = normalizeLabel(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func trimmed(s string) string { return strings.TrimSpace(s) }

// LabelsMatch reports whether two tag labels are equal after normalisation or share a
// vocabulary concept ("어두운" matches "dark").
func LabelsMatch(a, b string) bool {
	na, nb := normalizeLabel(a), normalizeLabel(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	for _, ca := range content.conceptsOf(na) {
		for _, cb := range content.conceptsOf(nb) {
			if ca == cb {
				return true
			}
		}
	}
	return false
}
