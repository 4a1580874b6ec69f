package report

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/shelfmind-backend/internal/narrative"
	"github.com/yungbote/shelfmind-backend/internal/personalization"
	"github.com/yungbote/shelfmind-backend/internal/recommend"
)

// MaxRecommendations caps OnboardingReport.Recommendations.
const MaxRecommendations = 3

const (
	GrowthNarrow   = "narrow"
	GrowthModerate = "moderate"
	GrowthDiverse  = "diverse"
)

type RadarPoint struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

type GrowthPotential struct {
	Level       string   `json:"level"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Suggestions []string `json:"suggestions"`
}

type Statistics struct {
	// CompletenessPercent is the share of the nine tracked preference fields answered.
	CompletenessPercent int `json:"completeness_percent"`
	DiversityScore      int `json:"diversity_score"`
	SelectedOptions     int `json:"selected_options"`
	GenreCount          int `json:"genre_count"`
}

// OnboardingReport is the user's single active insight report.
type OnboardingReport struct {
	ReportID  uuid.UUID `json:"report_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Persona         personalization.Persona      `json:"persona"`
	TraitProfile    personalization.TraitProfile `json:"trait_profile"`
	InsightSections []narrative.Section          `json:"insight_sections"`
	RadarPoints     []RadarPoint                 `json:"radar_points"`
	Recommendations []recommend.Candidate        `json:"recommendations"`
	GrowthPotential GrowthPotential              `json:"growth_potential"`
	Statistics      Statistics                   `json:"statistics"`
	SummaryText     string                       `json:"summary_text"`
	ClosingText     string                       `json:"closing_text"`

	// NarrativeDegraded is true when any narrative section came from static text.
	NarrativeDegraded bool `json:"narrative_degraded"`
}

// RadarPoints projects the profile onto the five chart axes. The stability axis carries the
// inverted neuroticism score so that higher always reads as more stable.
func RadarPoints(p personalization.TraitProfile) []RadarPoint {
	values := map[string]int{
		"openness":          p.Openness.Score,
		"conscientiousness": p.Conscientiousness.Score,
		"extraversion":      p.Extraversion.Score,
		"agreeableness":     p.Agreeableness.Score,
		"stability":         p.Stability.Score,
	}
	out := make([]RadarPoint, 0, len(content.Radar))
	for _, axis := range content.Radar {
		out = append(out, RadarPoint{Key: axis.Key, Label: axis.Label, Value: values[axis.Key]})
	}
	return out
}

// Growth bands the reader's genre breadth.
func Growth(s personalization.Snapshot) GrowthPotential {
	level := GrowthDiverse
	switch n := len(s.Genres); {
	case n <= 2:
		level = GrowthNarrow
	case n <= 4:
		level = GrowthModerate
	}
	lv := content.Growth.Levels[level]
	return GrowthPotential{
		Level:       level,
		Title:       lv.Title,
		Description: lv.Description,
		Suggestions: append([]string(nil), content.Growth.Suggestions...),
	}
}

func Stats(s personalization.Snapshot) Statistics {
	selected := s.SelectedOptionCount()
	return Statistics{
		CompletenessPercent: int(math.Round(float64(s.AnsweredFieldCount()) * 100 / personalization.TrackedFieldCount)),
		DiversityScore:      min(100, 5*selected),
		SelectedOptions:     selected,
		GenreCount:          len(s.Genres),
	}
}
