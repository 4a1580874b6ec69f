package report

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/shelfmind-backend/internal/personalization"
	"github.com/yungbote/shelfmind-backend/internal/recommend"
)

//go:embed content/report.yaml
var contentFS embed.FS

type radarAxis struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

type growthLevel struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type fallbackBook struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
}

type fallbackEntry struct {
	Key    string         `yaml:"key"`
	Genres []string       `yaml:"genres"`
	Reason string         `yaml:"reason"`
	Books  []fallbackBook `yaml:"books"`
}

type contentFile struct {
	Radar  []radarAxis `yaml:"radar"`
	Growth struct {
		Levels      map[string]growthLevel `yaml:"levels"`
		Suggestions []string               `yaml:"suggestions"`
	} `yaml:"growth"`
	FallbackBooks []fallbackEntry `yaml:"fallback_books"`
	FallbackScore int             `yaml:"fallback_score"`
}

const defaultFallbackKey = "default"

var content = mustLoadContent()

func mustLoadContent() *contentFile {
	c, err := loadContent()
	if err != nil {
		panic(fmt.Sprintf("report: embedded content: %v", err))
	}
	return c
}

func loadContent() (*contentFile, error) {
	raw, err := contentFS.ReadFile("content/report.yaml")
	if err != nil {
		return nil, err
	}
	var c contentFile
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("report.yaml: %w", err)
	}
	if len(c.Radar) != 5 {
		return nil, fmt.Errorf("radar: want 5 axes, got %d", len(c.Radar))
	}
	for _, lvl := range []string{GrowthNarrow, GrowthModerate, GrowthDiverse} {
		if _, ok := c.Growth.Levels[lvl]; !ok {
			return nil, fmt.Errorf("growth level %q missing", lvl)
		}
	}
	if len(c.Growth.Suggestions) != 3 {
		return nil, fmt.Errorf("growth: want 3 suggestions, got %d", len(c.Growth.Suggestions))
	}
	hasDefault := false
	for _, e := range c.FallbackBooks {
		if len(e.Books) != 2 {
			return nil, fmt.Errorf("fallback %q: want 2 books, got %d", e.Key, len(e.Books))
		}
		if e.Key == defaultFallbackKey {
			hasDefault = true
		}
	}
	if !hasDefault {
		return nil, fmt.Errorf("fallback %q entry missing", defaultFallbackKey)
	}
	return &c, nil
}

// fallbackFor picks the fallback entry for the reader's genres, in snapshot order.
func (c *contentFile) fallbackFor(genres []string) fallbackEntry {
	var def fallbackEntry
	for _, e := range c.FallbackBooks {
		if e.Key == defaultFallbackKey {
			def = e
		}
	}
	for _, g := range genres {
		for _, e := range c.FallbackBooks {
			for _, alias := range e.Genres {
				if personalization.LabelsMatch(g, alias) {
					return e
				}
			}
		}
	}
	return def
}

// FallbackRecommendations returns the static two-book list for the reader's genres.
func FallbackRecommendations(snap personalization.Snapshot) []recommend.Candidate {
	e := content.fallbackFor(snap.Genres)
	cat := recommend.ReasonPersonality
	var related []string
	if e.Key != defaultFallbackKey {
		cat = recommend.ReasonGenre
		for _, g := range snap.Genres {
			for _, alias := range e.Genres {
				if personalization.LabelsMatch(g, alias) {
					related = append(related, g)
					break
				}
			}
		}
	}
	out := make([]recommend.Candidate, 0, len(e.Books))
	for _, b := range e.Books {
		out = append(out, recommend.Candidate{
			Title:      b.Title,
			Author:     b.Author,
			MatchScore: content.FallbackScore,
			Reasons: []recommend.Reason{{
				Category:           cat,
				MatchScore:         content.FallbackScore,
				Text:               e.Reason,
				RelatedPreferences: related,
			}},
		})
	}
	return out
}
