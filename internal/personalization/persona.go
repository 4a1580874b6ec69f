package personalization

import (
	"bytes"
	"strings"
)

const DefaultPersonaKey = "balanced_reader"

// Persona is the reading archetype assigned to a user, with its display data.
type Persona struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Icon        string   `json:"icon"`
	ColorTheme  string   `json:"color_theme"`
	Description string   `json:"description"`
	Strategies  []string `json:"strategies"`
}

type personaRule struct {
	key   string
	guard func(s Snapshot, p TraitProfile) bool
}

// personaRules is evaluated first-match-wins. The last rule must always match.
// Guards read raw neuroticism, not the inverted stability score.
var personaRules = []personaRule{
	{key: "emotional_explorer", guard: func(s Snapshot, p TraitProfile) bool {
		return p.Openness.Score >= 70 && p.Agreeableness.Score >= 70 && len(s.Emotions) >= 3
	}},
	{key: "intellectual_seeker", guard: func(_ Snapshot, p TraitProfile) bool {
		return p.Openness.Score >= 70 && p.Conscientiousness.Score >= 70
	}},
	{key: "emotional_dreamer", guard: func(s Snapshot, p TraitProfile) bool {
		return p.Neuroticism >= 60 && len(s.Emotions) >= 2
	}},
	{key: "adventurous_explorer", guard: func(_ Snapshot, p TraitProfile) bool {
		return p.Openness.Score >= 70 && p.Extraversion.Score >= 60
	}},
	{key: "mindful_planner", guard: func(_ Snapshot, p TraitProfile) bool {
		return p.Conscientiousness.Score >= 70 && p.Neuroticism < 40
	}},
	{key: "warm_healer", guard: func(s Snapshot, p TraitProfile) bool {
		return p.Agreeableness.Score >= 70 && len(s.Moods) >= 2
	}},
	{key: DefaultPersonaKey, guard: func(Snapshot, TraitProfile) bool { return true }},
}

// Classify picks the first persona whose guard matches. It is total and deterministic.
func Classify(s Snapshot, p TraitProfile) Persona {
	key := DefaultPersonaKey
	for _, r := range personaRules {
		if r.guard(s, p) {
			key = r.key
			break
		}
	}
	return render(key, p)
}

func render(key string, p TraitProfile) Persona {
	entry := content.personas[key]
	desc := entry.Description
	var buf bytes.Buffer
	if err := entry.descTmpl.Execute(&buf, p); err == nil {
		desc = buf.String()
	}
	strategies := make([]string, len(entry.Strategies))
	copy(strategies, entry.Strategies)
	return Persona{
		Key:         key,
		Title:       entry.Title,
		Icon:        entry.Icon,
		ColorTheme:  entry.ColorTheme,
		Description: strings.TrimSpace(desc),
		Strategies:  strategies,
	}
}
