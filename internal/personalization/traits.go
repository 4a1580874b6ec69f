package personalization

type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

type Trait string

const (
	TraitOpenness          Trait = "openness"
	TraitConscientiousness Trait = "conscientiousness"
	TraitExtraversion      Trait = "extraversion"
	TraitAgreeableness     Trait = "agreeableness"
	// TraitNeuroticism is scored raw and presented inverted as stability.
	TraitNeuroticism Trait = "neuroticism"
)

const traitBaseline = 50

type TraitScore struct {
	Score int   `json:"score"`
	Level Level `json:"level"`
}

// TraitProfile holds the five display traits. Stability is 100 minus the raw neuroticism
// score, so a high stability level always means a steadier reader. Neuroticism keeps the raw
// value that persona guards evaluate.
type TraitProfile struct {
	Openness          TraitScore `json:"openness"`
	Conscientiousness TraitScore `json:"conscientiousness"`
	Extraversion      TraitScore `json:"extraversion"`
	Agreeableness     TraitScore `json:"agreeableness"`
	Stability         TraitScore `json:"stability"`
	Neuroticism       int        `json:"neuroticism"`
}

type traitRule struct {
	name  string
	trait Trait
	delta int
	when  func(s Snapshot) bool
}

// traitRules is evaluated in full for every snapshot; each matching rule adds its delta.
// Rules never look at other rules' results, so their order is irrelevant.
var traitRules = []traitRule{
	{name: "wide_genre_range", trait: TraitOpenness, delta: 20, when: func(s Snapshot) bool { return len(s.Genres) >= 4 }},
	{name: "challenging_difficulty", trait: TraitOpenness, delta: 15, when: difficultyIs(DifficultyChallenging)},
	{name: "easy_difficulty", trait: TraitOpenness, delta: -10, when: difficultyIs(DifficultyEasy)},
	{name: "experimental_style", trait: TraitOpenness, delta: 10, when: hasConcept(func(s Snapshot) []string { return s.NarrativeStyles }, "experimental")},
	{name: "many_themes", trait: TraitOpenness, delta: 10, when: func(s Snapshot) bool { return len(s.Themes) >= 3 }},
	{name: "humanities_genre", trait: TraitOpenness, delta: 5, when: hasConcept(genres, "humanities")},

	{name: "slow_pace", trait: TraitConscientiousness, delta: 20, when: paceIs(PaceSlow)},
	{name: "fast_pace", trait: TraitConscientiousness, delta: -10, when: paceIs(PaceFast)},
	{name: "long_books", trait: TraitConscientiousness, delta: 15, when: lengthIs(LengthLong)},
	{name: "short_books", trait: TraitConscientiousness, delta: -5, when: lengthIs(LengthShort)},
	{name: "learning_purpose", trait: TraitConscientiousness, delta: 10, when: hasConcept(purposes, "learning")},

	{name: "dark_mood", trait: TraitExtraversion, delta: -15, when: hasConcept(moods, "dark")},
	{name: "bright_mood", trait: TraitExtraversion, delta: 10, when: hasConcept(moods, "bright")},
	{name: "social_purpose", trait: TraitExtraversion, delta: 15, when: hasConcept(purposes, "social")},
	{name: "relaxation_purpose", trait: TraitExtraversion, delta: -5, when: hasConcept(purposes, "relaxation")},
	{name: "relationship_themes", trait: TraitExtraversion, delta: 5, when: hasConcept(themes, "relationships")},

	{name: "rich_emotions", trait: TraitAgreeableness, delta: 15, when: func(s Snapshot) bool { return len(s.Emotions) >= 3 }},
	{name: "relationship_themes", trait: TraitAgreeableness, delta: 15, when: hasConcept(themes, "relationships")},
	{name: "warm_mood", trait: TraitAgreeableness, delta: 10, when: hasConcept(moods, "warm")},
	{name: "thriller_genre", trait: TraitAgreeableness, delta: -10, when: hasConcept(genres, "thriller")},

	{name: "fear_emotions", trait: TraitNeuroticism, delta: 20, when: func(s Snapshot) bool {
		return HasConcept(s.Emotions, "fear") || HasConcept(s.Themes, "horror")
	}},
	{name: "dark_mood", trait: TraitNeuroticism, delta: 10, when: hasConcept(moods, "dark")},
	{name: "grief_emotions", trait: TraitNeuroticism, delta: 10, when: hasConcept(emotions, "grief")},
	{name: "calm_mood", trait: TraitNeuroticism, delta: -15, when: hasConcept(moods, "calm")},
	{name: "relaxation_purpose", trait: TraitNeuroticism, delta: 5, when: hasConcept(purposes, "relaxation")},
}

func genres(s Snapshot) []string   { return s.Genres }
func moods(s Snapshot) []string    { return s.Moods }
func emotions(s Snapshot) []string { return s.Emotions }
func themes(s Snapshot) []string   { return s.Themes }
func purposes(s Snapshot) []string { return s.Purposes }

func hasConcept(field func(Snapshot) []string, concept string) func(Snapshot) bool {
	return func(s Snapshot) bool { return HasConcept(field(s), concept) }
}

func difficultyIs(v string) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.Difficulty == v }
}

func paceIs(v string) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.Pace == v }
}

func lengthIs(v string) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.Length == v }
}

// ScoreTraits is pure: equal snapshots always give equal profiles.
func ScoreTraits(s Snapshot) TraitProfile {
	raw := map[Trait]int{
		TraitOpenness:          traitBaseline,
		TraitConscientiousness: traitBaseline,
		TraitExtraversion:      traitBaseline,
		TraitAgreeableness:     traitBaseline,
		TraitNeuroticism:       traitBaseline,
	}
	for _, r := range traitRules {
		if r.when(s) {
			raw[r.trait] += r.delta
		}
	}
	for t, v := range raw {
		raw[t] = Clamp(v, 0, 100)
	}

	neuro := raw[TraitNeuroticism]
	return TraitProfile{
		Openness:          scoreOf(raw[TraitOpenness]),
		Conscientiousness: scoreOf(raw[TraitConscientiousness]),
		Extraversion:      scoreOf(raw[TraitExtraversion]),
		Agreeableness:     scoreOf(raw[TraitAgreeableness]),
		Stability:         scoreOf(100 - neuro),
		Neuroticism:       neuro,
	}
}

// LevelFor bands a 0-100 score: below 40 low, below 70 moderate, else high.
func LevelFor(score int) Level {
	switch {
	case score < 40:
		return LevelLow
	case score < 70:
		return LevelModerate
	default:
		return LevelHigh
	}
}

func scoreOf(v int) TraitScore {
	return TraitScore{Score: v, Level: LevelFor(v)}
}

func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func levelLabel(l Level) string {
	switch l {
	case LevelLow:
		return "낮음"
	case LevelHigh:
		return "높음"
	default:
		return "보통"
	}
}
