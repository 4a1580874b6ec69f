package personalization

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		in   OnboardingData
		want string
	}{
		{
			name: "empty snapshot",
			in:   OnboardingData{},
			want: "balanced_reader",
		},
		{
			name: "open and empathetic with many emotions",
			in: OnboardingData{
				Genres:     []string{"판타지", "로맨스", "SF", "드라마"},
				Difficulty: "challenging",
				Emotions:   []string{"기쁨", "설렘", "감동"},
				Themes:     []string{"가족"},
			},
			want: "emotional_explorer",
		},
		{
			name: "open and disciplined",
			in: OnboardingData{
				Genres:     []string{"판타지", "로맨스", "SF", "드라마"},
				Difficulty: "challenging",
				Pace:       "slow",
				Length:     "long",
			},
			want: "intellectual_seeker",
		},
		{
			name: "sensitive reader with two emotions",
			in:   OnboardingData{Emotions: []string{"두려움", "슬픔"}},
			want: "emotional_dreamer",
		},
		{
			name: "open and social",
			in: OnboardingData{
				Genres:     []string{"판타지", "로맨스", "SF", "드라마"},
				Difficulty: "challenging",
				Purposes:   []string{"토론"},
			},
			want: "adventurous_explorer",
		},
		{
			name: "planned and calm",
			in:   OnboardingData{Pace: "slow", Length: "long", Moods: []string{"잔잔한"}},
			want: "mindful_planner",
		},
		{
			name: "warm moods with relationship themes",
			in:   OnboardingData{Moods: []string{"따뜻한", "잔잔한"}, Themes: []string{"가족"}},
			want: "warm_healer",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := SnapshotFromSurvey(tc.in)
			got := Classify(s, ScoreTraits(s))
			if got.Key != tc.want {
				t.Fatalf("persona=%q want %q (profile %+v)", got.Key, tc.want, ScoreTraits(s))
			}
			if got.Title == "" || got.Icon == "" || got.ColorTheme == "" {
				t.Fatalf("missing display data: %+v", got)
			}
			if n := len(got.Strategies); n < 3 || n > 5 {
				t.Fatalf("strategies=%d want 3-5", n)
			}
			if strings.Contains(got.Description, "{{") {
				t.Fatalf("description not rendered: %q", got.Description)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	s := SnapshotFromSurvey(OnboardingData{Emotions: []string{"두려움", "슬픔"}, Moods: []string{"어두운"}})
	p := ScoreTraits(s)
	a := Classify(s, p)
	b := Classify(s, p)
	if a.Key != b.Key || a.Description != b.Description {
		t.Fatalf("classify not deterministic: %+v vs %+v", a, b)
	}
}

func TestPersonaRulesEndWithDefault(t *testing.T) {
	last := personaRules[len(personaRules)-1]
	if last.key != DefaultPersonaKey {
		t.Fatalf("last rule=%q want %q", last.key, DefaultPersonaKey)
	}
	if !last.guard(Snapshot{}, TraitProfile{}) {
		t.Fatalf("default guard must always match")
	}
}

func TestContentLoads(t *testing.T) {
	c, err := loadContent()
	if err != nil {
		t.Fatalf("loadContent: %v", err)
	}
	if got := c.canonicalEnum("difficulty", "  어려운 "); got != DifficultyChallenging {
		t.Fatalf("difficulty=%q want %q", got, DifficultyChallenging)
	}
	if got := c.canonicalEnum("pace", "unknown"); got != "" {
		t.Fatalf("unknown pace mapped to %q", got)
	}
	for _, r := range personaRules {
		if _, ok := c.personas[r.key]; !ok {
			t.Fatalf("persona %q missing display data", r.key)
		}
	}
}
