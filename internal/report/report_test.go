package report

import (
	"testing"

	"github.com/yungbote/shelfmind-backend/internal/personalization"
	"github.com/yungbote/shelfmind-backend/internal/recommend"
)

func TestContentLoads(t *testing.T) {
	if _, err := loadContent(); err != nil {
		t.Fatalf("loadContent: %v", err)
	}
}

func TestRadarPointsInvertStability(t *testing.T) {
	snap := personalization.SnapshotFromSurvey(personalization.OnboardingData{
		Moods:    []string{"어두운"},
		Emotions: []string{"긴장감"},
		Genres:   []string{"스릴러"},
	})
	points := RadarPoints(personalization.ScoreTraits(snap))

	wantKeys := []string{"openness", "conscientiousness", "extraversion", "agreeableness", "stability"}
	if len(points) != len(wantKeys) {
		t.Fatalf("points=%d want %d", len(points), len(wantKeys))
	}
	for i, k := range wantKeys {
		if points[i].Key != k || points[i].Label == "" {
			t.Fatalf("point %d=%+v want key %q with a label", i, points[i], k)
		}
	}
	// raw neuroticism 85 is shown as stability 15
	if points[4].Value != 15 {
		t.Fatalf("stability=%d want 15", points[4].Value)
	}
}

func TestGrowth(t *testing.T) {
	cases := []struct {
		name   string
		genres []string
		want   string
	}{
		{"none", nil, GrowthNarrow},
		{"two", []string{"소설", "에세이"}, GrowthNarrow},
		{"three", []string{"소설", "에세이", "SF"}, GrowthModerate},
		{"four", []string{"소설", "에세이", "SF", "역사"}, GrowthModerate},
		{"five", []string{"소설", "에세이", "SF", "역사", "판타지"}, GrowthDiverse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := Growth(personalization.SnapshotFromSurvey(personalization.OnboardingData{Genres: tc.genres}))
			if g.Level != tc.want {
				t.Fatalf("level=%q want %q", g.Level, tc.want)
			}
			if len(g.Suggestions) != 3 || g.Title == "" || g.Description == "" {
				t.Fatalf("incomplete growth: %+v", g)
			}
		})
	}
}

func TestStats(t *testing.T) {
	cases := []struct {
		name string
		in   personalization.OnboardingData
		want Statistics
	}{
		{
			name: "empty",
			in:   personalization.OnboardingData{},
			want: Statistics{},
		},
		{
			name: "partial answers",
			in: personalization.OnboardingData{
				Genres: []string{"소설", "에세이", "SF"},
				Moods:  []string{"잔잔한", "따뜻한"},
				Length: "장편",
			},
			want: Statistics{CompletenessPercent: 33, DiversityScore: 25, SelectedOptions: 5, GenreCount: 3},
		},
		{
			name: "diversity caps at 100",
			in: personalization.OnboardingData{
				Genres:          []string{"a", "b", "c", "d", "e", "f"},
				Moods:           []string{"g", "h", "i", "j"},
				Emotions:        []string{"k", "l", "m", "n"},
				Themes:          []string{"o", "p", "q"},
				NarrativeStyles: []string{"r", "s", "t"},
				Purposes:        []string{"u", "v"},
				Length:          "short",
				Pace:            "slow",
				Difficulty:      "easy",
			},
			want: Statistics{CompletenessPercent: 100, DiversityScore: 100, SelectedOptions: 22, GenreCount: 6},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Stats(personalization.SnapshotFromSurvey(tc.in))
			if got != tc.want {
				t.Fatalf("stats=%+v want %+v", got, tc.want)
			}
		})
	}
}

func TestFallbackRecommendations(t *testing.T) {
	cases := []struct {
		name      string
		genres    []string
		wantFirst string
		wantCat   recommend.ReasonCategory
	}{
		{"genre match", []string{"판타지"}, "달러구트 꿈 백화점", recommend.ReasonGenre},
		{"match through vocabulary", []string{"호러"}, "용의자 X의 헌신", recommend.ReasonGenre},
		{"unknown genre", []string{"요리"}, "아몬드", recommend.ReasonPersonality},
		{"no genres", nil, "아몬드", recommend.ReasonPersonality},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FallbackRecommendations(personalization.SnapshotFromSurvey(personalization.OnboardingData{Genres: tc.genres}))
			if len(got) != 2 {
				t.Fatalf("len=%d want 2", len(got))
			}
			if got[0].Title != tc.wantFirst {
				t.Fatalf("first=%q want %q", got[0].Title, tc.wantFirst)
			}
			for _, c := range got {
				if len(c.Reasons) != 1 || c.Reasons[0].Category != tc.wantCat || c.MatchScore <= 0 || c.MatchScore > 100 {
					t.Fatalf("bad candidate %+v", c)
				}
			}
		})
	}
}
