package narrative

import (
	"fmt"
	"strings"

	"github.com/yungbote/shelfmind-backend/internal/personalization"
)

const (
	defaultBookLimit = 10
	maxBookLimit     = 20
	maxSections      = 5
)

type kindSpec struct {
	schemaName string
	schema     map[string]any
	system     string
	user       func(in Input) string
	parse      func(obj map[string]any, in Input) (Output, error)
}

var kindSpecs = map[Kind]kindSpec{
	KindGenreBooks: {
		schemaName: "genre_books",
		schema:     bookListSchema,
		system:     curatorSystem,
		user:       genreBooksPrompt,
		parse:      parseBookList,
	},
	KindPersonalizedList: {
		schemaName: "personalized_list",
		schema:     bookListSchema,
		system:     curatorSystem,
		user:       personalizedListPrompt,
		parse:      parseBookList,
	},
	KindSimilarBooks: {
		schemaName: "similar_books",
		schema:     bookListSchema,
		system:     curatorSystem,
		user:       similarBooksPrompt,
		parse:      parseBookList,
	},
	KindReportAnalysis: {
		schemaName: "report_analysis",
		schema:     analysisSchema,
		system:     analystSystem,
		user:       reportAnalysisPrompt,
		parse:      parseAnalysis,
	},
	KindReportSummary: {
		schemaName: "report_summary",
		schema:     summarySchema,
		system:     analystSystem,
		user:       reportSummaryPrompt,
		parse:      parseSummary,
	},
}

const curatorSystem = `You are a book curator for a Korean reading app.
Recommend real, published books that are available in Korean.
Write every reason in natural Korean, one or two sentences, addressed to the reader.
score is your confidence from 0 to 1 that the reader will enjoy the book.
For each book list the genres, moods, themes and narrative styles that describe it, using the reader's own words where they apply.
Never invent authors. Never repeat a book the reader has already read.`

const analystSystem = `You are a warm, insightful reading coach for a Korean reading app.
You write short personality insights about how someone reads, in natural Korean.
Be specific to the reader's answers. Avoid clinical or diagnostic language.`

func strList(desc string) map[string]any {
	return map[string]any{"type": "array", "description": desc, "items": map[string]any{"type": "string"}}
}

var bookListSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"books"},
	"properties": map[string]any{
		"books": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"title", "author", "reason", "score", "genres", "moods", "themes", "styles"},
				"properties": map[string]any{
					"title":  map[string]any{"type": "string"},
					"author": map[string]any{"type": "string"},
					"reason": map[string]any{"type": "string"},
					"score":  map[string]any{"type": "number"},
					"genres": strList("genres of the book"),
					"moods":  strList("moods of the book"),
					"themes": strList("themes of the book"),
					"styles": strList("narrative styles of the book"),
				},
			},
		},
	},
}

var analysisSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"sections"},
	"properties": map[string]any{
		"sections": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"title", "body"},
				"properties": map[string]any{
					"title": map[string]any{"type": "string"},
					"body":  map[string]any{"type": "string"},
				},
			},
		},
	},
}

var summarySchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"summary", "closing"},
	"properties": map[string]any{
		"summary": map[string]any{"type": "string"},
		"closing": map[string]any{"type": "string"},
	},
}

func bookLimit(in Input) int {
	switch {
	case in.Limit <= 0:
		return defaultBookLimit
	case in.Limit > maxBookLimit:
		return maxBookLimit
	default:
		return in.Limit
	}
}

func writePreferences(b *strings.Builder, s personalization.Snapshot) {
	writeSet := func(label string, set []string) {
		if len(set) > 0 {
			fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(set, ", "))
		}
	}
	writeSet("Genres", s.Genres)
	writeSet("Moods", s.Moods)
	writeSet("Emotions", s.Emotions)
	writeSet("Themes", s.Themes)
	writeSet("Narrative styles", s.NarrativeStyles)
	writeSet("Reading purposes", s.Purposes)
	if s.Length != "" {
		fmt.Fprintf(b, "- Preferred length: %s\n", s.Length)
	}
	if s.Pace != "" {
		fmt.Fprintf(b, "- Reading pace: %s\n", s.Pace)
	}
	if s.Difficulty != "" {
		fmt.Fprintf(b, "- Difficulty: %s\n", s.Difficulty)
	}
}

func writeBooks(b *strings.Builder, label string, books []personalization.BookRef) {
	if len(books) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", label)
	for _, r := range books {
		line := fmt.Sprintf("- %s / %s", r.Title, r.Author)
		if r.Rating != nil {
			line += fmt.Sprintf(" (rated %d/5)", *r.Rating)
		}
		b.WriteString(line + "\n")
	}
}

func writeProfile(b *strings.Builder, p personalization.TraitProfile) {
	fmt.Fprintf(b, "Trait scores (0-100): openness %d, conscientiousness %d, extraversion %d, agreeableness %d, emotional stability %d\n",
		p.Openness.Score, p.Conscientiousness.Score, p.Extraversion.Score, p.Agreeableness.Score, p.Stability.Score)
}

func personalizedListPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recommend %d books for this reader.\n\nReader preferences:\n", bookLimit(in))
	writePreferences(&b, in.Snapshot)
	writeBooks(&b, "\nRecently read", in.Snapshot.ReadHistory)
	writeBooks(&b, "\nWishlist", in.Snapshot.Wishlist)
	b.WriteString("\nOrder the list from best to weakest match.")
	return b.String()
}

func genreBooksPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recommend %d well-loved books in the genre %q.\n", bookLimit(in), in.Genre)
	if in.Snapshot.OnboardingComplete() {
		b.WriteString("\nLean toward this reader's other preferences:\n")
		writePreferences(&b, in.Snapshot)
	}
	return b.String()
}

func similarBooksPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recommend %d books similar to %q", bookLimit(in), in.SeedTitle)
	if in.SeedAuthor != "" {
		fmt.Fprintf(&b, " by %s", in.SeedAuthor)
	}
	b.WriteString(". Do not include the book itself.\n")
	if in.Snapshot.OnboardingComplete() {
		b.WriteString("\nReader preferences:\n")
		writePreferences(&b, in.Snapshot)
	}
	writeBooks(&b, "\nAlready read", in.Snapshot.ReadHistory)
	return b.String()
}

func reportAnalysisPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a reading DNA analysis in 3 sections (title + 2-3 sentence body) for a reader whose persona is %q.\n", in.Persona.Title)
	writeProfile(&b, in.Profile)
	b.WriteString("\nSurvey answers:\n")
	writePreferences(&b, in.Snapshot)
	return b.String()
}

func reportSummaryPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a one-paragraph summary of this reader's profile and a short encouraging closing message. Persona: %q.\n", in.Persona.Title)
	writeProfile(&b, in.Profile)
	if len(in.Sections) > 0 {
		b.WriteString("\nAnalysis so far:\n")
		for _, s := range in.Sections {
			fmt.Fprintf(&b, "- %s: %s\n", s.Title, s.Body)
		}
	}
	return b.String()
}
