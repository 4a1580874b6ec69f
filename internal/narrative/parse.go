package narrative

import (
	"encoding/json"
	"fmt"
	"strings"
)

func decodeInto(obj map[string]any, out any) error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func parseBookList(obj map[string]any, in Input) (Output, error) {
	var payload struct {
		Books []BookIdea `json:"books"`
	}
	if err := decodeInto(obj, &payload); err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	limit := bookLimit(in)
	seed := normalizeTitle(in.SeedTitle)
	seen := map[string]bool{}
	books := make([]BookIdea, 0, len(payload.Books))
	for _, b := range payload.Books {
		b.Title = strings.TrimSpace(b.Title)
		b.Author = strings.TrimSpace(b.Author)
		b.Reason = strings.TrimSpace(b.Reason)
		key := normalizeTitle(b.Title)
		if key == "" || seen[key] || (seed != "" && key == seed) {
			continue
		}
		seen[key] = true
		b.Score = normalizeScore(b.Score)
		books = append(books, b)
		if len(books) == limit {
			break
		}
	}
	if len(books) == 0 {
		return Output{}, fmt.Errorf("%w: no usable books", ErrInvalidResponse)
	}
	return Output{Books: books}, nil
}

func parseAnalysis(obj map[string]any, _ Input) (Output, error) {
	var payload struct {
		Sections []Section `json:"sections"`
	}
	if err := decodeInto(obj, &payload); err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	sections := make([]Section, 0, len(payload.Sections))
	for _, s := range payload.Sections {
		s.Title = strings.TrimSpace(s.Title)
		s.Body = strings.TrimSpace(s.Body)
		if s.Title == "" || s.Body == "" {
			continue
		}
		sections = append(sections, s)
		if len(sections) == maxSections {
			break
		}
	}
	if len(sections) == 0 {
		return Output{}, fmt.Errorf("%w: no sections", ErrInvalidResponse)
	}
	return Output{Sections: sections}, nil
}

func parseSummary(obj map[string]any, _ Input) (Output, error) {
	var payload struct {
		Summary string `json:"summary"`
		Closing string `json:"closing"`
	}
	if err := decodeInto(obj, &payload); err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	summary := strings.TrimSpace(payload.Summary)
	closing := strings.TrimSpace(payload.Closing)
	if summary == "" || closing == "" {
		return Output{}, fmt.Errorf("%w: empty summary or closing", ErrInvalidResponse)
	}
	return Output{Summary: summary, Closing: closing}, nil
}

// normalizeScore maps the model's score into [0,1]; percentages are scaled down.
func normalizeScore(v float64) float64 {
	if v > 1 && v <= 100 {
		v = v / 100
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
