package narrative

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/shelfmind-backend/internal/personalization"
)

//go:embed content/templates.yaml
var templatesFS embed.FS

type templateEntry struct {
	Message  string `yaml:"message"`
	Sections []struct {
		Title string `yaml:"title"`
		Body  string `yaml:"body"`
	} `yaml:"sections"`
	Summary string `yaml:"summary"`
	Closing string `yaml:"closing"`
}

type compiledSection struct {
	title *template.Template
	body  *template.Template
}

type fallbackTemplate struct {
	message  *template.Template
	sections []compiledSection
	summary  *template.Template
	closing  *template.Template
}

var templateFuncs = template.FuncMap{
	"join":  strings.Join,
	"level": levelWord,
}

func levelWord(l personalization.Level) string {
	switch l {
	case personalization.LevelLow:
		return "낮은"
	case personalization.LevelHigh:
		return "높은"
	default:
		return "보통"
	}
}

var fallbacks = mustLoadFallbacks()

func mustLoadFallbacks() map[Kind]*fallbackTemplate {
	m, err := loadFallbacks()
	if err != nil {
		panic(fmt.Sprintf("narrative: fallback templates: %v", err))
	}
	return m
}

func loadFallbacks() (map[Kind]*fallbackTemplate, error) {
	raw, err := templatesFS.ReadFile("content/templates.yaml")
	if err != nil {
		return nil, err
	}
	var entries map[string]templateEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("templates.yaml: %w", err)
	}

	out := make(map[Kind]*fallbackTemplate, len(Kinds))
	for _, kind := range Kinds {
		e, ok := entries[string(kind)]
		if !ok {
			return nil, fmt.Errorf("no fallback template for kind %q", kind)
		}
		parse := func(field, text string) (*template.Template, error) {
			if strings.TrimSpace(text) == "" {
				return nil, fmt.Errorf("kind %q: %s is empty", kind, field)
			}
			return template.New(string(kind) + "." + field).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
		}

		ft := &fallbackTemplate{}
		switch kind {
		case KindReportAnalysis:
			if len(e.Sections) == 0 {
				return nil, fmt.Errorf("kind %q: sections required", kind)
			}
			for i, s := range e.Sections {
				title, err := parse(fmt.Sprintf("sections[%d].title", i), s.Title)
				if err != nil {
					return nil, err
				}
				body, err := parse(fmt.Sprintf("sections[%d].body", i), s.Body)
				if err != nil {
					return nil, err
				}
				ft.sections = append(ft.sections, compiledSection{title: title, body: body})
			}
		case KindReportSummary:
			if ft.summary, err = parse("summary", e.Summary); err != nil {
				return nil, err
			}
			if ft.closing, err = parse("closing", e.Closing); err != nil {
				return nil, err
			}
		default:
			if ft.message, err = parse("message", e.Message); err != nil {
				return nil, err
			}
		}
		out[kind] = ft
	}
	return out, nil
}

// fallback renders the static output for kind. It is deterministic in its input.
func fallback(kind Kind, in Input) Output {
	out := Output{Kind: kind, Degraded: true}
	ft, ok := fallbacks[kind]
	if !ok {
		return out
	}
	switch kind {
	case KindReportAnalysis:
		for _, s := range ft.sections {
			out.Sections = append(out.Sections, Section{Title: execute(s.title, in), Body: execute(s.body, in)})
		}
	case KindReportSummary:
		out.Summary = execute(ft.summary, in)
		out.Closing = execute(ft.closing, in)
	default:
		out.Message = execute(ft.message, in)
	}
	return out
}

func execute(t *template.Template, in Input) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, in); err != nil {
		return ""
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}
