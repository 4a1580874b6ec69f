package personalization

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed content/*.yaml
var contentFS embed.FS

type vocabularyFile struct {
	Concepts map[string][]string            `yaml:"concepts"`
	Enums    map[string]map[string][]string `yaml:"enums"`
}

type personaEntry struct {
	Title       string   `yaml:"title"`
	Icon        string   `yaml:"icon"`
	ColorTheme  string   `yaml:"color_theme"`
	Description string   `yaml:"description"`
	Strategies  []string `yaml:"strategies"`

	descTmpl *template.Template
}

type personasFile struct {
	Personas map[string]*personaEntry `yaml:"personas"`
}

type contentSet struct {
	// label -> concepts it belongs to
	labelConcepts map[string][]string
	// enum field -> label -> canonical value
	enumValues map[string]map[string]string
	personas   map[string]*personaEntry
}

var templateFuncs = template.FuncMap{"ko": levelLabel}

var content = mustLoadContent()

func mustLoadContent() *contentSet {
	c, err := loadContent()
	if err != nil {
		panic(fmt.Sprintf("personalization: embedded content: %v", err))
	}
	return c
}

func loadContent() (*contentSet, error) {
	var vocab vocabularyFile
	if err := decodeEmbedded("content/vocabulary.yaml", &vocab); err != nil {
		return nil, err
	}
	var personas personasFile
	if err := decodeEmbedded("content/personas.yaml", &personas); err != nil {
		return nil, err
	}

	c := &contentSet{
		labelConcepts: map[string][]string{},
		enumValues:    map[string]map[string]string{},
		personas:      map[string]*personaEntry{},
	}
	for concept, labels := range vocab.Concepts {
		for _, l := range labels {
			key := normalizeLabel(l)
			c.labelConcepts[key] = append(c.labelConcepts[key], concept)
		}
	}
	for _, concepts := range c.labelConcepts {
		sort.Strings(concepts)
	}
	for field, values := range vocab.Enums {
		m := map[string]string{}
		for canonical, labels := range values {
			m[normalizeLabel(canonical)] = canonical
			for _, l := range labels {
				m[normalizeLabel(l)] = canonical
			}
		}
		c.enumValues[field] = m
	}
	for key, p := range personas.Personas {
		if p == nil || strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("persona %q: title required", key)
		}
		if n := len(p.Strategies); n < 3 || n > 5 {
			return nil, fmt.Errorf("persona %q: want 3-5 strategies, got %d", key, n)
		}
		t, err := template.New(key).Option("missingkey=error").Funcs(templateFuncs).Parse(p.Description)
		if err != nil {
			return nil, fmt.Errorf("persona %q description: %w", key, err)
		}
		p.descTmpl = t
		c.personas[key] = p
	}
	for _, rule := range personaRules {
		if _, ok := c.personas[rule.key]; !ok {
			return nil, fmt.Errorf("persona %q has a rule but no display entry", rule.key)
		}
	}
	return c, nil
}

func decodeEmbedded(name string, out any) error {
	raw, err := contentFS.ReadFile(name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// conceptsOf returns the canonical concepts a survey label maps onto.
func (c *contentSet) conceptsOf(label string) []string {
	return c.labelConcepts[normalizeLabel(label)]
}

// canonicalEnum maps a survey answer onto its canonical enum value, or "" when unknown.
func (c *contentSet) canonicalEnum(field, label string) string {
	if normalizeLabel(label) == "" {
		return ""
	}
	return c.enumValues[field][normalizeLabel(label)]
}
