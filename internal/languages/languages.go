// Package languages provides the language defaults used to compose stop words.
package languages

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var registryYAML []byte

// Language describes the parts of a programming language that mark the end
// of a completion.
type Language struct {
	Name             string   `yaml:"name"`
	IDs              []string `yaml:"ids"`
	LineComment      string   `yaml:"line_comment"`
	TopLevelKeywords []string `yaml:"top_level_keywords"`
}

// StopWords returns "\n"+keyword for each top-level keyword and "\n"+line comment.
func (l *Language) StopWords() []string {
	if l == nil {
		return nil
	}

	out := make([]string, 0, len(l.TopLevelKeywords)+1)
	for _, kw := range l.TopLevelKeywords {
		out = append(out, "\n"+kw)
	}
	if l.LineComment != "" {
		out = append(out, "\n"+l.LineComment)
	}
	return out
}

// Registry maps language ids to languages
type Registry struct {
	languages []*Language
	byID      map[string]*Language
}

// Parse builds a Registry from YAML
func Parse(data []byte) (*Registry, error) {
	var langs []*Language
	if err := yaml.Unmarshal(data, &langs); err != nil {
		return nil, fmt.Errorf("failed to parse language registry: %w", err)
	}

	r := &Registry{byID: make(map[string]*Language)}
	for _, l := range langs {
		if l.Name == "" {
			return nil, fmt.Errorf("language registry entry without a name")
		}
		ids := l.IDs
		if len(ids) == 0 {
			ids = []string{l.Name}
		}
		for _, id := range ids {
			id = strings.ToLower(id)
			if _, dup := r.byID[id]; dup {
				return nil, fmt.Errorf("language id %q registered twice", id)
			}
			r.byID[id] = l
		}
		r.languages = append(r.languages, l)
	}
	return r, nil
}

// Get returns the language for id, or nil when id is unknown
func (r *Registry) Get(id string) *Language {
	return r.byID[strings.ToLower(strings.TrimSpace(id))]
}

// IDs returns every registered id in sorted order
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Default is the built-in registry
var Default = mustParse(registryYAML)

func mustParse(data []byte) *Registry {
	r, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return r
}

// Get looks up id in the built-in registry
func Get(id string) *Language {
	return Default.Get(id)
}
