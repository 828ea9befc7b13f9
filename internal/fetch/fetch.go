// Package fetch acquires job postings from external boards and normalizes
// them into the shape ranking consumes. One Source implementation exists per
// board, selected through a registry rather than inheritance.
package fetch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/twosidesofai/job-hunter/internal/posting"
)

// Query describes one posting search. SkillVocabulary is the term list used
// to extract explicit skills from posting free text; ranking itself never
// infers skills.
type Query struct {
	Keywords        []string
	Location        string
	Limit           int
	SkillVocabulary []string
}

// Text joins the query keywords for boards that take a single search string.
func (q Query) Text() string {
	return strings.Join(q.Keywords, " ")
}

// Source yields normalized postings for a query. Implementations must return
// (nil, nil) when they are not configured, so a partially configured setup
// degrades to the remaining boards.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query Query) ([]*posting.JobPosting, error)
}

// Registry maps board names to their Source implementations.
type Registry struct {
	sources map[string]Source
}

func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source, len(sources))}
	for _, s := range sources {
		r.sources[s.Name()] = s
	}
	return r
}

func (r *Registry) Register(s Source) {
	r.sources[s.Name()] = s
}

func (r *Registry) Lookup(name string) (Source, error) {
	s, ok := r.sources[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown board %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return s, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExtractSkills scans free text for vocabulary terms and returns the matched
// terms in vocabulary spelling, preserving vocabulary order. Matching is
// case-insensitive and whole-word for single-word terms.
func ExtractSkills(text string, vocabulary []string) []string {
	if text == "" || len(vocabulary) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '+' || r == '#')
	}) {
		words[w] = true
	}

	var matched []string
	seen := make(map[string]bool, len(vocabulary))
	for _, term := range vocabulary {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" || seen[key] {
			continue
		}

		hit := false
		if strings.ContainsAny(key, " -/") {
			hit = strings.Contains(lower, key)
		} else {
			hit = words[key]
		}

		if hit {
			seen[key] = true
			matched = append(matched, term)
		}
	}

	return matched
}
