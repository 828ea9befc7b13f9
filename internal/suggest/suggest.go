// Package suggest proposes job boards and companies worth searching based on
// the candidate profile, using keyword matching over the profile text.
package suggest

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/profile"
)

// defaultKeywordMap maps profile keywords to the boards and companies that
// tend to carry matching postings.
var defaultKeywordMap = map[string][]string{
	"python":              {"Adzuna", "Indeed", "ZipRecruiter", "Monster", "Built In", "Google", "Meta", "Amazon"},
	"go":                  {"Adzuna", "Remotive", "Built In", "Google"},
	"distributed systems": {"Adzuna", "Google", "Amazon"},
	"machine learning":    {"Adzuna", "Indeed", "Google", "Meta", "Amazon"},
	"data analysis":       {"Adzuna", "Indeed", "Google"},
	"rest apis":           {"Adzuna", "Indeed", "Remotive"},
	"backend":             {"Adzuna", "Monster", "Built In", "Remotive"},
	"kubernetes":          {"Remotive", "Built In", "Google"},
	"software":            {"Adzuna", "Monster", "Built In"},
}

// Company is a suggested company or board with its keyword match count.
type Company struct {
	Name    string `json:"name"`
	Matches int    `json:"matches"`
}

// Suggestions is the outcome of analyzing a profile.
type Suggestions struct {
	Titles     []string  `json:"suggested_titles"`
	Industries []string  `json:"industries"`
	Keywords   []string  `json:"keywords"`
	Companies  []Company `json:"companies"`
}

// Suggester ranks companies and boards against a candidate profile.
type Suggester struct {
	keywordMap map[string][]string
	logger     *zap.Logger
}

func NewSuggester(keywordMap map[string][]string, logger *zap.Logger) *Suggester {
	if keywordMap == nil {
		keywordMap = defaultKeywordMap
	}
	return &Suggester{keywordMap: keywordMap, logger: logger}
}

// Suggest analyzes the profile and returns at most topN companies, ranked by
// keyword match count, ties broken alphabetically.
func (s *Suggester) Suggest(prof *profile.CandidateProfile, topN int) (*Suggestions, error) {
	if prof == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if topN <= 0 {
		topN = 7
	}

	text := prof.Text()

	titles := prof.JobPrefs.Titles
	if len(titles) == 0 && prof.Title != "" {
		titles = []string{prof.Title}
	}

	industries := inferIndustries(text)

	counts := make(map[string]int)
	matched := 0
	for keyword, companies := range s.keywordMap {
		if !strings.Contains(text, strings.ToLower(keyword)) {
			continue
		}
		matched++
		for _, company := range companies {
			counts[company]++
		}
	}

	companies := make([]Company, 0, len(counts))
	for name, matches := range counts {
		companies = append(companies, Company{Name: name, Matches: matches})
	}
	sort.Slice(companies, func(i, j int) bool {
		if companies[i].Matches != companies[j].Matches {
			return companies[i].Matches > companies[j].Matches
		}
		return companies[i].Name < companies[j].Name
	})
	if len(companies) > topN {
		companies = companies[:topN]
	}

	s.logger.Debug("company suggestions computed",
		zap.Int("matched_keywords", matched),
		zap.Int("companies", len(companies)),
	)

	return &Suggestions{
		Titles:     titles,
		Industries: industries,
		Keywords:   prof.Skills,
		Companies:  companies,
	}, nil
}

var industryKeywords = []string{"software", "finance", "healthcare", "data", "cloud", "security", "infrastructure"}

func inferIndustries(text string) []string {
	var out []string
	for _, kw := range industryKeywords {
		if strings.Contains(text, kw) {
			out = append(out, titleCase(kw))
		}
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
