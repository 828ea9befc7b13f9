package profile

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Canonical resume sections recognized by the plain-text parser. Heading
// variants seen in real resumes map onto one canonical key.
var sectionHeadings = map[string][]string{
	"summary":        {"summary", "profile", "about"},
	"skills":         {"skills", "technical skills", "core skills"},
	"experience":     {"experience", "work experience", "professional experience", "employment"},
	"education":      {"education", "academic"},
	"certifications": {"certifications", "certs", "licenses"},
}

// ParseTextFile reads a plain-text resume and recovers a candidate profile
// from its section structure. Preferences are not present in resume text and
// are left zero for the caller to fill from configuration.
func ParseTextFile(path string) (*CandidateProfile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening resume file: %w", err)
	}
	defer file.Close()

	sections := make(map[string][]string)
	current := ""

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if name, ok := matchHeading(line); ok {
			current = name
			continue
		}

		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading resume file: %w", err)
	}

	profile := &CandidateProfile{
		Summary:    strings.Join(sections["summary"], " "),
		Skills:     splitSkills(sections["skills"]),
		Experience: append([]string(nil), sections["experience"]...),
		Education:  append([]string(nil), sections["education"]...),
		Certs:      append([]string(nil), sections["certifications"]...),
	}

	return profile, nil
}

// matchHeading reports whether the line is a section heading and returns the
// canonical section name.
func matchHeading(line string) (string, bool) {
	lower := strings.ToLower(strings.TrimRight(line, ":"))
	for name, variants := range sectionHeadings {
		for _, v := range variants {
			if lower == v {
				return name, true
			}
		}
	}
	return "", false
}

// splitSkills breaks skill section lines on common delimiters and drops
// duplicates case-insensitively, keeping the first spelling seen.
func splitSkills(lines []string) []string {
	seen := make(map[string]bool)
	var skills []string

	for _, line := range lines {
		for _, raw := range strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ';' || r == '•' || r == '|'
		}) {
			skill := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "- "))
			if skill == "" {
				continue
			}
			key := strings.ToLower(skill)
			if seen[key] {
				continue
			}
			seen[key] = true
			skills = append(skills, skill)
		}
	}

	return skills
}
