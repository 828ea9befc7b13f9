package posting

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	URLField     = "URL"
	CompanyField = "Company"
)

// JobPosting is a normalized job listing. Skills are the explicitly tagged
// or upstream-extracted requirements; SalaryMin is 0 when unknown.
type JobPosting struct {
	Title       string   `json:"title"`
	Company     string   `json:"company,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Location    string   `json:"location,omitempty"`
	Remote      bool     `json:"remote,omitempty"`
	SalaryMin   int      `json:"salary_min,omitempty"`
	URL         string   `json:"url,omitempty"`
	Source      string   `json:"source,omitempty"`
	Description string   `json:"description,omitempty"`
	PostedAt    string   `json:"posted_at,omitempty"`
}

// Postings is an ordered collection of job postings. Order is significant:
// ranking preserves input order between equal scores.
type Postings struct {
	Items []*JobPosting `json:"items"`
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByURL(url string) *JobPosting {
	for _, item := range p.Items {
		if item.URL == url {
			return item
		}
	}
	return nil
}

func (jp *JobPosting) GetStringField(name string) string {
	switch name {
	case URLField:
		return jp.URL
	case CompanyField:
		return jp.Company
	default:
		return ""
	}
}

// Key identifies a posting for dedup purposes. Falls back to a synthetic
// source/title/company key when the posting carries no URL.
func (jp *JobPosting) Key() string {
	if jp.URL != "" {
		return jp.URL
	}
	return strings.ToLower(fmt.Sprintf("%s:%s:%s", jp.Source, jp.Title, jp.Company))
}

// Exclude removes postings whose named field matches any of the target
// values, case-insensitively. Relative order of the remaining postings is
// preserved. Returns the URLs of the removed postings.
func (p *Postings) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	lowered := make(map[string]bool, len(targets))
	for _, t := range targets {
		lowered[strings.ToLower(t)] = true
	}

	var excluded []string
	kept := p.Items[:0]
	for _, item := range p.Items {
		if lowered[strings.ToLower(item.GetStringField(name))] {
			excluded = append(excluded, item.URL)
			continue
		}
		kept = append(kept, item)
	}
	p.Items = kept

	return excluded
}

// Dedupe drops postings whose dedup key was already seen, keeping the first
// occurrence. Returns the number of dropped postings.
func (p *Postings) Dedupe() int {
	seen := make(map[string]bool, len(p.Items))
	kept := p.Items[:0]
	dropped := 0

	for _, item := range p.Items {
		key := item.Key()
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		kept = append(kept, item)
	}
	p.Items = kept

	return dropped
}

// ReportByCompany groups postings per company for the interactive report.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, item := range p.Items {
		key := item.Company
		if key == "" {
			key = "(unknown company)"
		}
		report[key] = append(report[key], map[string]string{
			"title":    item.Title,
			"url":      item.URL,
			"location": item.Location,
			"salary":   fmt.Sprintf("%d", item.SalaryMin),
			"source":   item.Source,
		})
	}
	return report
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// FromFile loads postings from a JSON file. Both a bare array and the
// {"items": [...]} wrapper produced by DumpToTmpFile are accepted.
func FromFile(path string) (*Postings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading postings file: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var items []*JobPosting
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parsing postings file %q: %w", path, err)
		}
		return &Postings{Items: items}, nil
	}

	var postings Postings
	if err := json.Unmarshal(data, &postings); err != nil {
		return nil, fmt.Errorf("parsing postings file %q: %w", path, err)
	}
	return &postings, nil
}
