package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// JobPrefs holds the candidate's search preferences.
type JobPrefs struct {
	Titles    []string `json:"titles" mapstructure:"titles"`
	Locations []string `json:"locations" mapstructure:"locations"`
	RemoteOK  bool     `json:"remote_ok" mapstructure:"remote_ok"`
	SalaryMin int      `json:"salary_min" mapstructure:"salary_min"`
}

// CandidateProfile is the structured candidate record produced by resume
// ingestion or loaded from a profile document. It is read-only input for
// ranking and drafting.
type CandidateProfile struct {
	Name       string   `json:"name,omitempty" mapstructure:"name"`
	Title      string   `json:"title,omitempty" mapstructure:"title"`
	Summary    string   `json:"summary,omitempty" mapstructure:"summary"`
	Skills     []string `json:"skills" mapstructure:"skills"`
	Experience []string `json:"experience,omitempty" mapstructure:"experience"`
	Education  []string `json:"education,omitempty" mapstructure:"education"`
	Certs      []string `json:"certs,omitempty" mapstructure:"certs"`
	JobPrefs   JobPrefs `json:"job_prefs" mapstructure:"job_prefs"`
}

// FromFile loads a candidate profile from a JSON document.
func FromFile(path string) (*CandidateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing profile file %q: %w", path, err)
	}

	var profile CandidateProfile
	cfg := &mapstructure.DecoderConfig{
		Result:  &profile,
		TagName: "mapstructure",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding profile file %q: %w", path, err)
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return &profile, nil
}

// Validate checks the profile fields that downstream components rely on.
func (p *CandidateProfile) Validate() error {
	if p == nil {
		return fmt.Errorf("profile is required")
	}
	if p.JobPrefs.SalaryMin < 0 {
		return fmt.Errorf("profile field job_prefs.salary_min is negative: %d", p.JobPrefs.SalaryMin)
	}
	return nil
}

// HasSkill reports whether the profile lists the skill, case-insensitively.
func (p *CandidateProfile) HasSkill(skill string) bool {
	for _, s := range p.Skills {
		if strings.EqualFold(s, skill) {
			return true
		}
	}
	return false
}

// Text joins the profile's free-text fields into a single lowercase blob
// used for keyword matching.
func (p *CandidateProfile) Text() string {
	parts := make([]string, 0, 2+len(p.Skills)+len(p.Experience))
	parts = append(parts, p.Title, p.Summary)
	parts = append(parts, p.Skills...)
	parts = append(parts, p.Experience...)
	parts = append(parts, p.JobPrefs.Titles...)
	return strings.ToLower(strings.Join(parts, " "))
}
