package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/posting"
)

// filterState carries the disable flag and reason shared by every filter.
// Run skips filters whose state is disabled.
type filterState struct {
	disabled bool
	reason   string
}

func (s *filterState) Disable(reason string) {
	s.disabled = true
	s.reason = reason
}

func (s *filterState) IsEnabled() bool { return !s.disabled }

func (s *filterState) status(name string, details map[string]string) Status {
	return Status{
		Name:    name,
		Enabled: !s.disabled,
		Reason:  s.reason,
		Details: details,
	}
}

type redFlagsFilter struct {
	filterState

	terms []string
}

// NewRedFlags creates a filter that removes postings containing any
// configured red-flag term.
func NewRedFlags() Filter {
	return &redFlagsFilter{}
}

func (f *redFlagsFilter) Name() string { return "red_flags" }

func (f *redFlagsFilter) Validate(cfg *Config) error {
	f.terms = nil
	if cfg != nil {
		f.terms = append(f.terms, cfg.RedFlags...)
	}
	return nil
}

func (f *redFlagsFilter) Apply(_ context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	if len(f.terms) == 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	var excluded []string
	kept := p.Items[:0]
	for _, item := range p.Items {
		if ContainsRedFlag(item.Title, item.Company, item.Description, f.terms) {
			excluded = append(excluded, item.URL)
			continue
		}
		kept = append(kept, item)
	}
	p.Items = kept

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings containing red flags",
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *redFlagsFilter) Status() Status {
	details := map[string]string{}
	if len(f.terms) > 0 {
		details["terms"] = strings.Join(f.terms, ",")
	}
	return f.status(f.Name(), details)
}

// ContainsRedFlag returns true if any red flag term appears (case-insensitive)
// anywhere in the combined title + company + description text.
func ContainsRedFlag(title, company, description string, redFlags []string) bool {
	if len(redFlags) == 0 {
		return false
	}
	combined := strings.ToLower(title + " " + company + " " + description)
	for _, flag := range redFlags {
		if flag == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(flag)) {
			return true
		}
	}
	return false
}

type companiesFilter struct {
	filterState

	companies []string
}

// NewCompanies creates a filter that removes postings from excluded companies.
func NewCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg != nil {
		f.companies = append(f.companies, cfg.ExcludeCompanies...)
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	if len(f.companies) == 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	excluded := p.Exclude(posting.CompanyField, f.companies)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return f.status(f.Name(), details)
}

type excludeFileFilter struct {
	filterState

	path string
}

// NewExcludeFile creates a filter that removes postings recorded in the
// exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	if f.path == "" {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	excluded, err := posting.LoadExcluded(f.path)
	if err != nil {
		return p, Step{}, fmt.Errorf("getting excluded postings from file: %w", err)
	}

	removed := p.Exclude(posting.URLField, excluded.URLs())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding postings based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_postings", removed),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(removed), Left: p.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return f.status(f.Name(), details)
}

type appliedHistoryFilter struct {
	filterState
}

// NewAppliedHistory creates a filter that removes postings the candidate
// already applied to, according to the application store. Callers that want
// to keep applied postings disable the filter through DisableByName.
func NewAppliedHistory() Filter {
	return &appliedHistoryFilter{}
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Validate(*Config) error {
	return nil
}

func (f *appliedHistoryFilter) Apply(ctx context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()

	if deps.History == nil {
		if deps.Logger != nil {
			deps.Logger.Info("application store is not configured; skipping applied_history filter")
		}
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	applied, err := deps.History.AppliedURLs(ctx)
	if err != nil {
		return p, Step{}, fmt.Errorf("get applied postings: %w", err)
	}

	excluded := p.Exclude(posting.URLField, applied)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings based on application history",
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *appliedHistoryFilter) Status() Status {
	return f.status(f.Name(), nil)
}

type salaryFloorFilter struct {
	filterState

	floor int
}

// NewSalaryFloor creates a filter that removes postings whose stated minimum
// salary is below the configured floor. Postings with unknown salary pass,
// the compensation rule scores them later.
func NewSalaryFloor() Filter {
	return &salaryFloorFilter{}
}

func (f *salaryFloorFilter) Name() string { return "salary_floor" }

func (f *salaryFloorFilter) Validate(cfg *Config) error {
	f.floor = 0
	if cfg != nil {
		if cfg.SalaryFloor < 0 {
			return fmt.Errorf("salary floor must not be negative: %d", cfg.SalaryFloor)
		}
		f.floor = cfg.SalaryFloor
	}
	return nil
}

func (f *salaryFloorFilter) Apply(_ context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error) {
	initial := p.Len()
	if f.floor == 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	var excluded []string
	kept := p.Items[:0]
	for _, item := range p.Items {
		if item.SalaryMin > 0 && item.SalaryMin < f.floor {
			excluded = append(excluded, item.URL)
			continue
		}
		kept = append(kept, item)
	}
	p.Items = kept

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding postings below salary floor",
			zap.Int("floor", f.floor),
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *salaryFloorFilter) Status() Status {
	return f.status(f.Name(), map[string]string{
		"floor": strconv.Itoa(f.floor),
	})
}
