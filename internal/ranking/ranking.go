// Package ranking scores job postings against a candidate profile and
// returns an ordered, explained list. The engine is a pure function: it
// never mutates its inputs, holds no state, and produces identical output
// for identical input.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/twosidesofai/job-hunter/internal/posting"
	"github.com/twosidesofai/job-hunter/internal/profile"
)

// Rule identifies a scoring rule. Rationale entries carry the rule so
// callers can assert on rule identity instead of message text.
type Rule string

const (
	RuleTitleMatch    Rule = "title_match"
	RuleSkillOverlap  Rule = "skill_overlap"
	RuleSeniority     Rule = "seniority"
	RuleLocationMatch Rule = "location_match"
	RuleRemoteFit     Rule = "remote_fit"
	RuleSalaryFit     Rule = "salary_fit"
)

// Reason is one fired scoring rule with its human-readable message.
type Reason struct {
	Rule    Rule
	Message string
}

// Result is the score and rationale for a single posting. The posting is
// the original input value, unmodified.
type Result struct {
	Posting   *posting.JobPosting
	Score     int
	Rationale []Reason
}

// Messages flattens the rationale into its message strings, in
// rule-evaluation order.
func (r *Result) Messages() []string {
	msgs := make([]string, 0, len(r.Rationale))
	for _, reason := range r.Rationale {
		msgs = append(msgs, reason.Message)
	}
	return msgs
}

// Rank scores every posting against the profile and returns results sorted
// by descending score. The sort is stable: postings with equal scores keep
// their input order. An empty postings list yields an empty result.
//
// Rank fails fast on malformed input (nil records, negative salaries),
// naming the offending field and record index. It never errors on
// well-formed input; missing optional fields score as empty/zero/false.
func Rank(postings []*posting.JobPosting, prof *profile.CandidateProfile) ([]*Result, error) {
	if prof == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if prof.JobPrefs.SalaryMin < 0 {
		return nil, fmt.Errorf("malformed profile: field job_prefs.salary_min is negative (%d)", prof.JobPrefs.SalaryMin)
	}

	skills := lowerSet(prof.Skills)
	titles := lowerSet(prof.JobPrefs.Titles)
	locations := lowerSet(prof.JobPrefs.Locations)

	results := make([]*Result, 0, len(postings))
	for i, post := range postings {
		if post == nil {
			return nil, fmt.Errorf("malformed posting at index %d: record is nil", i)
		}
		if post.SalaryMin < 0 {
			return nil, fmt.Errorf("malformed posting at index %d: field salary_min is negative (%d)", i, post.SalaryMin)
		}
		results = append(results, score(post, prof, skills, titles, locations))
	}

	// Stable sort keeps input order between equal scores, so repeated runs
	// on identical input produce identical ordering.
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	return results, nil
}

// score evaluates the six rules in their fixed order. No rule depends on
// another rule's outcome.
func score(post *posting.JobPosting, prof *profile.CandidateProfile, skills, titles, locations map[string]bool) *Result {
	result := &Result{Posting: post}
	title := strings.ToLower(post.Title)

	// Rule 1: exact title match against the preferred title set.
	if titles[title] {
		result.add(RuleTitleMatch, 3, "Title match")
	}

	// Rule 2: one point per shared skill.
	overlap := 0
	seen := make(map[string]bool, len(post.Skills))
	for _, s := range post.Skills {
		key := strings.ToLower(s)
		if skills[key] && !seen[key] {
			seen[key] = true
			overlap++
		}
	}
	if overlap > 0 {
		result.add(RuleSkillOverlap, overlap, fmt.Sprintf("%d skill(s) matched", overlap))
	}

	// Rule 3: the only substring rule.
	if strings.Contains(title, "senior") {
		result.add(RuleSeniority, 2, "Seniority match")
	}

	// Rule 4: location membership.
	if locations[strings.ToLower(post.Location)] {
		result.add(RuleLocationMatch, 2, "Location match")
	}

	// Rule 5: remote fit.
	if post.Remote && prof.JobPrefs.RemoteOK {
		result.add(RuleRemoteFit, 2, "Remote OK")
	}

	// Rule 6: compensation fit. An unconstrained profile (salary_min 0)
	// always fires, including for postings with unknown salary.
	if post.SalaryMin >= prof.JobPrefs.SalaryMin {
		result.add(RuleSalaryFit, 1, "Salary fit")
	}

	return result
}

func (r *Result) add(rule Rule, points int, message string) {
	r.Score += points
	r.Rationale = append(r.Rationale, Reason{Rule: rule, Message: message})
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}
