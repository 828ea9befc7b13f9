package ranking

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/twosidesofai/job-hunter/internal/posting"
	"github.com/twosidesofai/job-hunter/internal/profile"
)

func baseProfile() *profile.CandidateProfile {
	return &profile.CandidateProfile{
		Skills: []string{"Python", "ML", "APIs"},
		JobPrefs: profile.JobPrefs{
			Titles:    []string{"Engineer"},
			Locations: []string{"Remote"},
			RemoteOK:  true,
			SalaryMin: 100000,
		},
	}
}

func TestRankScenario(t *testing.T) {
	postings := []*posting.JobPosting{
		{Title: "Engineer", Skills: []string{"Python", "APIs"}, Location: "Remote", Remote: true, SalaryMin: 120000},
		{Title: "Manager", Skills: []string{"Excel"}, Location: "NYC", Remote: false, SalaryMin: 90000},
	}

	results, err := Rank(postings, baseProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	engineer := results[0]
	if engineer.Posting.Title != "Engineer" {
		t.Fatalf("expected Engineer first, got %q", engineer.Posting.Title)
	}
	if engineer.Score != 10 {
		t.Fatalf("expected Engineer score 10, got %d", engineer.Score)
	}

	wantRationale := []string{"Title match", "2 skill(s) matched", "Location match", "Remote OK", "Salary fit"}
	if !reflect.DeepEqual(engineer.Messages(), wantRationale) {
		t.Fatalf("unexpected rationale: %v", engineer.Messages())
	}

	manager := results[1]
	if manager.Score != 0 {
		t.Fatalf("expected Manager score 0, got %d", manager.Score)
	}
	if len(manager.Rationale) != 0 {
		t.Fatalf("expected empty rationale for Manager, got %v", manager.Messages())
	}
}

func TestRankEmptyInput(t *testing.T) {
	results, err := Rank(nil, baseProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %d", len(results))
	}
}

func TestRankSeniorityOnly(t *testing.T) {
	p := &profile.CandidateProfile{
		Skills: []string{"Go"},
		JobPrefs: profile.JobPrefs{
			Titles:    []string{"Engineer"},
			SalaryMin: 100000,
		},
	}
	postings := []*posting.JobPosting{
		{Title: "Senior Engineer", Skills: []string{"Rust"}},
	}

	results, err := Rank(postings, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results[0].Score != 2 {
		t.Fatalf("expected score 2, got %d", results[0].Score)
	}
	if !reflect.DeepEqual(results[0].Messages(), []string{"Seniority match"}) {
		t.Fatalf("unexpected rationale: %v", results[0].Messages())
	}
	if results[0].Rationale[0].Rule != RuleSeniority {
		t.Fatalf("expected seniority rule, got %s", results[0].Rationale[0].Rule)
	}
}

func TestRankTitleMatchIsExact(t *testing.T) {
	postings := []*posting.JobPosting{
		{Title: "Engineer II"},
		{Title: "engineer"},
	}

	results, err := Rank(postings, baseProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byTitle := map[string]*Result{}
	for _, r := range results {
		byTitle[r.Posting.Title] = r
	}

	for _, reason := range byTitle["Engineer II"].Rationale {
		if reason.Rule == RuleTitleMatch {
			t.Fatal("title rule must not fire on substring containment")
		}
	}

	fired := false
	for _, reason := range byTitle["engineer"].Rationale {
		if reason.Rule == RuleTitleMatch {
			fired = true
		}
	}
	if !fired {
		t.Fatal("title rule must fire case-insensitively on exact match")
	}
}

func TestRankStableTieBreak(t *testing.T) {
	postings := []*posting.JobPosting{
		{Title: "Backend Developer", URL: "https://jobs.example/a", SalaryMin: 120000},
		{Title: "Platform Developer", URL: "https://jobs.example/b", SalaryMin: 120000},
	}

	results, err := Rank(postings, baseProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results[0].Score != results[1].Score {
		t.Fatalf("expected a tie, got %d and %d", results[0].Score, results[1].Score)
	}
	if results[0].Posting.URL != "https://jobs.example/a" {
		t.Fatal("tie must preserve input order")
	}
}

func TestRankDuplicatePostingsScoredIndependently(t *testing.T) {
	a := &posting.JobPosting{Title: "Engineer", Skills: []string{"Python"}, Location: "Remote", Remote: true, SalaryMin: 120000}
	b := &posting.JobPosting{Title: "Engineer", Skills: []string{"Python"}, Location: "Remote", Remote: true, SalaryMin: 120000}

	results, err := Rank([]*posting.JobPosting{a, b}, baseProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results[0].Score != results[1].Score {
		t.Fatalf("identical postings must score equally: %d vs %d", results[0].Score, results[1].Score)
	}
	if results[0].Posting != a || results[1].Posting != b {
		t.Fatal("equal scores must keep input order")
	}
}

func TestRankUnconstrainedSalaryAlwaysFits(t *testing.T) {
	p := &profile.CandidateProfile{JobPrefs: profile.JobPrefs{SalaryMin: 0}}
	postings := []*posting.JobPosting{
		{Title: "Engineer"}, // salary_min absent, defaults to 0
	}

	results, err := Rank(postings, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if results[0].Score != 1 {
		t.Fatalf("expected salary fit to fire, score %d", results[0].Score)
	}
	if results[0].Rationale[0].Rule != RuleSalaryFit {
		t.Fatalf("expected salary_fit rule, got %s", results[0].Rationale[0].Rule)
	}
}

func TestRankEmptySkillsNeverOverlap(t *testing.T) {
	postings := []*posting.JobPosting{
		{Title: "Analyst", Skills: nil, SalaryMin: 150000},
	}

	results, err := Rank(postings, baseProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, reason := range results[0].Rationale {
		if reason.Rule == RuleSkillOverlap {
			t.Fatal("skill overlap must not fire on an empty skill set")
		}
	}
}

func TestRankDeterminism(t *testing.T) {
	postings := []*posting.JobPosting{
		{Title: "Engineer", Skills: []string{"Python", "APIs"}, Location: "Remote", Remote: true, SalaryMin: 120000},
		{Title: "Senior Engineer", Skills: []string{"ML"}, Location: "Berlin", SalaryMin: 0},
		{Title: "Manager", Skills: []string{"Excel"}, Location: "NYC", SalaryMin: 90000},
	}
	prof := baseProfile()

	first, err := Rank(postings, prof)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Rank(postings, prof)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("two runs diverged:\n%s\n%s", a, b)
	}
}

func TestRankMonotonicity(t *testing.T) {
	prof := baseProfile()
	base := &posting.JobPosting{Title: "Engineer", Skills: []string{"Python"}, SalaryMin: 120000}

	before, err := Rank([]*posting.JobPosting{base}, prof)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	more := &posting.JobPosting{Title: "Engineer", Skills: []string{"Python", "ML"}, SalaryMin: 120000}
	after, err := Rank([]*posting.JobPosting{more}, prof)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if after[0].Score != before[0].Score+1 {
		t.Fatalf("adding an uncounted matching skill must add exactly 1: %d -> %d", before[0].Score, after[0].Score)
	}

	// A duplicate of an already-counted skill contributes nothing.
	dup := &posting.JobPosting{Title: "Engineer", Skills: []string{"Python", "python"}, SalaryMin: 120000}
	same, err := Rank([]*posting.JobPosting{dup}, prof)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if same[0].Score != before[0].Score {
		t.Fatalf("duplicate skill must not change the score: %d vs %d", same[0].Score, before[0].Score)
	}
}

func TestRankDoesNotMutateInputs(t *testing.T) {
	postings := []*posting.JobPosting{
		{Title: "Engineer", Skills: []string{"Python", "APIs"}, Location: "Remote", Remote: true, SalaryMin: 120000},
		{Title: "Manager", Skills: []string{"Excel"}, Location: "NYC", SalaryMin: 90000},
	}
	prof := baseProfile()

	postingsBefore, _ := json.Marshal(postings)
	profileBefore, _ := json.Marshal(prof)

	if _, err := Rank(postings, prof); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	postingsAfter, _ := json.Marshal(postings)
	profileAfter, _ := json.Marshal(prof)

	if string(postingsBefore) != string(postingsAfter) {
		t.Fatal("postings were mutated by ranking")
	}
	if string(profileBefore) != string(profileAfter) {
		t.Fatal("profile was mutated by ranking")
	}
}

func TestRankNonNegativeScores(t *testing.T) {
	postings := []*posting.JobPosting{
		{Title: "Zookeeper", Location: "Mars", SalaryMin: 1},
		{},
	}
	p := &profile.CandidateProfile{JobPrefs: profile.JobPrefs{SalaryMin: 500000}}

	results, err := Rank(postings, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, r := range results {
		if r.Score < 0 {
			t.Fatalf("negative score: %d", r.Score)
		}
		if r.Score == 0 && len(r.Rationale) != 0 {
			t.Fatalf("zero score must mean no fired rules, got %v", r.Messages())
		}
	}
}

func TestRankMalformedInput(t *testing.T) {
	t.Run("nil posting", func(t *testing.T) {
		_, err := Rank([]*posting.JobPosting{{Title: "ok"}, nil}, baseProfile())
		if err == nil {
			t.Fatal("expected error for nil posting")
		}
	})

	t.Run("negative posting salary", func(t *testing.T) {
		_, err := Rank([]*posting.JobPosting{{Title: "ok", SalaryMin: -5}}, baseProfile())
		if err == nil {
			t.Fatal("expected error for negative salary_min")
		}
	})

	t.Run("nil profile", func(t *testing.T) {
		_, err := Rank([]*posting.JobPosting{{Title: "ok"}}, nil)
		if err == nil {
			t.Fatal("expected error for nil profile")
		}
	})

	t.Run("negative profile salary", func(t *testing.T) {
		p := &profile.CandidateProfile{JobPrefs: profile.JobPrefs{SalaryMin: -1}}
		_, err := Rank([]*posting.JobPosting{{Title: "ok"}}, p)
		if err == nil {
			t.Fatal("expected error for negative profile salary_min")
		}
	})
}
