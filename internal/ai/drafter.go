package ai

import (
	"context"

	"github.com/twosidesofai/job-hunter/internal/posting"
	"github.com/twosidesofai/job-hunter/internal/profile"
	"github.com/twosidesofai/job-hunter/internal/ranking"
)

// ResumeDraft is a tailored resume produced for one posting.
type ResumeDraft struct {
	Summary string
	Skills  []string
	Content string
	Raw     string
}

// CoverLetterDraft is a tailored cover letter produced for one posting.
type CoverLetterDraft struct {
	Content   string
	KeyPoints []string
	Raw       string
}

// Drafter produces tailored application materials from the candidate
// profile, the posting, and the ranking rationale for that posting.
type Drafter interface {
	TailorResume(ctx context.Context, prof *profile.CandidateProfile, post *posting.JobPosting, result *ranking.Result) (*ResumeDraft, error)
	DraftCoverLetter(ctx context.Context, prof *profile.CandidateProfile, post *posting.JobPosting, result *ranking.Result) (*CoverLetterDraft, error)
}
