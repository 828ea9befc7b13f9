package fetch

import (
	"context"

	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/posting"
)

// FileSource reads postings from a local JSON file. It backs manual entry
// and offline ranking; no network access is involved.
type FileSource struct {
	Path string

	logger *zap.Logger
}

func NewFileSource(path string, logger *zap.Logger) *FileSource {
	return &FileSource{Path: path, logger: logger}
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Fetch(_ context.Context, query Query) ([]*posting.JobPosting, error) {
	if s.Path == "" {
		s.logger.Warn("file board has no path configured, skipping board")
		return nil, nil
	}

	postings, err := posting.FromFile(s.Path)
	if err != nil {
		return nil, err
	}

	for _, p := range postings.Items {
		if p.Source == "" {
			p.Source = s.Name()
		}
		if len(p.Skills) == 0 {
			p.Skills = ExtractSkills(p.Title+" "+p.Description, query.SkillVocabulary)
		}
	}

	if query.Limit > 0 && len(postings.Items) > query.Limit {
		postings.Items = postings.Items[:query.Limit]
	}

	return postings.Items, nil
}
