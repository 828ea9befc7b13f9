package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/posting"
)

const remotiveBaseURL = "https://remotive.com/api/remote-jobs"

// RemotiveSource fetches postings from the Remotive public API. Every
// Remotive listing is a remote role. No credentials are required.
type RemotiveSource struct {
	BaseURL string

	client *http.Client
	logger *zap.Logger
}

func NewRemotiveSource(logger *zap.Logger) *RemotiveSource {
	return &RemotiveSource{
		BaseURL: remotiveBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
		logger:  logger,
	}
}

func (s *RemotiveSource) Name() string { return "remotive" }

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	CompanyName string   `json:"company_name"`
	Tags        []string `json:"tags"`
	Location    string   `json:"candidate_required_location"`
	Salary      string   `json:"salary"`
	Description string   `json:"description"`
	PublishedAt string   `json:"publication_date"`
}

func (s *RemotiveSource) Fetch(ctx context.Context, query Query) ([]*posting.JobPosting, error) {
	params := url.Values{}
	params.Set("search", query.Text())
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("make request", zap.String("url", s.BaseURL), zap.String("search", query.Text()))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remotive returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp remotiveResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	postings := make([]*posting.JobPosting, 0, len(apiResp.Jobs))
	for _, j := range apiResp.Jobs {
		postings = append(postings, s.normalize(j, query))
	}

	return postings, nil
}

func (s *RemotiveSource) normalize(j remotiveJob, query Query) *posting.JobPosting {
	skills := append([]string(nil), j.Tags...)
	if len(skills) == 0 {
		skills = ExtractSkills(j.Title+" "+j.Description, query.SkillVocabulary)
	}

	return &posting.JobPosting{
		Title:       j.Title,
		Company:     j.CompanyName,
		Skills:      skills,
		Location:    j.Location,
		Remote:      true,
		SalaryMin:   ParseSalaryMin(j.Salary),
		URL:         j.URL,
		Source:      s.Name(),
		Description: j.Description,
		PostedAt:    j.PublishedAt,
	}
}

var salaryNumber = regexp.MustCompile(`\d[\d,]*`)

// ParseSalaryMin extracts the first number from a free-form salary string
// ("$100,000 - $130,000", "100k"). Returns 0 when nothing parseable is
// present, which ranking treats as unknown.
func ParseSalaryMin(s string) int {
	match := salaryNumber.FindString(s)
	if match == "" {
		return 0
	}

	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0
	}

	// "100k" style shorthand.
	if idx := strings.Index(s, match); idx != -1 {
		rest := s[idx+len(match):]
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(rest)), "k") {
			n *= 1000
		}
	}

	return n
}
