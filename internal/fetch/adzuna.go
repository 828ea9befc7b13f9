package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/posting"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3
	httpTimeout    = 15 * time.Second
)

// AdzunaSource fetches postings from the Adzuna public API. When AppID or
// AppKey is empty, Fetch returns (nil, nil) and the board is skipped for the
// round with a warning.
type AdzunaSource struct {
	AppID   string
	AppKey  string
	Country string // "gb", "us", "fr", ...
	BaseURL string

	client *http.Client
	logger *zap.Logger
}

func NewAdzunaSource(appID, appKey, country string, logger *zap.Logger) *AdzunaSource {
	if country == "" {
		country = "us"
	}
	return &AdzunaSource{
		AppID:   appID,
		AppKey:  appKey,
		Country: country,
		BaseURL: adzunaBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
		logger:  logger,
	}
}

func (s *AdzunaSource) Name() string { return "adzuna" }

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	SalaryMin   float64 `json:"salary_min"`
	RedirectURL string  `json:"redirect_url"`
	Created     string  `json:"created"`
}

// Fetch retrieves postings page by page until the limit, an empty page, or
// adzunaMaxPages is reached.
func (s *AdzunaSource) Fetch(ctx context.Context, query Query) ([]*posting.JobPosting, error) {
	if s.AppID == "" || s.AppKey == "" {
		s.logger.Warn("adzuna credentials are not configured, skipping board")
		return nil, nil
	}

	var postings []*posting.JobPosting

	for page := 1; page <= adzunaMaxPages; page++ {
		batch, err := s.fetchPage(ctx, query, page)
		if err != nil {
			return postings, fmt.Errorf("page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		postings = append(postings, batch...)
		if query.Limit > 0 && len(postings) >= query.Limit {
			postings = postings[:query.Limit]
			break
		}
		if len(batch) < adzunaPageSize {
			break
		}
	}

	return postings, nil
}

func (s *AdzunaSource) fetchPage(ctx context.Context, query Query, page int) ([]*posting.JobPosting, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", s.BaseURL, s.Country, page)

	params := url.Values{}
	params.Set("app_id", s.AppID)
	params.Set("app_key", s.AppKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", query.Text())
	params.Set("where", query.Location)
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("make request", zap.String("url", endpoint), zap.Int("page", page))

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
		return nil, fmt.Errorf("adzuna returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	postings := make([]*posting.JobPosting, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		postings = append(postings, s.normalize(r, query))
	}

	return postings, nil
}

func (s *AdzunaSource) normalize(r adzunaResult, query Query) *posting.JobPosting {
	location := r.Location.DisplayName
	remote := strings.Contains(strings.ToLower(location), "remote") ||
		strings.Contains(strings.ToLower(r.Description), "fully remote")

	return &posting.JobPosting{
		Title:       r.Title,
		Company:     r.Company.DisplayName,
		Skills:      ExtractSkills(r.Title+" "+r.Description, query.SkillVocabulary),
		Location:    location,
		Remote:      remote,
		SalaryMin:   int(r.SalaryMin),
		URL:         r.RedirectURL,
		Source:      s.Name(),
		Description: r.Description,
		PostedAt:    r.Created,
	}
}
