package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/ai"
	"github.com/twosidesofai/job-hunter/internal/logger"
	"github.com/twosidesofai/job-hunter/internal/posting"
	"github.com/twosidesofai/job-hunter/internal/profile"
	"github.com/twosidesofai/job-hunter/internal/ranking"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed resume_prompt.md
var resumePromptTemplate string

//go:embed cover_letter_prompt.md
var coverLetterPromptTemplate string

const defaultMaxLogLength = 200

// Drafter produces tailored application materials through Gemini.
type Drafter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewDrafter(generator contentGenerator, maxLogLength int, log *zap.Logger) *Drafter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Drafter{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// TailorResume asks Gemini for a resume tailored to the posting.
func (d *Drafter) TailorResume(ctx context.Context, prof *profile.CandidateProfile, post *posting.JobPosting, result *ranking.Result) (*ai.ResumeDraft, error) {
	raw, err := d.generate(ctx, resumePromptTemplate, prof, post, result)
	if err != nil {
		return nil, err
	}

	data, err := parseJSONObject(raw)
	if err != nil {
		return nil, err
	}

	draft := &ai.ResumeDraft{
		Summary: coerceString(data["summary"]),
		Skills:  coerceStrings(data["skills"]),
		Content: coerceString(data["content"]),
		Raw:     raw,
	}

	if draft.Content == "" {
		return nil, fmt.Errorf("gemini response has no resume content")
	}

	return draft, nil
}

// DraftCoverLetter asks Gemini for a cover letter for the posting.
func (d *Drafter) DraftCoverLetter(ctx context.Context, prof *profile.CandidateProfile, post *posting.JobPosting, result *ranking.Result) (*ai.CoverLetterDraft, error) {
	raw, err := d.generate(ctx, coverLetterPromptTemplate, prof, post, result)
	if err != nil {
		return nil, err
	}

	data, err := parseJSONObject(raw)
	if err != nil {
		return nil, err
	}

	draft := &ai.CoverLetterDraft{
		Content:   coerceString(data["content"]),
		KeyPoints: coerceStrings(data["key_points"]),
		Raw:       raw,
	}

	if draft.Content == "" {
		return nil, fmt.Errorf("gemini response has no cover letter content")
	}

	return draft, nil
}

func (d *Drafter) generate(ctx context.Context, template string, prof *profile.CandidateProfile, post *posting.JobPosting, result *ranking.Result) (string, error) {
	if prof == nil {
		return "", fmt.Errorf("profile is required")
	}
	if post == nil {
		return "", fmt.Errorf("posting is required")
	}

	profileJSON, err := json.MarshalIndent(prof, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile payload: %w", err)
	}

	postingJSON, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal posting payload: %w", err)
	}

	prompt := buildPrompt(template, string(profileJSON), string(postingJSON), rationaleBlock(result))

	d.logger.Debug("gemini generate content request",
		zap.String("posting_url", post.URL),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, d.maxLogLen)),
	)

	raw, err := d.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	d.logger.Debug("gemini generate content response",
		zap.String("posting_url", post.URL),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, d.maxLogLen)),
	)

	return raw, nil
}

func buildPrompt(template, profileJSON, postingJSON, rationale string) string {
	prompt := strings.ReplaceAll(template, "{{PROFILE_JSON}}", profileJSON)
	prompt = strings.ReplaceAll(prompt, "{{POSTING_JSON}}", postingJSON)
	prompt = strings.ReplaceAll(prompt, "{{RATIONALE}}", rationale)
	return prompt
}

func rationaleBlock(result *ranking.Result) string {
	if result == nil || len(result.Rationale) == 0 {
		return "- none"
	}

	var b strings.Builder
	for _, reason := range result.Rationale {
		fmt.Fprintf(&b, "- %s\n", reason.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}

func parseJSONObject(raw string) (map[string]any, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	return data, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
