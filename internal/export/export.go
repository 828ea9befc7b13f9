package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/ai"
	"github.com/twosidesofai/job-hunter/internal/posting"
)

// Format selects the on-disk representation of exported drafts.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatBoth     Format = "both"
)

// ParseFormat converts a config value into a Format.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	case "both":
		return FormatBoth, nil
	default:
		return "", fmt.Errorf("unknown export format %q", raw)
	}
}

// Bundle holds the materials produced for a single posting.
type Bundle struct {
	Resume      *ai.ResumeDraft
	CoverLetter *ai.CoverLetterDraft
}

// Exported lists the files written for a bundle.
type Exported struct {
	ResumePaths      []string
	CoverLetterPaths []string
}

// Exporter writes application materials into a per-run directory.
type Exporter struct {
	dir    string
	format Format
	logger *zap.Logger
}

func NewExporter(dir string, format Format, logger *zap.Logger) *Exporter {
	return &Exporter{
		dir:    dir,
		format: format,
		logger: logger,
	}
}

// Write stores the bundle for the posting and returns the written paths.
func (e *Exporter) Write(post *posting.JobPosting, bundle *Bundle) (*Exported, error) {
	if post == nil {
		return nil, fmt.Errorf("posting is required")
	}
	if bundle == nil || (bundle.Resume == nil && bundle.CoverLetter == nil) {
		return nil, fmt.Errorf("bundle has no drafts to export")
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	base := slug(post.Company) + "_" + slug(post.Title)
	out := &Exported{}

	if bundle.Resume != nil {
		paths, err := e.writeDocument(base+"_resume", resumeMarkdown(post, bundle.Resume))
		if err != nil {
			return nil, err
		}
		out.ResumePaths = paths
	}

	if bundle.CoverLetter != nil {
		paths, err := e.writeDocument(base+"_cover_letter", coverLetterMarkdown(post, bundle.CoverLetter))
		if err != nil {
			return nil, err
		}
		out.CoverLetterPaths = paths
	}

	e.logger.Info("exported application materials",
		zap.String("company", post.Company),
		zap.String("title", post.Title),
		zap.Strings("resume", out.ResumePaths),
		zap.Strings("cover_letter", out.CoverLetterPaths),
	)

	return out, nil
}

func (e *Exporter) writeDocument(name, content string) ([]string, error) {
	var paths []string

	if e.format == FormatMarkdown || e.format == FormatBoth {
		path := filepath.Join(e.dir, name+".md")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	if e.format == FormatPDF || e.format == FormatBoth {
		path := filepath.Join(e.dir, name+".pdf")
		if err := writePDF(path, content); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func resumeMarkdown(post *posting.JobPosting, draft *ai.ResumeDraft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<!-- tailored for %s at %s -->\n\n", post.Title, post.Company)
	if draft.Summary != "" {
		fmt.Fprintf(&b, "## Summary\n\n%s\n\n", draft.Summary)
	}
	if len(draft.Skills) > 0 {
		b.WriteString("## Key Skills\n\n")
		for _, skill := range draft.Skills {
			fmt.Fprintf(&b, "- %s\n", skill)
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimSpace(draft.Content))
	b.WriteString("\n")
	return b.String()
}

func coverLetterMarkdown(post *posting.JobPosting, draft *ai.CoverLetterDraft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<!-- cover letter for %s at %s -->\n\n", post.Title, post.Company)
	b.WriteString(strings.TrimSpace(draft.Content))
	b.WriteString("\n")
	if len(draft.KeyPoints) > 0 {
		b.WriteString("\n<!-- key points:")
		for _, point := range draft.KeyPoints {
			b.WriteString(" " + point + ";")
		}
		b.WriteString(" -->\n")
	}
	return b.String()
}

func writePDF(path, content string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 11)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, " ")
		switch {
		case strings.HasPrefix(line, "<!--"):
			continue
		case strings.HasPrefix(line, "## "):
			pdf.SetFont("Helvetica", "B", 13)
			pdf.MultiCell(0, 7, tr(strings.TrimPrefix(line, "## ")), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
		case strings.HasPrefix(line, "# "):
			pdf.SetFont("Helvetica", "B", 15)
			pdf.MultiCell(0, 8, tr(strings.TrimPrefix(line, "# ")), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
		case line == "":
			pdf.Ln(4)
		default:
			pdf.MultiCell(0, 5.5, tr(line), "", "L", false)
		}
	}

	return pdf.OutputFileAndClose(path)
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}

	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "unknown"
	}
	return out
}
