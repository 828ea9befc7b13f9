package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/twosidesofai/job-hunter/internal/ai"
	"github.com/twosidesofai/job-hunter/internal/posting"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		raw     string
		want    Format
		wantErr bool
	}{
		{"markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"", FormatMarkdown, false},
		{"PDF", FormatPDF, false},
		{"Both", FormatBoth, false},
		{"docx", "", true},
	}

	for _, tc := range cases {
		got, err := ParseFormat(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseFormat(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseFormat(%q): unexpected error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestWriteMarkdown(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, FormatMarkdown, zap.NewNop())

	post := &posting.JobPosting{Title: "Platform Engineer", Company: "Acme Corp."}
	bundle := &Bundle{
		Resume: &ai.ResumeDraft{
			Summary: "Platform engineer with Go experience.",
			Skills:  []string{"Go", "Kubernetes"},
			Content: "# Jane Roe\n\nExperience body.",
		},
		CoverLetter: &ai.CoverLetterDraft{
			Content:   "Dear Acme team,\n\nI would like to apply.",
			KeyPoints: []string{"Go expertise"},
		},
	}

	out, err := e.Write(post, bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.ResumePaths) != 1 || len(out.CoverLetterPaths) != 1 {
		t.Fatalf("unexpected paths: %+v", out)
	}

	wantResume := filepath.Join(dir, "acme-corp_platform-engineer_resume.md")
	if out.ResumePaths[0] != wantResume {
		t.Fatalf("resume path = %q, want %q", out.ResumePaths[0], wantResume)
	}

	data, err := os.ReadFile(wantResume)
	if err != nil {
		t.Fatalf("read resume: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, "## Summary") {
		t.Fatal("expected summary section")
	}
	if !strings.Contains(body, "- Kubernetes") {
		t.Fatal("expected skills list")
	}
	if !strings.Contains(body, "Experience body.") {
		t.Fatal("expected resume content")
	}

	letter, err := os.ReadFile(out.CoverLetterPaths[0])
	if err != nil {
		t.Fatalf("read cover letter: %v", err)
	}
	if !strings.Contains(string(letter), "Dear Acme team,") {
		t.Fatal("expected cover letter content")
	}
}

func TestWriteBothProducesPDF(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, FormatBoth, zap.NewNop())

	post := &posting.JobPosting{Title: "SRE", Company: "Globex"}
	bundle := &Bundle{
		Resume: &ai.ResumeDraft{Content: "# Resume\n\nBody."},
	}

	out, err := e.Write(post, bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.ResumePaths) != 2 {
		t.Fatalf("expected markdown and pdf, got %v", out.ResumePaths)
	}

	pdfPath := filepath.Join(dir, "globex_sre_resume.pdf")
	info, err := os.Stat(pdfPath)
	if err != nil {
		t.Fatalf("stat pdf: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("pdf file is empty")
	}
}

func TestWriteRejectsEmptyBundle(t *testing.T) {
	e := NewExporter(t.TempDir(), FormatMarkdown, zap.NewNop())

	if _, err := e.Write(&posting.JobPosting{Title: "x", Company: "y"}, &Bundle{}); err == nil {
		t.Fatal("expected error for empty bundle")
	}
	if _, err := e.Write(nil, &Bundle{Resume: &ai.ResumeDraft{Content: "c"}}); err == nil {
		t.Fatal("expected error for nil posting")
	}
}

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme Corp.", "acme-corp"},
		{"Señor Staff Engineer (Remote)", "se-or-staff-engineer-remote"},
		{"", "unknown"},
		{"---", "unknown"},
	}

	for _, tc := range cases {
		if got := slug(tc.in); got != tc.want {
			t.Fatalf("slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
