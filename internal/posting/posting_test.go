package posting

import (
	"os"
	"path/filepath"
	"testing"
)

func samplePostings() *Postings {
	return &Postings{Items: []*JobPosting{
		{Title: "Engineer", Company: "Acme", URL: "https://jobs.example/1"},
		{Title: "Manager", Company: "Globex", URL: "https://jobs.example/2"},
		{Title: "Senior Engineer", Company: "Acme", URL: "https://jobs.example/3"},
	}}
}

func TestExcludeByURLPreservesOrder(t *testing.T) {
	p := samplePostings()

	excluded := p.Exclude(URLField, []string{"https://jobs.example/2"})
	if len(excluded) != 1 || excluded[0] != "https://jobs.example/2" {
		t.Fatalf("unexpected excluded list: %v", excluded)
	}

	if p.Len() != 2 {
		t.Fatalf("expected 2 postings left, got %d", p.Len())
	}
	if p.Items[0].URL != "https://jobs.example/1" || p.Items[1].URL != "https://jobs.example/3" {
		t.Fatalf("order not preserved: %v, %v", p.Items[0].URL, p.Items[1].URL)
	}
}

func TestExcludeByCompanyCaseInsensitive(t *testing.T) {
	p := samplePostings()

	excluded := p.Exclude(CompanyField, []string{"acme"})
	if len(excluded) != 2 {
		t.Fatalf("expected 2 excluded, got %d", len(excluded))
	}
	if p.Len() != 1 || p.Items[0].Company != "Globex" {
		t.Fatalf("unexpected remaining postings: %+v", p.Items)
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	p := &Postings{Items: []*JobPosting{
		{Title: "Engineer", Company: "Acme", URL: "https://jobs.example/1"},
		{Title: "Engineer (repost)", Company: "Acme", URL: "https://jobs.example/1"},
		{Title: "No URL", Company: "Acme", Source: "file"},
		{Title: "No URL", Company: "Acme", Source: "file"},
	}}

	dropped := p.Dedupe()
	if dropped != 2 {
		t.Fatalf("expected 2 dropped, got %d", dropped)
	}
	if p.Items[0].Title != "Engineer" {
		t.Fatalf("expected first occurrence kept, got %q", p.Items[0].Title)
	}
}

func TestFindByURL(t *testing.T) {
	p := samplePostings()

	if got := p.FindByURL("https://jobs.example/3"); got == nil || got.Title != "Senior Engineer" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got := p.FindByURL("https://jobs.example/404"); got != nil {
		t.Fatalf("expected nil for unknown url, got %+v", got)
	}
}

func TestFromFileBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postings.json")
	doc := `[{"title": "Engineer", "url": "https://jobs.example/1"}]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write postings: %v", err)
	}

	p, err := FromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 1 || p.Items[0].Title != "Engineer" {
		t.Fatalf("unexpected postings: %+v", p.Items)
	}
}

func TestDumpAndReload(t *testing.T) {
	p := samplePostings()

	name, err := p.DumpToTmpFile()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	defer os.Remove(name)

	reloaded, err := FromFile(name)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != p.Len() {
		t.Fatalf("expected %d postings, got %d", p.Len(), reloaded.Len())
	}
}

func TestExcludedFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	p := samplePostings()
	excluded := p.ToExcluded()
	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	loaded, err := LoadExcluded(path)
	if err != nil {
		t.Fatalf("load exclude file: %v", err)
	}
	if len(loaded.URLs()) != 3 {
		t.Fatalf("expected 3 urls, got %d", len(loaded.URLs()))
	}
}

func TestLoadExcludedEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	loaded, err := LoadExcluded(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Items) != 0 {
		t.Fatalf("expected empty set, got %d items", len(loaded.Items))
	}
}
