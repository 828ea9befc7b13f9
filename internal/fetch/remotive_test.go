package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestParseSalaryMin(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"$100,000 - $130,000", 100000},
		{"100k", 100000},
		{"from 85000 USD", 85000},
		{"competitive", 0},
		{"", 0},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := ParseSalaryMin(tc.in); got != tc.want {
				t.Fatalf("ParseSalaryMin(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestRemotiveFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "backend engineer" {
			t.Errorf("unexpected search param: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"jobs": [{
				"url": "https://remotive.example/1",
				"title": "Backend Engineer",
				"company_name": "Globex",
				"tags": ["go", "postgresql"],
				"candidate_required_location": "Worldwide",
				"salary": "$120,000",
				"description": "Build services.",
				"publication_date": "2026-08-10T00:00:00"
			}]
		}`))
	}))
	defer server.Close()

	s := NewRemotiveSource(zap.NewNop())
	s.BaseURL = server.URL

	postings, err := s.Fetch(context.Background(), Query{Keywords: []string{"backend", "engineer"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}

	p := postings[0]
	if !p.Remote {
		t.Fatal("remotive postings must be remote")
	}
	if p.SalaryMin != 120000 {
		t.Fatalf("unexpected salary: %d", p.SalaryMin)
	}
	if len(p.Skills) != 2 {
		t.Fatalf("expected tags as skills, got %v", p.Skills)
	}
}
