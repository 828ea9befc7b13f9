package posting

import (
	"encoding/json"
	"os"
	"time"
)

// ExcludedPostings is the persistent record of postings the user never wants
// to see again, stored as a JSON exclude file.
type ExcludedPostings struct {
	Items []*ExcludedPosting
}

type ExcludedPosting struct {
	URL        string
	Title      string
	Company    string
	ExcludedAt time.Time
}

// ToExcluded converts the current postings into exclude file entries.
func (p *Postings) ToExcluded() *ExcludedPostings {
	excluded := &ExcludedPostings{}
	for _, item := range p.Items {
		excluded.Items = append(excluded.Items, &ExcludedPosting{
			URL:        item.URL,
			Title:      item.Title,
			Company:    item.Company,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// LoadExcluded reads an exclude file. An empty file yields an empty set.
func LoadExcluded(path string) (*ExcludedPostings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedPostings{}, nil
	}

	var excluded ExcludedPostings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedPostings) Append(other *ExcludedPostings) {
	e.Items = append(e.Items, other.Items...)
}

func (e *ExcludedPostings) URLs() []string {
	urls := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		urls = append(urls, item.URL)
	}
	return urls
}

func (e *ExcludedPostings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
