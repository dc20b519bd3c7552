package jsonbackend

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/FranksOps/newsfill/internal/storage"
)

// ensure jsonBackend implements storage.Backend
var _ storage.Backend = (*jsonBackend)(nil)

type jsonBackend struct {
	mu   sync.Mutex
	path string
}

// record is the NDJSON line layout.
type record struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Headline    string    `json:"headline"`
	PublishedAt time.Time `json:"pub_date"`
	Snippet     string    `json:"snippet,omitempty"`
	Abstract    string    `json:"abstract,omitempty"`
	URL         string    `json:"web_url"`
	WordCount   int       `json:"word_count"`
	Section     string    `json:"section_name,omitempty"`
	Subsection  string    `json:"subsection_name,omitempty"`
	Desk        string    `json:"desk,omitempty"`
	Type        string    `json:"type,omitempty"`
	Byline      string    `json:"byline,omitempty"`
	Keywords    []string  `json:"keywords"`
}

func toRecord(a *storage.Article) record {
	keywords := a.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return record{
		ID:          a.ID,
		Source:      a.Source,
		Headline:    a.Headline,
		PublishedAt: a.PublishedAt,
		Snippet:     a.Snippet,
		Abstract:    a.Abstract,
		URL:         a.URL,
		WordCount:   a.WordCount,
		Section:     a.Section,
		Subsection:  a.Subsection,
		Desk:        a.Desk,
		Type:        a.Type,
		Byline:      a.Byline,
		Keywords:    keywords,
	}
}

func (r record) article() *storage.Article {
	return &storage.Article{
		ID:          r.ID,
		Source:      r.Source,
		Headline:    r.Headline,
		PublishedAt: r.PublishedAt,
		Snippet:     r.Snippet,
		Abstract:    r.Abstract,
		URL:         r.URL,
		WordCount:   r.WordCount,
		Section:     r.Section,
		Subsection:  r.Subsection,
		Desk:        r.Desk,
		Type:        r.Type,
		Byline:      r.Byline,
		Keywords:    r.Keywords,
	}
}

// New creates a new NDJSON-backed storage.Backend.
func New(filePath string) (storage.Backend, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("jsonbackend: %w", err)
	}
	return &jsonBackend{path: filePath}, nil
}

func (b *jsonBackend) Write(ctx context.Context, articles []*storage.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(b.path), "."+filepath.Base(b.path)+".*")
	if err != nil {
		return fmt.Errorf("jsonbackend: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, a := range articles {
		if err := enc.Encode(toRecord(a)); err != nil {
			tmp.Close()
			return fmt.Errorf("jsonbackend: encode %s: %w", a.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonbackend: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonbackend: %w", err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("jsonbackend: %w", err)
	}
	return nil
}

func (b *jsonBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Article, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := os.Open(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*storage.Article{}, nil
		}
		return nil, fmt.Errorf("jsonbackend: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	// NDJSON has no index: read everything, filter in memory, then order.
	var filtered []*storage.Article

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("jsonbackend: %w", err)
		}

		a := r.article()
		if filter.Match(a) {
			filtered = append(filtered, a)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonbackend: %w", err)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PublishedAt.After(filtered[j].PublishedAt)
	})

	return filter.Page(filtered), nil
}

func (b *jsonBackend) Close() error {
	return nil
}
