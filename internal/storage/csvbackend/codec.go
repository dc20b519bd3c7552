package csvbackend

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/FranksOps/newsfill/internal/storage"
)

// headers defines the CSV column order
var headers = []string{
	"id",
	"source",
	"headline",
	"pub_date",
	"snippet",
	"abstract",
	"web_url",
	"word_count",
	"section_name",
	"subsection_name",
	"desk",
	"type",
	"byline",
	"keywords_json",
}

// WriteArticles writes a header row followed by one row per article.
func WriteArticles(w io.Writer, articles []*storage.Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("csvbackend: write header: %w", err)
	}

	for _, a := range articles {
		keywords := a.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		keywordsJSON, err := json.Marshal(keywords)
		if err != nil {
			return fmt.Errorf("csvbackend: encode keywords of %s: %w", a.ID, err)
		}

		var published string
		if !a.PublishedAt.IsZero() {
			published = a.PublishedAt.Format(time.RFC3339Nano)
		}

		record := []string{
			a.ID,
			a.Source,
			a.Headline,
			published,
			a.Snippet,
			a.Abstract,
			a.URL,
			strconv.Itoa(a.WordCount),
			a.Section,
			a.Subsection,
			a.Desk,
			a.Type,
			a.Byline,
			string(keywordsJSON),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csvbackend: write row %s: %w", a.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csvbackend: flush: %w", err)
	}
	return nil
}

// ReadArticles decodes rows written by WriteArticles, in file order.
func ReadArticles(r io.Reader) ([]*storage.Article, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(headers)

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []*storage.Article{}, nil
		}
		return nil, fmt.Errorf("csvbackend: read header: %w", err)
	}

	articles := []*storage.Article{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvbackend: %w", err)
		}

		a, err := decodeRecord(record)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("csvbackend: line %d: %w", line, err)
		}
		articles = append(articles, a)
	}

	return articles, nil
}

func decodeRecord(record []string) (*storage.Article, error) {
	a := &storage.Article{
		ID:         record[0],
		Source:     record[1],
		Headline:   record[2],
		Snippet:    record[4],
		Abstract:   record[5],
		URL:        record[6],
		Section:    record[8],
		Subsection: record[9],
		Desk:       record[10],
		Type:       record[11],
		Byline:     record[12],
	}

	if record[3] != "" {
		published, err := time.Parse(time.RFC3339Nano, record[3])
		if err != nil {
			return nil, fmt.Errorf("pub_date: %w", err)
		}
		a.PublishedAt = published
	}

	if record[7] != "" {
		n, err := strconv.Atoi(record[7])
		if err != nil {
			return nil, fmt.Errorf("word_count: %w", err)
		}
		a.WordCount = n
	}

	if record[13] != "" {
		if err := json.Unmarshal([]byte(record[13]), &a.Keywords); err != nil {
			return nil, fmt.Errorf("keywords_json: %w", err)
		}
	}

	return a, nil
}
