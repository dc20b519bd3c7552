package nytimes

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/FranksOps/newsfill/internal/source"
	"github.com/FranksOps/newsfill/internal/storage"
)

type document struct {
	Headline struct {
		Main string `json:"main"`
	} `json:"headline"`
	PubDate        string         `json:"pub_date"`
	Snippet        string         `json:"snippet"`
	Abstract       string         `json:"abstract"`
	WebURL         string         `json:"web_url"`
	WordCount      source.FlexInt `json:"word_count"`
	NewsDesk       string         `json:"news_desk"`
	SectionName    string         `json:"section_name"`
	SubsectionName string         `json:"subsection_name"`
	TypeOfMaterial string         `json:"type_of_material"`
	// Byline is usually an object but has been seen as "" and [].
	Byline   json.RawMessage `json:"byline"`
	Keywords []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"keywords"`
}

// pub_date arrives as 2020-03-11T22:05:09+0000; newer responses use RFC 3339.
var dateLayouts = []string{
	"2006-01-02T15:04:05Z0700",
	time.RFC3339Nano,
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize maps a search document to an Article keyed by its web URL.
// Only "subject" keywords are kept.
func (a *Adapter) Normalize(raw json.RawMessage) (*storage.Article, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &source.MalformedDocumentError{Source: Name, Reason: err.Error()}
	}

	id := strings.TrimSpace(doc.WebURL)
	if id == "" {
		return nil, &source.MalformedDocumentError{Source: Name, Reason: "missing web_url"}
	}

	published, ok := parseDate(doc.PubDate)
	if !ok {
		return nil, &source.MalformedDocumentError{Source: Name, Reason: "unparseable pub_date " + strconv.Quote(doc.PubDate)}
	}

	keywords := []string{}
	for _, kw := range doc.Keywords {
		if strings.EqualFold(kw.Name, "subject") && kw.Value != "" {
			keywords = append(keywords, kw.Value)
		}
	}

	return &storage.Article{
		ID:          id,
		Source:      Name,
		Headline:    doc.Headline.Main,
		PublishedAt: published,
		Snippet:     doc.Snippet,
		Abstract:    doc.Abstract,
		URL:         id,
		WordCount:   doc.WordCount.NonNegative(),
		Section:     doc.SectionName,
		Subsection:  doc.SubsectionName,
		Desk:        doc.NewsDesk,
		Type:        doc.TypeOfMaterial,
		Byline:      bylineOf(doc.Byline),
		Keywords:    keywords,
	}, nil
}

// bylineOf returns byline.original, or "" when the byline is not an object.
func bylineOf(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return ""
	}
	var b struct {
		Original string `json:"original"`
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return ""
	}
	return b.Original
}
