package guardian

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/FranksOps/newsfill/internal/source"
	"github.com/FranksOps/newsfill/internal/storage"
	"github.com/PuerkitoBio/goquery"
)

type result struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	SectionName        string `json:"sectionName"`
	PillarName         string `json:"pillarName"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	WebPublicationDate string `json:"webPublicationDate"`
	Fields             struct {
		Headline   string         `json:"headline"`
		TrailText  string         `json:"trailText"`
		Standfirst string         `json:"standfirst"`
		Byline     string         `json:"byline"`
		WordCount  source.FlexInt `json:"wordcount"`
	} `json:"fields"`
	Tags []struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		WebTitle string `json:"webTitle"`
	} `json:"tags"`
}

// Normalize maps a content result to an Article keyed by the Guardian id.
// The standfirst (or trail text) is stripped of markup and used as both
// snippet and abstract.
func (a *Adapter) Normalize(raw json.RawMessage) (*storage.Article, error) {
	var r result
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, &source.MalformedDocumentError{Source: Name, Reason: err.Error()}
	}

	id := strings.TrimSpace(r.ID)
	if id == "" {
		return nil, &source.MalformedDocumentError{Source: Name, Reason: "missing id"}
	}

	published, err := time.Parse(time.RFC3339, r.WebPublicationDate)
	if err != nil {
		return nil, &source.MalformedDocumentError{Source: Name, Reason: "unparseable webPublicationDate " + strconv.Quote(r.WebPublicationDate)}
	}

	headline := r.Fields.Headline
	if headline == "" {
		headline = r.WebTitle
	}

	summary := r.Fields.Standfirst
	if summary == "" {
		summary = r.Fields.TrailText
	}
	summary = StripHTML(summary)

	keywords := []string{}
	for _, tag := range r.Tags {
		if tag.Type == "keyword" && tag.WebTitle != "" {
			keywords = append(keywords, tag.WebTitle)
		}
	}

	return &storage.Article{
		ID:          id,
		Source:      Name,
		Headline:    headline,
		PublishedAt: published,
		Snippet:     summary,
		Abstract:    summary,
		URL:         r.WebURL,
		WordCount:   r.Fields.WordCount.NonNegative(),
		Section:     r.SectionName,
		Desk:        r.PillarName,
		Type:        r.Type,
		Byline:      r.Fields.Byline,
		Keywords:    keywords,
	}, nil
}

// StripHTML returns the text content of an HTML fragment with whitespace
// collapsed.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
