package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/newsfill/internal/storage"
)

func fixture() []*storage.Article {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }
	return []*storage.Article{
		{ID: "a", Headline: "Newest", PublishedAt: day(2021, time.January, 20), Section: "U.S.", Desk: "Washington", WordCount: 1000, Byline: "By A"},
		{ID: "b", Headline: "Second", PublishedAt: day(2020, time.December, 1), Section: "World", Desk: "Foreign", WordCount: 500},
		{ID: "c", Headline: "Third", PublishedAt: day(2020, time.October, 2), Section: "U.S.", Desk: "Washington", WordCount: 600, Byline: "By C"},
		{ID: "d", Headline: "Oldest", PublishedAt: day(2020, time.March, 11), Section: "Opinion", WordCount: 900},
	}
}

func TestGenerateSummary(t *testing.T) {
	months := []MonthCount{
		{Key: "2020-03", Count: 1, Resumed: true},
		{Key: "2020-10", Count: 2},
		{Key: "2020-12", Count: 2},
		{Key: "2021-01", Err: "boom"},
	}

	s := GenerateSummary("run-1", "nytimes", months, 5, fixture(), Options{TopSections: 2, Recent: 3})

	if s.TotalArticles != 4 || s.TotalBeforeDedupe != 5 {
		t.Errorf("unexpected totals %d/%d", s.TotalArticles, s.TotalBeforeDedupe)
	}
	if s.MonthsFetched != 2 || s.MonthsResumed != 1 || s.MonthsFailed != 1 {
		t.Errorf("unexpected month breakdown %+v", s)
	}
	if s.Earliest.Month() != time.March || s.Latest.Year() != 2021 {
		t.Errorf("unexpected span %s - %s", s.Earliest, s.Latest)
	}
	if len(s.Years) != 2 || s.Years[0].Label != "2020" || s.Years[0].Count != 3 {
		t.Errorf("unexpected years %v", s.Years)
	}
	if len(s.TopSections) != 2 || s.TopSections[0].Label != "U.S." || s.TopSections[0].Count != 2 {
		t.Errorf("unexpected top sections %v", s.TopSections)
	}
	if s.UniqueSections != 3 {
		t.Errorf("expected 3 unique sections, got %d", s.UniqueSections)
	}
	if len(s.TopDesks) != 2 || s.TopDesks[0].Label != "Washington" {
		t.Errorf("unexpected desks %v", s.TopDesks)
	}
	if s.MeanWordCount != 750 {
		t.Errorf("expected mean 750, got %f", s.MeanWordCount)
	}
	if s.WithByline != 2 {
		t.Errorf("expected 2 bylines, got %d", s.WithByline)
	}
	if len(s.Recent) != 3 || s.Recent[0].Headline != "Newest" {
		t.Errorf("unexpected recent %v", s.Recent)
	}
}

func TestGenerateSummary_Empty(t *testing.T) {
	s := GenerateSummary("run", "guardian", nil, 0, nil, Options{})
	if s.TotalArticles != 0 || s.MeanWordCount != 0 || len(s.Recent) != 0 {
		t.Errorf("unexpected summary %+v", s)
	}
	var buf bytes.Buffer
	if err := WriteText(&buf, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBar(t *testing.T) {
	if got := Bar(45, 20); got != "██" {
		t.Errorf("expected 2 blocks, got %q", got)
	}
	if Bar(19, 20) != "" || Bar(10, 0) != "" {
		t.Error("expected empty bars")
	}
}

func TestWriteJSON(t *testing.T) {
	s := GenerateSummary("run-1", "nytimes", nil, 4, fixture(), Options{})
	var buf bytes.Buffer
	if err := WriteJSON(&buf, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["total_articles"].(float64) != 4 {
		t.Errorf("expected total_articles 4, got %v", decoded["total_articles"])
	}
}

func TestWriteText(t *testing.T) {
	months := []MonthCount{{Key: "2020-10", Count: 45}, {Key: "2020-11", Count: 3, Resumed: true}}
	s := GenerateSummary("run-1", "nytimes", months, 4, fixture(), Options{})

	var buf bytes.Buffer
	if err := WriteText(&buf, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"newsfill summary: nytimes", "Unique articles", "2020-10", "██", "resumed", "Top sections", "Newest"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteText_RankedTitlesStayOnOneLine(t *testing.T) {
	s := Summary{
		Source:      "guardian",
		TopSections: []Count{{Label: "A", Count: 1}},
		TopDesks:    []Count{{Label: "B", Count: 2}},
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Top sections", "Top desks"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteHTML(t *testing.T) {
	a := fixture()
	a[0].Headline = "<script>alert(1)</script>"
	s := GenerateSummary("run-1", "nytimes", []MonthCount{{Key: "2020-10", Count: 2}}, 4, a, Options{})

	var buf bytes.Buffer
	if err := WriteHTML(&buf, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<h1>newsfill report: nytimes</h1>") {
		t.Error("expected heading in HTML output")
	}
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Error("expected headline to be escaped")
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "yaml", Summary{}); err == nil {
		t.Error("expected error for unknown format")
	}
}
