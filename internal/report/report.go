// Package report derives summary statistics from a combined article dataset
// and renders them as text, JSON or HTML.
package report

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/FranksOps/newsfill/internal/storage"
)

// MonthCount is the size of one monthly dataset and where it came from.
type MonthCount struct {
	Key     string `json:"key"`
	Count   int    `json:"count"`
	Resumed bool   `json:"resumed"`
	// Err is set when the month's fetch or load failed.
	Err string `json:"error,omitempty"`
}

// Count is a labelled tally.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Headline is a short reference to one article.
type Headline struct {
	PublishedAt time.Time `json:"published_at"`
	Headline    string    `json:"headline"`
	Section     string    `json:"section"`
}

// Options sets how many entries each ranked list keeps.
type Options struct {
	TopSections int
	TopDesks    int
	Recent      int
}

// DefaultOptions returns the limits used when a field is zero.
func DefaultOptions() Options {
	return Options{TopSections: 10, TopDesks: 5, Recent: 5}
}

// Summary contains aggregated statistics about one backfill run.
type Summary struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`

	Months        []MonthCount `json:"months"`
	MonthsFetched int          `json:"months_fetched"`
	MonthsResumed int          `json:"months_resumed"`
	MonthsFailed  int          `json:"months_failed"`

	TotalBeforeDedupe int `json:"total_before_dedupe"`
	TotalArticles     int `json:"total_articles"`

	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`

	Years          []Count    `json:"years"`
	TopSections    []Count    `json:"top_sections"`
	TopDesks       []Count    `json:"top_desks"`
	UniqueSections int        `json:"unique_sections"`
	MeanWordCount  float64    `json:"mean_word_count"`
	WithByline     int        `json:"with_byline"`
	Recent         []Headline `json:"recent"`
}

// GenerateSummary computes statistics for articles, which must already be
// deduplicated. Recent headlines follow the order of articles, so callers
// pass them newest first.
func GenerateSummary(runID, source string, months []MonthCount, beforeDedupe int, articles []*storage.Article, opts Options) Summary {
	def := DefaultOptions()
	if opts.TopSections <= 0 {
		opts.TopSections = def.TopSections
	}
	if opts.TopDesks <= 0 {
		opts.TopDesks = def.TopDesks
	}
	if opts.Recent <= 0 {
		opts.Recent = def.Recent
	}

	s := Summary{
		RunID:             runID,
		Source:            source,
		GeneratedAt:       time.Now().UTC(),
		Months:            months,
		TotalBeforeDedupe: beforeDedupe,
		TotalArticles:     len(articles),
		Years:             []Count{},
		TopSections:       []Count{},
		TopDesks:          []Count{},
		Recent:            []Headline{},
	}

	for _, m := range months {
		switch {
		case m.Err != "":
			s.MonthsFailed++
		case m.Resumed:
			s.MonthsResumed++
		default:
			s.MonthsFetched++
		}
	}

	if len(articles) == 0 {
		return s
	}

	years := make(map[string]int)
	sections := make(map[string]int)
	desks := make(map[string]int)
	words := 0

	for _, a := range articles {
		t := a.PublishedAt
		if !t.IsZero() {
			if s.Earliest.IsZero() || t.Before(s.Earliest) {
				s.Earliest = t
			}
			if t.After(s.Latest) {
				s.Latest = t
			}
			years[strconv.Itoa(t.UTC().Year())]++
		}
		if a.Section != "" {
			sections[a.Section]++
		}
		if a.Desk != "" {
			desks[a.Desk]++
		}
		if strings.TrimSpace(a.Byline) != "" {
			s.WithByline++
		}
		words += a.WordCount
	}

	s.Years = tally(years)
	slices.SortFunc(s.Years, func(a, b Count) int { return cmp.Compare(a.Label, b.Label) })
	s.TopSections = top(tally(sections), opts.TopSections)
	s.TopDesks = top(tally(desks), opts.TopDesks)
	s.UniqueSections = len(sections)
	s.MeanWordCount = float64(words) / float64(len(articles))

	for _, a := range articles[:min(opts.Recent, len(articles))] {
		s.Recent = append(s.Recent, Headline{PublishedAt: a.PublishedAt, Headline: a.Headline, Section: a.Section})
	}

	return s
}

// tally returns the map as counts ordered by count descending, then label.
func tally(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Label: k, Count: v})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}

func top(in []Count, n int) []Count {
	if len(in) > n {
		return in[:n]
	}
	return in
}

// Bar renders one block per unit, e.g. Bar(45, 20) is two blocks.
func Bar(count, unit int) string {
	if unit <= 0 || count <= 0 {
		return ""
	}
	return strings.Repeat("█", count/unit)
}
