package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Bar units: one block per this many articles.
const (
	YearBarUnit  = 50
	MonthBarUnit = 20
)

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	return t
}

// WriteText writes human readable tables to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	var b strings.Builder

	overview := newTable(fmt.Sprintf("newsfill summary: %s", summary.Source))
	overview.AppendRows([]table.Row{
		{"Run", summary.RunID},
		{"Months", fmt.Sprintf("%d (%d fetched, %d resumed, %d failed)", len(summary.Months), summary.MonthsFetched, summary.MonthsResumed, summary.MonthsFailed)},
		{"Articles before dedupe", summary.TotalBeforeDedupe},
		{"Unique articles", summary.TotalArticles},
	})
	if summary.TotalArticles > 0 {
		overview.AppendRows([]table.Row{
			{"Date range", fmt.Sprintf("%s to %s", summary.Earliest.Format("2006-01-02"), summary.Latest.Format("2006-01-02"))},
			{"Avg word count", fmt.Sprintf("%.0f", summary.MeanWordCount)},
			{"With byline", fmt.Sprintf("%d / %d", summary.WithByline, summary.TotalArticles)},
			{"Unique sections", summary.UniqueSections},
		})
	}
	b.WriteString(overview.Render())
	b.WriteString("\n\n")

	if len(summary.Months) > 0 {
		months := newTable("Monthly breakdown")
		months.AppendHeader(table.Row{"Month", "Articles", "Origin", ""})
		months.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
		for _, m := range summary.Months {
			origin := "fetched"
			switch {
			case m.Err != "":
				origin = "failed"
			case m.Resumed:
				origin = "resumed"
			}
			months.AppendRow(table.Row{m.Key, m.Count, origin, Bar(m.Count, MonthBarUnit)})
		}
		b.WriteString(months.Render())
		b.WriteString("\n\n")
	}

	if len(summary.Years) > 0 {
		years := newTable("Articles by year")
		years.AppendHeader(table.Row{"Year", "Articles", ""})
		for _, y := range summary.Years {
			years.AppendRow(table.Row{y.Label, y.Count, Bar(y.Count, YearBarUnit)})
		}
		b.WriteString(years.Render())
		b.WriteString("\n\n")
	}

	for _, ranked := range []struct {
		title  string
		label  string
		counts []Count
	}{
		{"Top sections", "Section", summary.TopSections},
		{"Top desks", "Desk", summary.TopDesks},
	} {
		if len(ranked.counts) == 0 {
			continue
		}
		// The header keeps the table wider than its title, which go-pretty
		// would otherwise wrap.
		t := newTable(ranked.title)
		t.AppendHeader(table.Row{ranked.label, "Articles"})
		for _, c := range ranked.counts {
			t.AppendRow(table.Row{c.Label, c.Count})
		}
		b.WriteString(t.Render())
		b.WriteString("\n\n")
	}

	if len(summary.Recent) > 0 {
		recent := newTable("Most recent headlines")
		recent.AppendHeader(table.Row{"Published", "Section", "Headline"})
		recent.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: 80}})
		for _, h := range summary.Recent {
			recent.AppendRow(table.Row{h.PublishedAt.Format("2006-01-02"), h.Section, h.Headline})
		}
		b.WriteString(recent.Render())
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>newsfill report: {{.Source}}</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>newsfill report: {{.Source}}</h1>
  <p><strong>Run:</strong> {{.RunID}}</p>
  {{- if .TotalArticles}}
  <p><strong>Range:</strong> {{.Earliest.Format "2006-01-02"}} to {{.Latest.Format "2006-01-02"}}</p>
  {{- end}}

  <div class="stat-card">
    <div>Unique Articles</div>
    <div class="stat-val">{{.TotalArticles}}</div>
  </div>
  <div class="stat-card">
    <div>Before Dedupe</div>
    <div class="stat-val">{{.TotalBeforeDedupe}}</div>
  </div>
  <div class="stat-card">
    <div>Avg Word Count</div>
    <div class="stat-val">{{printf "%.0f" .MeanWordCount}}</div>
  </div>
  <div class="stat-card">
    <div>Failed Months</div>
    <div class="stat-val" style="color: {{if gt .MonthsFailed 0}}red{{else}}green{{end}};">{{.MonthsFailed}}</div>
  </div>

  <h3>Months</h3>
  <table>
    <tr><th>Month</th><th>Articles</th><th>Resumed</th></tr>
    {{- range .Months}}
    <tr><td>{{.Key}}</td><td>{{.Count}}</td><td>{{.Resumed}}</td></tr>
    {{- else}}
    <tr><td colspan="3">None</td></tr>
    {{- end}}
  </table>

  <h3>Top Sections</h3>
  <table>
    <tr><th>Section</th><th>Count</th></tr>
    {{- range .TopSections}}
    <tr><td>{{.Label}}</td><td>{{.Count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Recent Headlines</h3>
  <table>
    <tr><th>Date</th><th>Headline</th></tr>
    {{- range .Recent}}
    <tr><td>{{.PublishedAt.Format "2006-01-02"}}</td><td>{{.Headline}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return nil
}

// Write renders summary in the named format: text, json or html.
func Write(w io.Writer, format string, summary Summary) error {
	switch strings.ToLower(format) {
	case "", "text":
		return WriteText(w, summary)
	case "json":
		return WriteJSON(w, summary)
	case "html":
		return WriteHTML(w, summary)
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}
