package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/FranksOps/newsfill/internal/storage"
	"github.com/FranksOps/newsfill/pkg/monthrange"
)

// Verdict summarises what a probe's status code says about the API key.
type Verdict string

const (
	VerdictValid       Verdict = "valid"
	VerdictInvalidKey  Verdict = "invalid_key"
	VerdictRateLimited Verdict = "rate_limited"
	VerdictUnexpected  Verdict = "unexpected"
)

// VerdictFor maps an HTTP status to a key verdict.
func VerdictFor(status int) Verdict {
	switch status {
	case http.StatusOK:
		return VerdictValid
	case http.StatusUnauthorized:
		return VerdictInvalidKey
	case http.StatusTooManyRequests:
		return VerdictRateLimited
	default:
		return VerdictUnexpected
	}
}

// Probe is the outcome of a single diagnostic request.
type Probe struct {
	Source    string
	Query     string
	Window    monthrange.Window
	Status    int
	Verdict   Verdict
	Hits      int
	Pages     int
	Documents int
	Sample    *storage.Article
	Err       error
}

// Check issues exactly one request for the first page of w and reports what
// came back. It never retries.
func Check(ctx context.Context, a Adapter, w monthrange.Window, query string) *Probe {
	p := &Probe{Source: a.Name(), Query: query, Window: w}

	page, err := a.Fetch(ctx, w, a.FirstPage(), query)
	p.Status = StatusOf(err)
	p.Verdict = VerdictFor(p.Status)
	if err != nil {
		p.Err = err
		// A 200 whose body could not be decoded says nothing about the key.
		if p.Verdict == VerdictValid {
			p.Verdict = VerdictUnexpected
		}
		return p
	}

	p.Hits = page.Hits
	p.Pages = page.Pages
	p.Documents = len(page.Documents)
	for _, raw := range page.Documents {
		if art, err := a.Normalize(raw); err == nil {
			p.Sample = art
			break
		}
	}
	return p
}

// WriteProbe prints a human readable diagnostic for p.
func WriteProbe(w io.Writer, p *Probe) error {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%s search API check\n", p.Source)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Query:       %s\n", p.Query)
	fmt.Fprintf(&b, "Window:      %s\n", p.Window)
	if p.Status != 0 {
		fmt.Fprintf(&b, "Status Code: %d\n", p.Status)
	} else {
		fmt.Fprintln(&b, "Status Code: no response")
	}

	if p.Err != nil {
		fmt.Fprintf(&b, "Error:       %v\n", p.Err)
	} else {
		if p.Hits > 0 {
			fmt.Fprintf(&b, "Total Hits:  %d\n", p.Hits)
		}
		if p.Pages > 0 {
			fmt.Fprintf(&b, "Pages:       %d\n", p.Pages)
		}
		fmt.Fprintf(&b, "Articles in this response: %d\n", p.Documents)
		if p.Sample != nil {
			fmt.Fprintln(&b, "\nSample Article:")
			fmt.Fprintf(&b, "  Headline: %s\n", orNA(p.Sample.Headline))
			if p.Sample.PublishedAt.IsZero() {
				fmt.Fprintln(&b, "  Date: N/A")
			} else {
				fmt.Fprintf(&b, "  Date: %s\n", p.Sample.PublishedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			fmt.Fprintf(&b, "  URL: %s\n", orNA(p.Sample.URL))
		} else if p.Documents == 0 {
			fmt.Fprintln(&b, "\nNo articles found for this query")
		}
	}

	fmt.Fprintln(&b)
	switch p.Verdict {
	case VerdictValid:
		fmt.Fprintln(&b, "API key is valid and working")
	case VerdictInvalidKey:
		fmt.Fprintln(&b, "API key is invalid or expired")
	case VerdictRateLimited:
		fmt.Fprintln(&b, "Rate limit exceeded, wait a bit and try again")
	default:
		if p.Status == http.StatusOK {
			fmt.Fprintln(&b, "Response could not be read, the key was not verified")
		} else if p.Status != 0 {
			fmt.Fprintf(&b, "Unexpected status code: %d\n", p.Status)
		} else {
			fmt.Fprintln(&b, "Request did not complete")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
