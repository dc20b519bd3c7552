// Package source defines the contract every news search API adapter meets and
// the helpers they share for issuing and classifying requests.
package source

import (
	"context"
	"encoding/json"

	"github.com/FranksOps/newsfill/internal/storage"
	"github.com/FranksOps/newsfill/pkg/monthrange"
)

// Adapter translates a month window, page index and query into one request
// against a search API. Implementations never retry, never sleep and never
// panic; failures come back as *RateLimitedError or *RequestFailedError.
type Adapter interface {
	// Name is the short source identifier, e.g. "nytimes".
	Name() string
	// FirstPage is the index of the first result page (0 or 1).
	FirstPage() int
	Fetch(ctx context.Context, w monthrange.Window, page int, query string) (*Page, error)
	// Normalize maps one raw document to an Article. A document that cannot
	// be mapped yields a *MalformedDocumentError.
	Normalize(raw json.RawMessage) (*storage.Article, error)
}

// Page is one response of raw documents plus whatever pagination metadata
// the source reports. Zero Pages or Hits means the source did not say.
type Page struct {
	Number    int
	Pages     int
	Hits      int
	Documents []json.RawMessage
}

// Last reports whether the metadata marks this as the final page.
func (p *Page) Last() bool {
	return p.Pages > 0 && p.Number >= p.Pages
}
