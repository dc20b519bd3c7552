package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a monthly dataset has not been persisted yet.
var ErrNotFound = errors.New("storage: dataset not found")

// Article is one normalized search result. ID is the identity key: the
// canonical URL for sources without a stable document id, the source-native
// id otherwise.
type Article struct {
	ID          string
	Source      string
	Headline    string
	PublishedAt time.Time
	Snippet     string
	Abstract    string
	URL         string
	WordCount   int
	Section     string
	Subsection  string
	Desk        string // news desk or pillar
	Type        string // type of material or content type
	Byline      string
	Keywords    []string
}

// Key returns the identity key used for deduplication.
func (a *Article) Key() string {
	if a == nil {
		return ""
	}
	return a.ID
}

// Filter allows querying for specific Articles.
type Filter struct {
	Section string
	Since   *time.Time
	Until   *time.Time
	Limit   int
	Offset  int
}

// Match reports whether a satisfies every set field of f. Limit and Offset
// are applied by the backend.
func (f Filter) Match(a *Article) bool {
	if f.Section != "" && a.Section != f.Section {
		return false
	}
	if f.Since != nil && a.PublishedAt.Before(*f.Since) {
		return false
	}
	if f.Until != nil && a.PublishedAt.After(*f.Until) {
		return false
	}
	return true
}

// Page applies Offset and Limit to an already ordered slice.
func (f Filter) Page(in []*Article) []*Article {
	if f.Offset > 0 {
		if f.Offset >= len(in) {
			return []*Article{}
		}
		in = in[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(in) {
		in = in[:f.Limit]
	}
	return in
}

// Backend holds one dataset. Write replaces the whole dataset; Query returns
// rows ordered by PublishedAt descending.
type Backend interface {
	Write(ctx context.Context, articles []*Article) error
	Query(ctx context.Context, filter Filter) ([]*Article, error)
	Close() error
}

// MonthStore persists one dataset per "YYYY-MM" key.
type MonthStore interface {
	Has(key string) (bool, error)
	Load(ctx context.Context, key string) ([]*Article, error)
	Store(ctx context.Context, key string, articles []*Article) error
	// Keys lists persisted month keys in ascending order.
	Keys() ([]string, error)
}
