// Package dedupe collapses items that share an identity key, keeping the
// first occurrence in input order.
package dedupe

import "github.com/FranksOps/newsfill/internal/storage"

// By returns the items of in whose key has not been seen earlier in in.
// Items with an empty key are dropped. The input is not modified.
func By[T any](in []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, item := range in {
		k := key(item)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Articles deduplicates articles by identity key.
func Articles(in []*storage.Article) []*storage.Article {
	return By(in, (*storage.Article).Key)
}

// Set accumulates articles incrementally with the same first-seen-wins rule.
// The zero value is ready to use.
type Set struct {
	seen       map[string]struct{}
	items      []*storage.Article
	duplicates int
	missingKey int
}

// Add appends a unless its key was already added. It reports whether a was kept.
func (s *Set) Add(a *storage.Article) bool {
	k := a.Key()
	if k == "" {
		s.missingKey++
		return false
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, dup := s.seen[k]; dup {
		s.duplicates++
		return false
	}
	s.seen[k] = struct{}{}
	s.items = append(s.items, a)
	return true
}

// AddAll adds every article in order and returns how many were kept.
func (s *Set) AddAll(as []*storage.Article) int {
	kept := 0
	for _, a := range as {
		if s.Add(a) {
			kept++
		}
	}
	return kept
}

// Items returns the retained articles in first-seen order.
func (s *Set) Items() []*storage.Article {
	out := make([]*storage.Article, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Set) Len() int { return len(s.items) }

// Duplicates is the number of articles rejected because their key was taken.
func (s *Set) Duplicates() int { return s.duplicates }

// MissingKey is the number of articles rejected for having no key.
func (s *Set) MissingKey() int { return s.missingKey }
