package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/newsfill/internal/storage"
)

func TestSQLiteBackend(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "newsfill.db")
	b, err := New(dsn, "nytimes")
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	articles := []*storage.Article{
		{
			ID:          "https://www.nytimes.com/a.html",
			Headline:    "Older",
			PublishedAt: now.Add(-2 * time.Hour),
			WordCount:   900,
			Section:     "U.S.",
			Keywords:    []string{"Coronavirus (2019-nCoV)"},
		},
		{
			ID:          "https://www.nytimes.com/b.html",
			Headline:    "Newer",
			PublishedAt: now.Add(-1 * time.Hour),
			Section:     "World",
		},
		// Duplicate key is ignored rather than failing the batch
		{
			ID:          "https://www.nytimes.com/b.html",
			Headline:    "Newer again",
			PublishedAt: now,
		},
	}

	if err := b.Write(ctx, articles); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(all))
	}
	if all[0].Headline != "Newer" {
		t.Errorf("Expected newest first with first-seen row kept, got %q", all[0].Headline)
	}
	if all[1].Keywords[0] != "Coronavirus (2019-nCoV)" || all[1].WordCount != 900 {
		t.Errorf("Row did not round trip: %+v", all[1])
	}
	if all[1].Source != "nytimes" {
		t.Errorf("Expected source nytimes, got %q", all[1].Source)
	}

	offset, err := b.Query(ctx, storage.Filter{Offset: 1})
	if err != nil {
		t.Fatalf("Failed to query with offset: %v", err)
	}
	if len(offset) != 1 || offset[0].Headline != "Older" {
		t.Errorf("Unexpected offset result %v", offset)
	}

	section, err := b.Query(ctx, storage.Filter{Section: "U.S.", Limit: 10})
	if err != nil {
		t.Fatalf("Failed to query by section: %v", err)
	}
	if len(section) != 1 {
		t.Errorf("Expected 1 U.S. row, got %d", len(section))
	}

	// A second source in the same database is kept separate
	other, err := New(dsn, "guardian")
	if err != nil {
		t.Fatalf("Failed to open second backend: %v", err)
	}
	defer other.Close()
	if err := other.Write(ctx, []*storage.Article{{ID: "g1", Headline: "G", PublishedAt: now}}); err != nil {
		t.Fatalf("Failed to write guardian rows: %v", err)
	}

	// Rewriting replaces only this source's rows
	if err := b.Write(ctx, articles[:1]); err != nil {
		t.Fatalf("Failed to rewrite: %v", err)
	}
	rewritten, _ := b.Query(ctx, storage.Filter{})
	if len(rewritten) != 1 {
		t.Errorf("Expected 1 row after rewrite, got %d", len(rewritten))
	}
	guardian, _ := other.Query(ctx, storage.Filter{})
	if len(guardian) != 1 {
		t.Errorf("Expected guardian rows untouched, got %d", len(guardian))
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "x.db"), ""); err == nil {
		t.Fatal("expected error without source")
	}
}
