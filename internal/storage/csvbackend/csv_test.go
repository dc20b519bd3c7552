package csvbackend

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/newsfill/internal/storage"
)

func sampleArticles(now time.Time) []*storage.Article {
	return []*storage.Article{
		{
			ID:          "https://www.nytimes.com/2020/03/01/us/a.html",
			Source:      "nytimes",
			Headline:    "Trump, Pence and the \"Task Force\"",
			PublishedAt: now.Add(-2 * time.Hour),
			Snippet:     "A snippet, with commas\nand a newline.",
			URL:         "https://www.nytimes.com/2020/03/01/us/a.html",
			WordCount:   1200,
			Section:     "U.S.",
			Desk:        "Washington",
			Type:        "News",
			Byline:      "By Jane Doe",
			Keywords:    []string{"Coronavirus (2019-nCoV)", "Trump, Donald J"},
		},
		{
			ID:          "https://www.nytimes.com/2020/03/02/world/b.html",
			Source:      "nytimes",
			Headline:    "World briefing",
			PublishedAt: now.Add(-1 * time.Hour),
			URL:         "https://www.nytimes.com/2020/03/02/world/b.html",
			Section:     "World",
		},
	}
}

func TestCSVBackend(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "nested", "combined.csv")

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create CSV backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()

	// Querying before the first write yields nothing
	empty, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query empty backend: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Expected 0 results, got %d", len(empty))
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := b.Write(ctx, sampleArticles(now)); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	resultsAll, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query all: %v", err)
	}
	if len(resultsAll) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(resultsAll))
	}
	// Newest first
	if resultsAll[0].Section != "World" {
		t.Errorf("Expected World article first, got %s", resultsAll[0].Section)
	}

	older := resultsAll[1]
	if older.Headline != "Trump, Pence and the \"Task Force\"" {
		t.Errorf("Headline did not round trip: %q", older.Headline)
	}
	if older.Snippet != "A snippet, with commas\nand a newline." {
		t.Errorf("Snippet did not round trip: %q", older.Snippet)
	}
	if !older.PublishedAt.Equal(now.Add(-2 * time.Hour)) {
		t.Errorf("Expected pub date %v, got %v", now.Add(-2*time.Hour), older.PublishedAt)
	}
	if len(older.Keywords) != 2 || older.Keywords[1] != "Trump, Donald J" {
		t.Errorf("Keywords did not round trip: %v", older.Keywords)
	}
	if older.WordCount != 1200 {
		t.Errorf("Expected word count 1200, got %d", older.WordCount)
	}

	// Section filter
	world, err := b.Query(ctx, storage.Filter{Section: "World"})
	if err != nil {
		t.Fatalf("Failed to query by section: %v", err)
	}
	if len(world) != 1 {
		t.Fatalf("Expected 1 World result, got %d", len(world))
	}

	// Since filter
	past := now.Add(-90 * time.Minute)
	recent, err := b.Query(ctx, storage.Filter{Since: &past})
	if err != nil {
		t.Fatalf("Failed to query by since: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("Expected 1 result for since filter, got %d", len(recent))
	}

	// Offset
	offset, err := b.Query(ctx, storage.Filter{Offset: 1})
	if err != nil {
		t.Fatalf("Failed to query offset: %v", err)
	}
	if len(offset) != 1 || offset[0].Section != "U.S." {
		t.Errorf("Expected U.S. article at offset 1, got %v", offset)
	}

	// Write replaces the whole dataset
	if err := b.Write(ctx, sampleArticles(now)[:1]); err != nil {
		t.Fatalf("Failed to rewrite: %v", err)
	}
	replaced, _ := b.Query(ctx, storage.Filter{})
	if len(replaced) != 1 {
		t.Errorf("Expected rewrite to replace contents, got %d rows", len(replaced))
	}
}

func TestReadArticles_Empty(t *testing.T) {
	got, err := ReadArticles(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no articles, got %d", len(got))
	}
}

func TestReadArticles_Malformed(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteArticles(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buf.WriteString("id,nytimes,h,not-a-date,,,,1,,,,,,[]\n")

	if _, err := ReadArticles(&buf); err == nil {
		t.Fatal("expected error for unparseable pub_date")
	}
}

func TestMonthStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nytimes")
	s, err := NewMonthStore(dir)
	if err != nil {
		t.Fatalf("Failed to create month store: %v", err)
	}
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	has, err := s.Has("2020-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Fatalf("expected no file before store")
	}

	if _, err := s.Load(ctx, "2020-03"); err != storage.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Store(ctx, "2020-03", sampleArticles(now)); err != nil {
		t.Fatalf("Failed to store: %v", err)
	}
	if err := s.Store(ctx, "2019-12", sampleArticles(now)[:1]); err != nil {
		t.Fatalf("Failed to store: %v", err)
	}
	if err := s.Store(ctx, "combined", nil); err == nil {
		t.Fatalf("expected error for non-month key")
	}

	// Files that are not months are ignored
	if err := os.WriteFile(s.CombinedPath(), []byte("x"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "2019-12" || keys[1] != "2020-03" {
		t.Fatalf("unexpected keys %v", keys)
	}

	loaded, err := s.Load(ctx, "2020-03")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	// Load preserves file order
	if len(loaded) != 2 || loaded[0].Section != "U.S." {
		t.Errorf("unexpected loaded rows %v", loaded)
	}
}
