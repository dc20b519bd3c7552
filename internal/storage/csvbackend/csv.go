package csvbackend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/FranksOps/newsfill/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	path string
}

// New creates a CSV-backed storage.Backend over a single file. The file is
// created on the first Write.
func New(filePath string) (storage.Backend, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("csvbackend: %w", err)
	}
	return &csvBackend{path: filePath}, nil
}

func (b *csvBackend) Write(ctx context.Context, articles []*storage.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return writeFileAtomic(b.path, articles)
}

func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Article, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := readFile(b.path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []*storage.Article{}, nil
		}
		return nil, err
	}

	var filtered []*storage.Article
	for _, a := range all {
		if filter.Match(a) {
			filtered = append(filtered, a)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PublishedAt.After(filtered[j].PublishedAt)
	})

	return filter.Page(filtered), nil
}

func (b *csvBackend) Close() error {
	return nil
}

// writeFileAtomic writes to a temporary sibling and renames it over path, so
// a killed process never leaves a truncated dataset behind.
func writeFileAtomic(path string, articles []*storage.Article) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}
	tmpName := tmp.Name()

	if err := WriteArticles(tmp, articles); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("csvbackend: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("csvbackend: %w", err)
	}
	return nil
}

func readFile(path string) ([]*storage.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("csvbackend: %w", err)
	}
	defer f.Close()

	articles, err := ReadArticles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return articles, nil
}
