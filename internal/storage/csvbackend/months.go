package csvbackend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/FranksOps/newsfill/internal/storage"
	"github.com/FranksOps/newsfill/pkg/monthrange"
)

// CombinedName is the file name of the combined dataset inside a source
// directory. It never parses as a month key.
const CombinedName = "combined.csv"

// ensure MonthStore implements storage.MonthStore
var _ storage.MonthStore = (*MonthStore)(nil)

// MonthStore keeps one "<YYYY-MM>.csv" file per month in a directory.
type MonthStore struct {
	dir string
}

// NewMonthStore creates dir if needed and returns a store rooted there.
func NewMonthStore(dir string) (*MonthStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csvbackend: %w", err)
	}
	return &MonthStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *MonthStore) Dir() string {
	return s.dir
}

// Path returns the file path of the month key.
func (s *MonthStore) Path(key string) string {
	return filepath.Join(s.dir, key+".csv")
}

// CombinedPath returns the path of the combined dataset next to the months.
func (s *MonthStore) CombinedPath() string {
	return filepath.Join(s.dir, CombinedName)
}

func (s *MonthStore) Has(key string) (bool, error) {
	_, err := os.Stat(s.Path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("csvbackend: %w", err)
}

func (s *MonthStore) Load(ctx context.Context, key string) ([]*storage.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readFile(s.Path(key))
}

func (s *MonthStore) Store(ctx context.Context, key string, articles []*storage.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := monthrange.ParseKey(key); err != nil {
		return fmt.Errorf("csvbackend: %w", err)
	}
	return writeFileAtomic(s.Path(key), articles)
}

func (s *MonthStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("csvbackend: %w", err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		key := strings.TrimSuffix(e.Name(), ".csv")
		if _, err := monthrange.ParseKey(key); err != nil {
			continue
		}
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys, nil
}
