package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/FranksOps/newsfill/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db     *sql.DB
	source string
}

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	source TEXT NOT NULL,
	id TEXT NOT NULL,
	headline TEXT NOT NULL,
	published_at DATETIME NOT NULL,
	snippet TEXT,
	abstract TEXT,
	url TEXT,
	word_count INTEGER NOT NULL,
	section TEXT,
	subsection TEXT,
	desk TEXT,
	type TEXT,
	byline TEXT,
	keywords TEXT NOT NULL,
	PRIMARY KEY (source, id)
);
CREATE INDEX IF NOT EXISTS articles_published_at ON articles (source, published_at);
`

// New creates a SQLite-backed storage.Backend holding the combined dataset of
// one source. Rows of other sources in the same database are left alone.
func New(dsn, source string) (storage.Backend, error) {
	if source == "" {
		return nil, fmt.Errorf("sqlite: source is required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	return &sqliteBackend{db: db, source: source}, nil
}

func (b *sqliteBackend) Write(ctx context.Context, articles []*storage.Article) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE source = ?`, b.source); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO articles (
		source, id, headline, published_at, snippet, abstract, url, word_count,
		section, subsection, desk, type, byline, keywords
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (source, id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	defer stmt.Close()

	for _, a := range articles {
		keywords := a.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		keywordsJSON, err := json.Marshal(keywords)
		if err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			b.source,
			a.ID,
			a.Headline,
			a.PublishedAt.UTC(),
			a.Snippet,
			a.Abstract,
			a.URL,
			a.WordCount,
			a.Section,
			a.Subsection,
			a.Desk,
			a.Type,
			a.Byline,
			string(keywordsJSON),
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Article, error) {
	query := `SELECT id, headline, published_at, snippet, abstract, url, word_count, section, subsection, desk, type, byline, keywords FROM articles WHERE source = ?`
	args := []any{b.source}

	if filter.Section != "" {
		query += ` AND section = ?`
		args = append(args, filter.Section)
	}
	if filter.Since != nil {
		query += ` AND published_at >= ?`
		args = append(args, filter.Since.UTC())
	}
	if filter.Until != nil {
		query += ` AND published_at <= ?`
		args = append(args, filter.Until.UTC())
	}

	query += ` ORDER BY published_at DESC`

	// SQLite only accepts OFFSET after a LIMIT; -1 means unbounded.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	defer rows.Close()

	results := []*storage.Article{}
	for rows.Next() {
		a := &storage.Article{Source: b.source}
		var keywordsJSON string

		err := rows.Scan(
			&a.ID, &a.Headline, &a.PublishedAt, &a.Snippet, &a.Abstract, &a.URL, &a.WordCount,
			&a.Section, &a.Subsection, &a.Desk, &a.Type, &a.Byline, &keywordsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}

		if err := json.Unmarshal([]byte(keywordsJSON), &a.Keywords); err != nil {
			return nil, fmt.Errorf("sqlite: keywords of %s: %w", a.ID, err)
		}

		results = append(results, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
