package postgres

import (
	"context"
	"fmt"

	"github.com/FranksOps/newsfill/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool   *pgxpool.Pool
	source string
}

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	source TEXT NOT NULL,
	id TEXT NOT NULL,
	headline TEXT NOT NULL,
	published_at TIMESTAMPTZ NOT NULL,
	snippet TEXT,
	abstract TEXT,
	url TEXT,
	word_count INTEGER NOT NULL,
	section TEXT,
	subsection TEXT,
	desk TEXT,
	type TEXT,
	byline TEXT,
	keywords TEXT[] NOT NULL,
	PRIMARY KEY (source, id)
);
CREATE INDEX IF NOT EXISTS articles_published_at ON articles (source, published_at DESC);
`

// New creates a Postgres-backed storage.Backend holding the combined dataset
// of one source.
func New(ctx context.Context, dsn, source string) (storage.Backend, error) {
	if source == "" {
		return nil, fmt.Errorf("postgres: source is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &postgresBackend{pool: pool, source: source}, nil
}

func (b *postgresBackend) Write(ctx context.Context, articles []*storage.Article) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM articles WHERE source = $1`, b.source); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	batch := &pgx.Batch{}
	for _, a := range articles {
		keywords := a.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		batch.Queue(`
		INSERT INTO articles (
			source, id, headline, published_at, snippet, abstract, url, word_count,
			section, subsection, desk, type, byline, keywords
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (source, id) DO NOTHING
		`,
			b.source,
			a.ID,
			a.Headline,
			a.PublishedAt,
			a.Snippet,
			a.Abstract,
			a.URL,
			a.WordCount,
			a.Section,
			a.Subsection,
			a.Desk,
			a.Type,
			a.Byline,
			keywords,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Article, error) {
	query := `SELECT id, headline, published_at, snippet, abstract, url, word_count, section, subsection, desk, type, byline, keywords FROM articles WHERE source = $1`
	args := []any{b.source}
	paramCount := 2

	if filter.Section != "" {
		query += fmt.Sprintf(` AND section = $%d`, paramCount)
		args = append(args, filter.Section)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND published_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}
	if filter.Until != nil {
		query += fmt.Sprintf(` AND published_at <= $%d`, paramCount)
		args = append(args, *filter.Until)
		paramCount++
	}

	query += ` ORDER BY published_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	defer rows.Close()

	results := []*storage.Article{}
	for rows.Next() {
		a := &storage.Article{Source: b.source}

		err := rows.Scan(
			&a.ID, &a.Headline, &a.PublishedAt, &a.Snippet, &a.Abstract, &a.URL, &a.WordCount,
			&a.Section, &a.Subsection, &a.Desk, &a.Type, &a.Byline, &a.Keywords,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}

		results = append(results, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
