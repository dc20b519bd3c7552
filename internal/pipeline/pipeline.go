// Package pipeline fetches one calendar month from a search source: a
// multi-query coverage pass over the first page followed by single-query
// pagination, deduplicated as it goes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FranksOps/newsfill/internal/dedupe"
	"github.com/FranksOps/newsfill/internal/metrics"
	"github.com/FranksOps/newsfill/internal/query"
	"github.com/FranksOps/newsfill/internal/source"
	"github.com/FranksOps/newsfill/internal/storage"
	"github.com/FranksOps/newsfill/pkg/monthrange"
	"github.com/FranksOps/newsfill/pkg/ratelimit"
)

// Config provides the pacing and stop limits for one source.
type Config struct {
	Queries query.Set
	// QueryDelay separates consecutive coverage queries.
	QueryDelay time.Duration
	// PageDelay precedes every pagination request.
	PageDelay time.Duration
	// MaxPages caps the pages requested per month, the first page included.
	MaxPages int
	// MinResults stops pagination after a page with fewer documents (0 = off).
	MinResults int
	// RateLimitCooldown overrides the source's cooldown when non-zero.
	RateLimitCooldown time.Duration
	// Sleeper performs every pause (nil = wall clock).
	Sleeper ratelimit.Sleeper
}

// Validate checks the limits are usable.
func (c Config) Validate() error {
	if err := c.Queries.Validate(); err != nil {
		return err
	}
	if c.QueryDelay < 0 || c.PageDelay < 0 || c.RateLimitCooldown < 0 {
		return errors.New("pipeline: delays must not be negative")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("pipeline: max pages must be at least 1, got %d", c.MaxPages)
	}
	if c.MinResults < 0 {
		return fmt.Errorf("pipeline: min results must not be negative, got %d", c.MinResults)
	}
	return nil
}

// Orchestrator runs months against a single source adapter. It is safe to
// reuse across months but issues one request at a time.
type Orchestrator struct {
	adapter source.Adapter
	cfg     Config
	logger  *slog.Logger
}

// New creates an Orchestrator for adapter.
func New(adapter source.Adapter, cfg Config, logger *slog.Logger) (*Orchestrator, error) {
	if adapter == nil {
		return nil, errors.New("pipeline: adapter is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Sleeper == nil {
		cfg.Sleeper = ratelimit.Wall
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		adapter: adapter,
		cfg:     cfg,
		logger:  logger.With("source", adapter.Name()),
	}, nil
}

// Source returns the adapter name.
func (o *Orchestrator) Source() string { return o.adapter.Name() }

// Run fetches window w. Request failures are absorbed into the result; the
// only error returned is context cancellation, alongside whatever was
// gathered before it.
func (o *Orchestrator) Run(ctx context.Context, w monthrange.Window) (*Result, error) {
	r := &monthRun{
		o:      o,
		window: w,
		logger: o.logger.With("month", w.Key()),
		result: &Result{Window: w, State: NotStarted, Stats: MonthStats{Key: w.Key()}},
	}

	if err := r.coverage(ctx); err != nil {
		return r.finish(), err
	}
	r.result.State = MultiQueryDone

	r.result.State = Paginating
	if err := r.paginate(ctx); err != nil {
		return r.finish(), err
	}

	r.result.State = Complete
	res := r.finish()
	r.logger.Info("month complete",
		"articles", len(res.Articles),
		"requests", res.Stats.Requests,
		"pages", res.Stats.Pages,
		"stop", res.Stats.Stop,
	)
	return res, nil
}

type monthRun struct {
	o      *Orchestrator
	window monthrange.Window
	logger *slog.Logger
	seen   dedupe.Set
	result *Result
}

func (r *monthRun) finish() *Result {
	r.result.Articles = r.seen.Items()
	r.result.Stats.Articles = r.seen.Len()
	r.result.Stats.Duplicates = r.seen.Duplicates()
	r.result.Stats.MissingKey = r.seen.MissingKey()
	return r.result
}

// coverage issues every query against the first page.
func (r *monthRun) coverage(ctx context.Context) error {
	first := r.o.adapter.FirstPage()
	for i, q := range r.o.cfg.Queries.Coverage {
		if i > 0 {
			if err := r.o.cfg.Sleeper.Sleep(ctx, r.o.cfg.QueryDelay); err != nil {
				return err
			}
		}

		page, err := r.fetch(ctx, first, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			r.result.Stats.QueriesAbandoned++
			r.logger.Warn("coverage query abandoned", "query", query.Label(i), "error", err)
			continue
		}

		added := r.absorb(page)
		r.logger.Debug("coverage query", "query", query.Label(i), "documents", len(page.Documents), "new", added)
	}

	r.logger.Info("coverage pass done", "queries", len(r.o.cfg.Queries.Coverage), "articles", r.seen.Len())
	return nil
}

// paginate walks the broad query from the page after the first until a stop
// condition holds.
func (r *monthRun) paginate(ctx context.Context) error {
	first := r.o.adapter.FirstPage()
	for page := first + 1; ; page++ {
		if page-first >= r.o.cfg.MaxPages {
			r.result.Stats.Stop = StopMaxPages
			return nil
		}

		if err := r.o.cfg.Sleeper.Sleep(ctx, r.o.cfg.PageDelay); err != nil {
			return err
		}

		p, err := r.fetch(ctx, page, r.o.cfg.Queries.Paginate)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			r.logger.Warn("pagination stopped", "page", page, "error", err)
			r.result.Stats.Stop = StopFailed
			return nil
		}
		r.result.Stats.Pages++

		if len(p.Documents) == 0 {
			r.result.Stats.Stop = StopEmpty
			return nil
		}

		added := r.absorb(p)
		r.logger.Debug("page fetched", "page", page, "documents", len(p.Documents), "new", added)

		if p.Last() {
			r.result.Stats.Stop = StopLastPage
			return nil
		}
		if r.o.cfg.MinResults > 0 && len(p.Documents) < r.o.cfg.MinResults {
			r.result.Stats.Stop = StopShortPage
			return nil
		}
	}
}

// fetch performs one request, pausing and retrying once when rate limited.
func (r *monthRun) fetch(ctx context.Context, page int, q string) (*source.Page, error) {
	p, err := r.o.adapter.Fetch(ctx, r.window, page, q)
	r.result.Stats.Requests++

	var rl *source.RateLimitedError
	if errors.As(err, &rl) {
		r.result.Stats.RateLimited++
		cooldown := r.o.cfg.RateLimitCooldown
		if cooldown == 0 {
			cooldown = rl.Cooldown
		}
		r.logger.Warn("rate limited", "page", page, "cooldown", cooldown, "retry_after", rl.RetryAfter)

		if serr := r.o.cfg.Sleeper.Sleep(ctx, cooldown); serr != nil {
			return nil, serr
		}

		p, err = r.o.adapter.Fetch(ctx, r.window, page, q)
		r.result.Stats.Requests++
		if errors.As(err, &rl) {
			r.result.Stats.RateLimited++
		}
	}

	if err != nil {
		r.result.Stats.Failures++
		return nil, err
	}
	return p, nil
}

// absorb normalizes a page into the month's set and returns how many
// articles were new.
func (r *monthRun) absorb(p *source.Page) int {
	articles := make([]*storage.Article, 0, len(p.Documents))
	for i, raw := range p.Documents {
		art, err := r.o.adapter.Normalize(raw)
		if err != nil {
			var md *source.MalformedDocumentError
			if errors.As(err, &md) {
				md.Index = i
			}
			r.result.Stats.Malformed++
			metrics.MalformedDocumentsTotal.WithLabelValues(r.o.adapter.Name()).Inc()
			r.logger.Warn("skipping malformed document", "page", p.Number, "index", i, "error", err)
			continue
		}
		// Search dates are the publisher's local day, so edge articles can
		// fall just outside the UTC window. They are kept.
		if !r.window.Contains(art.PublishedAt) {
			r.result.Stats.OutsideWindow++
			r.logger.Debug("article outside month", "page", p.Number, "id", art.ID, "published", art.PublishedAt)
		}
		articles = append(articles, art)
	}
	return r.seen.AddAll(articles)
}
