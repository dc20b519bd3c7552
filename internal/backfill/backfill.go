// Package backfill walks a range of months for one source, fetching the
// months that are not yet on disk, then rebuilds the combined dataset.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/FranksOps/newsfill/internal/dedupe"
	"github.com/FranksOps/newsfill/internal/metrics"
	"github.com/FranksOps/newsfill/internal/pipeline"
	"github.com/FranksOps/newsfill/internal/report"
	"github.com/FranksOps/newsfill/internal/storage"
	"github.com/FranksOps/newsfill/pkg/monthrange"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MonthFetcher fetches one month. *pipeline.Orchestrator implements it.
type MonthFetcher interface {
	Source() string
	Run(ctx context.Context, w monthrange.Window) (*pipeline.Result, error)
}

// Sink is an extra destination for the combined dataset.
type Sink struct {
	Name    string
	Backend storage.Backend
}

// Config wires the driver's collaborators.
type Config struct {
	Fetcher MonthFetcher
	Months  storage.MonthStore
	// Combined receives the deduplicated, time-sorted union of every month.
	Combined storage.Backend
	Sinks    []Sink
	Report   report.Options
	// RunID labels logs and the summary. Empty means a new UUID.
	RunID string
}

// Driver runs a backfill.
type Driver struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Driver.
func New(cfg Config, logger *slog.Logger) (*Driver, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("backfill: fetcher is nil")
	}
	if cfg.Months == nil {
		return nil, errors.New("backfill: month store is nil")
	}
	if cfg.Combined == nil {
		return nil, errors.New("backfill: combined backend is nil")
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.New().String()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		cfg:    cfg,
		logger: logger.With("run_id", cfg.RunID, "source", cfg.Fetcher.Source()),
	}, nil
}

// RunID returns the identifier attached to this run.
func (d *Driver) RunID() string { return d.cfg.RunID }

// Run backfills every month from the month containing from to the month
// containing to, inclusive. A month that fails is logged and recorded; only
// cancellation and failures writing the combined output are returned.
func (d *Driver) Run(ctx context.Context, from, to time.Time) (*report.Summary, error) {
	windows := monthrange.Months(from, to)
	if len(windows) == 0 {
		return nil, fmt.Errorf("backfill: empty range %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	d.logger.Info("starting backfill", "from", windows[0].Key(), "to", windows[len(windows)-1].Key(), "months", len(windows))

	counts := make([]report.MonthCount, 0, len(windows))
	for _, w := range windows {
		mc, err := d.month(ctx, w)
		counts = append(counts, mc)
		if err != nil {
			return nil, err
		}
	}

	return d.combine(ctx, counts)
}

// month resumes w from disk or fetches and persists it. The returned error is
// non-nil only on cancellation.
func (d *Driver) month(ctx context.Context, w monthrange.Window) (report.MonthCount, error) {
	key := w.Key()
	source := d.cfg.Fetcher.Source()
	logger := d.logger.With("month", key)

	if err := ctx.Err(); err != nil {
		return report.MonthCount{Key: key, Err: err.Error()}, err
	}

	exists, err := d.cfg.Months.Has(key)
	if err != nil {
		logger.Error("checking month file", "error", err)
		return report.MonthCount{Key: key, Err: err.Error()}, nil
	}

	if exists {
		articles, err := d.cfg.Months.Load(ctx, key)
		if err != nil {
			logger.Error("loading month file", "error", err)
			return report.MonthCount{Key: key, Resumed: true, Err: err.Error()}, nil
		}
		metrics.RecordMonth(source, "resumed", len(articles))
		logger.Info("month already saved", "articles", len(articles))
		return report.MonthCount{Key: key, Count: len(articles), Resumed: true}, nil
	}

	res, err := d.cfg.Fetcher.Run(ctx, w)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("month interrupted, nothing saved", "error", err)
			return report.MonthCount{Key: key, Err: err.Error()}, ctx.Err()
		}
		logger.Error("fetching month", "error", err)
		return report.MonthCount{Key: key, Err: err.Error()}, nil
	}

	metrics.RecordMonth(source, "fetched", len(res.Articles))

	if len(res.Articles) == 0 {
		logger.Info("no articles found", "requests", res.Stats.Requests, "failures", res.Stats.Failures)
		return report.MonthCount{Key: key}, nil
	}

	if err := d.cfg.Months.Store(ctx, key, res.Articles); err != nil {
		logger.Error("saving month file", "error", err)
		return report.MonthCount{Key: key, Count: len(res.Articles), Err: err.Error()}, nil
	}

	logger.Info("month saved", "articles", len(res.Articles), "malformed", res.Stats.Malformed, "stop", res.Stats.Stop)
	return report.MonthCount{Key: key, Count: len(res.Articles)}, nil
}

// combine reads every saved month in key order, deduplicates across months
// keeping the first row seen, sorts newest first and writes the result.
func (d *Driver) combine(ctx context.Context, counts []report.MonthCount) (*report.Summary, error) {
	keys, err := d.cfg.Months.Keys()
	if err != nil {
		return nil, fmt.Errorf("backfill: list months: %w", err)
	}

	var all []*storage.Article
	for _, key := range keys {
		articles, err := d.cfg.Months.Load(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			d.logger.Error("skipping unreadable month file", "month", key, "error", err)
			continue
		}
		all = append(all, articles...)
	}

	combined := Combine(all)
	d.logger.Info("combined dataset built", "files", len(keys), "before_dedupe", len(all), "articles", len(combined))

	if err := d.cfg.Combined.Write(ctx, combined); err != nil {
		return nil, fmt.Errorf("backfill: write combined: %w", err)
	}
	metrics.CombinedArticles.WithLabelValues(d.cfg.Fetcher.Source()).Set(float64(len(combined)))

	if err := d.mirror(ctx, combined); err != nil {
		return nil, err
	}

	summary := report.GenerateSummary(d.cfg.RunID, d.cfg.Fetcher.Source(), counts, len(all), combined, d.cfg.Report)
	return &summary, nil
}

// mirror writes the combined dataset to every sink concurrently.
func (d *Driver) mirror(ctx context.Context, combined []*storage.Article) error {
	if len(d.cfg.Sinks) == 0 {
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, sink := range d.cfg.Sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.Backend.Write(gCtx, combined); err != nil {
				return fmt.Errorf("backfill: write %s sink: %w", sink.Name, err)
			}
			d.logger.Info("sink written", "sink", sink.Name, "articles", len(combined))
			return nil
		})
	}
	return g.Wait()
}

// Combine deduplicates articles keeping the first occurrence, then sorts them
// by publication time, newest first. Ties keep their input order.
func Combine(articles []*storage.Article) []*storage.Article {
	out := dedupe.Articles(articles)
	slices.SortStableFunc(out, func(a, b *storage.Article) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	return out
}
