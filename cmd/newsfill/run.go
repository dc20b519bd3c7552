package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/FranksOps/newsfill/internal/backfill"
	"github.com/FranksOps/newsfill/internal/config"
	"github.com/FranksOps/newsfill/internal/metrics"
	"github.com/FranksOps/newsfill/internal/report"
	"github.com/FranksOps/newsfill/internal/storage/csvbackend"
	"github.com/FranksOps/newsfill/internal/storage/jsonbackend"
	"github.com/FranksOps/newsfill/internal/storage/postgres"
	"github.com/FranksOps/newsfill/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

type runOptions struct {
	sources   []string
	from      string
	to        string
	outputDir string
	format    string
}

func newRunCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Backfill monthly datasets and rebuild the combined dataset",
		Long: `Fetch every month in the configured range that is not already saved,
write one CSV per month, then rebuild combined.csv and print a summary.

Examples:
  # Backfill both sources with their configured ranges
  newsfill run

  # Backfill one source for part of 2020
  newsfill run --source guardian --from 2020-03-01 --to 2020-06-30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.sources, "source", "s", []string{"all"}, "sources to backfill: nytimes, guardian or all")
	cmd.Flags().StringVar(&opts.from, "from", "", "first day of the range (YYYY-MM-DD), overrides config")
	cmd.Flags().StringVar(&opts.to, "to", "", "last day of the range (YYYY-MM-DD), overrides config")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "output directory, overrides config")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "summary format: text, json or html")
	return cmd
}

func runBackfill(ctx context.Context, opts runOptions) error {
	names, err := parseSources(opts.sources)
	if err != nil {
		return err
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}
	if opts.format != "" {
		cfg.Format = opts.format
	}

	if cfg.MetricsPort > 0 {
		srv := metrics.Start(cfg.MetricsPort)
		defer srv.Stop(context.Background())
		logger.Info("metrics server listening", "port", cfg.MetricsPort)
	}

	var failed []error
	for _, name := range names {
		if err := backfillSource(ctx, name, opts); err != nil {
			if ctx.Err() != nil {
				return err
			}
			logger.Error("backfill failed", "source", name, "error", err)
			failed = append(failed, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(failed...)
}

func backfillSource(ctx context.Context, name string, opts runOptions) error {
	s, err := cfg.Source(name)
	if err != nil {
		return err
	}
	if opts.from != "" {
		s.From = opts.from
	}
	if opts.to != "" {
		s.To = opts.to
	}
	from, to, err := s.Range(time.Now())
	if err != nil {
		return err
	}

	orch, err := newOrchestrator(cfg, name, logger)
	if err != nil {
		return err
	}

	dir := filepath.Join(cfg.OutputDir, name)
	months, err := csvbackend.NewMonthStore(dir)
	if err != nil {
		return err
	}
	combined, err := csvbackend.New(months.CombinedPath())
	if err != nil {
		return err
	}
	defer combined.Close()

	sinks, err := openSinks(ctx, cfg, name, dir)
	if err != nil {
		return err
	}
	defer func() {
		for _, sink := range sinks {
			sink.Backend.Close()
		}
	}()

	driver, err := backfill.New(backfill.Config{
		Fetcher:  orch,
		Months:   months,
		Combined: combined,
		Sinks:    sinks,
		Report:   report.Options{TopSections: s.TopSections},
	}, logger)
	if err != nil {
		return err
	}

	summary, err := driver.Run(ctx, from, to)
	if err != nil {
		return err
	}
	return report.Write(os.Stdout, cfg.Format, *summary)
}

// openSinks opens the optional mirrors of the combined dataset.
func openSinks(ctx context.Context, c *config.Config, name, dir string) ([]backfill.Sink, error) {
	var sinks []backfill.Sink
	closeAll := func() {
		for _, s := range sinks {
			s.Backend.Close()
		}
	}

	if c.Sinks.NDJSON {
		b, err := jsonbackend.New(filepath.Join(dir, "combined.ndjson"))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, backfill.Sink{Name: "ndjson", Backend: b})
	}

	if c.Sinks.SQLitePath != "" {
		b, err := sqlite.New(c.Sinks.SQLitePath, name)
		if err != nil {
			closeAll()
			return nil, err
		}
		sinks = append(sinks, backfill.Sink{Name: "sqlite", Backend: b})
	}

	if c.Sinks.PostgresDSN != "" {
		b, err := postgres.New(ctx, c.Sinks.PostgresDSN, name)
		if err != nil {
			closeAll()
			return nil, err
		}
		sinks = append(sinks, backfill.Sink{Name: "postgres", Backend: b})
	}

	return sinks, nil
}
