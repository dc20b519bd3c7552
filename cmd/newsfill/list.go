package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/FranksOps/newsfill/internal/config"
	"github.com/FranksOps/newsfill/internal/storage"
	"github.com/FranksOps/newsfill/internal/storage/csvbackend"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type listOptions struct {
	source  string
	section string
	since   string
	until   string
	limit   int
	offset  int
}

func newListCommand() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles from a source's combined dataset, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.source, "source", "s", config.NYTimes, "source to list")
	cmd.Flags().StringVar(&opts.section, "section", "", "only articles in this section")
	cmd.Flags().StringVar(&opts.since, "since", "", "only articles published on or after this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.until, "until", "", "only articles published before the end of this day (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "maximum number of articles")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "number of articles to skip")
	return cmd
}

func runList(ctx context.Context, opts listOptions) error {
	if _, err := cfg.Source(opts.source); err != nil {
		return err
	}

	filter := storage.Filter{Section: opts.section, Limit: opts.limit, Offset: opts.offset}
	if opts.since != "" {
		t, err := time.Parse(config.DateLayout, opts.since)
		if err != nil {
			return fmt.Errorf("since: %w", err)
		}
		filter.Since = &t
	}
	if opts.until != "" {
		t, err := time.Parse(config.DateLayout, opts.until)
		if err != nil {
			return fmt.Errorf("until: %w", err)
		}
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.Until = &end
	}

	b, err := csvbackend.New(filepath.Join(cfg.OutputDir, opts.source, csvbackend.CombinedName))
	if err != nil {
		return err
	}
	defer b.Close()

	articles, err := b.Query(ctx, filter)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: 80}})
	t.AppendHeader(table.Row{"#", "Published", "Section", "Headline"})
	for i, a := range articles {
		t.AppendRow(table.Row{opts.offset + i + 1, a.PublishedAt.Format("2006-01-02 15:04"), a.Section, a.Headline})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(articles)})
	t.Render()
	return nil
}
