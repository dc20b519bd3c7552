package main

import (
	"context"
	"fmt"
	"os"

	"github.com/FranksOps/newsfill/internal/query"
	"github.com/FranksOps/newsfill/internal/source"
	"github.com/FranksOps/newsfill/pkg/monthrange"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	var (
		sources []string
		q       string
		month   string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Send one test request per source and report whether the API key works",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), sources, q, month)
		},
	}

	cmd.Flags().StringSliceVarP(&sources, "source", "s", []string{"all"}, "sources to check: nytimes, guardian or all")
	cmd.Flags().StringVarP(&q, "query", "q", query.SmokeTest, "search query")
	cmd.Flags().StringVar(&month, "month", "2024-01", "month to search (YYYY-MM)")
	return cmd
}

func runCheck(ctx context.Context, names []string, q, month string) error {
	selected, err := parseSources(names)
	if err != nil {
		return err
	}
	w, err := monthrange.ParseKey(month)
	if err != nil {
		return err
	}

	bad := 0
	for _, name := range selected {
		adapter, err := newAdapter(cfg, name)
		if err != nil {
			return err
		}
		probe := source.Check(ctx, adapter, w, q)
		if err := source.WriteProbe(os.Stdout, probe); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout)
		if probe.Verdict != source.VerdictValid {
			bad++
		}
	}

	if bad > 0 {
		return fmt.Errorf("%d of %d sources failed the check", bad, len(selected))
	}
	return nil
}
