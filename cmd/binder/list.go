package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/card-binder/internal/browser"
	"github.com/ramonehamilton/card-binder/internal/metrics"
)

func newListCmd() *cobra.Command {
	var (
		search  string
		owned   string
		rarity  string
		set     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the grouped card list",
		Long: `Loads the catalog and prints it grouped by rarity, applying the same
filters as the page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ownership, err := browser.ParseOwnershipFilter(owned)
			if err != nil {
				return err
			}
			filters := browser.Filters{
				Search:    search,
				Ownership: ownership,
				Rarity:    browser.ParseChoice(rarity),
				Set:       browser.ParseChoice(set),
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			return runList(ctx, cmd.OutOrStdout(), filters)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Name contains (case-insensitive)")
	cmd.Flags().StringVar(&owned, "owned", "all", "all, owned or missing")
	cmd.Flags().StringVar(&rarity, "rarity", "all", "Rarity to show")
	cmd.Flags().StringVar(&set, "set", "all", "Set name to show")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Give up loading after this long")

	return cmd
}

func runList(ctx context.Context, out io.Writer, filters browser.Filters) error {
	svc, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	m := metrics.New()
	b, err := newBrowser(cfg, openOwnership(ctx, svc), m)
	if err != nil {
		return err
	}
	if err := b.Start(ctx); err != nil {
		return err
	}
	state := b.Wait(ctx)

	snap := m.Snapshot()
	logger.Debug("catalog requests",
		zap.Uint64("requests", snap.APIRequests),
		zap.Uint64("retries", snap.APIRetries),
		zap.Float64("p95_ms", snap.PageLatency.P95))

	if state != browser.StateReady {
		if st := b.Status(); st.Error != "" {
			return fmt.Errorf("catalog load failed: %s", st.Error)
		}
		return fmt.Errorf("catalog load did not finish: %w", ctx.Err())
	}

	view, err := b.View(filters)
	if err != nil {
		return err
	}
	return printView(out, view, b)
}

func printView(out io.Writer, view browser.View, owned browser.Ownership) error {
	fmt.Fprintf(out, "Total: %d cartas\n", view.CatalogSize)

	for _, bucket := range view.Buckets {
		fmt.Fprintf(out, "\nRareza: %s\n", bucket.Header())

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, card := range bucket.Cards {
			mark := "[ ]"
			if owned.IsOwned(card.ID) {
				mark = "[x]"
			}
			fmt.Fprintf(w, "%s\t%s\t%s (%s)\t%s\n", mark, card.Name, card.SetName, card.CollectorNumber, card.ID)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
