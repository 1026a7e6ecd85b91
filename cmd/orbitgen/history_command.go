package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"orbitgen/internal/catalog"
	"orbitgen/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var output string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List fixtures recorded in the catalog, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if errors.Is(err, catalog.ErrDisabled) {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog disabled (catalog.enabled = false)")
				return nil
			}
			if err != nil {
				return services.Wrap(services.ErrTransient, "catalog", "open", cfg.Catalog.Path, err)
			}
			defer store.Close()

			var entries []catalog.Entry
			if output != "" {
				latest, err := store.LatestForOutput(cmd.Context(), output)
				if err != nil {
					return services.Wrap(services.ErrTransient, "catalog", "lookup", output, err)
				}
				if latest == nil {
					return services.Wrap(services.ErrNotFound, "catalog", "lookup", "no fixture recorded for "+output, nil)
				}
				entries = []catalog.Entry{*latest}
			} else {
				entries, err = store.List(cmd.Context(), limit)
				if err != nil {
					return services.Wrap(services.ErrTransient, "catalog", "list", "", err)
				}
			}
			if jsonOut {
				if entries == nil {
					entries = []catalog.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No fixtures recorded")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					e.OutputPath,
					fmt.Sprintf("%gs @ %d", e.DurationSeconds, e.FPS),
					formatBytes(e.SizeBytes),
					shortDigest(e.SHA256),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tableSpec{
				headers: []string{"Created", "Output", "Length", "Size", "SHA-256"},
				aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				rows:    rows,
				footer:  []string{fmt.Sprintf("%d shown", len(entries))},
			}.render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	cmd.Flags().StringVar(&output, "output", "", "Show only the newest record for this output path")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print entries as JSON")
	return cmd
}

func shortDigest(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
