package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"webfonts/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent builds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				if ctx.JSONMode() {
					return writeJSON(cmd, []history.Record{})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Build history is disabled (history.enabled = false)")
				return nil
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}

			store, err := history.Open(cmd.Context(), cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				if records == nil {
					records = []history.Record{}
				}
				return writeJSON(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No builds recorded")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					shortID(rec.ID),
					rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
					rec.Duration().Round(time.Millisecond).String(),
					rec.Status,
					strconv.Itoa(rec.Entries),
					formatLocaleCounts(rec.Locales),
					rec.ErrorKind,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Started", "Duration", "Status", "Entries", "Locales", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of builds to show")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatLocaleCounts renders "en:3/4 zh:1/2" as faces/binaries per locale,
// sorted by locale.
func formatLocaleCounts(locales []history.LocaleCount) string {
	if len(locales) == 0 {
		return ""
	}
	sorted := append([]history.LocaleCount(nil), locales...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Locale < sorted[j].Locale })
	parts := make([]string, 0, len(sorted))
	for _, lc := range sorted {
		parts = append(parts, fmt.Sprintf("%s:%d/%d", lc.Locale, lc.FaceCount, lc.BinaryCount))
	}
	return strings.Join(parts, " ")
}
