package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"webfonts/internal/catalogue"
	"webfonts/internal/fileutil"
)

func newCatalogueCommand(ctx *commandContext) *cobra.Command {
	catalogueCmd := &cobra.Command{
		Use:     "catalogue",
		Aliases: []string{"catalog"},
		Short:   "Inspect the typeface catalogue",
	}
	catalogueCmd.AddCommand(newCatalogueShowCommand(ctx))
	return catalogueCmd
}

func newCatalogueShowCommand(ctx *commandContext) *cobra.Command {
	var showSources bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List catalogue entries and whether their sources are present",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cat, err := ctx.loadCatalogue(cfg)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, cat)
			}

			out := cmd.OutOrStdout()
			origin := cfg.Paths.Catalogue
			if origin == "" {
				origin = "built-in"
			}
			fmt.Fprintf(out, "Catalogue: %s (%d entries, locales %v)\n\n", origin, len(cat.Typefaces), cat.Locales())
			fmt.Fprintln(out, renderTable(
				[]string{"Label", "Locale", "Family", "Weight", "Style", "Present"},
				typefaceRows(cat.Typefaces),
				nil,
			))

			if showSources {
				rows := make([][]string, 0, len(cat.Downloads))
				for _, d := range cat.Downloads {
					archive := ""
					if d.Archive != nil {
						archive = d.Archive.Extract
					}
					rows = append(rows, []string{d.Name, d.Filename, archive, d.URL})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]string{"Source", "Filename", "Archive member", "URL"}, rows, nil))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSources, "sources", false, "Also list download sources")
	return cmd
}

func typefaceRows(entries []catalogue.Typeface) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		present, _ := fileutil.Exists(entry.Source)
		rows = append(rows, []string{
			entry.Label,
			entry.Locale,
			entry.Style.Family,
			entry.Style.CSSWeight(),
			entry.Style.Style,
			yesNo(present),
		})
	}
	return rows
}
