package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"webfonts/internal/acquire"
	"webfonts/internal/catalogue"
	"webfonts/internal/logging"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download missing source typefaces into the source directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			cat, err := ctx.loadCatalogue(cfg)
			if err != nil {
				return err
			}
			sources, err := selectSources(cat.Downloads, only)
			if err != nil {
				return err
			}

			fetcher := acquire.New(cfg.Paths.SourceDir, cfg.Acquisition.ArchiveTool, cfg.Acquisition.RequestTimeoutSeconds,
				acquire.WithLogger(logging.NewComponentLogger(logger, "acquire")))
			result, fetchErr := fetcher.FetchAll(cmd.Context(), sources)

			if ctx.JSONMode() {
				if result.Downloaded == nil {
					result.Downloaded = []string{}
				}
				if result.Skipped == nil {
					result.Skipped = []string{}
				}
				payload := map[string]any{
					"source_dir": cfg.Paths.SourceDir,
					"downloaded": result.Downloaded,
					"skipped":    result.Skipped,
				}
				if fetchErr != nil {
					payload["error"] = fetchErr.Error()
				}
				if err := writeJSON(cmd, payload); err != nil {
					return err
				}
				return fetchErr
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, name := range result.Skipped {
				fmt.Fprintln(out, renderStatusLine("skip", statusInfo, name, colorize))
			}
			for _, name := range result.Downloaded {
				fmt.Fprintln(out, renderStatusLine("done", statusOK, name, colorize))
			}
			if fetchErr != nil {
				fmt.Fprintln(out, renderStatusLine("fetch", statusError, "stopped at first failure", colorize))
				return fetchErr
			}
			fmt.Fprintf(out, "%d downloaded, %d already present in %s\n", len(result.Downloaded), len(result.Skipped), cfg.Paths.SourceDir)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "Fetch only the named sources (name or filename)")
	return cmd
}

// selectSources filters downloads by name or filename, keeping catalogue order.
func selectSources(downloads []catalogue.Download, only []string) ([]acquire.Source, error) {
	if len(only) == 0 {
		return downloads, nil
	}
	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[strings.ToLower(strings.TrimSpace(name))] = false
	}
	var selected []acquire.Source
	for _, d := range downloads {
		for _, key := range []string{strings.ToLower(d.Name), strings.ToLower(d.Filename)} {
			if _, ok := wanted[key]; ok {
				wanted[key] = true
				selected = append(selected, d)
				break
			}
		}
	}
	var missing []string
	for _, name := range only {
		if !wanted[strings.ToLower(strings.TrimSpace(name))] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unknown source(s): %s", strings.Join(missing, ", "))
	}
	return selected, nil
}
