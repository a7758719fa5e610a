package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"webfonts/internal/catalogue"
	"webfonts/internal/history"
	"webfonts/internal/logging"
	"webfonts/internal/pipeline"
	"webfonts/internal/services"
	"webfonts/internal/subset"
)

type buildOutput struct {
	Status    string          `json:"status"`
	Report    pipeline.Report `json:"report"`
	Error     string          `json:"error,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"`
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Subset every catalogue entry and write per-locale manifests",
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
			ws, err := ctx.workspace(cfg)
			if err != nil {
				return err
			}

			buildID := uuid.NewString()
			buildLogger, closer, err := logging.OpenBuildLog(logger, cfg.Paths.LogDir, buildID)
			if err != nil {
				return err
			}
			defer closer.Close()
			logging.PruneBuildLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, logging.BuildLogPath(cfg.Paths.LogDir, buildID))

			invoker, err := subset.New(cfg.Subsetter.Command, cfg.Subsetter.TimeoutSeconds,
				subset.WithLogger(logging.NewComponentLogger(buildLogger, "subset")))
			if err != nil {
				return err
			}

			opts := []pipeline.Option{
				pipeline.WithBuildID(buildID),
				pipeline.WithLogger(logging.NewComponentLogger(buildLogger, "pipeline")),
			}
			if cfg.History.Enabled {
				store, err := history.Open(cmd.Context(), cfg.HistoryPath())
				if err != nil {
					logging.WarnWithContext(logger, "build history unavailable", "history_open_failed",
						logging.Error(err),
						logging.String("path", cfg.HistoryPath()),
						logging.String(logging.FieldImpact, "this build will not be recorded"),
					)
				} else {
					defer store.Close()
					opts = append(opts, pipeline.WithRecorder(store))
				}
			}
			if !quiet && !ctx.JSONMode() {
				opts = append(opts, pipeline.WithObserver(progressObserver(cmd.ErrOrStderr(), entryLabels(cat.Typefaces))))
			}

			driver := pipeline.New(ws, invoker, opts...)
			report, runErr := driver.Run(cmd.Context(), cat.Typefaces)

			if ctx.JSONMode() {
				out := buildOutput{Status: history.StatusSucceeded, Report: report}
				if runErr != nil {
					out.Status = history.StatusFailed
					out.Error = runErr.Error()
					out.ErrorKind = string(services.KindOf(runErr))
				}
				if err := writeJSON(cmd, out); err != nil {
					return err
				}
				return runErr
			}

			renderBuildReport(cmd.OutOrStdout(), report, runErr)
			return runErr
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-entry progress lines")
	return cmd
}

func entryLabels(entries []catalogue.Typeface) []string {
	labels := make([]string, len(entries))
	for i, entry := range entries {
		labels[i] = entry.Locale + "/" + entry.Label
	}
	return labels
}

func progressObserver(w io.Writer, labels []string) pipeline.ObserverFunc {
	colorize := shouldColorize(w)
	return func(from, to pipeline.State, index int) {
		switch to {
		case pipeline.ProcessingEntries:
			label := fmt.Sprintf("[%d/%d]", index+1, len(labels))
			var name string
			if index >= 0 && index < len(labels) {
				name = labels[index]
			}
			fmt.Fprintln(w, renderStatusLine(label, statusInfo, name, colorize))
		case pipeline.Merging:
			fmt.Fprintln(w, renderStatusLine("merge", statusInfo, "writing manifests", colorize))
		case pipeline.Failed:
			fmt.Fprintln(w, renderStatusLine("build", statusError, "failed in "+from.String(), colorize))
		}
	}
}

func renderBuildReport(w io.Writer, report pipeline.Report, runErr error) {
	colorize := shouldColorize(w)

	if len(report.Summaries) > 0 {
		rows := make([][]string, 0, len(report.Summaries))
		for _, s := range report.Summaries {
			rows = append(rows, []string{
				s.Locale,
				strconv.Itoa(s.FaceCount),
				strconv.Itoa(s.BinaryCount),
				strings.Join(s.Families, ", "),
				s.ManifestPath,
			})
		}
		fmt.Fprintln(w, renderTable(
			[]string{"Locale", "Faces", "Binaries", "Families", "Manifest"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
		))
	}

	for _, warning := range report.Warnings {
		fmt.Fprintln(w, renderStatusLine("warning", statusWarn, warning, colorize))
	}

	duration := report.Duration().Round(time.Millisecond)
	if runErr != nil {
		kind := services.KindOf(runErr)
		message := fmt.Sprintf("build %s failed after %d entries (%s)", report.BuildID, report.Entries, kind)
		fmt.Fprintln(w, renderStatusLine("build", statusError, message, colorize))
		if hint := services.Hint(kind); hint != "" {
			fmt.Fprintln(w, renderStatusLine("hint", statusInfo, hint, colorize))
		}
		return
	}
	message := fmt.Sprintf("build %s: %d entries, %d locales in %s", report.BuildID, report.Entries, len(report.Summaries), duration)
	fmt.Fprintln(w, renderStatusLine("build", statusOK, message, colorize))
}
