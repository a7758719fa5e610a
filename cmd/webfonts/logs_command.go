package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"webfonts/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs [build-id]",
		Short: "Print the log of the latest build, or of the build matching an ID prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			path, err := logs.FindBuildLog(cfg.Paths.LogDir, id)
			if err != nil {
				return err
			}
			entries, err := logs.Tail(path, lines)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !ctx.JSONMode() {
				fmt.Fprintf(out, "# %s\n", path)
			}
			for _, line := range entries {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to print (0 for all)")
	return cmd
}
