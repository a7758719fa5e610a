package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"webfonts/internal/logging"
	"webfonts/internal/workspace"
)

func newWorkspaceCommand(ctx *commandContext) *cobra.Command {
	workspaceCmd := &cobra.Command{
		Use:   "workspace",
		Short: "Inspect and clean the build workspace",
	}

	workspaceCmd.AddCommand(newWorkspaceListCommand(ctx))
	workspaceCmd.AddCommand(newWorkspaceCleanCommand(ctx))

	return workspaceCmd
}

func newWorkspaceListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scratch directories left by an unfinished build",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ws, err := ctx.workspace(cfg)
			if err != nil {
				return err
			}
			dirs, err := ws.ListScratch()
			if err != nil {
				return err
			}

			var totalSize int64
			for _, dir := range dirs {
				totalSize += dir.Size
			}

			if ctx.JSONMode() {
				if dirs == nil {
					dirs = []workspace.DirInfo{}
				}
				return writeJSON(cmd, map[string]any{
					"output_root":      ws.OutputRoot,
					"scratch_root":     ws.ScratchRoot,
					"directories":      dirs,
					"total_size_bytes": totalSize,
				})
			}

			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprintf(out, "No scratch directories under %s\n", ws.ScratchRoot)
				return nil
			}

			fmt.Fprintf(out, "Scratch root: %s\n\n", ws.ScratchRoot)
			rows := make([][]string, 0, len(dirs))
			for _, dir := range dirs {
				rows = append(rows, []string{
					dir.Name,
					logging.FormatBytes(dir.Size),
					dir.ModTime.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Directory", "Size", "Modified"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "\nTotal: %d directories, %s\n", len(dirs), logging.FormatBytes(totalSize))
			return nil
		},
	}
}

func newWorkspaceCleanCommand(ctx *commandContext) *cobra.Command {
	var output bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the scratch root left by a failed build",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ws, err := ctx.workspace(cfg)
			if err != nil {
				return err
			}
			if err := ws.Lock(); err != nil {
				return err
			}
			defer ws.Unlock()

			if err := ws.CleanupScratch(); err != nil {
				return err
			}
			removed := []string{ws.ScratchRoot}
			if output {
				if err := ws.Reset(); err != nil {
					return err
				}
				removed = append(removed, ws.OutputRoot)
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"removed": removed})
			}
			for _, path := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&output, "output", false, "Also empty the output root")
	return cmd
}
