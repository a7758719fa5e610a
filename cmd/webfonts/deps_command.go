package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"webfonts/internal/deps"
	"webfonts/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and directory access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			checks := preflight.RunAll(cfg)
			tools := preflight.CheckSystemDeps(cfg)

			failed := len(preflight.Failed(checks)) > 0 || deps.MissingRequired(tools)

			if ctx.JSONMode() {
				if err := writeJSON(cmd, map[string]any{
					"checks": checks,
					"tools":  tools,
					"ok":     !failed,
				}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, tool := range tools {
					kind := statusOK
					message := tool.Path
					if !tool.Available {
						kind = statusError
						if tool.Optional {
							kind = statusWarn
						}
						message = tool.Detail
					}
					fmt.Fprintln(out, renderStatusLine(tool.Name, kind, message, colorize))
				}
				for _, check := range checks {
					kind := statusOK
					if !check.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
				}
			}

			if failed {
				return errors.New("dependency check failed")
			}
			return nil
		},
	}
}
