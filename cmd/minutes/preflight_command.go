package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"minutes/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check directories and analysis API access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var results []preflight.Result
			if offline {
				results = preflight.RunLocal(cfg)
			} else {
				results = preflight.RunAll(cmd.Context(), cfg)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, r := range results {
				fmt.Fprintln(out, renderStatusLine(r.Name, okKind(r.Passed), r.Detail, colorize))
			}
			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the network check against the analysis API")
	return cmd
}
