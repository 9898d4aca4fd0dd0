package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ticket counts by status (Admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, rt *Runtime) error {
				caller, err := opts.authenticate(ctx, cmd, rt)
				if err != nil {
					return err
				}
				stats, err := rt.Tickets.Statistics(ctx, caller)
				if err != nil {
					return err
				}
				renderStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}
}
