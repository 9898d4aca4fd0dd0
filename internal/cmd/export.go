package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/style"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every ticket to a CSV file (Admin)",
		Long: `Write every ticket to a CSV file. Use -o - to print to stdout.

Defaults to REPORT_CSV_PATH (tickets_report.csv).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, rt *Runtime) error {
				caller, err := opts.authenticate(ctx, cmd, rt)
				if err != nil {
					return err
				}

				path := output
				if path == "" {
					path = rt.ReportPath
				}
				if path == "-" {
					_, err := rt.Tickets.ExportCSV(ctx, caller, cmd.OutOrStdout(), "stdout")
					return err
				}

				var buf bytes.Buffer
				rows, err := rt.Tickets.ExportCSV(ctx, caller, &buf, path)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Exported %d tickets to %s\n", style.SuccessPrefix, rows, style.Bold.Render(path))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file")
	return cmd
}
