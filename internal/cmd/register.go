package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/style"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Register a new account",
		Long: `Register a new account and prompt for its password.

Usernames are at least 4 letters or digits. Passwords need 6 or more
characters including a letter and a digit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, rt *Runtime) error {
				password, err := readPassword(cmd, "New password")
				if err != nil {
					return err
				}
				identity, err := rt.Auth.Register(ctx, args[0], password, domain.NormalizeRole(role))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Registered %s as %s (id %d)\n",
					style.SuccessPrefix, style.Bold.Render(identity.Username), identity.Role, identity.UserID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", string(domain.RoleEmployee), "Account role: Employee or Admin")
	return cmd
}
