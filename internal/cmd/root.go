// Package cmd implements the helpdesk administration CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/style"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

type rootOptions struct {
	factory  RuntimeFactory
	username string
}

// NewRootCmd assembles the command tree.
func NewRootCmd(factory RuntimeFactory) *cobra.Command {
	opts := &rootOptions{factory: factory}

	rootCmd := &cobra.Command{
		Use:   "helpdesk",
		Short: "Administer the IT helpdesk",
		Long: `Administer the IT helpdesk from the terminal.

Commands that act on tickets authenticate as --user and prompt for the
password. Pipe the password on stdin for scripted use.

Examples:
  helpdesk migrate
  helpdesk register alice123 --role Employee
  helpdesk tickets create --user alice123 --category Network --description "No wifi" --priority High
  helpdesk tickets status 1 Closed --user admin1
  helpdesk stats --user admin1`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.username, "user", "u", "", "Username to act as")

	rootCmd.AddCommand(
		newMigrateCmd(opts),
		newRegisterCmd(opts),
		newTicketsCmd(opts),
		newStatsCmd(opts),
		newExportCmd(opts),
	)
	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := NewRootCmd(DefaultRuntime)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", style.ErrorPrefix, describeError(err))
		return 1
	}
	return 0
}

// run builds a runtime for the duration of one command.
func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, rt *Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := o.factory(ctx)
	if err != nil {
		return err
	}
	if rt.Close != nil {
		defer rt.Close()
	}
	return fn(ctx, rt)
}

// authenticate resolves --user and a prompted password into an identity.
func (o *rootOptions) authenticate(ctx context.Context, cmd *cobra.Command, rt *Runtime) (domain.Identity, error) {
	if o.username == "" {
		return domain.Identity{}, errors.New("--user is required for this command")
	}
	password, err := readPassword(cmd, "Password for "+o.username)
	if err != nil {
		return domain.Identity{}, err
	}
	return rt.Auth.Authenticate(ctx, o.username, password)
}

func describeError(err error) string {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		if field, ok := domainErr.Details["field"]; ok {
			return fmt.Sprintf("%s (%v)", domainErr.Message, field)
		}
		return domainErr.Message
	}
	return err.Error()
}
