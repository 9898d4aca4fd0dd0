package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/style"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func newTicketsCmd(opts *rootOptions) *cobra.Command {
	ticketsCmd := &cobra.Command{
		Use:   "tickets",
		Short: "Create, list and update tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	ticketsCmd.AddCommand(
		newTicketsCreateCmd(opts),
		newTicketsMineCmd(opts),
		newTicketsAllCmd(opts),
		newTicketsStatusCmd(opts),
		newTicketsHistoryCmd(opts),
	)
	return ticketsCmd
}

func newTicketsCreateCmd(opts *rootOptions) *cobra.Command {
	var input struct {
		category    string
		description string
		priority    string
	}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a ticket as --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, rt *Runtime) error {
				caller, err := opts.authenticate(ctx, cmd, rt)
				if err != nil {
					return err
				}
				ticket, err := rt.Tickets.Create(ctx, caller, service.TicketCreateInput{
					Category:    input.category,
					Description: input.description,
					Priority:    domain.NormalizePriority(input.priority),
				})
				if err != nil {
					return err
				}
				renderTicket(cmd.OutOrStdout(), style.SuccessPrefix, ticket)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&input.category, "category", "", "Ticket category (e.g. Network, Hardware)")
	cmd.Flags().StringVar(&input.description, "description", "", "What is wrong")
	cmd.Flags().StringVar(&input.priority, "priority", string(domain.TicketPriorityMedium), "Low, Medium or High")
	return cmd
}

func newTicketsMineCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List tickets opened by --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, rt *Runtime) error {
				caller, err := opts.authenticate(ctx, cmd, rt)
				if err != nil {
					return err
				}
				tickets, err := rt.Tickets.ListOwnedBy(ctx, caller)
				if err != nil {
					return err
				}
				renderTickets(cmd.OutOrStdout(), tickets)
				return nil
			})
		},
	}
}

func newTicketsAllCmd(opts *rootOptions) *cobra.Command {
	var statusFlags []string
	cmd := &cobra.Command{
		Use:   "all",
		Short: "List every ticket (Admin)",
		Long: `List every ticket in creation order. Repeat --status to narrow the list.

Example:
  helpdesk tickets all --status Open --status "In Progress" --user admin1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, rt *Runtime) error {
				caller, err := opts.authenticate(ctx, cmd, rt)
				if err != nil {
					return err
				}
				statuses := make([]domain.TicketStatus, 0, len(statusFlags))
				for _, raw := range statusFlags {
					statuses = append(statuses, domain.NormalizeStatus(raw))
				}
				tickets, err := rt.Tickets.ListAll(ctx, caller, statuses...)
				if err != nil {
					return err
				}
				renderTickets(cmd.OutOrStdout(), tickets)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&statusFlags, "status", nil, "Only list tickets in this status (repeatable)")
	return cmd
}

func newTicketsStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <ticket-id> <status>",
		Short: "Set a ticket's status (Admin)",
		Long: `Set a ticket's status. Valid statuses are Open, "In Progress" and Closed.

Example:
  helpdesk tickets status 12 "In Progress" --user admin1`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			// allow an unquoted "In Progress"
			status := domain.NormalizeStatus(strings.Join(args[1:], " "))

			return opts.run(cmd, func(ctx context.Context, rt *Runtime) error {
				caller, err := opts.authenticate(ctx, cmd, rt)
				if err != nil {
					return err
				}
				ticket, err := rt.Tickets.UpdateStatus(ctx, caller, ticketID, status)
				if err != nil {
					return err
				}
				renderTicket(cmd.OutOrStdout(), style.SuccessPrefix, ticket)
				return nil
			})
		},
	}
}

func newTicketsHistoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <ticket-id>",
		Short: "Show a ticket's status changes (Admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, rt *Runtime) error {
				caller, err := opts.authenticate(ctx, cmd, rt)
				if err != nil {
					return err
				}
				history, err := rt.Tickets.ListHistory(ctx, caller, ticketID)
				if err != nil {
					return err
				}
				renderHistory(cmd.OutOrStdout(), history)
				return nil
			})
		},
	}
}

func parseTicketID(raw string) (domain.TicketID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid ticket id %q", raw), nil)
	}
	return domain.TicketID(id), nil
}
