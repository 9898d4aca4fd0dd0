package cmd

import (
	"fmt"
	"io"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/style"
)

func renderTickets(w io.Writer, tickets []domain.Ticket) {
	if len(tickets) == 0 {
		fmt.Fprintln(w, style.Dim.Render("No tickets."))
		return
	}
	fmt.Fprintln(w, style.Bold.Render(fmt.Sprintf("%-6s %-6s %-14s %-8s %-12s %s", "ID", "USER", "CATEGORY", "PRIORITY", "STATUS", "DESCRIPTION")))
	for _, t := range tickets {
		// pad before styling so escape codes do not break alignment
		fmt.Fprintf(w, "%-6d %-6d %-14s %s %s %s\n",
			t.ID, t.OwnerID, t.Category,
			style.PriorityStyle(t.Priority).Render(fmt.Sprintf("%-8s", t.Priority)),
			style.StatusStyle(t.Status).Render(fmt.Sprintf("%-12s", t.Status)),
			t.Description)
	}
}

func renderTicket(w io.Writer, prefix string, t *domain.Ticket) {
	fmt.Fprintf(w, "%s Ticket #%d %s [%s, %s]\n", prefix, t.ID, t.Category, style.Priority(t.Priority), style.Status(t.Status))
}

func renderHistory(w io.Writer, history []domain.TicketHistory) {
	if len(history) == 0 {
		fmt.Fprintln(w, style.Dim.Render("No status changes."))
		return
	}
	for _, h := range history {
		fmt.Fprintf(w, "%s %s %s %s %s\n",
			style.Dim.Render(h.CreatedAt.Format("2006-01-02 15:04:05")),
			style.Status(h.OldStatus), style.ArrowPrefix, style.Status(h.NewStatus),
			style.Dim.Render(fmt.Sprintf("by user %d", h.ChangedBy)))
	}
}

func renderStats(w io.Writer, s domain.TicketStats) {
	fmt.Fprintf(w, "%s %d\n", style.Bold.Render(fmt.Sprintf("%-12s", "Total")), s.Total)
	for _, row := range []struct {
		status domain.TicketStatus
		count  int64
	}{
		{domain.TicketStatusOpen, s.Open},
		{domain.TicketStatusInProgress, s.InProgress},
		{domain.TicketStatusClosed, s.Closed},
	} {
		fmt.Fprintf(w, "%s %d\n", style.StatusStyle(row.status).Render(fmt.Sprintf("%-12s", row.status)), row.count)
	}
}
