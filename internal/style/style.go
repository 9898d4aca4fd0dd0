// Package style provides consistent terminal styling using Lipgloss.
package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Palette used by the helpdesk CLI. Ticket states and priorities reuse the
// outcome colors so a closed ticket reads like a success line.
var (
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	Error   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	Info    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	Dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	Bold    = lipgloss.NewStyle().Bold(true)

	// SuccessPrefix marks completed writes, ErrorPrefix failed commands and
	// ArrowPrefix history transitions.
	SuccessPrefix = Success.Render("✓")
	ErrorPrefix   = Error.Render("✗")
	ArrowPrefix   = Info.Render("→")
)

// StatusStyle picks the color for a ticket status.
func StatusStyle(s domain.TicketStatus) lipgloss.Style {
	switch s {
	case domain.TicketStatusOpen:
		return Warning
	case domain.TicketStatusInProgress:
		return Info
	case domain.TicketStatusClosed:
		return Success
	default:
		return lipgloss.NewStyle()
	}
}

// PriorityStyle picks the color for a ticket priority.
func PriorityStyle(p domain.TicketPriority) lipgloss.Style {
	switch p {
	case domain.TicketPriorityHigh:
		return Error
	case domain.TicketPriorityMedium:
		return Warning
	case domain.TicketPriorityLow:
		return Dim
	default:
		return lipgloss.NewStyle()
	}
}

// Status renders a colored ticket status.
func Status(s domain.TicketStatus) string {
	return StatusStyle(s).Render(string(s))
}

// Priority renders a colored ticket priority.
func Priority(p domain.TicketPriority) string {
	return PriorityStyle(p).Render(string(p))
}
