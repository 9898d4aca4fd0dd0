package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/report"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows. Every operation takes the
// caller identity explicitly.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Category    string
	Description string
	Priority    domain.TicketPriority
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create opens a ticket owned by the caller.
func (s *TicketService) Create(ctx context.Context, caller domain.Identity, input TicketCreateInput) (*domain.Ticket, error) {
	if err := requireMember(caller); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	description := strings.TrimSpace(input.Description)
	if category == "" {
		return nil, apperrors.NewValidationError("category is required", map[string]any{"field": "category"})
	}
	if description == "" {
		return nil, apperrors.NewValidationError("description is required", map[string]any{"field": "description"})
	}
	if !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("priority must be Low, Medium or High", map[string]any{"field": "priority"})
	}

	ticket := &domain.Ticket{
		OwnerID:     caller.UserID,
		Category:    category,
		Description: description,
		Priority:    input.Priority,
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrUnknownOwner) {
			return nil, apperrors.NewValidationError("ticket owner does not exist", map[string]any{"user_id": caller.UserID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.New(events.EventTicketCreated, events.ActorFrom(caller), ticket.ID,
		events.TicketCreatedPayload{Category: ticket.Category, Priority: ticket.Priority}))
	return ticket, nil
}

// ListOwnedBy returns the caller's tickets in creation order.
func (s *TicketService) ListOwnedBy(ctx context.Context, caller domain.Identity) ([]domain.Ticket, error) {
	if err := requireMember(caller); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAll returns every ticket in creation order. Admin only. When statuses
// are given, only tickets in one of them are returned.
func (s *TicketService) ListAll(ctx context.Context, caller domain.Identity, statuses ...domain.TicketStatus) ([]domain.Ticket, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	for _, status := range statuses {
		if !status.Valid() {
			return nil, apperrors.NewValidationError("status must be Open, In Progress or Closed", map[string]any{"field": "status"})
		}
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{Statuses: statuses})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateStatus overwrites a ticket's status. Admin only. Any status may
// follow any other, including itself.
func (s *TicketService) UpdateStatus(ctx context.Context, caller domain.Identity, ticketID domain.TicketID, status domain.TicketStatus) (*domain.Ticket, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status must be Open, In Progress or Closed", map[string]any{"field": "status"})
	}

	ticket, history, err := s.tickets.UpdateStatus(ctx, ticketID, status, caller.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.New(events.EventTicketStatusChanged, events.ActorFrom(caller), ticket.ID,
		events.TicketStatusChangedPayload{OldStatus: history.OldStatus, NewStatus: history.NewStatus}))
	return ticket, nil
}

// Statistics counts tickets by status. Admin only.
func (s *TicketService) Statistics(ctx context.Context, caller domain.Identity) (domain.TicketStats, error) {
	if err := requireAdmin(caller); err != nil {
		return domain.TicketStats{}, err
	}
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return domain.TicketStats{}, apperrors.MapError(err)
	}
	return stats, nil
}

// ListHistory returns the status changes of a ticket, oldest first. Admin only.
func (s *TicketService) ListHistory(ctx context.Context, caller domain.Identity, ticketID domain.TicketID) ([]domain.TicketHistory, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	history, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return history, nil
}

// ExportCSV writes every ticket to w as CSV. Admin only. destination is
// recorded in the audit trail.
func (s *TicketService) ExportCSV(ctx context.Context, caller domain.Identity, w io.Writer, destination string) (int, error) {
	tickets, err := s.ListAll(ctx, caller)
	if err != nil {
		return 0, err
	}
	if err := report.WriteTicketsCSV(w, tickets); err != nil {
		return 0, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.New(events.EventTicketsExported, events.ActorFrom(caller), 0,
		events.TicketsExportedPayload{Rows: len(tickets), Destination: destination}))
	return len(tickets), nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}

// requireMember accepts any defined role.
func requireMember(caller domain.Identity) error {
	switch caller.Role {
	case domain.RoleEmployee, domain.RoleAdmin:
		return nil
	default:
		return apperrors.NewForbidden("unknown role")
	}
}

func requireAdmin(caller domain.Identity) error {
	switch caller.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleEmployee:
		return apperrors.NewForbidden("admin role required")
	default:
		return apperrors.NewForbidden("unknown role")
	}
}
