package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload. Priority is matched case-insensitively.
type CreateTicketRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// TicketResponse represents a ticket.
type TicketResponse struct {
	ID          domain.TicketID       `json:"id"`
	OwnerID     domain.UserID         `json:"owner_id"`
	Category    string                `json:"category"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketHistoryResponse is one status change.
type TicketHistoryResponse struct {
	ID        int64               `json:"id"`
	ChangedBy domain.UserID       `json:"changed_by"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	CreatedAt time.Time           `json:"created_at"`
}

// TicketStatsResponse carries per-status counts.
type TicketStatsResponse struct {
	Total      int64 `json:"total"`
	Open       int64 `json:"open"`
	InProgress int64 `json:"in_progress"`
	Closed     int64 `json:"closed"`
}

// NewTicketResponse maps a ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Category:    t.Category,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTicketListResponse maps tickets, never returning nil.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

// NewTicketHistoryResponse maps history rows.
func NewTicketHistoryResponse(history []domain.TicketHistory) []TicketHistoryResponse {
	items := make([]TicketHistoryResponse, 0, len(history))
	for _, h := range history {
		items = append(items, TicketHistoryResponse{
			ID:        h.ID,
			ChangedBy: h.ChangedBy,
			OldStatus: h.OldStatus,
			NewStatus: h.NewStatus,
			CreatedAt: h.CreatedAt,
		})
	}
	return items
}

// NewTicketStatsResponse maps stats.
func NewTicketStatsResponse(s domain.TicketStats) TicketStatsResponse {
	return TicketStatsResponse{Total: s.Total, Open: s.Open, InProgress: s.InProgress, Closed: s.Closed}
}
