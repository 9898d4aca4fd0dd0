package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered      EventType = "user_registered"
	EventLoginSucceeded      EventType = "login_succeeded"
	EventLoginFailed         EventType = "login_failed"
	EventLogout              EventType = "logout"
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketsExported     EventType = "tickets_exported"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventUserRegistered,
	EventLoginSucceeded,
	EventLoginFailed,
	EventLogout,
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketsExported,
}

// Actor identifies who caused an event. Failed logins carry only the
// attempted username.
type Actor struct {
	UserID   domain.UserID `json:"user_id,omitempty"`
	Username string        `json:"username"`
	Role     domain.Role   `json:"role,omitempty"`
}

// ActorFrom converts a caller identity.
func ActorFrom(identity domain.Identity) Actor {
	return Actor{UserID: identity.UserID, Username: identity.Username, Role: identity.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	TicketID  domain.TicketID `json:"ticket_id,omitempty"`
	Actor     Actor           `json:"actor"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   any             `json:"payload,omitempty"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, actor Actor, ticketID domain.TicketID, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Category string                `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketsExportedPayload payload.
type TicketsExportedPayload struct {
	Rows        int    `json:"rows"`
	Destination string `json:"destination,omitempty"`
}
