package domain

import "time"

// TicketHistory is an immutable record of one status change.
type TicketHistory struct {
	ID        int64
	TicketID  TicketID
	ChangedBy UserID
	OldStatus TicketStatus
	NewStatus TicketStatus
	CreatedAt time.Time
}
