package domain

import (
	"strings"
	"time"
)

// TicketID is the store-assigned surrogate key of a ticket.
type TicketID int64

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusClosed     TicketStatus = "Closed"
)

// TicketStatuses lists every valid status.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed}

// Valid reports whether s is a defined status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	default:
		return false
	}
}

// NormalizeStatus maps shell input such as "in progress" or "closed" onto the
// canonical spelling. Unknown input is returned unchanged.
func NormalizeStatus(s string) TicketStatus {
	for _, st := range TicketStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st
		}
	}
	return TicketStatus(s)
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketPriorities lists every valid priority.
var TicketPriorities = []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh}

// Valid reports whether p is a defined priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	default:
		return false
	}
}

// NormalizePriority maps shell input onto the canonical spelling.
func NormalizePriority(s string) TicketPriority {
	for _, p := range TicketPriorities {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p
		}
	}
	return TicketPriority(s)
}

// Ticket is a unit of reported work.
type Ticket struct {
	ID          TicketID
	OwnerID     UserID
	Category    string
	Description string
	Priority    TicketPriority
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketStats aggregates ticket counts by status. Open+InProgress+Closed
// always equals Total.
type TicketStats struct {
	Total      int64
	Open       int64
	InProgress int64
	Closed     int64
}
