// Package repotest provides in-memory repository implementations for tests
// of the service and HTTP layers.
package repotest

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// Store is a single in-memory backing store shared by the fakes so that
// cross-table rules (ticket owner must exist) hold.
type Store struct {
	mu       sync.Mutex
	users    map[domain.UserID]domain.User
	byName   map[string]domain.UserID
	tickets  map[domain.TicketID]domain.Ticket
	history  []domain.TicketHistory
	nextUser int64
	nextTick int64
	nextHist int64
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:   make(map[domain.UserID]domain.User),
		byName:  make(map[string]domain.UserID),
		tickets: make(map[domain.TicketID]domain.Ticket),
		now:     time.Now,
	}
}

// Users returns a UserRepository over the store.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Tickets returns a TicketRepository over the store.
func (s *Store) Tickets() repository.TicketRepository { return ticketRepo{s} }

// History returns a TicketHistoryRepository over the store.
func (s *Store) History() repository.TicketHistoryRepository { return historyRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.byName[user.Username]; exists {
		return repository.ErrUsernameTaken
	}
	r.s.nextUser++
	user.ID = domain.UserID(r.s.nextUser)
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = *user
	r.s.byName[user.Username] = user.ID
	return nil
}

func (r userRepo) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.byName[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	user := r.s.users[id]
	return &user, nil
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[ticket.OwnerID]; !ok {
		return repository.ErrUnknownOwner
	}
	r.s.nextTick++
	ticket.ID = domain.TicketID(r.s.nextTick)
	ticket.CreatedAt = r.s.now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id domain.TicketID) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &ticket, nil
}

func (r ticketRepo) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.Ticket, error) {
	return r.ListWithFilter(ctx, repository.TicketFilter{OwnerID: &ownerID})
}

func (r ticketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := []domain.Ticket{}
	// Ids are dense, so walking them yields creation order.
	for id := domain.TicketID(1); id <= domain.TicketID(r.s.nextTick); id++ {
		ticket, ok := r.s.tickets[id]
		if !ok {
			continue
		}
		if filter.OwnerID != nil && ticket.OwnerID != *filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

func (r ticketRepo) UpdateStatus(_ context.Context, id domain.TicketID, status domain.TicketStatus, changedBy domain.UserID) (*domain.Ticket, *domain.TicketHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, nil, sql.ErrNoRows
	}
	old := ticket.Status
	ticket.Status = status
	ticket.UpdatedAt = r.s.now()
	r.s.tickets[id] = ticket

	r.s.nextHist++
	history := domain.TicketHistory{
		ID:        r.s.nextHist,
		TicketID:  id,
		ChangedBy: changedBy,
		OldStatus: old,
		NewStatus: status,
		CreatedAt: ticket.UpdatedAt,
	}
	r.s.history = append(r.s.history, history)
	return &ticket, &history, nil
}

func (r ticketRepo) Stats(_ context.Context) (domain.TicketStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stats domain.TicketStats
	for _, ticket := range r.s.tickets {
		stats.Total++
		switch ticket.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats, nil
}

type historyRepo struct{ s *Store }

func (r historyRepo) ListByTicket(_ context.Context, ticketID domain.TicketID) ([]domain.TicketHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := []domain.TicketHistory{}
	for _, h := range r.s.history {
		if h.TicketID == ticketID {
			result = append(result, h)
		}
	}
	return result, nil
}

func containsStatus(list []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}
