package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketFilter narrows ticket listings. The zero value matches every ticket.
type TicketFilter struct {
	OwnerID  *domain.UserID
	Statuses []domain.TicketStatus
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id domain.TicketID) (*domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// UpdateStatus overwrites the status and records a history row in one
	// transaction. It returns sql.ErrNoRows when the ticket does not exist.
	UpdateStatus(ctx context.Context, id domain.TicketID, status domain.TicketStatus, changedBy domain.UserID) (*domain.Ticket, *domain.TicketHistory, error)
	Stats(ctx context.Context) (domain.TicketStats, error)
}

type ticketRepository struct {
	db *sql.DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db *sql.DB) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, owner_id, category, description, priority, status, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (owner_id, category, description, priority, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		int64(ticket.OwnerID),
		ticket.Category,
		ticket.Description,
		string(ticket.Priority),
		string(ticket.Status),
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if hasPgCode(err, pgForeignKeyViolation) {
		return ErrUnknownOwner
	}
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id domain.TicketID) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := scanTicket(r.db.QueryRowContext(ctx, query, int64(id)), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.Ticket, error) {
	return r.ListWithFilter(ctx, TicketFilter{OwnerID: &ownerID})
}

// ListWithFilter returns matching tickets in creation order.
func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, int64(*filter.OwnerID))
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, string(status))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY id ASC`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id domain.TicketID, status domain.TicketStatus, changedBy domain.UserID) (*domain.Ticket, *domain.TicketHistory, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var oldStatus domain.TicketStatus
	if err := tx.QueryRowContext(ctx,
		`SELECT status FROM tickets WHERE id=$1 FOR UPDATE`, int64(id),
	).Scan(&oldStatus); err != nil {
		return nil, nil, err
	}

	var ticket domain.Ticket
	if err := scanTicket(tx.QueryRowContext(ctx,
		`UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING `+ticketColumns,
		string(status), int64(id),
	), &ticket); err != nil {
		return nil, nil, err
	}

	history := domain.TicketHistory{
		TicketID:  id,
		ChangedBy: changedBy,
		OldStatus: oldStatus,
		NewStatus: status,
	}
	if err := tx.QueryRowContext(ctx, `
        INSERT INTO ticket_history (ticket_id, changed_by, old_status, new_status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`,
		int64(id), int64(changedBy), string(oldStatus), string(status),
	).Scan(&history.ID, &history.CreatedAt); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &ticket, &history, nil
}

// Stats counts tickets by status in one statement so the totals agree.
func (r *ticketRepository) Stats(ctx context.Context) (domain.TicketStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status=$1),
               COUNT(*) FILTER (WHERE status=$2),
               COUNT(*) FILTER (WHERE status=$3)
        FROM tickets`
	var stats domain.TicketStats
	err := r.db.QueryRowContext(ctx, query,
		string(domain.TicketStatusOpen),
		string(domain.TicketStatusInProgress),
		string(domain.TicketStatusClosed),
	).Scan(&stats.Total, &stats.Open, &stats.InProgress, &stats.Closed)
	return stats, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.Category,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}
