package repository

import (
	"context"
	"database/sql"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketHistoryRepository reads status change entries. Rows are written by
// TicketRepository.UpdateStatus inside its transaction.
type TicketHistoryRepository interface {
	ListByTicket(ctx context.Context, ticketID domain.TicketID) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	db *sql.DB
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(db *sql.DB) TicketHistoryRepository {
	return &ticketHistoryRepository{db: db}
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID domain.TicketID) ([]domain.TicketHistory, error) {
	const query = `
        SELECT id, ticket_id, changed_by, old_status, new_status, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, int64(ticketID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketHistory{}
	for rows.Next() {
		var history domain.TicketHistory
		if err := rows.Scan(
			&history.ID,
			&history.TicketID,
			&history.ChangedBy,
			&history.OldStatus,
			&history.NewStatus,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}
