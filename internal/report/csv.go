// Package report renders ticket exports.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketsCSVHeader is the first row of every ticket export.
var TicketsCSVHeader = []string{"Ticket ID", "User ID", "Category", "Description", "Priority", "Status"}

// WriteTicketsCSV writes the header followed by one row per ticket.
func WriteTicketsCSV(w io.Writer, tickets []domain.Ticket) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TicketsCSVHeader); err != nil {
		return err
	}
	for _, t := range tickets {
		row := []string{
			strconv.FormatInt(int64(t.ID), 10),
			strconv.FormatInt(int64(t.OwnerID), 10),
			t.Category,
			t.Description,
			string(t.Priority),
			string(t.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
