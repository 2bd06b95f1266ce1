package repositories

import (
	"context"
	"fmt"

	"cruisebooking/internal/domain/models"
)

func (t *sqlTx) InsertTickets(ctx context.Context, tickets []models.Ticket) error {
	query := `INSERT INTO tickets (booking_id, id, uuid, cabin_number, departure_date, issued_at)
		VALUES (:booking_id, :id, :uuid, :cabin_number, :departure_date, :issued_at)`
	for _, tk := range tickets {
		if _, err := t.tx.NamedExecContext(ctx, query, tk); err != nil {
			return fmt.Errorf("insert ticket %s/%d: %w", tk.BookingID, tk.ID, err)
		}
	}
	return nil
}

func (t *sqlTx) ListTickets(ctx context.Context, bookingID string) ([]models.Ticket, error) {
	out := []models.Ticket{}
	query := `SELECT booking_id, id, uuid, cabin_number, departure_date, issued_at
		FROM tickets WHERE booking_id = ? ORDER BY id`
	if err := t.tx.SelectContext(ctx, &out, t.q(query, false), bookingID); err != nil {
		return nil, fmt.Errorf("list tickets for booking %s: %w", bookingID, err)
	}
	return out, nil
}
