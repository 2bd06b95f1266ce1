package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cruisebooking/internal/domain"
	"cruisebooking/internal/domain/models"
)

const bookingColumns = `id, uuid, destination_id, origin, boarding_date, number_of_cabins,
	number_of_passengers, customer_name, customer_email, total_cost, status,
	inventory_released, created_at, updated_at`

func (t *sqlTx) InsertBooking(ctx context.Context, b models.Booking) error {
	query := `INSERT INTO bookings (` + bookingColumns + `) VALUES (
		:id, :uuid, :destination_id, :origin, :boarding_date, :number_of_cabins,
		:number_of_passengers, :customer_name, :customer_email, :total_cost, :status,
		:inventory_released, :created_at, :updated_at)`
	if _, err := t.tx.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("insert booking %s: %w", b.ID, err)
	}
	return nil
}

func (t *sqlTx) GetBooking(ctx context.Context, id string, forUpdate bool) (models.Booking, error) {
	var b models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	if err := t.tx.GetContext(ctx, &b, t.q(query, forUpdate), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, fmt.Errorf("get booking %s: %w", id, err)
	}
	return b, nil
}

// UpdateBooking writes the mutable lifecycle fields only.
func (t *sqlTx) UpdateBooking(ctx context.Context, b models.Booking) error {
	query := `UPDATE bookings SET status = :status, inventory_released = :inventory_released,
		updated_at = :updated_at WHERE id = :id`
	res, err := t.tx.NamedExecContext(ctx, query, b)
	if err != nil {
		return fmt.Errorf("update booking %s: %w", b.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundError{Resource: "booking"}
	}
	return nil
}

func (t *sqlTx) ListBookings(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	var (
		where []string
		args  []any
	)
	if email := strings.TrimSpace(f.CustomerEmail); email != "" {
		where = append(where, "customer_email = ?")
		args = append(args, email)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	out := []models.Booking{}
	if err := t.tx.SelectContext(ctx, &out, t.q(query, false), args...); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}
