package repositories

import (
	"context"
	"fmt"
	"time"

	"cruisebooking/internal/domain/models"

	"github.com/jmoiron/sqlx"
)

// Tx is the unit of work a lifecycle operation runs in. Reads with
// forUpdate lock the row until the transaction ends.
type Tx interface {
	GetItinerary(ctx context.Context, id int64, forUpdate bool) (models.Itinerary, error)
	ListItineraries(ctx context.Context) ([]models.Itinerary, error)
	UpsertItinerary(ctx context.Context, it models.Itinerary) error
	// AdjustAvailableCabins adds delta to the itinerary's available cabins and
	// fails with ErrInsufficientInventory if the result would be negative.
	AdjustAvailableCabins(ctx context.Context, id int64, delta int) error
	UpdateCabinCost(ctx context.Context, id int64, cost float64) error

	InsertBooking(ctx context.Context, b models.Booking) error
	GetBooking(ctx context.Context, id string, forUpdate bool) (models.Booking, error)
	UpdateBooking(ctx context.Context, b models.Booking) error
	ListBookings(ctx context.Context, f models.BookingFilter) ([]models.Booking, error)

	InsertPayment(ctx context.Context, p models.Payment) error
	UpdatePayment(ctx context.Context, p models.Payment) error
	GetPayment(ctx context.Context, id string, forUpdate bool) (models.Payment, error)
	LatestPayment(ctx context.Context, bookingID string) (models.Payment, error)

	InsertTickets(ctx context.Context, tickets []models.Ticket) error
	ListTickets(ctx context.Context, bookingID string) ([]models.Ticket, error)

	AddSubscriber(ctx context.Context, userID string, at time.Time) (bool, error)
	RemoveSubscriber(ctx context.Context, userID string) (bool, error)
	ListSubscribers(ctx context.Context) ([]string, error)
}

// Store runs fn atomically: every write fn makes is committed, or none is.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
}

// SQLStore is the sqlx-backed Store for mysql and postgres.
type SQLStore struct {
	DB *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&sqlTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type sqlTx struct {
	tx *sqlx.Tx
}

func (t *sqlTx) q(query string, forUpdate bool) string {
	if forUpdate {
		query += " FOR UPDATE"
	}
	return t.tx.Rebind(query)
}
