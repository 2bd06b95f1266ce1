package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"cruisebooking/internal/domain"
	"cruisebooking/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return NewSQLStore(sqlx.NewDb(mockDB, "mysql")), mock
}

var itineraryRowColumns = []string{
	"id", "origin", "destination", "ship_name", "return_port", "places_visited",
	"number_of_nights", "cabin_cost", "cabin_capacity", "trip_continent", "departure_date",
	"departure_dates", "available_cabins",
}

func TestGetItineraryForUpdate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM itineraries WHERE id = \? FOR UPDATE`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(itineraryRowColumns).AddRow(
			99, "Veneza", "Mar Adriático", "Costa Deliziosa", "Veneza", `["Veneza","Split"]`,
			7, 4150.0, 2, "Europa", "2026-09-15", `["2026-10-01"]`, 5,
		))
	mock.ExpectCommit()

	var got models.Itinerary
	err := store.InTx(context.Background(), func(tx Tx) error {
		var err error
		got, err = tx.GetItinerary(context.Background(), 99, true)
		return err
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ShipName != "Costa Deliziosa" || len(got.PlacesVisited) != 2 || !got.HasDepartureDate("2026-10-01") {
		t.Fatalf("unexpected itinerary %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetItineraryMissingIsUnknown(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM itineraries WHERE id = \?`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(itineraryRowColumns))
	mock.ExpectRollback()

	err := store.InTx(context.Background(), func(tx Tx) error {
		_, err := tx.GetItinerary(context.Background(), 1, false)
		return err
	})
	if !domain.IsNotFound(err) || !errors.Is(err, domain.ErrUnknownItinerary) {
		t.Fatalf("expected unknown itinerary, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdjustAvailableCabinsGuardsAgainstOversell(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE itineraries SET available_cabins = available_cabins \+ \? WHERE id = \? AND available_cabins \+ \? >= 0`).
		WithArgs(-3, int64(7), -3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.InTx(context.Background(), func(tx Tx) error {
		return tx.AdjustAvailableCabins(context.Background(), 7, -3)
	})
	if !errors.Is(err, domain.ErrInsufficientInventory) {
		t.Fatalf("expected insufficient inventory, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertBookingAndReserveCommitTogether(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE itineraries SET available_cabins`).
		WithArgs(-2, int64(99), -2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.InTx(context.Background(), func(tx Tx) error {
		if err := tx.AdjustAvailableCabins(context.Background(), 99, -2); err != nil {
			return err
		}
		return tx.InsertBooking(context.Background(), models.Booking{
			ID: "RES-0A1B2C3D", UUID: "u", DestinationID: 99, Origin: "Veneza",
			BoardingDate: "2026-09-15", NumberOfCabins: 2, NumberOfPassengers: 3,
			TotalCost: 8300, Status: models.BookingBooked, CreatedAt: now, UpdatedAt: now,
		})
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListBookingsFilters(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE customer_email = \? AND status = \? ORDER BY created_at DESC`).
		WithArgs("ana@example.com", "PAID").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "uuid", "destination_id", "origin", "boarding_date", "number_of_cabins",
			"number_of_passengers", "customer_name", "customer_email", "total_cost", "status",
			"inventory_released", "created_at", "updated_at",
		}).AddRow("RES-00000001", "u1", 99, "Veneza", "2026-09-15", 1, 2, "Ana", "ana@example.com", 4150.0, "PAID", false, now, now))
	mock.ExpectCommit()

	var got []models.Booking
	err := store.InTx(context.Background(), func(tx Tx) error {
		var err error
		got, err = tx.ListBookings(context.Background(), models.BookingFilter{CustomerEmail: "ana@example.com", Status: models.BookingPaid})
		return err
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].Status != models.BookingPaid {
		t.Fatalf("unexpected bookings %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLatestPaymentNone(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM payments WHERE booking_id = \?`).
		WithArgs("RES-00000001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := store.InTx(context.Background(), func(tx Tx) error {
		_, err := tx.LatestPayment(context.Background(), "RES-00000001")
		return err
	})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddSubscriberIdempotent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM marketing_subscribers`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	var added bool
	err := store.InTx(context.Background(), func(tx Tx) error {
		var err error
		added, err = tx.AddSubscriber(context.Background(), "user-1", time.Now())
		return err
	})
	if err != nil || added {
		t.Fatalf("expected existing subscriber to be a no-op, got added=%v err=%v", added, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
