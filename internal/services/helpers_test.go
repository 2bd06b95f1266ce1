package services

import (
	"context"
	"testing"
	"time"

	"cruisebooking/internal/domain/models"
	"cruisebooking/internal/events"
	"cruisebooking/internal/repositories"
)

var testNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *repositories.MemoryStore
	events   *events.Recorder
	bookings BookingService
	payments PaymentService
}

func newTestEnv(t *testing.T, its ...models.Itinerary) *testEnv {
	t.Helper()
	store := repositories.NewMemoryStore()
	if len(its) == 0 {
		its = []models.Itinerary{sampleItinerary()}
	}
	err := store.InTx(context.Background(), func(tx repositories.Tx) error {
		for _, it := range its {
			if err := tx.UpsertItinerary(context.Background(), it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed error: %v", err)
	}

	rec := &events.Recorder{}
	clock := func() time.Time { return testNow }
	bookings := BookingService{
		Store:      store,
		Events:     rec,
		Locks:      NewKeyedMutex(),
		Now:        clock,
		Currency:   "BRL",
		SigningKey: []byte("test-key"),
	}
	return &testEnv{
		store:    store,
		events:   rec,
		bookings: bookings,
		payments: PaymentService{
			Bookings:    bookings,
			Store:       store,
			Gateway:     FixedGateway{Approve: true},
			LinkBaseURL: "http://pay.test",
			WebhookKey:  []byte("hook-key"),
			Now:         clock,
		},
	}
}

// sampleItinerary has cabin_capacity 4, two cabins left and costs 1000 per cabin.
func sampleItinerary() models.Itinerary {
	return models.Itinerary{
		ID:              1,
		Origin:          "Santos",
		Destination:     "Caribe",
		ShipName:        "MSC Seaview",
		ReturnPort:      "Santos",
		PlacesVisited:   models.StringList{"Búzios", "Salvador", "Ilhéus"},
		NumberOfNights:  7,
		CabinCost:       1000,
		CabinCapacity:   4,
		TripContinent:   "América do Sul",
		Date:            "2026-12-01",
		DepartureDates:  models.StringList{"2026-12-15"},
		AvailableCabins: 2,
	}
}

func (e *testEnv) available(t *testing.T, id int64) int {
	t.Helper()
	var n int
	_ = e.store.InTx(context.Background(), func(tx repositories.Tx) error {
		it, err := tx.GetItinerary(context.Background(), id, false)
		if err != nil {
			t.Fatalf("get itinerary: %v", err)
		}
		n = it.AvailableCabins
		return nil
	})
	return n
}

func (e *testEnv) book(t *testing.T, cabins, passengers int) models.Booking {
	t.Helper()
	b, err := e.bookings.Create(context.Background(), CreateBookingInput{
		DestinationID:      1,
		BoardingDate:       "2026-12-01",
		NumberOfCabins:     cabins,
		NumberOfPassengers: passengers,
		CustomerName:       "Ana Souza",
		CustomerEmail:      "ana@example.com",
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}
