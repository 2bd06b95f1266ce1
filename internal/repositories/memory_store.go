package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cruisebooking/internal/domain"
	"cruisebooking/internal/domain/models"
)

// MemoryStore keeps everything in process. Transactions are serialized under
// one mutex and rolled back by restoring a snapshot taken at begin.
type MemoryStore struct {
	mu   sync.Mutex
	data memData
}

type memData struct {
	itineraries map[int64]models.Itinerary
	bookings    map[string]models.Booking
	payments    map[string]models.Payment
	tickets     map[string][]models.Ticket
	subscribers map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: memData{
		itineraries: map[int64]models.Itinerary{},
		bookings:    map[string]models.Booking{},
		payments:    map[string]models.Payment{},
		tickets:     map[string][]models.Ticket{},
		subscribers: map[string]time.Time{},
	}}
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.data.clone()
	if err := fn(&memTx{d: &s.data}); err != nil {
		s.data = snap
		return err
	}
	return nil
}

func (d memData) clone() memData {
	out := memData{
		itineraries: make(map[int64]models.Itinerary, len(d.itineraries)),
		bookings:    make(map[string]models.Booking, len(d.bookings)),
		payments:    make(map[string]models.Payment, len(d.payments)),
		tickets:     make(map[string][]models.Ticket, len(d.tickets)),
		subscribers: make(map[string]time.Time, len(d.subscribers)),
	}
	for k, v := range d.itineraries {
		out.itineraries[k] = copyItinerary(v)
	}
	for k, v := range d.bookings {
		out.bookings[k] = v
	}
	for k, v := range d.payments {
		out.payments[k] = v
	}
	for k, v := range d.tickets {
		out.tickets[k] = append([]models.Ticket(nil), v...)
	}
	for k, v := range d.subscribers {
		out.subscribers[k] = v
	}
	return out
}

func copyItinerary(it models.Itinerary) models.Itinerary {
	it.PlacesVisited = append(models.StringList{}, it.PlacesVisited...)
	it.DepartureDates = append(models.StringList{}, it.DepartureDates...)
	return it
}

// memTx ignores forUpdate: the store mutex already excludes other transactions.
type memTx struct {
	d *memData
}

func (t *memTx) GetItinerary(_ context.Context, id int64, _ bool) (models.Itinerary, error) {
	it, ok := t.d.itineraries[id]
	if !ok {
		return models.Itinerary{}, domain.NotFoundError{Resource: "itinerary", Err: domain.ErrUnknownItinerary}
	}
	return copyItinerary(it), nil
}

func (t *memTx) ListItineraries(_ context.Context) ([]models.Itinerary, error) {
	out := make([]models.Itinerary, 0, len(t.d.itineraries))
	for _, it := range t.d.itineraries {
		out = append(out, copyItinerary(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) UpsertItinerary(_ context.Context, it models.Itinerary) error {
	t.d.itineraries[it.ID] = copyItinerary(it)
	return nil
}

func (t *memTx) AdjustAvailableCabins(_ context.Context, id int64, delta int) error {
	it, ok := t.d.itineraries[id]
	if !ok || it.AvailableCabins+delta < 0 {
		return domain.ValidationError{Field: "number_of_cabins", Msg: "not enough cabins available", Err: domain.ErrInsufficientInventory}
	}
	it.AvailableCabins += delta
	t.d.itineraries[id] = it
	return nil
}

func (t *memTx) UpdateCabinCost(_ context.Context, id int64, cost float64) error {
	it, ok := t.d.itineraries[id]
	if !ok {
		return domain.NotFoundError{Resource: "itinerary", Err: domain.ErrUnknownItinerary}
	}
	it.CabinCost = cost
	t.d.itineraries[id] = it
	return nil
}

func (t *memTx) InsertBooking(_ context.Context, b models.Booking) error {
	if _, ok := t.d.bookings[b.ID]; ok {
		return domain.ConflictError{Resource: "booking", Msg: "duplicate id " + b.ID}
	}
	b.Payment, b.Tickets = nil, nil
	t.d.bookings[b.ID] = b
	return nil
}

func (t *memTx) GetBooking(_ context.Context, id string, _ bool) (models.Booking, error) {
	b, ok := t.d.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (t *memTx) UpdateBooking(_ context.Context, b models.Booking) error {
	cur, ok := t.d.bookings[b.ID]
	if !ok {
		return domain.NotFoundError{Resource: "booking"}
	}
	cur.Status = b.Status
	cur.InventoryReleased = b.InventoryReleased
	cur.UpdatedAt = b.UpdatedAt
	t.d.bookings[b.ID] = cur
	return nil
}

func (t *memTx) ListBookings(_ context.Context, f models.BookingFilter) ([]models.Booking, error) {
	email := strings.TrimSpace(f.CustomerEmail)
	out := []models.Booking{}
	for _, b := range t.d.bookings {
		if email != "" && b.CustomerEmail != email {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *memTx) InsertPayment(_ context.Context, p models.Payment) error {
	if _, ok := t.d.payments[p.ID]; ok {
		return domain.ConflictError{Resource: "payment", Msg: "duplicate id " + p.ID}
	}
	t.d.payments[p.ID] = p
	return nil
}

func (t *memTx) UpdatePayment(_ context.Context, p models.Payment) error {
	cur, ok := t.d.payments[p.ID]
	if !ok {
		return domain.NotFoundError{Resource: "payment"}
	}
	cur.Status = p.Status
	cur.TransactionID = p.TransactionID
	cur.CardLast4 = p.CardLast4
	cur.Signature = p.Signature
	cur.UpdatedAt = p.UpdatedAt
	t.d.payments[p.ID] = cur
	return nil
}

func (t *memTx) GetPayment(_ context.Context, id string, _ bool) (models.Payment, error) {
	p, ok := t.d.payments[id]
	if !ok {
		return models.Payment{}, domain.NotFoundError{Resource: "payment"}
	}
	return p, nil
}

func (t *memTx) LatestPayment(_ context.Context, bookingID string) (models.Payment, error) {
	var (
		latest models.Payment
		found  bool
	)
	for _, p := range t.d.payments {
		if p.BookingID != bookingID {
			continue
		}
		if !found || p.CreatedAt.After(latest.CreatedAt) || (p.CreatedAt.Equal(latest.CreatedAt) && p.ID > latest.ID) {
			latest, found = p, true
		}
	}
	if !found {
		return models.Payment{}, domain.NotFoundError{Resource: "payment"}
	}
	return latest, nil
}

func (t *memTx) InsertTickets(_ context.Context, tickets []models.Ticket) error {
	for _, tk := range tickets {
		for _, existing := range t.d.tickets[tk.BookingID] {
			if existing.ID == tk.ID {
				return domain.ConflictError{Resource: "ticket", Msg: "duplicate ticket for booking " + tk.BookingID}
			}
		}
		t.d.tickets[tk.BookingID] = append(t.d.tickets[tk.BookingID], tk)
	}
	return nil
}

func (t *memTx) ListTickets(_ context.Context, bookingID string) ([]models.Ticket, error) {
	return append([]models.Ticket{}, t.d.tickets[bookingID]...), nil
}

func (t *memTx) AddSubscriber(_ context.Context, userID string, at time.Time) (bool, error) {
	if _, ok := t.d.subscribers[userID]; ok {
		return false, nil
	}
	t.d.subscribers[userID] = at
	return true, nil
}

func (t *memTx) RemoveSubscriber(_ context.Context, userID string) (bool, error) {
	if _, ok := t.d.subscribers[userID]; !ok {
		return false, nil
	}
	delete(t.d.subscribers, userID)
	return true, nil
}

func (t *memTx) ListSubscribers(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(t.d.subscribers))
	for id := range t.d.subscribers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
