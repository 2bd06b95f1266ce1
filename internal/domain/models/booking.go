package models

import "time"

type BookingStatus string

const (
	BookingCreated   BookingStatus = "CREATED"
	BookingBooked    BookingStatus = "BOOKED"
	BookingPaid      BookingStatus = "PAID"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingCreated: {BookingBooked},
	BookingBooked:  {BookingPaid, BookingRejected, BookingCancelled},
	BookingPaid:    {BookingCancelled, BookingCompleted},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to BookingStatus) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal is true for statuses that accept no further transition.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingRejected, BookingCancelled, BookingCompleted:
		return true
	default:
		return false
	}
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingCreated, BookingBooked, BookingPaid, BookingRejected, BookingCancelled, BookingCompleted:
		return true
	default:
		return false
	}
}

// Booking is a customer's reservation of cabins on one itinerary departure.
// TotalCost is fixed at creation and never recomputed.
type Booking struct {
	ID                 string        `json:"id" db:"id"`
	UUID               string        `json:"uuid" db:"uuid"`
	DestinationID      int64         `json:"destination_id" db:"destination_id"`
	Origin             string        `json:"origin" db:"origin"`
	BoardingDate       string        `json:"boarding_date" db:"boarding_date"`
	NumberOfCabins     int           `json:"number_of_cabins" db:"number_of_cabins"`
	NumberOfPassengers int           `json:"number_of_passengers" db:"number_of_passengers"`
	CustomerName       string        `json:"customer_name" db:"customer_name"`
	CustomerEmail      string        `json:"customer_email" db:"customer_email"`
	TotalCost          float64       `json:"total_cost" db:"total_cost"`
	Status             BookingStatus `json:"status" db:"status"`
	InventoryReleased  bool          `json:"-" db:"inventory_released"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`

	Payment *Payment `json:"payment,omitempty" db:"-"`
	Tickets []Ticket `json:"tickets,omitempty" db:"-"`
}

// BookingFilter narrows booking listings. Zero values disable a criterion.
type BookingFilter struct {
	CustomerEmail string
	Status        BookingStatus
}

// Ticket is issued once per cabin when a booking is paid.
type Ticket struct {
	ID            int       `json:"id" db:"id"`
	UUID          string    `json:"uuid" db:"uuid"`
	BookingID     string    `json:"booking_id" db:"booking_id"`
	CabinNumber   string    `json:"cabin_number" db:"cabin_number"`
	DepartureDate string    `json:"departure_date" db:"departure_date"`
	IssuedAt      time.Time `json:"issued_at" db:"issued_at"`
}
