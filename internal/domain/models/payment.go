package models

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRejected PaymentStatus = "REJECTED"
)

// Payment is one settlement attempt for a booking. Only the last four
// card digits are ever kept.
type Payment struct {
	ID            string        `json:"id" db:"id"`
	BookingID     string        `json:"booking_id" db:"booking_id"`
	Amount        float64       `json:"amount" db:"amount"`
	Currency      string        `json:"currency" db:"currency"`
	Status        PaymentStatus `json:"status" db:"status"`
	TransactionID string        `json:"transaction_id,omitempty" db:"transaction_id"`
	CardLast4     string        `json:"card_last4,omitempty" db:"card_last4"`
	Signature     string        `json:"signature" db:"signature"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// Outcome is the network's verdict for one payment.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// PaymentStatus maps an outcome to the payment status it settles into.
func (o Outcome) PaymentStatus() PaymentStatus {
	if o == OutcomeSuccess {
		return PaymentPaid
	}
	return PaymentRejected
}

// Settlement carries the network result into the booking lifecycle.
type Settlement struct {
	Outcome       Outcome
	TransactionID string
	CardLast4     string
}

// PaymentHandle is returned to the client when a payment is initiated.
type PaymentHandle struct {
	PaymentID   string  `json:"paymentId"`
	PaymentLink string  `json:"paymentLink"`
	BookingID   string  `json:"bookingId"`
	Amount      float64 `json:"amount"`
}
