package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cruisebooking/internal/domain"
	"cruisebooking/internal/domain/models"
	"cruisebooking/internal/repositories"
	"cruisebooking/internal/utils"
)

// PaymentService is the payment boundary: it hands out payment links, checks
// card data before anything reaches the network and feeds the network's
// answer into the booking lifecycle.
type PaymentService struct {
	Bookings    BookingService
	Store       repositories.Store
	Gateway     Gateway
	LinkBaseURL string
	WebhookKey  []byte
	Now         func() time.Time
	RequestID   string
}

// CardSubmission is what the customer types on the payment page.
type CardSubmission struct {
	Number      string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
	HolderName  string
}

// PaymentResult is returned after a card submission settles.
type PaymentResult struct {
	Status    models.PaymentStatus `json:"status"`
	BookingID string               `json:"booking_id"`
	Reason    string               `json:"reason,omitempty"`
	Payment   *models.Payment      `json:"payment,omitempty"`
	Booking   models.Booking       `json:"booking"`
}

// WebhookNotification is an asynchronous settlement pushed by the network.
type WebhookNotification struct {
	PaymentID     string `json:"payment_id"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	CardLast4     string `json:"card_last4"`
	Signature     string `json:"signature"`
}

// Canonical is the byte string the webhook signature covers.
func (n WebhookNotification) Canonical() string {
	return strings.Join([]string{n.PaymentID, strings.ToLower(n.Status), n.TransactionID, n.CardLast4}, "|")
}

// Initiate opens a payment for the booking and returns the link the payment
// page is served from. No network call is made.
func (s PaymentService) Initiate(ctx context.Context, bookingID string) (models.PaymentHandle, error) {
	bookings := s.Bookings
	bookings.RequestID = s.RequestID
	p, err := bookings.RequestPayment(ctx, bookingID)
	if err != nil {
		return models.PaymentHandle{}, err
	}
	return models.PaymentHandle{
		PaymentID:   p.ID,
		PaymentLink: fmt.Sprintf("%s/api/payments/%s", strings.TrimRight(s.LinkBaseURL, "/"), p.ID),
		BookingID:   p.BookingID,
		Amount:      p.Amount,
	}, nil
}

// ValidateCardExpiry accepts a card through the end of its expiry month.
// Two-digit years are read as 20YY.
func ValidateCardExpiry(month, year int, asOf time.Time) error {
	if month < 1 || month > 12 {
		return domain.ValidationError{Field: "expiry_month", Msg: "must be between 1 and 12"}
	}
	if year < 0 {
		return domain.ValidationError{Field: "expiry_year", Msg: "must be positive"}
	}
	if year < 100 {
		year += 2000
	}
	asOf = asOf.UTC()
	curYear, curMonth := asOf.Year(), int(asOf.Month())
	if year > curYear || (year == curYear && month >= curMonth) {
		return nil
	}
	return domain.ValidationError{
		Field: "expiry",
		Msg:   fmt.Sprintf("card expired %02d/%d", month, year),
		Err:   domain.ErrExpiredCard,
	}
}

func validateCard(card CardSubmission) (string, error) {
	number := utils.DigitsOnly(card.Number)
	if number != strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(card.Number), " ", ""), "-", "") {
		return "", domain.ValidationError{Field: "number", Msg: "must contain digits only"}
	}
	if len(number) < 13 || len(number) > 19 {
		return "", domain.ValidationError{Field: "number", Msg: "must have 13 to 19 digits"}
	}
	cvv := strings.TrimSpace(card.CVV)
	if len(cvv) < 3 || len(cvv) > 4 || utils.DigitsOnly(cvv) != cvv {
		return "", domain.ValidationError{Field: "cvv", Msg: "must have 3 or 4 digits"}
	}
	if utils.NormalizeSpace(card.HolderName) == "" {
		return "", domain.ValidationError{Field: "holder_name", Msg: "is required"}
	}
	return number, nil
}

// Submit validates the card, asks the gateway to authorize the payment and
// settles the booking with the answer. Card checks run before the gateway is
// contacted; a gateway error leaves the payment PENDING. The booking lock is
// held from the PENDING check through settlement, so one payment reaches the
// gateway at most once.
func (s PaymentService) Submit(ctx context.Context, paymentID string, card CardSubmission) (PaymentResult, error) {
	number, err := validateCard(card)
	if err != nil {
		return PaymentResult{}, err
	}
	if err := ValidateCardExpiry(card.ExpiryMonth, card.ExpiryYear, s.now()); err != nil {
		return PaymentResult{}, err
	}

	p, err := s.Get(ctx, paymentID)
	if err != nil {
		return PaymentResult{}, err
	}

	bookings := s.Bookings
	bookings.RequestID = s.RequestID
	unlock := bookings.lock(p.BookingID)
	defer unlock()

	if p, err = s.Get(ctx, paymentID); err != nil {
		return PaymentResult{}, err
	}
	if p.Status != models.PaymentPending {
		return PaymentResult{}, domain.TransitionError{
			BookingID: p.BookingID, From: string(p.Status), Action: "submit payment",
			Err: fmt.Errorf("payment %s already %s: %w", p.ID, p.Status, domain.ErrConflictingSettlement),
		}
	}

	last4 := utils.LastN(number, 4)
	res, err := s.Gateway.Authorize(ctx, AuthorizationRequest{
		PaymentID:  p.ID,
		Amount:     p.Amount,
		Currency:   p.Currency,
		CardLast4:  last4,
		HolderName: utils.NormalizeSpace(card.HolderName),
	})
	if err != nil {
		utils.LogError(s.RequestID, "payment", "authorize", err)
		return PaymentResult{}, domain.InternalError{Msg: "payment network unavailable", Err: err}
	}

	handle := models.PaymentHandle{PaymentID: p.ID, BookingID: p.BookingID, Amount: p.Amount}
	st := s.Settle(handle, res)
	st.CardLast4 = last4

	b, err := bookings.settleLocked(ctx, p.BookingID, st)
	if err != nil {
		return PaymentResult{}, err
	}
	utils.LogEvent(s.RequestID, "payment", "submit", fmt.Sprintf("payment_id=%s booking_id=%s outcome=%s", p.ID, p.BookingID, st.Outcome))

	return PaymentResult{
		Status:    st.Outcome.PaymentStatus(),
		BookingID: b.ID,
		Reason:    res.Reason,
		Payment:   b.Payment,
		Booking:   b,
	}, nil
}

// Settle maps a network answer to the settlement fed into the lifecycle.
func (s PaymentService) Settle(handle models.PaymentHandle, res GatewayResult) models.Settlement {
	st := models.Settlement{Outcome: models.OutcomeFailure, TransactionID: res.TransactionID}
	if res.Approved {
		st.Outcome = models.OutcomeSuccess
	}
	return st
}

// HandleWebhook settles a payment from a signed network notification.
func (s PaymentService) HandleWebhook(ctx context.Context, n WebhookNotification) (models.Booking, error) {
	if !utils.VerifySignature(s.WebhookKey, []byte(n.Canonical()), n.Signature) {
		return models.Booking{}, domain.ValidationError{Field: "signature", Msg: "does not match payload", Err: domain.ErrInvalidSignature}
	}

	var outcome models.Outcome
	switch strings.ToLower(strings.TrimSpace(n.Status)) {
	case "approved", "authorized", "paid", "success":
		outcome = models.OutcomeSuccess
	case "rejected", "declined", "failure", "failed":
		outcome = models.OutcomeFailure
	default:
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "unknown payment status " + n.Status}
	}

	p, err := s.Get(ctx, n.PaymentID)
	if err != nil {
		return models.Booking{}, err
	}

	bookings := s.Bookings
	bookings.RequestID = s.RequestID
	b, err := bookings.SettlePayment(ctx, p.BookingID, models.Settlement{
		Outcome:       outcome,
		TransactionID: n.TransactionID,
		CardLast4:     n.CardLast4,
	})
	if err != nil {
		return models.Booking{}, err
	}
	utils.LogEvent(s.RequestID, "payment", "webhook", fmt.Sprintf("payment_id=%s booking_id=%s outcome=%s", p.ID, p.BookingID, outcome))
	return b, nil
}

// SignWebhook is used by the payment network side to sign notifications.
func SignWebhook(key []byte, n WebhookNotification) string {
	return utils.Sign(key, []byte(n.Canonical()))
}

func (s PaymentService) Get(ctx context.Context, paymentID string) (models.Payment, error) {
	var p models.Payment
	err := s.store().InTx(ctx, func(tx repositories.Tx) error {
		var err error
		p, err = tx.GetPayment(ctx, paymentID, false)
		return err
	})
	return p, err
}

func (s PaymentService) store() repositories.Store {
	if s.Store != nil {
		return s.Store
	}
	return s.Bookings.Store
}

func (s PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}
