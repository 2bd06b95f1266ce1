package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cruisebooking/internal/domain"
	"cruisebooking/internal/domain/models"
	"cruisebooking/internal/events"
	"cruisebooking/internal/repositories"
	"cruisebooking/internal/utils"

	"github.com/google/uuid"
)

// BookingService owns the booking state machine. Every transition for one
// booking id runs under that id's lock and inside one store transaction.
type BookingService struct {
	Store      repositories.Store
	Events     events.Publisher
	Locks      *KeyedMutex
	Now        func() time.Time
	Currency   string
	SigningKey []byte
	RequestID  string
}

type CreateBookingInput struct {
	DestinationID      int64  `json:"destination_id"`
	BoardingDate       string `json:"boarding_date"`
	NumberOfCabins     int    `json:"number_of_cabins"`
	NumberOfPassengers int    `json:"number_of_passengers"`
	Origin             string `json:"origin"`
	CustomerName       string `json:"customer_name"`
	CustomerEmail      string `json:"customer_email"`
}

func (in CreateBookingInput) validate() error {
	if in.DestinationID <= 0 {
		return domain.ValidationError{Field: "destination_id", Msg: "must be a positive id"}
	}
	if !utils.IsValidDate(in.BoardingDate) {
		return domain.ValidationError{Field: "boarding_date", Msg: "must be YYYY-MM-DD", Err: domain.ErrInvalidDepartureDate}
	}
	if email := strings.TrimSpace(in.CustomerEmail); email != "" && !strings.Contains(email, "@") {
		return domain.ValidationError{Field: "customer_email", Msg: "must be an email address"}
	}
	return nil
}

// Create validates the request, prices it and reserves inventory in one
// transaction. Nothing is written when any check fails.
func (s BookingService) Create(ctx context.Context, in CreateBookingInput) (models.Booking, error) {
	in.BoardingDate = strings.TrimSpace(in.BoardingDate)
	if err := in.validate(); err != nil {
		return models.Booking{}, err
	}

	now := s.now()
	b := models.Booking{
		ID:                 newBookingID(),
		UUID:               uuid.NewString(),
		DestinationID:      in.DestinationID,
		Origin:             utils.NormalizeSpace(in.Origin),
		BoardingDate:       in.BoardingDate,
		NumberOfCabins:     in.NumberOfCabins,
		NumberOfPassengers: in.NumberOfPassengers,
		CustomerName:       utils.NormalizeSpace(in.CustomerName),
		CustomerEmail:      strings.TrimSpace(in.CustomerEmail),
		Status:             models.BookingCreated,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		it, err := tx.GetItinerary(ctx, in.DestinationID, true)
		if err != nil {
			return err
		}
		if err := CheckAvailability(it, in.BoardingDate, in.NumberOfCabins, in.NumberOfPassengers); err != nil {
			return err
		}
		if b.Origin == "" {
			b.Origin = it.Origin
		}
		b.TotalCost = utils.TotalCost(it.CabinCost, in.NumberOfCabins)

		if err := s.transition(&b, models.BookingBooked, "book"); err != nil {
			return err
		}
		if err := tx.AdjustAvailableCabins(ctx, it.ID, -in.NumberOfCabins); err != nil {
			return err
		}
		return tx.InsertBooking(ctx, b)
	})
	if err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "create", fmt.Sprintf("booking_id=%s itinerary_id=%d cabins=%d total=%s", b.ID, b.DestinationID, b.NumberOfCabins, utils.FormatMoney(b.TotalCost)))
	s.publish(ctx, events.Event{Type: events.BookingCreated, Payload: b})
	return b, nil
}

// RequestPayment opens a PENDING payment for a BOOKED booking that has no
// live payment yet.
func (s BookingService) RequestPayment(ctx context.Context, bookingID string) (models.Payment, error) {
	unlock := s.lock(bookingID)
	defer unlock()

	var p models.Payment
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		b, err := tx.GetBooking(ctx, bookingID, true)
		if err != nil {
			return err
		}
		if b.Status != models.BookingBooked {
			return domain.TransitionError{BookingID: b.ID, From: string(b.Status), Action: "request payment", Err: domain.ErrIllegalStateTransition}
		}
		existing, err := tx.LatestPayment(ctx, b.ID)
		switch {
		case err == nil && existing.Status != models.PaymentRejected:
			return domain.TransitionError{
				BookingID: b.ID, From: string(b.Status), Action: "request payment",
				Err: fmt.Errorf("payment %s is %s: %w", existing.ID, existing.Status, domain.ErrIllegalStateTransition),
			}
		case err != nil && !domain.IsNotFound(err):
			return err
		}

		now := s.now()
		p = models.Payment{
			ID:        newPaymentID(),
			BookingID: b.ID,
			Amount:    b.TotalCost,
			Currency:  s.currency(),
			Status:    models.PaymentPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		p.Signature = SignPayment(s.SigningKey, p)
		return tx.InsertPayment(ctx, p)
	})
	if err != nil {
		return models.Payment{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "request_payment", fmt.Sprintf("booking_id=%s payment_id=%s amount=%s", bookingID, p.ID, utils.FormatMoney(p.Amount)))
	return p, nil
}

// SettlePayment applies the payment network's outcome. Re-delivering the same
// outcome is a no-op; the opposite outcome fails with ErrConflictingSettlement.
func (s BookingService) SettlePayment(ctx context.Context, bookingID string, st models.Settlement) (models.Booking, error) {
	if st.Outcome != models.OutcomeSuccess && st.Outcome != models.OutcomeFailure {
		return models.Booking{}, domain.ValidationError{Field: "outcome", Msg: "must be success or failure"}
	}

	unlock := s.lock(bookingID)
	defer unlock()
	return s.settleLocked(ctx, bookingID, st)
}

// settleLocked is SettlePayment for callers already holding the booking lock.
func (s BookingService) settleLocked(ctx context.Context, bookingID string, st models.Settlement) (models.Booking, error) {
	var (
		out     models.Booking
		applied bool
	)
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		b, err := tx.GetBooking(ctx, bookingID, true)
		if err != nil {
			return err
		}
		p, err := tx.LatestPayment(ctx, b.ID)
		if err != nil {
			if domain.IsNotFound(err) {
				return domain.TransitionError{BookingID: b.ID, From: string(b.Status), Action: "settle payment", Err: fmt.Errorf("no payment requested: %w", domain.ErrIllegalStateTransition)}
			}
			return err
		}

		target := st.Outcome.PaymentStatus()
		switch p.Status {
		case target:
			out, err = loadDetails(ctx, tx, b)
			return err
		case models.PaymentPending:
		default:
			return domain.TransitionError{
				BookingID: b.ID, From: string(b.Status), Action: "settle payment",
				Err: fmt.Errorf("payment %s already %s: %w", p.ID, p.Status, domain.ErrConflictingSettlement),
			}
		}

		now := s.now()
		bookingTarget := models.BookingPaid
		if st.Outcome == models.OutcomeFailure {
			bookingTarget = models.BookingRejected
		}
		if err := s.transition(&b, bookingTarget, "settle payment"); err != nil {
			return err
		}
		b.UpdatedAt = now

		p.Status = target
		p.TransactionID = st.TransactionID
		p.CardLast4 = utils.LastN(utils.DigitsOnly(st.CardLast4), 4)
		p.UpdatedAt = now
		p.Signature = SignPayment(s.SigningKey, p)
		if err := tx.UpdatePayment(ctx, p); err != nil {
			return err
		}

		if st.Outcome == models.OutcomeSuccess {
			if err := tx.InsertTickets(ctx, issueTickets(b, now)); err != nil {
				return err
			}
		} else if err := releaseInventory(ctx, tx, &b); err != nil {
			return err
		}

		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		applied = true
		out, err = loadDetails(ctx, tx, b)
		return err
	})
	if err != nil {
		return models.Booking{}, err
	}

	if !applied {
		utils.LogEvent(s.RequestID, "booking", "settle_payment", fmt.Sprintf("booking_id=%s outcome=%s duplicate ignored", bookingID, st.Outcome))
		return out, nil
	}

	utils.LogEvent(s.RequestID, "booking", "settle_payment", fmt.Sprintf("booking_id=%s outcome=%s status=%s", bookingID, st.Outcome, out.Status))
	if st.Outcome == models.OutcomeSuccess {
		s.publish(ctx, events.Event{Type: events.PaymentApproved, Payload: out.Payment})
		s.publish(ctx, events.Event{Type: events.TicketGenerated, Payload: map[string]any{"booking_id": out.ID, "tickets": out.Tickets}})
	} else {
		s.publish(ctx, events.Event{Type: events.PaymentRejected, Payload: out.Payment})
	}
	return out, nil
}

// Cancel moves a BOOKED or PAID booking to CANCELLED and returns its cabins.
// Issued tickets are kept. A booking whose payment is still PENDING cannot be
// cancelled until the settlement lands.
func (s BookingService) Cancel(ctx context.Context, bookingID string) (models.Booking, error) {
	unlock := s.lock(bookingID)
	defer unlock()

	var out models.Booking
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		b, err := tx.GetBooking(ctx, bookingID, true)
		if err != nil {
			return err
		}
		if b.Status.IsTerminal() {
			return domain.TransitionError{BookingID: b.ID, From: string(b.Status), Action: "cancel", Err: domain.ErrAlreadyTerminal}
		}
		if b.Status == models.BookingBooked {
			p, err := tx.LatestPayment(ctx, b.ID)
			switch {
			case err == nil && p.Status == models.PaymentPending:
				return domain.TransitionError{
					BookingID: b.ID, From: string(b.Status), Action: "cancel",
					Err: fmt.Errorf("payment %s is being settled: %w", p.ID, domain.ErrConflictingSettlement),
				}
			case err != nil && !domain.IsNotFound(err):
				return err
			}
		}
		if err := s.transition(&b, models.BookingCancelled, "cancel"); err != nil {
			return err
		}
		if err := releaseInventory(ctx, tx, &b); err != nil {
			return err
		}
		b.UpdatedAt = s.now()
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		out, err = loadDetails(ctx, tx, b)
		return err
	})
	if err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "cancel", "booking_id="+bookingID)
	s.publish(ctx, events.Event{Type: events.BookingCancelled, Payload: out})
	return out, nil
}

// Complete closes a PAID booking once its boarding date is strictly before
// the current UTC date.
func (s BookingService) Complete(ctx context.Context, bookingID string) (models.Booking, error) {
	unlock := s.lock(bookingID)
	defer unlock()

	now := s.now()
	var out models.Booking
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		b, err := tx.GetBooking(ctx, bookingID, true)
		if err != nil {
			return err
		}
		if b.Status.IsTerminal() {
			return domain.TransitionError{BookingID: b.ID, From: string(b.Status), Action: "complete", Err: domain.ErrAlreadyTerminal}
		}
		if b.Status != models.BookingPaid {
			return domain.TransitionError{BookingID: b.ID, From: string(b.Status), Action: "complete", Err: domain.ErrIllegalStateTransition}
		}
		passed, err := utils.DateBefore(b.BoardingDate, now)
		if err != nil {
			return domain.InternalError{Msg: "stored boarding date is invalid", Err: err}
		}
		if !passed {
			return domain.TransitionError{
				BookingID: b.ID, From: string(b.Status), Action: "complete",
				Err: fmt.Errorf("boarding date %s has not passed: %w", b.BoardingDate, domain.ErrIllegalStateTransition),
			}
		}
		if err := s.transition(&b, models.BookingCompleted, "complete"); err != nil {
			return err
		}
		b.UpdatedAt = now
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		out, err = loadDetails(ctx, tx, b)
		return err
	})
	if err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "booking", "complete", "booking_id="+bookingID)
	s.publish(ctx, events.Event{Type: events.BookingCompleted, Payload: out})
	return out, nil
}

// Get returns the booking with its payment and tickets attached.
func (s BookingService) Get(ctx context.Context, bookingID string) (models.Booking, error) {
	var out models.Booking
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		b, err := tx.GetBooking(ctx, bookingID, false)
		if err != nil {
			return err
		}
		out, err = loadDetails(ctx, tx, b)
		return err
	})
	return out, err
}

func (s BookingService) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.ValidationError{Field: "status", Msg: "unknown status " + string(f.Status)}
	}
	var out []models.Booking
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		list, err := tx.ListBookings(ctx, f)
		if err != nil {
			return err
		}
		out = make([]models.Booking, 0, len(list))
		for _, b := range list {
			full, err := loadDetails(ctx, tx, b)
			if err != nil {
				return err
			}
			out = append(out, full)
		}
		return nil
	})
	return out, err
}

func (s BookingService) transition(b *models.Booking, to models.BookingStatus, action string) error {
	if !models.CanTransition(b.Status, to) {
		return domain.TransitionError{BookingID: b.ID, From: string(b.Status), Action: action, Err: domain.ErrIllegalStateTransition}
	}
	b.Status = to
	return nil
}

func (s BookingService) lock(bookingID string) func() {
	if s.Locks != nil {
		return s.Locks.Lock(bookingID)
	}
	return defaultBookingLocks.Lock(bookingID)
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

func (s BookingService) currency() string {
	if s.Currency != "" {
		return s.Currency
	}
	return "BRL"
}

// publish never fails the caller: the state change has already committed.
func (s BookingService) publish(ctx context.Context, ev events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		utils.LogError(s.RequestID, "booking", "publish_"+ev.Type, err)
	}
}

func releaseInventory(ctx context.Context, tx repositories.Tx, b *models.Booking) error {
	if b.InventoryReleased {
		return nil
	}
	if err := tx.AdjustAvailableCabins(ctx, b.DestinationID, b.NumberOfCabins); err != nil {
		return err
	}
	b.InventoryReleased = true
	return nil
}

func issueTickets(b models.Booking, at time.Time) []models.Ticket {
	out := make([]models.Ticket, 0, b.NumberOfCabins)
	for i := 1; i <= b.NumberOfCabins; i++ {
		out = append(out, models.Ticket{
			ID:            i,
			UUID:          uuid.NewString(),
			BookingID:     b.ID,
			CabinNumber:   fmt.Sprintf("%d", i),
			DepartureDate: b.BoardingDate,
			IssuedAt:      at,
		})
	}
	return out
}

func loadDetails(ctx context.Context, tx repositories.Tx, b models.Booking) (models.Booking, error) {
	p, err := tx.LatestPayment(ctx, b.ID)
	switch {
	case err == nil:
		b.Payment = &p
	case !domain.IsNotFound(err):
		return b, err
	}
	tickets, err := tx.ListTickets(ctx, b.ID)
	if err != nil {
		return b, err
	}
	if len(tickets) > 0 {
		b.Tickets = tickets
	}
	return b, nil
}

func newBookingID() string {
	return "RES-" + shortHex()
}

func newPaymentID() string {
	return "PAY-" + shortHex()
}

func shortHex() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}
