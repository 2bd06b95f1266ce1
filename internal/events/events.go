package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	BookingCreated    = "booking.created"
	BookingCancelled  = "booking.cancelled"
	BookingCompleted  = "booking.completed"
	PaymentApproved   = "payment.approved"
	PaymentRejected   = "payment.rejected"
	TicketGenerated   = "ticket.generated"
	PromotionApplied  = "promotion.applied"
	MarketingNotified = "marketing.notified"
)

// Event is one domain fact. Key, when set, overrides the routing key.
type Event struct {
	Type    string
	Key     string
	Payload any
}

// Envelope is the wire form of an Event.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// Publisher delivers events after the producing transaction has committed.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

func NewEnvelope(ev Event, at time.Time) (Envelope, error) {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:         uuid.NewString(),
		Type:       ev.Type,
		OccurredAt: at.UTC(),
		Data:       data,
	}, nil
}

// LogPublisher writes events to the log only. Used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, ev Event) error {
	zap.L().Info("event", zap.String("type", ev.Type), zap.String("key", ev.Key), zap.Any("payload", ev.Payload))
	return nil
}

func (LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types lists recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}
