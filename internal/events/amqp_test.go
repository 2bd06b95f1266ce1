package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/streadway/amqp"
)

func testConfig() AMQPConfig {
	return AMQPConfig{
		Exchange:           "cruise.direct",
		PromotionsExchange: "promotions_topic",
		SenderID:           "booking",
		SigningKey:         []byte("k"),
	}
}

func TestRoute(t *testing.T) {
	cfg := testConfig()

	ex, key := route(cfg, Event{Type: PaymentApproved})
	if ex != "cruise.direct" || key != PaymentApproved {
		t.Fatalf("unexpected route %s %s", ex, key)
	}

	ex, key = route(cfg, Event{Type: PromotionApplied, Key: "promotions.99"})
	if ex != "promotions_topic" || key != "promotions.99" {
		t.Fatalf("unexpected promotion route %s %s", ex, key)
	}
}

func TestBuildPublishingIsSignedAndVerifiable(t *testing.T) {
	cfg := testConfig()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	msg, err := buildPublishing(cfg, Event{Type: BookingCreated, Payload: map[string]string{"id": "RES-1"}}, at)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if msg.DeliveryMode != amqp.Persistent || msg.ContentType != "application/json" {
		t.Fatalf("unexpected publishing flags %+v", msg)
	}

	var env Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		t.Fatalf("body is not an envelope: %v", err)
	}
	if env.Type != BookingCreated || string(env.Data) != `{"id":"RES-1"}` || !env.OccurredAt.Equal(at) {
		t.Fatalf("unexpected envelope %+v", env)
	}

	if err := VerifyDelivery(cfg.SigningKey, "booking", msg.Headers, msg.Body); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if err := VerifyDelivery(cfg.SigningKey, "payments", msg.Headers, msg.Body); err == nil {
		t.Fatalf("expected sender mismatch")
	}
	if err := VerifyDelivery([]byte("other"), "booking", msg.Headers, msg.Body); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}
