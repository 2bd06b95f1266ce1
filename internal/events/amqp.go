package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"cruisebooking/internal/utils"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type AMQPConfig struct {
	URL                string
	Exchange           string
	PromotionsExchange string
	SenderID           string
	SigningKey         []byte
	MaxRetries         int
	RetryDelay         time.Duration
}

// AMQPPublisher sends lifecycle events to a direct exchange keyed by event
// type and promotions to a topic exchange keyed by "promotions.<destination>".
// Every message carries sender_id and signature headers.
type AMQPPublisher struct {
	cfg  AMQPConfig
	conn *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

func DialAMQP(cfg AMQPConfig) (*AMQPPublisher, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}

	var (
		conn *amqp.Connection
		err  error
	)
	for i := 0; i < cfg.MaxRetries; i++ {
		conn, err = amqp.Dial(cfg.URL)
		if err == nil {
			break
		}
		zap.L().Warn("rabbitmq dial failed", zap.Int("attempt", i+1), zap.Int("max", cfg.MaxRetries), zap.Error(err))
		time.Sleep(cfg.RetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	if err := ch.ExchangeDeclare(cfg.PromotionsExchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.PromotionsExchange, err)
	}
	zap.L().Info("rabbitmq connected", zap.String("exchange", cfg.Exchange), zap.String("promotions_exchange", cfg.PromotionsExchange))

	return &AMQPPublisher{cfg: cfg, conn: conn, ch: ch}, nil
}

// Route returns the exchange and routing key for ev.
func (p *AMQPPublisher) Route(ev Event) (string, string) {
	return route(p.cfg, ev)
}

func route(cfg AMQPConfig, ev Event) (string, string) {
	if ev.Type == PromotionApplied {
		key := ev.Key
		if key == "" {
			key = "promotions.all"
		}
		return cfg.PromotionsExchange, key
	}
	key := ev.Key
	if key == "" {
		key = ev.Type
	}
	return cfg.Exchange, key
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := buildPublishing(p.cfg, ev, time.Now())
	if err != nil {
		return err
	}
	exchange, key := p.Route(ev)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Publish(exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", ev.Type, exchange, err)
	}
	return nil
}

func buildPublishing(cfg AMQPConfig, ev Event, at time.Time) (amqp.Publishing, error) {
	env, err := NewEnvelope(ev, at)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s: %w", ev.Type, err)
	}
	body, err := json.Marshal(env)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s: %w", ev.Type, err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    env.ID,
		Timestamp:    env.OccurredAt,
		Type:         ev.Type,
		Body:         body,
		Headers: amqp.Table{
			"signature": utils.Sign(cfg.SigningKey, body),
			"sender_id": cfg.SenderID,
		},
	}, nil
}

// VerifyDelivery checks the headers a consumer of these messages relies on.
func VerifyDelivery(key []byte, expectedSender string, headers amqp.Table, body []byte) error {
	sender, _ := headers["sender_id"].(string)
	if !strings.EqualFold(sender, expectedSender) {
		return fmt.Errorf("unexpected sender %q", sender)
	}
	sig, _ := headers["signature"].(string)
	if !utils.VerifySignature(key, body, sig) {
		return fmt.Errorf("invalid signature from %s", sender)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
