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
)

// MarketingService keeps the list of users who opted in to promotion news.
type MarketingService struct {
	Store     repositories.Store
	Events    events.Publisher
	Now       func() time.Time
	RequestID string
}

// Subscribe is idempotent; it reports whether userID was newly added.
func (s MarketingService) Subscribe(ctx context.Context, userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, domain.ValidationError{Field: "user_id", Msg: "is required"}
	}
	now := utils.NowUTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	var added bool
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		var err error
		added, err = tx.AddSubscriber(ctx, userID, now)
		return err
	})
	if err != nil {
		return false, err
	}
	utils.LogEvent(s.RequestID, "marketing", "subscribe", fmt.Sprintf("user_id=%s added=%t", userID, added))
	return added, nil
}

// Unsubscribe is idempotent; it reports whether userID was removed.
func (s MarketingService) Unsubscribe(ctx context.Context, userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, domain.ValidationError{Field: "user_id", Msg: "is required"}
	}
	var removed bool
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		var err error
		removed, err = tx.RemoveSubscriber(ctx, userID)
		return err
	})
	if err != nil {
		return false, err
	}
	utils.LogEvent(s.RequestID, "marketing", "unsubscribe", fmt.Sprintf("user_id=%s removed=%t", userID, removed))
	return removed, nil
}

// NotifyAll sends promo to every subscriber and returns how many were reached.
// Delivery failures are logged and not counted.
func (s MarketingService) NotifyAll(ctx context.Context, promo models.Promotion) (int, error) {
	var ids []string
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		var err error
		ids, err = tx.ListSubscribers(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	notified := 0
	for _, id := range ids {
		if s.Events != nil {
			err := s.Events.Publish(ctx, events.Event{
				Type:    events.MarketingNotified,
				Payload: map[string]any{"user_id": id, "promotion": promo},
			})
			if err != nil {
				utils.LogError(s.RequestID, "marketing", "notify", err)
				continue
			}
		}
		notified++
	}
	utils.LogEvent(s.RequestID, "marketing", "notify_all", fmt.Sprintf("promotion_id=%s notified=%d", promo.ID, notified))
	return notified, nil
}
