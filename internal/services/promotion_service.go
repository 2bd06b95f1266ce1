package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"cruisebooking/internal/domain"
	"cruisebooking/internal/domain/models"
	"cruisebooking/internal/events"
	"cruisebooking/internal/repositories"
	"cruisebooking/internal/utils"

	"github.com/google/uuid"
)

// PromotionService applies operator price overrides. The new cost replaces
// the itinerary's cabin_cost for every departure date; bookings already made
// keep their total.
type PromotionService struct {
	Store     repositories.Store
	Events    events.Publisher
	Marketing MarketingService
	Now       func() time.Time
	RequestID string
}

// AppliedPromotion is the result of Apply.
type AppliedPromotion struct {
	models.Promotion
	Notified int `json:"notified"`
}

func (s PromotionService) Apply(ctx context.Context, in models.PromotionInput) (AppliedPromotion, error) {
	in.BoardingDate = strings.TrimSpace(in.BoardingDate)
	if in.DestinationID <= 0 {
		return AppliedPromotion{}, domain.ValidationError{Field: "destination_id", Msg: "must be a positive id"}
	}
	if math.IsNaN(in.NewCost) || math.IsInf(in.NewCost, 0) || in.NewCost < 0 {
		return AppliedPromotion{}, domain.ValidationError{Field: "new_cost", Msg: "must be a non-negative number"}
	}
	newCost := utils.RoundCents(in.NewCost)

	now := utils.NowUTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	var promo models.Promotion
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		it, err := tx.GetItinerary(ctx, in.DestinationID, true)
		if err != nil {
			return err
		}
		if !it.HasDepartureDate(in.BoardingDate) {
			return invalidDepartureDate(it, in.BoardingDate)
		}
		if err := tx.UpdateCabinCost(ctx, it.ID, newCost); err != nil {
			return err
		}
		discount, err := utils.DiscountPercent(it.CabinCost, newCost)
		if err != nil {
			discount = 0
		}
		promo = models.Promotion{
			ID:              uuid.NewString(),
			DestinationID:   it.ID,
			BoardingDate:    in.BoardingDate,
			NewCost:         newCost,
			OldCost:         it.CabinCost,
			DiscountPercent: discount,
			CreatedAt:       now,
		}
		return nil
	})
	if err != nil {
		return AppliedPromotion{}, err
	}

	utils.LogEvent(s.RequestID, "promotion", "apply", fmt.Sprintf("itinerary_id=%d date=%s old=%s new=%s", promo.DestinationID, promo.BoardingDate, utils.FormatMoney(promo.OldCost), utils.FormatMoney(promo.NewCost)))

	if s.Events != nil {
		ev := events.Event{Type: events.PromotionApplied, Key: fmt.Sprintf("promotions.%d", promo.DestinationID), Payload: promo}
		if err := s.Events.Publish(ctx, ev); err != nil {
			utils.LogError(s.RequestID, "promotion", "publish", err)
		}
	}

	marketing := s.Marketing
	marketing.RequestID = s.RequestID
	notified := 0
	if marketing.Store != nil {
		n, err := marketing.NotifyAll(ctx, promo)
		if err != nil {
			utils.LogError(s.RequestID, "promotion", "notify", err)
		}
		notified = n
	}
	return AppliedPromotion{Promotion: promo, Notified: notified}, nil
}

// Suggest previews the default promotional price without writing anything.
func (s PromotionService) Suggest(ctx context.Context, itineraryID int64) (models.PromotionSuggestion, error) {
	var out models.PromotionSuggestion
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		it, err := tx.GetItinerary(ctx, itineraryID, false)
		if err != nil {
			return err
		}
		out = models.PromotionSuggestion{
			DestinationID: it.ID,
			CabinCost:     it.CabinCost,
			SuggestedCost: utils.PromotionalPrice(it.CabinCost),
		}
		return nil
	})
	return out, err
}
