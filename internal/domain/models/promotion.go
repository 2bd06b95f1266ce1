package models

import "time"

// PromotionInput is the operator's request to override a cabin price.
type PromotionInput struct {
	DestinationID int64   `json:"destination_id"`
	BoardingDate  string  `json:"boarding_date"`
	NewCost       float64 `json:"new_cost"`
}

// Promotion is the applied price change as published to subscribers.
type Promotion struct {
	ID              string    `json:"id"`
	DestinationID   int64     `json:"destination_id"`
	BoardingDate    string    `json:"boarding_date"`
	NewCost         float64   `json:"new_cost"`
	OldCost         float64   `json:"old_cost"`
	DiscountPercent float64   `json:"discount_percent"`
	CreatedAt       time.Time `json:"created_at"`
}

// PromotionSuggestion is a preview only; nothing is written.
type PromotionSuggestion struct {
	DestinationID int64   `json:"destination_id"`
	CabinCost     float64 `json:"cabin_cost"`
	SuggestedCost float64 `json:"suggested_cost"`
}
