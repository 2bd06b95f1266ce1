package utils

import (
	"cruisebooking/internal/domain"
)

// PromotionalRate is the fraction of the base cabin cost suggested for a promotion.
const PromotionalRate = 0.8

// PromotionalPrice suggests a discounted cabin cost. Operators may override it.
func PromotionalPrice(base float64) float64 {
	return RoundCents(base * PromotionalRate)
}

// DiscountPercent returns how much cheaper newCost is than base, in percent.
func DiscountPercent(base, newCost float64) (float64, error) {
	if base == 0 {
		return 0, domain.ValidationError{Field: "cabin_cost", Msg: "base cost is zero", Err: domain.ErrDivision}
	}
	return RoundCents((1 - newCost/base) * 100), nil
}

// TotalCost is the price of a booking at creation time.
func TotalCost(cabinCost float64, cabins int) float64 {
	return RoundCents(cabinCost * float64(cabins))
}

// PerCabinCost splits a booking total back into a per-cabin price.
func PerCabinCost(total float64, cabins int) (float64, error) {
	if cabins == 0 {
		return 0, domain.ErrDivision
	}
	return RoundCents(total / float64(cabins)), nil
}
