package services

import (
	"fmt"

	"cruisebooking/internal/domain"
	"cruisebooking/internal/domain/models"
)

// CheckAvailability validates a booking request against an itinerary.
// Checks run in order: cabins, passengers, departure date.
func CheckAvailability(it models.Itinerary, boardingDate string, cabins, passengers int) error {
	if cabins < 1 || cabins > it.AvailableCabins {
		return domain.ValidationError{
			Field: "number_of_cabins",
			Msg:   fmt.Sprintf("requested %d cabins, %d available", cabins, it.AvailableCabins),
			Err:   domain.ErrInsufficientInventory,
			Details: map[string]any{
				"requested_cabins": cabins,
				"available_cabins": it.AvailableCabins,
			},
		}
	}

	maxPassengers := cabins * it.CabinCapacity
	if passengers < 1 || passengers > maxPassengers {
		return domain.ValidationError{
			Field: "number_of_passengers",
			Msg:   fmt.Sprintf("%d passengers do not fit %d cabins (max %d)", passengers, cabins, maxPassengers),
			Err:   domain.ErrCapacityExceeded,
			Details: map[string]any{
				"requested_passengers": passengers,
				"max_passengers":       maxPassengers,
				"cabin_capacity":       it.CabinCapacity,
			},
		}
	}

	if !it.HasDepartureDate(boardingDate) {
		return invalidDepartureDate(it, boardingDate)
	}
	return nil
}

func invalidDepartureDate(it models.Itinerary, boardingDate string) error {
	return domain.ValidationError{
		Field: "boarding_date",
		Msg:   fmt.Sprintf("%q is not a departure date of itinerary %d", boardingDate, it.ID),
		Err:   domain.ErrInvalidDepartureDate,
		Details: map[string]any{
			"valid_dates": it.ValidDates(),
		},
	}
}
