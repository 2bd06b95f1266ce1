package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is stored as a JSON array in a TEXT column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringList: unsupported source %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("StringList: %w", err)
	}
	*l = out
	return nil
}

// Itinerary is a sellable cruise. Date is the primary departure date;
// DepartureDates lists any additional dates the same sailing is offered on.
type Itinerary struct {
	ID              int64      `json:"id" db:"id"`
	Origin          string     `json:"origin" db:"origin"`
	Destination     string     `json:"destination" db:"destination"`
	ShipName        string     `json:"ship_name" db:"ship_name"`
	ReturnPort      string     `json:"return_port" db:"return_port"`
	PlacesVisited   StringList `json:"places_visited" db:"places_visited"`
	NumberOfNights  int        `json:"number_of_nights" db:"number_of_nights"`
	CabinCost       float64    `json:"cabin_cost" db:"cabin_cost"`
	CabinCapacity   int        `json:"cabin_capacity" db:"cabin_capacity"`
	TripContinent   string     `json:"trip_continent" db:"trip_continent"`
	Date            string     `json:"date" db:"departure_date"`
	DepartureDates  StringList `json:"departure_dates" db:"departure_dates"`
	AvailableCabins int        `json:"available_cabins" db:"available_cabins"`
}

// ValidDates returns Date followed by DepartureDates without duplicates.
func (it Itinerary) ValidDates() []string {
	seen := make(map[string]struct{}, len(it.DepartureDates)+1)
	out := make([]string, 0, len(it.DepartureDates)+1)
	add := func(d string) {
		if d == "" {
			return
		}
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	add(it.Date)
	for _, d := range it.DepartureDates {
		add(d)
	}
	return out
}

func (it Itinerary) HasDepartureDate(date string) bool {
	for _, d := range it.ValidDates() {
		if d == date {
			return true
		}
	}
	return false
}

// ItineraryFilter narrows catalog listings. Zero values disable a criterion.
type ItineraryFilter struct {
	Origin        string
	Destination   string
	Date          string
	MinCabins     int
	PlacesVisited []string
	Continent     string
}
