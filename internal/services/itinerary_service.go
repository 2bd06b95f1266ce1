package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cruisebooking/internal/domain"
	"cruisebooking/internal/domain/models"
	"cruisebooking/internal/repositories"
	"cruisebooking/internal/utils"
)

// ItineraryService is the read side of the catalog plus the seed loader.
type ItineraryService struct {
	Store     repositories.Store
	RequestID string
}

func (s ItineraryService) List(ctx context.Context, f models.ItineraryFilter) ([]models.Itinerary, error) {
	var all []models.Itinerary
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		var err error
		all, err = tx.ListItineraries(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return FilterItineraries(all, f), nil
}

func (s ItineraryService) Get(ctx context.Context, id int64) (models.Itinerary, error) {
	var it models.Itinerary
	err := s.Store.InTx(ctx, func(tx repositories.Tx) error {
		var err error
		it, err = tx.GetItinerary(ctx, id, false)
		return err
	})
	return it, err
}

// FilterItineraries keeps itineraries matching every set criterion.
// Places match as a subset, ignoring case and accents.
func FilterItineraries(list []models.Itinerary, f models.ItineraryFilter) []models.Itinerary {
	wantPlaces := make([]string, 0, len(f.PlacesVisited))
	for _, p := range f.PlacesVisited {
		if p = utils.FoldText(p); p != "" {
			wantPlaces = append(wantPlaces, p)
		}
	}

	out := []models.Itinerary{}
	for _, it := range list {
		if f.Origin != "" && it.Origin != f.Origin {
			continue
		}
		if f.Destination != "" && it.Destination != f.Destination {
			continue
		}
		if f.Date != "" && !it.HasDepartureDate(f.Date) {
			continue
		}
		if f.MinCabins > 0 && it.AvailableCabins < f.MinCabins {
			continue
		}
		if f.Continent != "" && !strings.EqualFold(it.TripContinent, f.Continent) {
			continue
		}
		if len(wantPlaces) > 0 && !visitsAll(it, wantPlaces) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func visitsAll(it models.Itinerary, folded []string) bool {
	have := make(map[string]struct{}, len(it.PlacesVisited))
	for _, p := range it.PlacesVisited {
		have[utils.FoldText(p)] = struct{}{}
	}
	for _, p := range folded {
		if _, ok := have[p]; !ok {
			return false
		}
	}
	return true
}

// LoadSeed upserts the itineraries in a JSON array file. It returns how many
// records were written.
func (s ItineraryService) LoadSeed(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read itineraries file: %w", err)
	}
	var list []models.Itinerary
	if err := json.Unmarshal(raw, &list); err != nil {
		return 0, fmt.Errorf("decode itineraries file: %w", err)
	}
	for i := range list {
		if err := normalizeSeed(&list[i]); err != nil {
			return 0, err
		}
	}

	err = s.Store.InTx(ctx, func(tx repositories.Tx) error {
		for _, it := range list {
			if err := tx.UpsertItinerary(ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	utils.LogEvent(s.RequestID, "itinerary", "load_seed", fmt.Sprintf("path=%s count=%d", path, len(list)))
	return len(list), nil
}

func normalizeSeed(it *models.Itinerary) error {
	if it.ID <= 0 {
		return domain.ValidationError{Field: "id", Msg: "itinerary id must be positive"}
	}
	if it.CabinCapacity < 1 {
		return domain.ValidationError{Field: "cabin_capacity", Msg: fmt.Sprintf("itinerary %d: must be at least 1", it.ID)}
	}
	if it.AvailableCabins < 0 {
		return domain.ValidationError{Field: "available_cabins", Msg: fmt.Sprintf("itinerary %d: must not be negative", it.ID)}
	}
	if it.Date == "" && len(it.DepartureDates) > 0 {
		it.Date = it.DepartureDates[0]
	}
	for _, d := range it.ValidDates() {
		if !utils.IsValidDate(d) {
			return domain.ValidationError{Field: "date", Msg: fmt.Sprintf("itinerary %d: %q is not YYYY-MM-DD", it.ID, d)}
		}
	}
	if len(it.ValidDates()) == 0 {
		return domain.ValidationError{Field: "date", Msg: fmt.Sprintf("itinerary %d: no departure date", it.ID)}
	}
	if it.PlacesVisited == nil {
		it.PlacesVisited = models.StringList{}
	}
	if it.DepartureDates == nil {
		it.DepartureDates = models.StringList{}
	}
	return nil
}
