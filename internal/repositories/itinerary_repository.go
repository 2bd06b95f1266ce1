package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cruisebooking/internal/domain"
	"cruisebooking/internal/domain/models"
)

const itineraryColumns = `id, origin, destination, ship_name, return_port, places_visited,
	number_of_nights, cabin_cost, cabin_capacity, trip_continent, departure_date,
	departure_dates, available_cabins`

func (t *sqlTx) GetItinerary(ctx context.Context, id int64, forUpdate bool) (models.Itinerary, error) {
	var it models.Itinerary
	query := `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id = ?`
	if err := t.tx.GetContext(ctx, &it, t.q(query, forUpdate), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Itinerary{}, domain.NotFoundError{Resource: "itinerary", Err: domain.ErrUnknownItinerary}
		}
		return models.Itinerary{}, fmt.Errorf("get itinerary %d: %w", id, err)
	}
	return it, nil
}

func (t *sqlTx) ListItineraries(ctx context.Context) ([]models.Itinerary, error) {
	out := []models.Itinerary{}
	query := `SELECT ` + itineraryColumns + ` FROM itineraries ORDER BY id`
	if err := t.tx.SelectContext(ctx, &out, t.q(query, false)); err != nil {
		return nil, fmt.Errorf("list itineraries: %w", err)
	}
	return out, nil
}

func (t *sqlTx) UpsertItinerary(ctx context.Context, it models.Itinerary) error {
	var exists int
	if err := t.tx.GetContext(ctx, &exists, t.q(`SELECT COUNT(*) FROM itineraries WHERE id = ?`, false), it.ID); err != nil {
		return fmt.Errorf("check itinerary %d: %w", it.ID, err)
	}

	query := `INSERT INTO itineraries (` + itineraryColumns + `) VALUES (
		:id, :origin, :destination, :ship_name, :return_port, :places_visited,
		:number_of_nights, :cabin_cost, :cabin_capacity, :trip_continent, :departure_date,
		:departure_dates, :available_cabins)`
	if exists > 0 {
		query = `UPDATE itineraries SET origin = :origin, destination = :destination,
			ship_name = :ship_name, return_port = :return_port, places_visited = :places_visited,
			number_of_nights = :number_of_nights, cabin_cost = :cabin_cost,
			cabin_capacity = :cabin_capacity, trip_continent = :trip_continent,
			departure_date = :departure_date, departure_dates = :departure_dates,
			available_cabins = :available_cabins
			WHERE id = :id`
	}
	if _, err := t.tx.NamedExecContext(ctx, query, it); err != nil {
		return fmt.Errorf("upsert itinerary %d: %w", it.ID, err)
	}
	return nil
}

func (t *sqlTx) AdjustAvailableCabins(ctx context.Context, id int64, delta int) error {
	res, err := t.tx.ExecContext(ctx, t.q(`UPDATE itineraries
		SET available_cabins = available_cabins + ?
		WHERE id = ? AND available_cabins + ? >= 0`, false), delta, id, delta)
	if err != nil {
		return fmt.Errorf("adjust cabins for itinerary %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust cabins for itinerary %d: %w", id, err)
	}
	if n == 0 {
		return domain.ValidationError{Field: "number_of_cabins", Msg: "not enough cabins available", Err: domain.ErrInsufficientInventory}
	}
	return nil
}

func (t *sqlTx) UpdateCabinCost(ctx context.Context, id int64, cost float64) error {
	res, err := t.tx.ExecContext(ctx, t.q(`UPDATE itineraries SET cabin_cost = ? WHERE id = ?`, false), cost, id)
	if err != nil {
		return fmt.Errorf("update cabin cost for itinerary %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundError{Resource: "itinerary", Err: domain.ErrUnknownItinerary}
	}
	return nil
}
