package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS itineraries (
		id BIGINT PRIMARY KEY,
		origin VARCHAR(120) NOT NULL,
		destination VARCHAR(120) NOT NULL,
		ship_name VARCHAR(120) NOT NULL DEFAULT '',
		return_port VARCHAR(120) NOT NULL DEFAULT '',
		places_visited TEXT NOT NULL,
		number_of_nights INT NOT NULL DEFAULT 0,
		cabin_cost DOUBLE PRECISION NOT NULL,
		cabin_capacity INT NOT NULL,
		trip_continent VARCHAR(60) NOT NULL DEFAULT '',
		departure_date VARCHAR(10) NOT NULL,
		departure_dates TEXT NOT NULL,
		available_cabins INT NOT NULL,
		CHECK (available_cabins >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id VARCHAR(32) PRIMARY KEY,
		uuid VARCHAR(36) NOT NULL,
		destination_id BIGINT NOT NULL,
		origin VARCHAR(120) NOT NULL,
		boarding_date VARCHAR(10) NOT NULL,
		number_of_cabins INT NOT NULL,
		number_of_passengers INT NOT NULL,
		customer_name VARCHAR(160) NOT NULL DEFAULT '',
		customer_email VARCHAR(160) NOT NULL DEFAULT '',
		total_cost DOUBLE PRECISION NOT NULL,
		status VARCHAR(16) NOT NULL,
		inventory_released BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id VARCHAR(32) PRIMARY KEY,
		booking_id VARCHAR(32) NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		currency VARCHAR(3) NOT NULL,
		status VARCHAR(16) NOT NULL,
		transaction_id VARCHAR(64) NOT NULL DEFAULT '',
		card_last4 VARCHAR(4) NOT NULL DEFAULT '',
		signature VARCHAR(128) NOT NULL DEFAULT '',
		created_at {{timestamp}} NOT NULL,
		updated_at {{timestamp}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		booking_id VARCHAR(32) NOT NULL,
		id INT NOT NULL,
		uuid VARCHAR(36) NOT NULL,
		cabin_number VARCHAR(8) NOT NULL,
		departure_date VARCHAR(10) NOT NULL,
		issued_at {{timestamp}} NOT NULL,
		PRIMARY KEY (booking_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS marketing_subscribers (
		user_id VARCHAR(128) PRIMARY KEY,
		created_at {{timestamp}} NOT NULL
	)`,
}

// SchemaFor returns the DDL statements for the given sqlx driver name.
func SchemaFor(driver string) ([]string, error) {
	var ts string
	switch driver {
	case "mysql":
		ts = "DATETIME(6)"
	case "postgres":
		ts = "TIMESTAMP"
	default:
		return nil, fmt.Errorf("no schema for driver %q", driver)
	}
	out := make([]string, 0, len(schema))
	for _, stmt := range schema {
		out = append(out, strings.ReplaceAll(stmt, "{{timestamp}}", ts))
	}
	return out, nil
}

// Migrate creates missing tables. Existing tables are left untouched.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts, err := SchemaFor(db.DriverName())
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
