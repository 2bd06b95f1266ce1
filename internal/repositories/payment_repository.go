package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cruisebooking/internal/domain"
	"cruisebooking/internal/domain/models"
)

const paymentColumns = `id, booking_id, amount, currency, status, transaction_id, card_last4,
	signature, created_at, updated_at`

func (t *sqlTx) InsertPayment(ctx context.Context, p models.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `) VALUES (
		:id, :booking_id, :amount, :currency, :status, :transaction_id, :card_last4,
		:signature, :created_at, :updated_at)`
	if _, err := t.tx.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("insert payment %s: %w", p.ID, err)
	}
	return nil
}

func (t *sqlTx) UpdatePayment(ctx context.Context, p models.Payment) error {
	query := `UPDATE payments SET status = :status, transaction_id = :transaction_id,
		card_last4 = :card_last4, signature = :signature, updated_at = :updated_at
		WHERE id = :id`
	res, err := t.tx.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("update payment %s: %w", p.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundError{Resource: "payment"}
	}
	return nil
}

func (t *sqlTx) GetPayment(ctx context.Context, id string, forUpdate bool) (models.Payment, error) {
	var p models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`
	if err := t.tx.GetContext(ctx, &p, t.q(query, forUpdate), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment", Err: err}
		}
		return models.Payment{}, fmt.Errorf("get payment %s: %w", id, err)
	}
	return p, nil
}

// LatestPayment returns NotFoundError when the booking has no payment yet.
func (t *sqlTx) LatestPayment(ctx context.Context, bookingID string) (models.Payment, error) {
	var p models.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`
	if err := t.tx.GetContext(ctx, &p, t.q(query, false), bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment", Err: err}
		}
		return models.Payment{}, fmt.Errorf("latest payment for booking %s: %w", bookingID, err)
	}
	return p, nil
}
