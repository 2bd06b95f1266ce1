package repositories

import (
	"context"
	"fmt"
	"time"
)

// AddSubscriber reports false when userID was already subscribed.
func (t *sqlTx) AddSubscriber(ctx context.Context, userID string, at time.Time) (bool, error) {
	var n int
	if err := t.tx.GetContext(ctx, &n, t.q(`SELECT COUNT(*) FROM marketing_subscribers WHERE user_id = ?`, false), userID); err != nil {
		return false, fmt.Errorf("check subscriber: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := t.tx.ExecContext(ctx, t.q(`INSERT INTO marketing_subscribers (user_id, created_at) VALUES (?, ?)`, false), userID, at); err != nil {
		return false, fmt.Errorf("insert subscriber: %w", err)
	}
	return true, nil
}

// RemoveSubscriber reports false when userID was not subscribed.
func (t *sqlTx) RemoveSubscriber(ctx context.Context, userID string) (bool, error) {
	res, err := t.tx.ExecContext(ctx, t.q(`DELETE FROM marketing_subscribers WHERE user_id = ?`, false), userID)
	if err != nil {
		return false, fmt.Errorf("delete subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete subscriber: %w", err)
	}
	return n > 0, nil
}

func (t *sqlTx) ListSubscribers(ctx context.Context) ([]string, error) {
	out := []string{}
	if err := t.tx.SelectContext(ctx, &out, t.q(`SELECT user_id FROM marketing_subscribers ORDER BY user_id`, false)); err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return out, nil
}
