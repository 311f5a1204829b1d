package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"live-ai-photo-backend/internal/models"
)

// UseFreeCredit atomically spends one of the company's free credits on the
// order. The conditional decrement re-checks the balance at commit time, so
// two concurrent orders can never spend the same last credit. Returns false
// without side effects when no credit is left.
func (c *Client) UseFreeCredit(ctx context.Context, companyID, orderID uuid.UUID) (bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE companies SET free_credits = free_credits - 1
		WHERE id = $1 AND free_credits >= 1
	`, companyID)
	if err != nil {
		return false, fmt.Errorf("failed to decrement free credits: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if err := markOrderFunded(ctx, tx, orderID, true, 1); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}

// UsePackageCredits covers the full quantity from the first-expiring package
// purchase with enough remaining credits. Returns false without side effects
// when no purchase can cover it.
func (c *Client) UsePackageCredits(ctx context.Context, companyID, orderID uuid.UUID, quantity int) (bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the candidate row so concurrent orders serialize on it.
	var purchaseID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM package_purchases
		WHERE company_id = $1
		  AND credits_left >= $2
		  AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY expires_at ASC NULLS LAST, created_at ASC
		LIMIT 1
		FOR UPDATE
	`, companyID, quantity).Scan(&purchaseID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find package purchase: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE package_purchases SET credits_left = credits_left - $1
		WHERE id = $2 AND credits_left >= $1
	`, quantity, purchaseID)
	if err != nil {
		return false, fmt.Errorf("failed to decrement package credits: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if err := markOrderFunded(ctx, tx, orderID, false, quantity); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}

func markOrderFunded(ctx context.Context, tx *sql.Tx, orderID uuid.UUID, freeCredit bool, creditsUsed int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET price_in_cents = 0, used_free_credit = $1, credits_used = $2,
		    is_paid = TRUE, paid_at = NOW(), status = $3, updated_at = NOW()
		WHERE id = $4
	`, freeCredit, creditsUsed, models.OrderStatusInProgress, orderID)
	if err != nil {
		return fmt.Errorf("failed to mark order funded: %w", err)
	}
	return nil
}

// SetOrderPrice writes the computed price onto an order that was not covered
// by credits and parks it awaiting payment.
func (c *Client) SetOrderPrice(ctx context.Context, orderID uuid.UUID, priceInCents int64) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE orders
		SET price_in_cents = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`, priceInCents, models.OrderStatusAwaitingPayment, orderID)
	if err != nil {
		return fmt.Errorf("failed to set order price: %w", err)
	}
	return nil
}
