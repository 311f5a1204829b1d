package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"live-ai-photo-backend/internal/models"
)

// ListAvailability returns the designer's declared windows for one date.
func (c *Client) ListAvailability(ctx context.Context, designerID uuid.UUID, date string) ([]models.AvailabilityWindow, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, designer_id, to_char(date, 'YYYY-MM-DD'), start_time, end_time, is_available, created_at
		FROM designer_availability
		WHERE designer_id = $1 AND date = $2
		ORDER BY start_time ASC
	`, designerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	defer rows.Close()

	var windows []models.AvailabilityWindow
	for rows.Next() {
		var w models.AvailabilityWindow
		err := rows.Scan(&w.ID, &w.DesignerID, &w.Date, &w.StartTime, &w.EndTime, &w.IsAvailable, &w.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// ReplaceAvailability swaps all of the designer's windows for the date in one
// transaction (delete-then-insert, not merge).
func (c *Client) ReplaceAvailability(ctx context.Context, designerID uuid.UUID, date string, windows []models.AvailabilityWindowIn) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM designer_availability WHERE designer_id = $1 AND date = $2
	`, designerID, date)
	if err != nil {
		return fmt.Errorf("failed to clear availability: %w", err)
	}

	for _, w := range windows {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO designer_availability (id, designer_id, date, start_time, end_time, is_available)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New(), designerID, date, w.StartTime, w.EndTime, w.IsAvailable)
		if err != nil {
			return fmt.Errorf("failed to insert window: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListAvailableDesigners returns designers with an open window on the given
// date containing the given HH:MM time, in stable id order. Zero-padded HH:MM
// strings compare lexicographically in chronological order. The predicate is
// the SQL form of assignment.WindowContains; change both together.
func (c *Client) ListAvailableDesigners(ctx context.Context, date, hhmm string) ([]uuid.UUID, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT DISTINCT designer_id
		FROM designer_availability
		WHERE date = $1
		  AND is_available = TRUE
		  AND start_time <= $2
		  AND end_time >= $2
		ORDER BY designer_id ASC
	`, date, hhmm)
	if err != nil {
		return nil, fmt.Errorf("failed to list available designers: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan designer id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
