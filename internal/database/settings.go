package database

import (
	"context"
	"fmt"

	"live-ai-photo-backend/internal/models"
)

// GetSettings returns the singleton settings row, creating it with defaults
// on first read.
func (c *Client) GetSettings(ctx context.Context) (models.Settings, error) {
	defaults := models.DefaultSettings()
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO system_settings (id, price_per_graphic_cents, express_multiplier,
			urgent_multiplier, minutes_per_graphic, confirmation_timeout_minutes, queue_mode)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, defaults.PricePerGraphicCents, defaults.ExpressMultiplier, defaults.UrgentMultiplier,
		defaults.MinutesPerGraphic, defaults.ConfirmationTimeoutMinutes, defaults.QueueMode)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to ensure settings row: %w", err)
	}

	var s models.Settings
	err = c.db.QueryRowContext(ctx, `
		SELECT price_per_graphic_cents, express_multiplier, urgent_multiplier,
		       minutes_per_graphic, confirmation_timeout_minutes, queue_mode, updated_at
		FROM system_settings
		WHERE id = 1
	`).Scan(&s.PricePerGraphicCents, &s.ExpressMultiplier, &s.UrgentMultiplier,
		&s.MinutesPerGraphic, &s.ConfirmationTimeoutMinutes, &s.QueueMode, &s.UpdatedAt)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

func (c *Client) UpdateSettings(ctx context.Context, s models.Settings) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE system_settings
		SET price_per_graphic_cents = $1, express_multiplier = $2, urgent_multiplier = $3,
		    minutes_per_graphic = $4, confirmation_timeout_minutes = $5, queue_mode = $6,
		    updated_at = NOW()
		WHERE id = 1
	`, s.PricePerGraphicCents, s.ExpressMultiplier, s.UrgentMultiplier,
		s.MinutesPerGraphic, s.ConfirmationTimeoutMinutes, s.QueueMode)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
