package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"live-ai-photo-backend/internal/models"
)

const orderColumns = `id, company_id, user_id, quantity, priority, status, price_in_cents,
	credits_used, used_free_credit, is_paid, source_url, instructions, style, platform,
	background, format, constraints, created_at, paid_at, delivered_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID, &order.CompanyID, &order.UserID, &order.Quantity, &order.Priority,
		&order.Status, &order.PriceInCents, &order.CreditsUsed, &order.UsedFreeCredit,
		&order.IsPaid, &order.SourceURL, &order.Instructions, &order.Style, &order.Platform,
		&order.Background, &order.Format, &order.Constraints, &order.CreatedAt,
		&order.PaidAt, &order.DeliveredAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrderWithTask persists the order, its originating images and the
// initial PENDING task in one transaction.
func (c *Client) CreateOrderWithTask(ctx context.Context, order *models.Order, images []models.OrderImage) (*models.Order, *models.Task, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New()
	created, err := scanOrder(tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, company_id, user_id, quantity, priority, status, source_url,
			instructions, style, platform, background, format, constraints)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+orderColumns+`
	`, order.ID, order.CompanyID, order.UserID, order.Quantity, order.Priority,
		models.OrderStatusPendingInput, order.SourceURL, order.Instructions,
		order.Style, order.Platform, order.Background, order.Format, order.Constraints))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range images {
		images[i].ID = uuid.New()
		images[i].OrderID = created.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_images (id, order_id, filename, storage_path, storage_url, file_size, mime_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, images[i].ID, created.ID, images[i].Filename, images[i].StoragePath,
			images[i].StorageURL, images[i].FileSize, images[i].MimeType)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create order image: %w", err)
		}
	}

	var task models.Task
	err = tx.QueryRowContext(ctx, `
		INSERT INTO tasks (id, order_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, order_id, status, assigned_to, assigned_at, completed_at, created_at, updated_at
	`, uuid.New(), created.ID, models.TaskStatusPending).Scan(
		&task.ID, &task.OrderID, &task.Status, &task.AssignedTo, &task.AssignedAt,
		&task.CompletedAt, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit: %w", err)
	}

	return created, &task, nil
}

// GetOrder returns an order scoped to its owning company.
func (c *Client) GetOrder(ctx context.Context, orderID, companyID uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(c.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1 AND company_id = $2
	`, orderID, companyID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// GetOrderAny returns an order without tenancy scoping, for admin access and
// internal workflow steps.
func (c *Client) GetOrderAny(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(c.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1
	`, orderID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (c *Client) listOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (c *Client) ListOrders(ctx context.Context, companyID uuid.UUID) ([]models.Order, error) {
	return c.listOrders(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE company_id = $1 ORDER BY created_at DESC
	`, companyID)
}

func (c *Client) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return c.listOrders(ctx, `
		SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC
	`)
}

func (c *Client) GetOrderImages(ctx context.Context, orderID uuid.UUID) ([]models.OrderImage, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, order_id, filename, storage_path, storage_url, file_size, mime_type, created_at
		FROM order_images
		WHERE order_id = $1
		ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order images: %w", err)
	}
	defer rows.Close()

	var images []models.OrderImage
	for rows.Next() {
		var img models.OrderImage
		err := rows.Scan(&img.ID, &img.OrderID, &img.Filename, &img.StoragePath,
			&img.StorageURL, &img.FileSize, &img.MimeType, &img.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (c *Client) UpdateOrderImageStorage(ctx context.Context, imageID uuid.UUID, storagePath, storageURL string) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE order_images SET storage_path = $1, storage_url = $2 WHERE id = $3
	`, storagePath, storageURL, imageID)
	return err
}

// SetOrderStatus overrides the order status. Orders are never deleted; the
// status is the soft lifecycle.
func (c *Client) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) error {
	result, err := c.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteOrder marks the order delivered.
func (c *Client) CompleteOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, delivered_at = NOW(), updated_at = NOW() WHERE id = $2
	`, models.OrderStatusCompleted, orderID)
	return err
}
