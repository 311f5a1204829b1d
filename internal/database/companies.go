package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"live-ai-photo-backend/internal/models"
)

func (c *Client) ListCompanies(ctx context.Context) ([]models.Company, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, free_credits, created_at FROM companies ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var company models.Company
		if err := rows.Scan(&company.ID, &company.Name, &company.FreeCredits, &company.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

func (c *Client) ListPackagePurchases(ctx context.Context, companyID uuid.UUID) ([]models.PackagePurchase, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, company_id, credits_total, credits_left, expires_at, created_at
		FROM package_purchases
		WHERE company_id = $1
		ORDER BY expires_at ASC NULLS LAST, created_at ASC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list package purchases: %w", err)
	}
	defer rows.Close()

	var purchases []models.PackagePurchase
	for rows.Next() {
		var p models.PackagePurchase
		err := rows.Scan(&p.ID, &p.CompanyID, &p.CreditsTotal, &p.CreditsLeft, &p.ExpiresAt, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (c *Client) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := c.db.QueryRowContext(ctx, `
		SELECT id, company_id, email, name, role, created_at FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.CompanyID, &user.Email, &user.Name, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
