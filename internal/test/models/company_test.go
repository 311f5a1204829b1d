package models_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"live-ai-photo-backend/internal/models"
)

func TestNewCompanyOverview(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	company := models.Company{
		ID:          uuid.New(),
		Name:        "Acme Furniture",
		FreeCredits: 2,
	}
	purchases := []models.PackagePurchase{
		{CreditsTotal: 50, CreditsLeft: 30},
		{CreditsTotal: 20, CreditsLeft: 5, ExpiresAt: sql.NullTime{Time: now.Add(24 * time.Hour), Valid: true}},
		// Expired: excluded from the spendable total.
		{CreditsTotal: 40, CreditsLeft: 40, ExpiresAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true}},
		// Drained: excluded.
		{CreditsTotal: 10, CreditsLeft: 0},
	}

	overview := models.NewCompanyOverview(company, purchases, now)

	assert.Equal(t, company.ID.String(), overview.CompanyID)
	assert.Equal(t, "Acme Furniture", overview.Name)
	assert.Equal(t, 2, overview.FreeCredits)
	assert.Equal(t, 35, overview.PackageCreditsLeft)
	assert.Equal(t, 2, overview.ActivePackages)
}

func TestNewCompanyOverview_NoPurchases(t *testing.T) {
	company := models.Company{ID: uuid.New(), Name: "Solo", FreeCredits: 1}

	overview := models.NewCompanyOverview(company, nil, time.Now())

	assert.Equal(t, 1, overview.FreeCredits)
	assert.Equal(t, 0, overview.PackageCreditsLeft)
	assert.Equal(t, 0, overview.ActivePackages)
}
