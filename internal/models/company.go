package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleClient   Role = "CLIENT"
	RoleDesigner Role = "DESIGNER"
	RoleAdmin    Role = "ADMIN"
)

type Company struct {
	ID          uuid.UUID
	Name        string
	FreeCredits int
	CreatedAt   time.Time
}

type User struct {
	ID        uuid.UUID
	CompanyID uuid.NullUUID
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
}

// PackagePurchase is a pre-paid credit bundle. Credits are drawn
// first-expiring-first-used.
type PackagePurchase struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	CreditsTotal int
	CreditsLeft  int
	ExpiresAt    sql.NullTime
	CreatedAt    time.Time
}

// NewCompanyOverview rolls a company and its purchases up into the admin
// balance view. Expired and drained packages do not count toward the
// spendable total.
func NewCompanyOverview(company Company, purchases []PackagePurchase, now time.Time) CompanyOverview {
	overview := CompanyOverview{
		CompanyID:   company.ID.String(),
		Name:        company.Name,
		FreeCredits: company.FreeCredits,
	}
	for _, p := range purchases {
		if p.ExpiresAt.Valid && !p.ExpiresAt.Time.After(now) {
			continue
		}
		if p.CreditsLeft <= 0 {
			continue
		}
		overview.PackageCreditsLeft += p.CreditsLeft
		overview.ActivePackages++
	}
	return overview
}
