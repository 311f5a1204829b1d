// Package credits decides how an order's cost is paid: one free company
// credit, a pre-paid package purchase, or a computed price handed to the
// payment flow. Each funding source is attempted at most once per order and
// all balance decrements happen inside conditional database transactions, so
// concurrent orders cannot over-spend a shared balance.
package credits

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"live-ai-photo-backend/internal/models"
)

// Method records which funding source covered the order.
type Method string

const (
	MethodFreeCredit     Method = "free_credit"
	MethodPackageCredits Method = "package_credits"
	MethodPayment        Method = "payment"
)

type Resolution struct {
	Method       Method
	PriceInCents int64
}

// Store is the transactional write path for shared balances. Implementations
// must make the check-then-decrement atomic against concurrent writers of the
// same row and only touch the order inside the same transaction.
type Store interface {
	UseFreeCredit(ctx context.Context, companyID, orderID uuid.UUID) (bool, error)
	UsePackageCredits(ctx context.Context, companyID, orderID uuid.UUID, quantity int) (bool, error)
	SetOrderPrice(ctx context.Context, orderID uuid.UUID, priceInCents int64) error
}

type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Resolve funds the order: free credit first, then the first-expiring package
// purchase that covers the full quantity, then a computed price deferred to
// the external payment flow. The price is written onto the order before the
// payment handoff.
func (l *Ledger) Resolve(ctx context.Context, order *models.Order, settings models.Settings) (Resolution, error) {
	used, err := l.store.UseFreeCredit(ctx, order.CompanyID, order.ID)
	if err != nil {
		return Resolution{}, fmt.Errorf("free credit check: %w", err)
	}
	if used {
		return Resolution{Method: MethodFreeCredit}, nil
	}

	used, err = l.store.UsePackageCredits(ctx, order.CompanyID, order.ID, order.Quantity)
	if err != nil {
		return Resolution{}, fmt.Errorf("package credit check: %w", err)
	}
	if used {
		return Resolution{Method: MethodPackageCredits}, nil
	}

	price := ComputePrice(settings, order.Quantity, order.Priority)
	if err := l.store.SetOrderPrice(ctx, order.ID, price); err != nil {
		return Resolution{}, fmt.Errorf("set order price: %w", err)
	}
	return Resolution{Method: MethodPayment, PriceInCents: price}, nil
}

// ComputePrice is basePricePerGraphic x quantity x priority multiplier,
// rounded to whole cents.
func ComputePrice(settings models.Settings, quantity int, priority models.Priority) int64 {
	base := float64(settings.PricePerGraphicCents) * float64(quantity)
	return int64(math.Round(base * PriorityMultiplier(settings, priority)))
}

func PriorityMultiplier(settings models.Settings, priority models.Priority) float64 {
	switch priority {
	case models.PriorityExpress:
		return settings.ExpressMultiplier
	case models.PriorityUrgent:
		return settings.UrgentMultiplier
	default:
		return 1.0
	}
}
