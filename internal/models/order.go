package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPendingInput    OrderStatus = "PENDING_INPUT"
	OrderStatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	OrderStatusInProgress      OrderStatus = "IN_PROGRESS"
	OrderStatusReview          OrderStatus = "REVIEW"
	OrderStatusCompleted       OrderStatus = "COMPLETED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
)

type Priority string

const (
	PriorityNormal  Priority = "NORMAL"
	PriorityExpress Priority = "EXPRESS"
	PriorityUrgent  Priority = "URGENT"
)

// ParsePriority returns the matching priority, defaulting to NORMAL for any
// unknown value.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityExpress:
		return PriorityExpress
	case PriorityUrgent:
		return PriorityUrgent
	default:
		return PriorityNormal
	}
}

type Order struct {
	ID             uuid.UUID
	CompanyID      uuid.UUID
	UserID         uuid.UUID
	Quantity       int
	Priority       Priority
	Status         OrderStatus
	PriceInCents   int64
	CreditsUsed    int
	UsedFreeCredit bool
	IsPaid         bool
	SourceURL      sql.NullString
	Instructions   string
	Style          string
	Platform       string
	Background     string
	Format         string
	Constraints    json.RawMessage
	CreatedAt      time.Time
	PaidAt         sql.NullTime
	DeliveredAt    sql.NullTime
	UpdatedAt      time.Time
}

type OrderImage struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Filename    string
	StoragePath string
	StorageURL  string
	FileSize    int64
	MimeType    string
	CreatedAt   time.Time
}
