package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "PENDING"
	AssignmentStatusConfirmed AssignmentStatus = "CONFIRMED"
	AssignmentStatusRejected  AssignmentStatus = "REJECTED"
	AssignmentStatusExpired   AssignmentStatus = "EXPIRED"
)

// TaskAssignment is a time-bounded proposal of a task to one designer.
// CONFIRMED, REJECTED and EXPIRED rows are terminal; a retry appends a new row
// rather than reusing a resolved one.
type TaskAssignment struct {
	ID         uuid.UUID
	TaskID     uuid.UUID
	DesignerID uuid.UUID
	Status     AssignmentStatus
	AssignedAt time.Time
	ResolvedAt sql.NullTime
}
