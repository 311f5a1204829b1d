package models

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityWindow is a designer-declared window on one calendar date.
// Times are zero-padded "HH:MM" strings so lexicographic comparison matches
// chronological order.
type AvailabilityWindow struct {
	ID          uuid.UUID
	DesignerID  uuid.UUID
	Date        string // YYYY-MM-DD
	StartTime   string // HH:MM
	EndTime     string // HH:MM
	IsAvailable bool
	CreatedAt   time.Time
}
