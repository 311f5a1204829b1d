package models

import "time"

type QueueMode string

const (
	QueueModeRoundRobin  QueueMode = "round_robin"
	QueueModeLeastLoaded QueueMode = "least_loaded"
	QueueModePriority    QueueMode = "priority"
)

// Settings is the process-wide pricing and queueing policy. It is stored as a
// single row and fetched (or created with defaults) once per request, then
// passed down explicitly.
type Settings struct {
	PricePerGraphicCents       int64
	ExpressMultiplier          float64
	UrgentMultiplier           float64
	MinutesPerGraphic          int
	ConfirmationTimeoutMinutes int
	QueueMode                  QueueMode
	UpdatedAt                  time.Time
}

// DefaultSettings are written on first read when no settings row exists yet.
func DefaultSettings() Settings {
	return Settings{
		PricePerGraphicCents:       1500,
		ExpressMultiplier:          2.0,
		UrgentMultiplier:           4.0,
		MinutesPerGraphic:          30,
		ConfirmationTimeoutMinutes: 5,
		QueueMode:                  QueueModeRoundRobin,
	}
}
