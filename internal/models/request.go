package models

type UpdateSettingsRequest struct {
	PricePerGraphicCents       *int64   `json:"price_per_graphic_cents,omitempty"`
	ExpressMultiplier          *float64 `json:"express_multiplier,omitempty"`
	UrgentMultiplier           *float64 `json:"urgent_multiplier,omitempty"`
	MinutesPerGraphic          *int     `json:"minutes_per_graphic,omitempty"`
	ConfirmationTimeoutMinutes *int     `json:"confirmation_timeout_minutes,omitempty"`
	QueueMode                  *string  `json:"queue_mode,omitempty"`
}

type ReplaceAvailabilityRequest struct {
	Date    string                 `json:"date"` // YYYY-MM-DD
	Windows []AvailabilityWindowIn `json:"windows"`
}

type AvailabilityWindowIn struct {
	StartTime   string `json:"start_time"` // HH:MM
	EndTime     string `json:"end_time"`   // HH:MM
	IsAvailable bool   `json:"is_available"`
}

type QAVerdictRequest struct {
	Verdict string `json:"verdict"` // pass | fail
	Notes   string `json:"notes,omitempty"`
}

type OverrideOrderStatusRequest struct {
	Status string `json:"status"`
}

type ComplaintRequest struct {
	Reason string `json:"reason"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}
