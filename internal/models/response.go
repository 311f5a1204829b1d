package models

import "time"

type OrderResponse struct {
	ID             string          `json:"order_id"`
	Quantity       int             `json:"quantity"`
	Priority       Priority        `json:"priority"`
	Status         OrderStatus     `json:"status"`
	PriceInCents   int64           `json:"price_in_cents"`
	CreditsUsed    int             `json:"credits_used"`
	UsedFreeCredit bool            `json:"used_free_credit"`
	IsPaid         bool            `json:"is_paid"`
	SourceURL      string          `json:"source_url,omitempty"`
	Instructions   string          `json:"instructions,omitempty"`
	Style          string          `json:"style,omitempty"`
	Platform       string          `json:"platform,omitempty"`
	Background     string          `json:"background,omitempty"`
	Format         string          `json:"format,omitempty"`
	CheckoutURL    string          `json:"checkout_url,omitempty"`
	Images         []ImageResponse `json:"images,omitempty"`
	Task           *TaskResponse   `json:"task,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []OrderSummary `json:"orders"`
}

type OrderSummary struct {
	ID           string      `json:"order_id"`
	Quantity     int         `json:"quantity"`
	Priority     Priority    `json:"priority"`
	Status       OrderStatus `json:"status"`
	PriceInCents int64       `json:"price_in_cents"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type ImageResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	StorageURL string    `json:"storage_url,omitempty"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	CreatedAt  time.Time `json:"created_at"`
}

type TaskResponse struct {
	ID          string     `json:"task_id"`
	Status      TaskStatus `json:"status"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// PendingAssignmentResponse is what a designer polls for. The countdown is
// computed client-side from assigned_at and timeout_minutes; the server
// re-checks expiry on confirm/reject regardless.
type PendingAssignmentResponse struct {
	AssignmentID   string    `json:"assignment_id"`
	TaskID         string    `json:"task_id"`
	OrderID        string    `json:"order_id"`
	Quantity       int       `json:"quantity"`
	Priority       Priority  `json:"priority"`
	AssignedAt     time.Time `json:"assigned_at"`
	TimeoutMinutes int       `json:"timeout_minutes"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type SettingsResponse struct {
	PricePerGraphicCents       int64     `json:"price_per_graphic_cents"`
	ExpressMultiplier          float64   `json:"express_multiplier"`
	UrgentMultiplier           float64   `json:"urgent_multiplier"`
	MinutesPerGraphic          int       `json:"minutes_per_graphic"`
	ConfirmationTimeoutMinutes int       `json:"confirmation_timeout_minutes"`
	QueueMode                  QueueMode `json:"queue_mode"`
}

type AvailabilityResponse struct {
	Date    string                  `json:"date"`
	Windows []AvailabilityWindowOut `json:"windows"`
}

type AvailabilityWindowOut struct {
	ID          string `json:"id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

type DesignerOverview struct {
	DesignerID  string `json:"designer_id"`
	Name        string `json:"name"`
	ActiveTasks int    `json:"active_tasks"`
}

// CompanyOverview is the admin balance view: the company's remaining free
// credits plus the spendable credits across its unexpired packages.
type CompanyOverview struct {
	CompanyID          string `json:"company_id"`
	Name               string `json:"name"`
	FreeCredits        int    `json:"free_credits"`
	PackageCreditsLeft int    `json:"package_credits_left"`
	ActivePackages     int    `json:"active_packages"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
