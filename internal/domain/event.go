package domain

import "time"

// EventStatus enumerates the lifecycle of a foundation event.
type EventStatus string

const (
	EventDraft     EventStatus = "DRAFT"
	EventLive      EventStatus = "LIVE"
	EventPaused    EventStatus = "PAUSED"
	EventCompleted EventStatus = "COMPLETED"
	EventArchived  EventStatus = "ARCHIVED"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventLive, EventPaused, EventCompleted, EventArchived:
		return true
	}
	return false
}

type Event struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	ScheduleStart   time.Time   `json:"schedule_start"`
	ScheduleEnd     *time.Time  `json:"schedule_end,omitempty"`
	Venue           string      `json:"venue"`
	Capacity        *int        `json:"capacity,omitempty"`
	FeeEnabled      bool        `json:"fee_enabled"`
	FeeAmount       Money       `json:"fee_amount"`
	ImageURL        string      `json:"image_url,omitempty"`
	Status          EventStatus `json:"status"`
	RegisteredCount int         `json:"registered_count"`
	CreatedBy       string      `json:"created_by"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Validate checks the fields an admin controls.
func (e Event) Validate() error {
	if e.Title == "" {
		return Invalid("title", "title is required")
	}
	if e.ScheduleStart.IsZero() {
		return Invalid("schedule_start", "schedule_start is required")
	}
	if e.ScheduleEnd != nil && e.ScheduleEnd.Before(e.ScheduleStart) {
		return Invalid("schedule_end", "schedule_end must be after schedule_start")
	}
	if !e.Status.Valid() {
		return Invalid("status", "unknown event status")
	}
	if e.FeeEnabled && e.FeeAmount <= 0 {
		return Invalid("fee_amount", "fee_amount is required when fee_enabled")
	}
	if e.Capacity != nil && *e.Capacity <= 0 {
		return Invalid("capacity", "capacity must be positive")
	}
	return nil
}

const (
	RegistrationPending = "PENDING"
	RegistrationPaid    = "PAID"
	RegistrationFailed  = "FAILED"
	RegistrationFree    = "NOT_REQUIRED"
)

type EventRegistration struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	UserID          string    `json:"user_id"`
	PaymentRequired bool      `json:"payment_required"`
	PaymentStatus   string    `json:"payment_status"`
	DonationID      *string   `json:"donation_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
