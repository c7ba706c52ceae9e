package models

import (
	"time"
)

// Notification is a status-change message recorded for a user. Rows are
// written before any delivery attempt so a crashed delivery never loses the
// message; the retry sweep picks up whatever is still pending or failed.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	ActionURL   *string   `json:"action_url,omitempty"`
	Status      string    `json:"status"`
	Attempts    int       `json:"attempts"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Notification delivery status constants
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// Notification type constants
const (
	NotificationTypeBookingCreated   = "booking.created"
	NotificationTypeBookingConfirmed = "booking.confirmed"
	NotificationTypeBookingCancelled = "booking.cancelled"
)

// Review is a tenant's rating of a place, aggregated by the top-rated sweep.
type Review struct {
	ID        string    `json:"id"`
	PlaceID   string    `json:"place_id"`
	TenantID  string    `json:"tenant_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TopPlace is one row of the derived ranking table.
type TopPlace struct {
	Rank        int       `json:"rank"`
	PlaceID     string    `json:"place_id"`
	AvgRating   float64   `json:"avg_rating"`
	ReviewCount int       `json:"review_count"`
	RefreshedAt time.Time `json:"refreshed_at"`
}
