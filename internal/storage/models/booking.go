// Package models contains the domain models for the application.
package models

import (
	"time"
)

// Booking represents a tenant's stay at a place over a half-open date range
// [StartDate, EndDate): the checkout date itself is not occupied.
type Booking struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	PlaceID       string    `json:"place_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	GuestCount    int       `json:"guest_count"`
	TotalPrice    float64   `json:"total_price"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	RejectReason  *string   `json:"reject_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Booking status constants
const (
	BookingStatusPending   = "pending"   // Awaiting landlord confirmation
	BookingStatusConfirmed = "confirmed" // Accepted, stay upcoming or underway
	BookingStatusCompleted = "completed" // Stay finished (system-driven)
	BookingStatusCancelled = "cancelled" // Withdrawn or rejected
)

// Payment status constants. Payment state is an independent axis from booking
// status; the reconciliation sweep reads both.
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Nights returns the number of occupied nights.
func (b *Booking) Nights() int {
	return int(b.EndDate.Sub(b.StartDate).Hours() / 24)
}

// IsTerminal returns true if the booking can no longer change status.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}

// BookingFilter narrows a booking listing. Zero values mean "no constraint".
type BookingFilter struct {
	TenantID string
	PlaceID  string
	Status   string
	Page     int
	PageSize int
}
