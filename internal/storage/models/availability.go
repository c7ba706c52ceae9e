package models

import (
	"time"
)

// AvailabilityRecord is one (place, calendar date) row of the availability
// ledger. Absence of a record for a date means the date is available at the
// place's base price.
type AvailabilityRecord struct {
	PlaceID     string    `json:"place_id"`
	Date        time.Time `json:"date"`
	IsAvailable bool      `json:"is_available"`
	Price       float64   `json:"price"`
}

// Place is a read-only collaborator entity: the booking core consults its
// base price, occupancy limit and owner, and never writes it.
type Place struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	PricePerNight float64   `json:"price_per_night"`
	MaxGuests     int       `json:"max_guests"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Voucher is a percentage discount with an active window and a usage cap.
type Voucher struct {
	Code            string    `json:"code"`
	DiscountPercent float64   `json:"discount_percent"`
	UsageCount      int       `json:"usage_count"`
	MaxUsage        int       `json:"max_usage"`
	ValidFrom       time.Time `json:"valid_from"`
	ValidUntil      time.Time `json:"valid_until"` // inclusive
}

// IsActive reports whether the voucher can still be applied on the given day.
func (v *Voucher) IsActive(today time.Time) bool {
	if v.UsageCount >= v.MaxUsage {
		return false
	}
	return !today.Before(v.ValidFrom) && !today.After(v.ValidUntil)
}
