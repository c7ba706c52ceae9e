package booking

import (
	"testing"

	"github.com/homestay-booking/backend/internal/storage/models"
)

func TestCanTransition(t *testing.T) {
	statuses := []string{
		models.BookingStatusPending,
		models.BookingStatusConfirmed,
		models.BookingStatusCompleted,
		models.BookingStatusCancelled,
	}

	legal := map[[2]string]bool{
		{models.BookingStatusPending, models.BookingStatusConfirmed}:   true,
		{models.BookingStatusPending, models.BookingStatusCancelled}:   true,
		{models.BookingStatusConfirmed, models.BookingStatusCancelled}: true,
		{models.BookingStatusConfirmed, models.BookingStatusCompleted}: true,
	}

	// Exhaustive: every pair not in the legal table must be rejected.
	for _, from := range statuses {
		for _, to := range statuses {
			want := legal[[2]string{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if CanTransition("bogus", models.BookingStatusConfirmed) {
		t.Error("CanTransition should reject unknown source status")
	}
	if CanTransition(models.BookingStatusPending, "bogus") {
		t.Error("CanTransition should reject unknown target status")
	}
}

func TestIsTerminalStatus(t *testing.T) {
	if !IsTerminalStatus(models.BookingStatusCompleted) {
		t.Error("completed should be terminal")
	}
	if !IsTerminalStatus(models.BookingStatusCancelled) {
		t.Error("cancelled should be terminal")
	}
	if IsTerminalStatus(models.BookingStatusPending) {
		t.Error("pending should not be terminal")
	}
	if IsTerminalStatus(models.BookingStatusConfirmed) {
		t.Error("confirmed should not be terminal")
	}
}
