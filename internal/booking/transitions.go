package booking

import (
	"github.com/homestay-booking/backend/internal/storage/models"
)

// legalTransitions is the complete status state machine. Anything not listed
// here is rejected. Completed and cancelled are terminal: no row appears with
// them as a source.
var legalTransitions = map[string][]string{
	models.BookingStatusPending: {
		models.BookingStatusConfirmed,
		models.BookingStatusCancelled,
	},
	models.BookingStatusConfirmed: {
		models.BookingStatusCompleted, // system-driven only, via the reconciler
		models.BookingStatusCancelled,
	},
}

// CanTransition reports whether the state machine permits moving a booking
// from one status to another.
func CanTransition(from, to string) bool {
	for _, target := range legalTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a status has no outgoing transitions.
func IsTerminalStatus(status string) bool {
	return len(legalTransitions[status]) == 0
}
