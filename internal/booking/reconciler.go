package booking

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/homestay-booking/backend/internal/storage"
	"github.com/homestay-booking/backend/internal/storage/models"
)

// Reconciler runs the periodic sweeps that advance or purge booking state
// without a user request. Both sweeps are idempotent: their select predicates
// exclude rows a previous run already handled, so running twice in a row
// changes nothing the second time.
//
// Unlike booking creation, a sweep is not all-or-nothing: each row gets its
// own transaction, and a bad row is logged and skipped so one failure cannot
// throw away a whole batch's progress.
type Reconciler struct {
	db            TxRunner
	bookings      BookingStore
	retentionDays int

	// now is swappable for tests.
	now func() time.Time
}

// NewReconciler creates the lifecycle reconciler.
func NewReconciler(db TxRunner, bookings BookingStore, retentionDays int) *Reconciler {
	return &Reconciler{
		db:            db,
		bookings:      bookings,
		retentionDays: retentionDays,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// AutoComplete transitions confirmed, paid bookings whose stay has ended to
// completed. Uses the same state-machine legality check as the public API but
// none of its side effects: completion releases no dates (they are history)
// and sends no notification.
func (r *Reconciler) AutoComplete(ctx context.Context) error {
	today := storage.DateOnly(r.now())

	eligible, err := r.bookings.ListCompletable(ctx, today)
	if err != nil {
		return fmt.Errorf("listing completable bookings: %w", err)
	}

	completed := 0
	for _, b := range eligible {
		if !CanTransition(b.Status, models.BookingStatusCompleted) {
			log.Printf("Skipping booking %s: %s cannot complete", b.ID, b.Status)
			continue
		}

		err := r.db.Transaction(func(tx *sql.Tx) error {
			return r.bookings.UpdateStatus(ctx, tx, b.ID, models.BookingStatusCompleted, nil)
		})
		if err != nil {
			log.Printf("Failed to complete booking %s: %v", b.ID, err)
			continue
		}
		completed++
	}

	log.Printf("Auto-complete sweep: %d of %d bookings completed", completed, len(eligible))
	return nil
}

// Cleanup hard-deletes completed bookings whose last update is at or past the
// retention window. The boundary is inclusive: a booking updated exactly
// retentionDays ago is removed.
func (r *Reconciler) Cleanup(ctx context.Context) error {
	cutoff := storage.DateOnly(r.now()).AddDate(0, 0, -r.retentionDays)

	expired, err := r.bookings.ListExpiredCompleted(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("listing expired bookings: %w", err)
	}

	deleted := 0
	for _, b := range expired {
		err := r.db.Transaction(func(tx *sql.Tx) error {
			return r.bookings.Delete(ctx, tx, b.ID)
		})
		if err != nil {
			log.Printf("Failed to delete booking %s: %v", b.ID, err)
			continue
		}
		deleted++
	}

	log.Printf("Cleanup sweep: %d of %d expired bookings removed", deleted, len(expired))
	return nil
}
