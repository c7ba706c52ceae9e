package storage

import (
	"context"
	"testing"
	"time"

	"github.com/homestay-booking/backend/internal/storage/models"
)

func seedStoredBooking(t *testing.T, db *DB, repo *BookingRepository, tenantID, placeID, status, payment string, start, end time.Time) *models.Booking {
	t.Helper()

	b := &models.Booking{
		TenantID: tenantID, PlaceID: placeID,
		StartDate: start, EndDate: end,
		GuestCount: 2, TotalPrice: 160,
		Status: status, PaymentStatus: payment,
	}
	if err := repo.Create(context.Background(), db, b); err != nil {
		t.Fatalf("seeding booking: %v", err)
	}
	return b
}

// backdate rewrites updated_at directly; the repository always stamps "now".
func backdate(t *testing.T, db *DB, bookingID string, updatedAt time.Time) {
	t.Helper()

	if _, err := db.ExecContext(context.Background(), "UPDATE bookings SET updated_at = ? WHERE id = ?", updatedAt, bookingID); err != nil {
		t.Fatalf("backdating booking %s: %v", bookingID, err)
	}
}

func TestBookingCreateGetRoundTrip(t *testing.T) {
	db := newTestDB(t)
	place := seedPlace(t, db, "p1")
	repo := NewBookingRepository(db)
	ctx := context.Background()

	created := seedStoredBooking(t, db, repo, "tenant-1", place.ID,
		models.BookingStatusPending, models.PaymentStatusUnpaid,
		day(2025, 6, 1), day(2025, 6, 4))

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID() returned nil for an existing booking")
	}
	if !got.StartDate.Equal(day(2025, 6, 1)) || !got.EndDate.Equal(day(2025, 6, 4)) {
		t.Errorf("dates = %v..%v, want 2025-06-01..2025-06-04", got.StartDate, got.EndDate)
	}
	if got.Status != models.BookingStatusPending || got.PaymentStatus != models.PaymentStatusUnpaid {
		t.Errorf("status = %s/%s, want pending/unpaid", got.Status, got.PaymentStatus)
	}
	if got.RejectReason != nil {
		t.Errorf("RejectReason = %v, want nil", got.RejectReason)
	}

	missing, err := repo.GetByID(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("GetByID(missing) error: %v", err)
	}
	if missing != nil {
		t.Error("GetByID(missing) should return nil, nil")
	}
}

func TestBookingUpdateStatusStoresReason(t *testing.T) {
	db := newTestDB(t)
	place := seedPlace(t, db, "p1")
	repo := NewBookingRepository(db)
	ctx := context.Background()

	b := seedStoredBooking(t, db, repo, "tenant-1", place.ID,
		models.BookingStatusPending, models.PaymentStatusUnpaid,
		day(2025, 6, 1), day(2025, 6, 4))

	reason := "Double booked"
	if err := repo.UpdateStatus(ctx, db, b.ID, models.BookingStatusCancelled, &reason); err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}

	got, _ := repo.GetByID(ctx, b.ID)
	if got.Status != models.BookingStatusCancelled {
		t.Errorf("Status = %s, want cancelled", got.Status)
	}
	if got.RejectReason == nil || *got.RejectReason != reason {
		t.Errorf("RejectReason = %v, want %q", got.RejectReason, reason)
	}

	if err := repo.UpdateStatus(ctx, db, "no-such-id", models.BookingStatusCancelled, nil); err == nil {
		t.Error("UpdateStatus() on a missing booking should fail")
	}
}

func TestBookingListFilters(t *testing.T) {
	db := newTestDB(t)
	place := seedPlace(t, db, "p1")
	repo := NewBookingRepository(db)
	ctx := context.Background()

	seedStoredBooking(t, db, repo, "tenant-1", place.ID, models.BookingStatusPending, models.PaymentStatusUnpaid, day(2025, 6, 1), day(2025, 6, 4))
	seedStoredBooking(t, db, repo, "tenant-1", place.ID, models.BookingStatusConfirmed, models.PaymentStatusPaid, day(2025, 7, 1), day(2025, 7, 4))
	seedStoredBooking(t, db, repo, "tenant-2", place.ID, models.BookingStatusPending, models.PaymentStatusUnpaid, day(2025, 8, 1), day(2025, 8, 4))

	byTenant, err := repo.List(ctx, models.BookingFilter{TenantID: "tenant-1"})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(byTenant) != 2 {
		t.Errorf("List(tenant-1) returned %d bookings, want 2", len(byTenant))
	}

	byStatus, err := repo.List(ctx, models.BookingFilter{Status: models.BookingStatusConfirmed})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(byStatus) != 1 {
		t.Errorf("List(confirmed) returned %d bookings, want 1", len(byStatus))
	}

	paged, err := repo.List(ctx, models.BookingFilter{Page: 0, PageSize: 2})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(paged) != 2 {
		t.Errorf("List(page size 2) returned %d bookings, want 2", len(paged))
	}
}

func TestListCompletablePredicate(t *testing.T) {
	db := newTestDB(t)
	place := seedPlace(t, db, "p1")
	repo := NewBookingRepository(db)
	ctx := context.Background()

	today := day(2025, 6, 10)

	eligible := seedStoredBooking(t, db, repo, "tenant-1", place.ID, models.BookingStatusConfirmed, models.PaymentStatusPaid, day(2025, 6, 2), day(2025, 6, 5))
	seedStoredBooking(t, db, repo, "tenant-2", place.ID, models.BookingStatusConfirmed, models.PaymentStatusUnpaid, day(2025, 6, 2), day(2025, 6, 5))
	seedStoredBooking(t, db, repo, "tenant-3", place.ID, models.BookingStatusPending, models.PaymentStatusPaid, day(2025, 6, 2), day(2025, 6, 5))
	// Checkout today: the stay ends today, not before it.
	seedStoredBooking(t, db, repo, "tenant-4", place.ID, models.BookingStatusConfirmed, models.PaymentStatusPaid, day(2025, 6, 7), day(2025, 6, 10))
	seedStoredBooking(t, db, repo, "tenant-5", place.ID, models.BookingStatusCompleted, models.PaymentStatusPaid, day(2025, 6, 1), day(2025, 6, 4))

	got, err := repo.ListCompletable(ctx, today)
	if err != nil {
		t.Fatalf("ListCompletable() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListCompletable() returned %d bookings, want 1", len(got))
	}
	if got[0].ID != eligible.ID {
		t.Errorf("ListCompletable() returned %s, want %s", got[0].ID, eligible.ID)
	}
}

func TestListExpiredCompletedBoundary(t *testing.T) {
	db := newTestDB(t)
	place := seedPlace(t, db, "p1")
	repo := NewBookingRepository(db)
	ctx := context.Background()

	cutoff := day(2025, 5, 11)

	// Real rows carry a time-of-day; the predicate compares calendar dates, so
	// an update at 10:00 on the cutoff date is still past retention.
	atBoundary := seedStoredBooking(t, db, repo, "tenant-1", place.ID, models.BookingStatusCompleted, models.PaymentStatusPaid, day(2025, 5, 1), day(2025, 5, 4))
	backdate(t, db, atBoundary.ID, cutoff.Add(10*time.Hour))

	atMidnight := seedStoredBooking(t, db, repo, "tenant-2", place.ID, models.BookingStatusCompleted, models.PaymentStatusPaid, day(2025, 5, 1), day(2025, 5, 4))
	backdate(t, db, atMidnight.ID, cutoff)

	newer := seedStoredBooking(t, db, repo, "tenant-3", place.ID, models.BookingStatusCompleted, models.PaymentStatusPaid, day(2025, 5, 1), day(2025, 5, 4))
	backdate(t, db, newer.ID, cutoff.AddDate(0, 0, 1).Add(2*time.Hour))

	oldCancelled := seedStoredBooking(t, db, repo, "tenant-4", place.ID, models.BookingStatusCancelled, models.PaymentStatusRefunded, day(2025, 5, 1), day(2025, 5, 4))
	backdate(t, db, oldCancelled.ID, cutoff.AddDate(0, 0, -20))

	got, err := repo.ListExpiredCompleted(ctx, cutoff)
	if err != nil {
		t.Fatalf("ListExpiredCompleted() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListExpiredCompleted() returned %d bookings, want 2", len(got))
	}
	expired := map[string]bool{got[0].ID: true, got[1].ID: true}
	// Inclusive boundary: both cutoff-date rows are expired, midnight or not.
	if !expired[atBoundary.ID] || !expired[atMidnight.ID] {
		t.Errorf("expired = %v, want %s and %s", expired, atBoundary.ID, atMidnight.ID)
	}
}

func TestBookingDelete(t *testing.T) {
	db := newTestDB(t)
	place := seedPlace(t, db, "p1")
	repo := NewBookingRepository(db)
	ctx := context.Background()

	b := seedStoredBooking(t, db, repo, "tenant-1", place.ID,
		models.BookingStatusCompleted, models.PaymentStatusPaid,
		day(2025, 6, 1), day(2025, 6, 4))

	if err := repo.Delete(ctx, db, b.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	got, _ := repo.GetByID(ctx, b.ID)
	if got != nil {
		t.Error("booking should be gone after Delete")
	}

	if err := repo.Delete(ctx, db, b.ID); err == nil {
		t.Error("deleting a missing booking should fail")
	}
}
