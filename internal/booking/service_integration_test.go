package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/homestay-booking/backend/internal/storage"
	"github.com/homestay-booking/backend/internal/storage/models"
)

func newIntegrationService(t *testing.T) (*Service, *storage.DB) {
	t.Helper()

	db, err := storage.NewDB(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	svc := NewService(
		db,
		storage.NewBookingRepository(db),
		storage.NewAvailabilityRepository(db),
		storage.NewPlaceRepository(db),
		storage.NewVoucherRepository(db),
		storage.NewNotificationRepository(db),
		nil,
		nil,
		1.5,
		0.18,
	)
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) }

	return svc, db
}

// Two tenants race for the same dates; the ledger lets exactly one through.
func TestConcurrentBookingsSameDates(t *testing.T) {
	svc, db := newIntegrationService(t)
	ctx := context.Background()

	place := &models.Place{ID: "p1", OwnerID: "owner-1", Name: "Contested Place", PricePerNight: 100, MaxGuests: 4}
	if err := storage.NewPlaceRepository(db).Create(ctx, place); err != nil {
		t.Fatalf("seeding place: %v", err)
	}

	const tenants = 5
	var wg sync.WaitGroup
	errs := make([]error, tenants)

	for i := 0; i < tenants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(ctx, CreateBookingRequest{
				TenantID:   "tenant-" + string(rune('a'+i)),
				PlaceID:    "p1",
				StartDate:  date(2025, 6, 1),
				EndDate:    date(2025, 6, 4),
				GuestCount: 2,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrPlaceUnavailable):
			// expected for the losers
		default:
			t.Errorf("tenant %d: unexpected error: %v", i, err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d bookings succeeded for the same dates, want exactly 1", succeeded)
	}

	bookings, err := svc.ListBookings(ctx, models.BookingFilter{PlaceID: "p1"})
	if err != nil {
		t.Fatalf("ListBookings() error: %v", err)
	}
	if len(bookings) != 1 {
		t.Errorf("%d bookings persisted, want 1", len(bookings))
	}
}

// Cancelling the winner frees the dates for the next tenant.
func TestRebookingAfterCancellation(t *testing.T) {
	svc, db := newIntegrationService(t)
	ctx := context.Background()

	place := &models.Place{ID: "p1", OwnerID: "owner-1", Name: "Test Place", PricePerNight: 100, MaxGuests: 4}
	if err := storage.NewPlaceRepository(db).Create(ctx, place); err != nil {
		t.Fatalf("seeding place: %v", err)
	}

	first, err := svc.CreateBooking(ctx, CreateBookingRequest{
		TenantID: "tenant-1", PlaceID: "p1",
		StartDate: date(2025, 6, 1), EndDate: date(2025, 6, 4), GuestCount: 2,
	})
	if err != nil {
		t.Fatalf("first CreateBooking() error: %v", err)
	}

	_, err = svc.CreateBooking(ctx, CreateBookingRequest{
		TenantID: "tenant-2", PlaceID: "p1",
		StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 5), GuestCount: 2,
	})
	if !errors.Is(err, ErrPlaceUnavailable) {
		t.Fatalf("overlapping booking: error = %v, want ErrPlaceUnavailable", err)
	}

	if err := svc.UpdateStatus(ctx, first.ID, models.BookingStatusCancelled, "Tenant", nil); err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}

	second, err := svc.CreateBooking(ctx, CreateBookingRequest{
		TenantID: "tenant-2", PlaceID: "p1",
		StartDate: date(2025, 6, 2), EndDate: date(2025, 6, 5), GuestCount: 2,
	})
	if err != nil {
		t.Fatalf("rebooking after cancellation: %v", err)
	}
	if second.Status != models.BookingStatusPending {
		t.Errorf("rebooked status = %s, want pending", second.Status)
	}
}

// Back-to-back stays share the checkout date.
func TestAdjacentBookingsDoNotConflict(t *testing.T) {
	svc, db := newIntegrationService(t)
	ctx := context.Background()

	place := &models.Place{ID: "p1", OwnerID: "owner-1", Name: "Test Place", PricePerNight: 100, MaxGuests: 4}
	if err := storage.NewPlaceRepository(db).Create(ctx, place); err != nil {
		t.Fatalf("seeding place: %v", err)
	}

	if _, err := svc.CreateBooking(ctx, CreateBookingRequest{
		TenantID: "tenant-1", PlaceID: "p1",
		StartDate: date(2025, 6, 1), EndDate: date(2025, 6, 4), GuestCount: 2,
	}); err != nil {
		t.Fatalf("first CreateBooking() error: %v", err)
	}

	if _, err := svc.CreateBooking(ctx, CreateBookingRequest{
		TenantID: "tenant-2", PlaceID: "p1",
		StartDate: date(2025, 6, 4), EndDate: date(2025, 6, 7), GuestCount: 2,
	}); err != nil {
		t.Errorf("back-to-back booking starting on the checkout date should succeed, got %v", err)
	}
}
