package booking

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/homestay-booking/backend/internal/storage"
	"github.com/homestay-booking/backend/internal/storage/models"
	"github.com/homestay-booking/backend/internal/websocket"
)

// DefaultCancelReason is recorded when a cancellation arrives without one.
const DefaultCancelReason = "Không xác định"

// BookingStore is the persistence surface the service needs for bookings.
type BookingStore interface {
	Create(ctx context.Context, q storage.Queryable, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, q storage.Queryable, id, status string, rejectReason *string) error
	UpdatePaymentStatus(ctx context.Context, q storage.Queryable, id, paymentStatus string) error
	ListCompletable(ctx context.Context, today time.Time) ([]models.Booking, error)
	ListExpiredCompleted(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	Delete(ctx context.Context, q storage.Queryable, id string) error
}

// AvailabilityStore is the persistence surface for the per-date ledger.
type AvailabilityStore interface {
	CountBlocked(ctx context.Context, q storage.Queryable, placeID string, start, end time.Time) (int, error)
	Reserve(ctx context.Context, q storage.Queryable, placeID string, start, end time.Time, pricePerNight float64) error
	Release(ctx context.Context, q storage.Queryable, placeID string, start, end time.Time) error
	ListBlocked(ctx context.Context, placeID string, start, end time.Time) ([]models.AvailabilityRecord, error)
}

// PlaceStore resolves place collaborator data (base price, occupancy, owner).
type PlaceStore interface {
	GetByID(ctx context.Context, id string) (*models.Place, error)
}

// VoucherStore resolves vouchers and burns usage on successful creation.
type VoucherStore interface {
	GetByCode(ctx context.Context, code string) (*models.Voucher, error)
	IncrementUsage(ctx context.Context, q storage.Queryable, code string) error
}

// NotificationStore records notification rows inside the caller's unit of work.
type NotificationStore interface {
	Create(ctx context.Context, q storage.Queryable, n *models.Notification) error
}

// Deliverer attempts delivery of an already-recorded notification.
type Deliverer interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	Transaction(fn func(tx *sql.Tx) error) error
}

// Service orchestrates booking creation, reads and status changes.
type Service struct {
	db             TxRunner
	bookings       BookingStore
	availability   AvailabilityStore
	places         PlaceStore
	vouchers       VoucherStore
	notifications  NotificationStore
	dispatcher     Deliverer
	broadcaster    *websocket.EventBroadcaster
	extraGuestRate float64
	commissionRate float64

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates the booking service.
func NewService(
	db TxRunner,
	bookings BookingStore,
	availability AvailabilityStore,
	places PlaceStore,
	vouchers VoucherStore,
	notifications NotificationStore,
	dispatcher Deliverer,
	hub *websocket.Hub,
	extraGuestRate, commissionRate float64,
) *Service {
	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Service{
		db:             db,
		bookings:       bookings,
		availability:   availability,
		places:         places,
		vouchers:       vouchers,
		notifications:  notifications,
		dispatcher:     dispatcher,
		broadcaster:    broadcaster,
		extraGuestRate: extraGuestRate,
		commissionRate: commissionRate,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// CreateBookingRequest carries the inputs for a new booking.
type CreateBookingRequest struct {
	TenantID    string
	PlaceID     string
	StartDate   time.Time
	EndDate     time.Time
	GuestCount  int
	VoucherCode string
}

// CreateBooking checks availability, prices the stay and persists the booking.
// The availability check, the ledger reservation and the booking insert run in
// a single write transaction, so two overlapping requests for the same place
// cannot both succeed: the second writer sees the first one's ledger rows. A
// transaction that loses the write lock is retried once, then surfaced as
// ErrPlaceUnavailable.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	start := storage.DateOnly(req.StartDate)
	end := storage.DateOnly(req.EndDate)
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	place, err := s.places.GetByID(ctx, req.PlaceID)
	if err != nil {
		return nil, fmt.Errorf("looking up place: %w", err)
	}
	if place == nil {
		return nil, fmt.Errorf("place %s: %w", req.PlaceID, ErrNotFound)
	}

	voucher, err := s.resolveVoucher(ctx, req.VoucherCode)
	if err != nil {
		return nil, err
	}

	total := Quote(place, start, end, req.GuestCount, s.extraGuestRate, voucher, storage.DateOnly(s.now()))

	booking := &models.Booking{
		TenantID:      req.TenantID,
		PlaceID:       req.PlaceID,
		StartDate:     start,
		EndDate:       end,
		GuestCount:    req.GuestCount,
		TotalPrice:    total,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
	}

	var queued []models.Notification

	attempt := func(tx *sql.Tx) error {
		blocked, err := s.availability.CountBlocked(ctx, tx, req.PlaceID, start, end)
		if err != nil {
			return err
		}
		if blocked > 0 {
			return ErrPlaceUnavailable
		}

		if err := s.availability.Reserve(ctx, tx, req.PlaceID, start, end, place.PricePerNight); err != nil {
			return err
		}

		if err := s.bookings.Create(ctx, tx, booking); err != nil {
			return err
		}

		if voucher != nil {
			if err := s.vouchers.IncrementUsage(ctx, tx, voucher.Code); err != nil {
				return err
			}
		}

		queued = queued[:0]
		queued = append(queued,
			models.Notification{
				RecipientID: req.TenantID,
				Type:        models.NotificationTypeBookingCreated,
				Title:       "Booking request sent",
				Message:     fmt.Sprintf("Your booking at %s from %s to %s is awaiting confirmation.", place.Name, storage.FormatDate(start), storage.FormatDate(end)),
			},
			models.Notification{
				RecipientID: place.OwnerID,
				Type:        models.NotificationTypeBookingCreated,
				Title:       "New booking request",
				Message:     fmt.Sprintf("%s has requested %s from %s to %s.", req.TenantID, place.Name, storage.FormatDate(start), storage.FormatDate(end)),
			},
		)
		for i := range queued {
			if err := s.notifications.Create(ctx, tx, &queued[i]); err != nil {
				return err
			}
		}

		return nil
	}

	err = s.db.Transaction(attempt)
	if err != nil && storage.IsLocked(err) {
		// Lost the write lock to a concurrent booking. One retry re-runs the
		// availability check; if the winner took our dates we fail cleanly.
		err = s.db.Transaction(attempt)
		if err != nil && storage.IsLocked(err) {
			err = fmt.Errorf("%w: %w", ErrPlaceUnavailable, ErrConcurrencyConflict)
		}
	}
	if err != nil {
		return nil, err
	}

	s.deliverAll(ctx, queued)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastBookingCreated(booking)
	}

	return booking, nil
}

// resolveVoucher looks up an applicable voucher. A missing or inactive voucher
// is treated as no discount rather than an error; the tenant still books.
func (s *Service) resolveVoucher(ctx context.Context, code string) (*models.Voucher, error) {
	if code == "" {
		return nil, nil
	}

	voucher, err := s.vouchers.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("looking up voucher: %w", err)
	}
	if voucher == nil || !voucher.IsActive(storage.DateOnly(s.now())) {
		return nil, nil
	}

	return voucher, nil
}

// PriceQuote is the breakdown of a prospective stay's cost.
type PriceQuote struct {
	TotalPrice  float64 `json:"total_price"`
	Commission  float64 `json:"commission"`
	OwnerPayout float64 `json:"owner_payout"`
}

// PricePreview computes the cost breakdown for a prospective stay without
// reserving anything or burning voucher usage.
func (s *Service) PricePreview(ctx context.Context, placeID string, start, end time.Time, guestCount int, voucherCode string) (PriceQuote, error) {
	start = storage.DateOnly(start)
	end = storage.DateOnly(end)
	if !start.Before(end) {
		return PriceQuote{}, ErrInvalidRange
	}

	place, err := s.places.GetByID(ctx, placeID)
	if err != nil {
		return PriceQuote{}, fmt.Errorf("looking up place: %w", err)
	}
	if place == nil {
		return PriceQuote{}, fmt.Errorf("place %s: %w", placeID, ErrNotFound)
	}

	voucher, err := s.resolveVoucher(ctx, voucherCode)
	if err != nil {
		return PriceQuote{}, err
	}

	total := Quote(place, start, end, guestCount, s.extraGuestRate, voucher, storage.DateOnly(s.now()))
	commission := Commission(total, s.commissionRate)

	return PriceQuote{
		TotalPrice:  total,
		Commission:  commission,
		OwnerPayout: roundPrice(total - commission),
	}, nil
}

// MarkPaid records a successful payment for a confirmed booking. Payment for a
// pending, cancelled or completed stay is rejected, as is paying twice.
func (s *Service) MarkPaid(ctx context.Context, id string) error {
	var queued []models.Notification

	err := s.db.Transaction(func(tx *sql.Tx) error {
		b, err := s.bookings.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("booking %s: %w", id, ErrNotFound)
		}

		if b.Status != models.BookingStatusConfirmed || b.PaymentStatus != models.PaymentStatusUnpaid {
			return fmt.Errorf("booking %s is %s/%s: %w", id, b.Status, b.PaymentStatus, ErrInvalidTransition)
		}

		if err := s.bookings.UpdatePaymentStatus(ctx, tx, id, models.PaymentStatusPaid); err != nil {
			return err
		}

		place, err := s.places.GetByID(ctx, b.PlaceID)
		if err != nil {
			return err
		}

		queued = queued[:0]
		if place != nil {
			payout := roundPrice(b.TotalPrice - Commission(b.TotalPrice, s.commissionRate))
			queued = append(queued, models.Notification{
				RecipientID: place.OwnerID,
				Type:        models.NotificationTypeBookingConfirmed,
				Title:       "Payment received",
				Message:     fmt.Sprintf("Payment of %.2f received for the stay at %s; your payout is %.2f.", b.TotalPrice, place.Name, payout),
			})
		}
		for i := range queued {
			if err := s.notifications.Create(ctx, tx, &queued[i]); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.deliverAll(ctx, queued)
	return nil
}

// CheckAvailability reports whether the place is free for [start, end).
// Side-effect-free.
func (s *Service) CheckAvailability(ctx context.Context, placeID string, start, end time.Time) (bool, error) {
	start = storage.DateOnly(start)
	end = storage.DateOnly(end)
	if !start.Before(end) {
		return false, ErrInvalidRange
	}

	blocked, err := s.availability.CountBlocked(ctx, nil, placeID, start, end)
	if err != nil {
		return false, err
	}

	return blocked == 0, nil
}

// UpdateStatus moves a booking through the state machine and applies the
// transition's side effects atomically with the status write: cancellation
// releases the ledger and records notifications for both parties,
// confirmation records the tenant's payment prompt. Completion is
// system-driven and rejected here.
func (s *Service) UpdateStatus(ctx context.Context, id, newStatus, actingRole string, reason *string) error {
	if newStatus == models.BookingStatusCompleted {
		// Only the reconciliation sweep completes stays.
		return fmt.Errorf("transition to %s is system-driven: %w", newStatus, ErrInvalidTransition)
	}

	var queued []models.Notification
	var updated *models.Booking
	var previous string

	err := s.db.Transaction(func(tx *sql.Tx) error {
		b, err := s.bookings.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("booking %s: %w", id, ErrNotFound)
		}

		if !CanTransition(b.Status, newStatus) {
			return fmt.Errorf("%s -> %s: %w", b.Status, newStatus, ErrInvalidTransition)
		}

		place, err := s.places.GetByID(ctx, b.PlaceID)
		if err != nil {
			return err
		}

		var rejectReason *string
		queued = queued[:0]

		switch newStatus {
		case models.BookingStatusCancelled:
			if err := s.availability.Release(ctx, tx, b.PlaceID, b.StartDate, b.EndDate); err != nil {
				return err
			}

			cancelReason := DefaultCancelReason
			if reason != nil && *reason != "" {
				cancelReason = *reason
			}
			rejectReason = &cancelReason

			queued = append(queued, models.Notification{
				RecipientID: b.TenantID,
				Type:        models.NotificationTypeBookingCancelled,
				Title:       "Booking cancelled",
				Message:     fmt.Sprintf("Your booking from %s to %s was cancelled. Reason: %s", storage.FormatDate(b.StartDate), storage.FormatDate(b.EndDate), cancelReason),
			})
			if place != nil && actingRole != "Landlord" {
				queued = append(queued, models.Notification{
					RecipientID: place.OwnerID,
					Type:        models.NotificationTypeBookingCancelled,
					Title:       "Booking cancelled",
					Message:     fmt.Sprintf("The booking at %s from %s to %s was cancelled by the tenant.", place.Name, storage.FormatDate(b.StartDate), storage.FormatDate(b.EndDate)),
				})
			}

		case models.BookingStatusConfirmed:
			payURL := fmt.Sprintf("/payment?bookingId=%s", b.ID)
			queued = append(queued, models.Notification{
				RecipientID: b.TenantID,
				Type:        models.NotificationTypeBookingConfirmed,
				Title:       "Booking confirmed",
				Message:     fmt.Sprintf("Your booking from %s to %s is confirmed. Please complete payment.", storage.FormatDate(b.StartDate), storage.FormatDate(b.EndDate)),
				ActionURL:   &payURL,
			})
		}

		if err := s.bookings.UpdateStatus(ctx, tx, id, newStatus, rejectReason); err != nil {
			return err
		}

		for i := range queued {
			if err := s.notifications.Create(ctx, tx, &queued[i]); err != nil {
				return err
			}
		}

		previous = b.Status
		b.Status = newStatus
		updated = b
		return nil
	})
	if err != nil {
		return err
	}

	s.deliverAll(ctx, queued)

	if s.broadcaster != nil && updated != nil {
		s.broadcaster.BroadcastBookingStatusChanged(updated, previous)
	}

	return nil
}

// GetBooking retrieves a booking by ID.
func (s *Service) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	return b, nil
}

// ListBookings retrieves bookings matching the filter. No matches is an empty
// slice, not an error.
func (s *Service) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	return s.bookings.List(ctx, filter)
}

// DeleteBooking hard-deletes a booking and, unless the booking was cancelled
// (whose dates were already released), frees its ledger dates in the same
// transaction so they do not stay blocked forever.
func (s *Service) DeleteBooking(ctx context.Context, id string) error {
	return s.db.Transaction(func(tx *sql.Tx) error {
		b, err := s.bookings.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("booking %s: %w", id, ErrNotFound)
		}

		if b.Status != models.BookingStatusCancelled {
			if err := s.availability.Release(ctx, tx, b.PlaceID, b.StartDate, b.EndDate); err != nil {
				return err
			}
		}

		return s.bookings.Delete(ctx, tx, id)
	})
}

// ListBlockedDates returns the unavailable ledger dates for a place in range.
func (s *Service) ListBlockedDates(ctx context.Context, placeID string, start, end time.Time) ([]models.AvailabilityRecord, error) {
	start = storage.DateOnly(start)
	end = storage.DateOnly(end)
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}
	return s.availability.ListBlocked(ctx, placeID, start, end)
}

// deliverAll makes a best-effort delivery pass over freshly recorded
// notifications. Failures stay pending/failed in the table for the retry
// sweep; creation and status changes never fail because delivery did.
func (s *Service) deliverAll(ctx context.Context, queued []models.Notification) {
	if s.dispatcher == nil {
		return
	}
	for _, n := range queued {
		if err := s.dispatcher.Deliver(ctx, n); err != nil {
			log.Printf("Notification delivery deferred for %s: %v", n.ID, err)
		}
	}
}
