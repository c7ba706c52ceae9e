package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/homestay-booking/backend/internal/storage/models"
)

// BookingRepository provides data access for bookings.
type BookingRepository struct {
	BaseRepository
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const bookingColumns = `id, tenant_id, place_id, start_date, end_date, guest_count,
	       total_price, status, payment_status, reject_reason, created_at, updated_at`

// Create inserts a new booking within the caller's unit of work.
func (r *BookingRepository) Create(ctx context.Context, q Queryable, b *models.Booking) error {
	if b.ID == "" {
		b.ID = GenerateID()
	}
	b.CreatedAt = r.Now()
	b.UpdatedAt = b.CreatedAt

	_, err := q.ExecContext(ctx, `
		INSERT INTO bookings (
			id, tenant_id, place_id, start_date, end_date, guest_count,
			total_price, status, payment_status, reject_reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID, b.TenantID, b.PlaceID, FormatDate(b.StartDate), FormatDate(b.EndDate),
		b.GuestCount, b.TotalPrice, b.Status, b.PaymentStatus, b.RejectReason,
		b.CreatedAt, b.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by its ID. Returns nil, nil when absent.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return r.get(ctx, r.DB(), id)
}

// GetByIDForUpdate retrieves a booking inside the given transaction so a
// status decision and its write happen against the same snapshot.
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*models.Booking, error) {
	return r.get(ctx, tx, id)
}

func (r *BookingRepository) get(ctx context.Context, q Queryable, id string) (*models.Booking, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings WHERE id = ?
	`, id)

	b, err := scanBooking(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying booking: %w", err)
	}

	return b, nil
}

// List retrieves bookings matching the filter, newest first.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	var args []any

	if filter.TenantID != "" {
		query += " AND tenant_id = ?"
		args = append(args, filter.TenantID)
	}
	if filter.PlaceID != "" {
		query += " AND place_id = ?"
		args = append(args, filter.PlaceID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY created_at DESC"

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 0 {
			page = 0
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.PageSize, page*filter.PageSize)
	}

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateStatus persists a status change within the caller's unit of work.
func (r *BookingRepository) UpdateStatus(ctx context.Context, q Queryable, id, status string, rejectReason *string) error {
	result, err := q.ExecContext(ctx, `
		UPDATE bookings SET status = ?, reject_reason = ?, updated_at = ? WHERE id = ?
	`, status, rejectReason, r.Now(), id)

	if err != nil {
		return fmt.Errorf("updating booking status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("booking not found: %s", id)
	}

	return nil
}

// UpdatePaymentStatus persists a payment status change.
func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, q Queryable, id, paymentStatus string) error {
	result, err := q.ExecContext(ctx, `
		UPDATE bookings SET payment_status = ?, updated_at = ? WHERE id = ?
	`, paymentStatus, r.Now(), id)

	if err != nil {
		return fmt.Errorf("updating payment status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("booking not found: %s", id)
	}

	return nil
}

// ListCompletable retrieves confirmed, paid bookings whose stay ended before
// the given day. These are the rows the auto-complete sweep advances; already
// completed rows are excluded by the predicate, which is what makes the sweep
// idempotent.
func (r *BookingRepository) ListCompletable(ctx context.Context, today time.Time) ([]models.Booking, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status = ? AND payment_status = ? AND end_date < ?
		ORDER BY end_date
	`, models.BookingStatusConfirmed, models.PaymentStatusPaid, FormatDate(today))
	if err != nil {
		return nil, fmt.Errorf("querying completable bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListExpiredCompleted retrieves completed bookings whose last update is on or
// before the cutoff date, i.e. the rows past their retention window. The
// comparison is at calendar-date precision: the time-of-day of the update does
// not buy a row an extra day.
func (r *BookingRepository) ListExpiredCompleted(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status = ? AND date(updated_at) <= ?
		ORDER BY updated_at
	`, models.BookingStatusCompleted, FormatDate(cutoff))
	if err != nil {
		return nil, fmt.Errorf("querying expired completed bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Delete removes a booking within the caller's unit of work.
func (r *BookingRepository) Delete(ctx context.Context, q Queryable, id string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting booking: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("booking not found: %s", id)
	}

	return nil
}

func scanBooking(scan func(dest ...any) error) (*models.Booking, error) {
	b := &models.Booking{}
	var startDate, endDate string

	err := scan(
		&b.ID, &b.TenantID, &b.PlaceID, &startDate, &endDate, &b.GuestCount,
		&b.TotalPrice, &b.Status, &b.PaymentStatus, &b.RejectReason,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if b.StartDate, err = time.ParseInLocation("2006-01-02", startDate, time.UTC); err != nil {
		return nil, fmt.Errorf("parsing start date %q: %w", startDate, err)
	}
	if b.EndDate, err = time.ParseInLocation("2006-01-02", endDate, time.UTC); err != nil {
		return nil, fmt.Errorf("parsing end date %q: %w", endDate, err)
	}

	return b, nil
}

func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
