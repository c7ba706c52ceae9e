package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/homestay-booking/backend/internal/storage/models"
)

// AvailabilityRepository provides data access for the per-date availability
// ledger. Ranges are half-open: [start, end), the checkout date stays free.
type AvailabilityRepository struct {
	BaseRepository
}

// NewAvailabilityRepository creates a new availability repository.
func NewAvailabilityRepository(db *DB) *AvailabilityRepository {
	return &AvailabilityRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// CountBlocked returns how many dates in [start, end) have an explicit
// unavailable record. Zero means the whole range is free, since absence of a
// record is "available". Runs against the caller's unit of work so a
// check-then-reserve sequence sees its own transaction's snapshot; a nil
// Queryable reads from the base connection.
func (r *AvailabilityRepository) CountBlocked(ctx context.Context, q Queryable, placeID string, start, end time.Time) (int, error) {
	if q == nil {
		q = r.DB()
	}

	var blocked int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM availability_records
		WHERE place_id = ? AND is_available = 0 AND date >= ? AND date < ?
	`, placeID, FormatDate(start), FormatDate(end)).Scan(&blocked)

	if err != nil {
		return 0, fmt.Errorf("counting blocked dates: %w", err)
	}

	return blocked, nil
}

// Reserve marks every date in [start, end) unavailable, creating rows for
// dates the ledger has never seen. Idempotent per date: an upsert flips an
// existing row, a missing row is created blocked.
func (r *AvailabilityRepository) Reserve(ctx context.Context, q Queryable, placeID string, start, end time.Time, pricePerNight float64) error {
	for d := DateOnly(start); d.Before(DateOnly(end)); d = d.AddDate(0, 0, 1) {
		_, err := q.ExecContext(ctx, `
			INSERT INTO availability_records (place_id, date, is_available, price)
			VALUES (?, ?, 0, ?)
			ON CONFLICT(place_id, date) DO UPDATE SET is_available = 0
		`, placeID, FormatDate(d), pricePerNight)

		if err != nil {
			return fmt.Errorf("reserving %s for place %s: %w", FormatDate(d), placeID, err)
		}
	}

	return nil
}

// Release flips every date in [start, end) back to available. Rows are kept,
// not deleted, so the nightly price snapshot survives.
func (r *AvailabilityRepository) Release(ctx context.Context, q Queryable, placeID string, start, end time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE availability_records SET is_available = 1
		WHERE place_id = ? AND date >= ? AND date < ?
	`, placeID, FormatDate(start), FormatDate(end))

	if err != nil {
		return fmt.Errorf("releasing dates for place %s: %w", placeID, err)
	}

	return nil
}

// ListBlocked retrieves the unavailable dates for a place in [start, end),
// for rendering a booking calendar.
func (r *AvailabilityRepository) ListBlocked(ctx context.Context, placeID string, start, end time.Time) ([]models.AvailabilityRecord, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT place_id, date, is_available, price
		FROM availability_records
		WHERE place_id = ? AND is_available = 0 AND date >= ? AND date < ?
		ORDER BY date
	`, placeID, FormatDate(start), FormatDate(end))
	if err != nil {
		return nil, fmt.Errorf("querying blocked dates: %w", err)
	}
	defer rows.Close()

	var records []models.AvailabilityRecord
	for rows.Next() {
		var rec models.AvailabilityRecord
		var date string
		var avail int
		if err := rows.Scan(&rec.PlaceID, &date, &avail, &rec.Price); err != nil {
			return nil, fmt.Errorf("scanning availability record: %w", err)
		}
		rec.IsAvailable = avail != 0
		if rec.Date, err = time.ParseInLocation("2006-01-02", date, time.UTC); err != nil {
			return nil, fmt.Errorf("parsing ledger date %q: %w", date, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
