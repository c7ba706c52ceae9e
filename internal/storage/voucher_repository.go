package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/homestay-booking/backend/internal/storage/models"
)

// VoucherRepository provides access to discount vouchers.
type VoucherRepository struct {
	BaseRepository
}

// NewVoucherRepository creates a new voucher repository.
func NewVoucherRepository(db *DB) *VoucherRepository {
	return &VoucherRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// GetByCode retrieves a voucher by its code. Returns nil, nil when absent.
// Activity (date window, usage cap) is the caller's check; this is a plain read.
func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*models.Voucher, error) {
	v := &models.Voucher{}
	var from, until string

	err := r.DB().QueryRowContext(ctx, `
		SELECT code, discount_percent, usage_count, max_usage, valid_from, valid_until
		FROM vouchers WHERE code = ?
	`, code).Scan(&v.Code, &v.DiscountPercent, &v.UsageCount, &v.MaxUsage, &from, &until)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying voucher: %w", err)
	}

	if v.ValidFrom, err = time.ParseInLocation("2006-01-02", from, time.UTC); err != nil {
		return nil, fmt.Errorf("parsing voucher valid_from %q: %w", from, err)
	}
	if v.ValidUntil, err = time.ParseInLocation("2006-01-02", until, time.UTC); err != nil {
		return nil, fmt.Errorf("parsing voucher valid_until %q: %w", until, err)
	}

	return v, nil
}

// IncrementUsage bumps a voucher's usage counter within the caller's unit of
// work, refusing to pass the cap. Called only when a booking is actually
// created, never on price preview.
func (r *VoucherRepository) IncrementUsage(ctx context.Context, q Queryable, code string) error {
	result, err := q.ExecContext(ctx, `
		UPDATE vouchers SET usage_count = usage_count + 1
		WHERE code = ? AND usage_count < max_usage
	`, code)

	if err != nil {
		return fmt.Errorf("incrementing voucher usage: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("voucher %s exhausted or missing", code)
	}

	return nil
}

// Create inserts a voucher. Used by seeding and tests.
func (r *VoucherRepository) Create(ctx context.Context, v *models.Voucher) error {
	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO vouchers (code, discount_percent, usage_count, max_usage, valid_from, valid_until)
		VALUES (?, ?, ?, ?, ?, ?)
	`, v.Code, v.DiscountPercent, v.UsageCount, v.MaxUsage, FormatDate(v.ValidFrom), FormatDate(v.ValidUntil))

	if err != nil {
		return fmt.Errorf("inserting voucher: %w", err)
	}

	return nil
}
