package storage

import (
	"context"
	"testing"
	"time"

	"github.com/homestay-booking/backend/internal/storage/models"
)

func TestVoucherIncrementUsageEnforcesCap(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &models.Voucher{
		Code: "SUMMER10", DiscountPercent: 10, MaxUsage: 2,
		ValidFrom: day(2025, 5, 1), ValidUntil: day(2025, 6, 30),
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.IncrementUsage(ctx, db, "SUMMER10"); err != nil {
			t.Fatalf("IncrementUsage() attempt %d error: %v", i+1, err)
		}
	}

	// Third use passes the cap and must be refused.
	if err := repo.IncrementUsage(ctx, db, "SUMMER10"); err == nil {
		t.Error("IncrementUsage() past max_usage should fail")
	}

	v, err := repo.GetByCode(ctx, "SUMMER10")
	if err != nil {
		t.Fatalf("GetByCode() error: %v", err)
	}
	if v.UsageCount != 2 {
		t.Errorf("UsageCount = %d, want 2", v.UsageCount)
	}
}

func TestVoucherGetByCodeMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoucherRepository(db)

	v, err := repo.GetByCode(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("GetByCode() error: %v", err)
	}
	if v != nil {
		t.Error("GetByCode(missing) should return nil, nil")
	}
}

func TestVoucherIsActive(t *testing.T) {
	base := models.Voucher{
		Code: "SUMMER10", DiscountPercent: 10, MaxUsage: 2,
		ValidFrom: day(2025, 5, 1), ValidUntil: day(2025, 6, 30),
	}

	tests := []struct {
		name       string
		usageCount int
		today      time.Time
		want       bool
	}{
		{"inside window", 0, day(2025, 6, 15), true},
		{"first valid day", 0, day(2025, 5, 1), true},
		{"last valid day inclusive", 0, day(2025, 6, 30), true},
		{"before window", 0, day(2025, 4, 30), false},
		{"after window", 0, day(2025, 7, 1), false},
		{"exhausted", 2, day(2025, 6, 15), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := base
			v.UsageCount = tt.usageCount
			if got := v.IsActive(tt.today); got != tt.want {
				t.Errorf("IsActive(%s) = %v, want %v", FormatDate(tt.today), got, tt.want)
			}
		})
	}
}
