package storage

import (
	"context"
	"testing"

	"github.com/homestay-booking/backend/internal/storage/models"
)

func TestNotificationDeliveryLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	n := &models.Notification{
		RecipientID: "user-1",
		Type:        models.NotificationTypeBookingCreated,
		Title:       "Booking request sent",
		Message:     "Your booking is awaiting confirmation.",
	}
	if err := repo.Create(ctx, nil, n); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if n.Status != models.NotificationStatusPending {
		t.Errorf("Status = %s, want pending", n.Status)
	}

	// Fresh rows are picked up by the retry sweep.
	undelivered, err := repo.ListUndelivered(ctx, 3)
	if err != nil {
		t.Fatalf("ListUndelivered() error: %v", err)
	}
	if len(undelivered) != 1 {
		t.Fatalf("ListUndelivered() returned %d rows, want 1", len(undelivered))
	}

	if err := repo.MarkDelivery(ctx, n.ID, models.NotificationStatusSent); err != nil {
		t.Fatalf("MarkDelivery() error: %v", err)
	}

	undelivered, _ = repo.ListUndelivered(ctx, 3)
	if len(undelivered) != 0 {
		t.Errorf("sent notification still listed as undelivered")
	}

	byRecipient, err := repo.ListByRecipient(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByRecipient() error: %v", err)
	}
	if len(byRecipient) != 1 || byRecipient[0].Attempts != 1 {
		t.Errorf("recipient listing = %+v, want one row with 1 attempt", byRecipient)
	}
}

func TestListUndeliveredHonorsAttemptCap(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	n := &models.Notification{RecipientID: "user-1", Type: models.NotificationTypeBookingCreated, Title: "t", Message: "m"}
	if err := repo.Create(ctx, nil, n); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// Three failed attempts exhaust the budget.
	for i := 0; i < 3; i++ {
		if err := repo.MarkDelivery(ctx, n.ID, models.NotificationStatusFailed); err != nil {
			t.Fatalf("MarkDelivery() error: %v", err)
		}
	}

	undelivered, err := repo.ListUndelivered(ctx, 3)
	if err != nil {
		t.Fatalf("ListUndelivered() error: %v", err)
	}
	if len(undelivered) != 0 {
		t.Errorf("notification past the attempt cap should not be retried, got %d rows", len(undelivered))
	}
}
