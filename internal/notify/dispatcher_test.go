package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/homestay-booking/backend/internal/storage"
	"github.com/homestay-booking/backend/internal/storage/models"
)

type mockStore struct {
	created     []models.Notification
	undelivered []models.Notification
	marks       map[string][]string // id -> statuses in order
}

func newMockStore() *mockStore {
	return &mockStore{marks: make(map[string][]string)}
}

func (m *mockStore) Create(ctx context.Context, q storage.Queryable, n *models.Notification) error {
	if n.ID == "" {
		n.ID = storage.GenerateID()
	}
	n.Status = models.NotificationStatusPending
	m.created = append(m.created, *n)
	return nil
}

func (m *mockStore) ListUndelivered(ctx context.Context, maxAttempts int) ([]models.Notification, error) {
	return m.undelivered, nil
}

func (m *mockStore) MarkDelivery(ctx context.Context, id, status string) error {
	m.marks[id] = append(m.marks[id], status)
	return nil
}

type mockSender struct {
	sent []models.Notification
	err  error
}

func (m *mockSender) Send(ctx context.Context, n models.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, n)
	return nil
}

func TestDispatchRecordsThenDelivers(t *testing.T) {
	store := newMockStore()
	sender := &mockSender{}
	d := NewDispatcher(store, 3, sender)

	n := &models.Notification{RecipientID: "user-1", Type: models.NotificationTypeBookingCreated, Title: "t", Message: "m"}
	if err := d.Dispatch(context.Background(), n); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("created %d rows, want 1", len(store.created))
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(sender.sent))
	}
	if got := store.marks[n.ID]; len(got) != 1 || got[0] != models.NotificationStatusSent {
		t.Errorf("marks = %v, want one sent", got)
	}
}

func TestDeliverMarksFailed(t *testing.T) {
	store := newMockStore()
	sender := &mockSender{err: errors.New("channel down")}
	d := NewDispatcher(store, 3, sender)

	n := models.Notification{ID: "n1", RecipientID: "user-1"}
	if err := d.Deliver(context.Background(), n); err == nil {
		t.Fatal("Deliver() should surface the sender failure")
	}

	if got := store.marks["n1"]; len(got) != 1 || got[0] != models.NotificationStatusFailed {
		t.Errorf("marks = %v, want one failed", got)
	}
}

func TestDeliverWithoutSendersCountsAsSent(t *testing.T) {
	store := newMockStore()
	d := NewDispatcher(store, 3)

	if err := d.Deliver(context.Background(), models.Notification{ID: "n1"}); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if got := store.marks["n1"]; len(got) != 1 || got[0] != models.NotificationStatusSent {
		t.Errorf("marks = %v, want one sent", got)
	}
}

func TestRetryContinuesPastFailures(t *testing.T) {
	store := newMockStore()
	store.undelivered = []models.Notification{
		{ID: "n1", RecipientID: "user-1"},
		{ID: "n2", RecipientID: "user-2"},
	}

	// Fails for the first item only, then recovers.
	calls := 0
	sender := &flakySender{failFirst: &calls}
	d := NewDispatcher(store, 3, sender)

	if err := d.Retry(context.Background()); err != nil {
		t.Fatalf("Retry() error: %v", err)
	}

	if got := store.marks["n1"]; len(got) != 1 || got[0] != models.NotificationStatusFailed {
		t.Errorf("n1 marks = %v, want failed", got)
	}
	if got := store.marks["n2"]; len(got) != 1 || got[0] != models.NotificationStatusSent {
		t.Errorf("n2 marks = %v, want sent", got)
	}
}

type flakySender struct {
	failFirst *int
}

func (f *flakySender) Send(ctx context.Context, n models.Notification) error {
	*f.failFirst++
	if *f.failFirst == 1 {
		return errors.New("transient failure")
	}
	return nil
}
