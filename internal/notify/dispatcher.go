// Package notify records and delivers status-change notifications. A
// notification row is always written before any delivery attempt, so delivery
// failures lose nothing: the retry sweep re-sends whatever is still pending
// or failed, up to a bounded attempt count.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/homestay-booking/backend/internal/storage"
	"github.com/homestay-booking/backend/internal/storage/models"
)

// Store is the persistence surface for notification records.
type Store interface {
	Create(ctx context.Context, q storage.Queryable, n *models.Notification) error
	ListUndelivered(ctx context.Context, maxAttempts int) ([]models.Notification, error)
	MarkDelivery(ctx context.Context, id, status string) error
}

// Sender pushes a notification over one delivery channel.
type Sender interface {
	Send(ctx context.Context, n models.Notification) error
}

// Dispatcher fans a recorded notification out to its senders and tracks
// delivery state.
type Dispatcher struct {
	store       Store
	senders     []Sender
	maxAttempts int
}

// NewDispatcher creates a dispatcher over the given delivery channels.
func NewDispatcher(store Store, maxAttempts int, senders ...Sender) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Dispatcher{store: store, senders: senders, maxAttempts: maxAttempts}
}

// Dispatch records a notification and immediately attempts delivery. Used by
// callers without their own transaction; the booking service records rows
// inside its transaction and calls Deliver afterwards instead.
func (d *Dispatcher) Dispatch(ctx context.Context, n *models.Notification) error {
	if err := d.store.Create(ctx, nil, n); err != nil {
		return fmt.Errorf("recording notification: %w", err)
	}
	return d.Deliver(ctx, *n)
}

// Deliver attempts delivery of an already-recorded notification across every
// sender and marks the row sent or failed. A notification with no senders
// configured counts as sent: the record itself is the delivery.
func (d *Dispatcher) Deliver(ctx context.Context, n models.Notification) error {
	var firstErr error
	for _, sender := range d.senders {
		if err := sender.Send(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	status := models.NotificationStatusSent
	if firstErr != nil {
		status = models.NotificationStatusFailed
	}

	if err := d.store.MarkDelivery(ctx, n.ID, status); err != nil {
		return fmt.Errorf("marking notification %s: %w", n.ID, err)
	}

	if firstErr != nil {
		return fmt.Errorf("delivering notification %s: %w", n.ID, firstErr)
	}
	return nil
}

// Retry re-attempts delivery of pending and failed notifications. Per-item
// failures are logged and skipped; the sweep always finishes the batch.
func (d *Dispatcher) Retry(ctx context.Context) error {
	undelivered, err := d.store.ListUndelivered(ctx, d.maxAttempts)
	if err != nil {
		return fmt.Errorf("listing undelivered notifications: %w", err)
	}

	sent := 0
	for _, n := range undelivered {
		if err := d.Deliver(ctx, n); err != nil {
			log.Printf("Notification retry failed for %s: %v", n.ID, err)
			continue
		}
		sent++
	}

	log.Printf("Notification retry sweep: %d of %d delivered", sent, len(undelivered))
	return nil
}
