package websocket

import (
	"log"

	"github.com/homestay-booking/backend/internal/storage"
	"github.com/homestay-booking/backend/internal/storage/models"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastBookingCreated sends a booking.created event.
func (b *EventBroadcaster) BroadcastBookingCreated(booking *models.Booking) {
	payload := BookingPayload{
		BookingID:  booking.ID,
		TenantID:   booking.TenantID,
		PlaceID:    booking.PlaceID,
		StartDate:  storage.FormatDate(booking.StartDate),
		EndDate:    storage.FormatDate(booking.EndDate),
		TotalPrice: booking.TotalPrice,
		Status:     booking.Status,
	}

	b.broadcast(NewMessage(TypeBookingCreated, payload))
}

// BroadcastBookingStatusChanged sends a booking.status_changed event.
func (b *EventBroadcaster) BroadcastBookingStatusChanged(booking *models.Booking, previousStatus string) {
	payload := BookingStatusPayload{
		BookingID:      booking.ID,
		PlaceID:        booking.PlaceID,
		PreviousStatus: previousStatus,
		NewStatus:      booking.Status,
	}
	if booking.RejectReason != nil {
		payload.RejectReason = *booking.RejectReason
	}

	b.broadcast(NewMessage(TypeBookingStatusChanged, payload))
}

// BroadcastNotification sends a notification event to connected clients.
func (b *EventBroadcaster) BroadcastNotification(n models.Notification) {
	payload := NotificationPayload{
		NotificationID: n.ID,
		RecipientID:    n.RecipientID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
	}
	if n.ActionURL != nil {
		payload.ActionURL = *n.ActionURL
	}

	b.broadcast(NewMessage(TypeNotification, payload))
}

// BroadcastJobCompleted sends a job.completed event.
func (b *EventBroadcaster) BroadcastJobCompleted(job, duration string, err error) {
	payload := JobPayload{
		Job:      job,
		Duration: duration,
	}
	if err != nil {
		payload.Error = err.Error()
	}

	b.broadcast(NewMessage(TypeJobCompleted, payload))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", msg.Type, err)
		return
	}
	b.hub.Broadcast(data)
}
