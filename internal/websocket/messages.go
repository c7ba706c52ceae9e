package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeBookingCreated       MessageType = "booking.created"
	TypeBookingStatusChanged MessageType = "booking.status_changed"
	TypeNotification         MessageType = "notification"
	TypeJobCompleted         MessageType = "job.completed"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// BookingPayload is the payload for booking.created events.
type BookingPayload struct {
	BookingID  string  `json:"booking_id"`
	TenantID   string  `json:"tenant_id"`
	PlaceID    string  `json:"place_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
}

// BookingStatusPayload is the payload for booking.status_changed events.
type BookingStatusPayload struct {
	BookingID      string `json:"booking_id"`
	PlaceID        string `json:"place_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	RejectReason   string `json:"reject_reason,omitempty"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	NotificationID string `json:"notification_id"`
	RecipientID    string `json:"recipient_id"`
	Type           string `json:"notification_type"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	ActionURL      string `json:"action_url,omitempty"`
}

// JobPayload is the payload for job.completed events.
type JobPayload struct {
	Job      string `json:"job"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}
