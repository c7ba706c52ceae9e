package notify

import (
	"context"

	"github.com/homestay-booking/backend/internal/storage/models"
	"github.com/homestay-booking/backend/internal/websocket"
)

// HubSender delivers notifications to connected WebSocket clients.
type HubSender struct {
	broadcaster *websocket.EventBroadcaster
}

// NewHubSender creates a sender over the given hub.
func NewHubSender(hub *websocket.Hub) *HubSender {
	return &HubSender{broadcaster: websocket.NewEventBroadcaster(hub)}
}

// Send broadcasts the notification. Broadcasting never blocks; clients that
// cannot keep up are dropped by the hub.
func (s *HubSender) Send(ctx context.Context, n models.Notification) error {
	s.broadcaster.BroadcastNotification(n)
	return nil
}
