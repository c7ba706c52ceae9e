package handlers

import (
	"net/http"

	"github.com/homestay-booking/backend/internal/storage"
	"github.com/homestay-booking/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Ping() == nil

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		respondJSON(w, code, HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		})
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	PendingBookings     int `json:"pending_bookings"`
	ConfirmedBookings   int `json:"confirmed_bookings"`
	BlockedDates        int `json:"blocked_dates"`
	UndeliveredMessages int `json:"undelivered_messages"`
	ConnectedClients    int `json:"connected_clients"`
}

// Status returns a handler that provides system status information.
func Status(db *storage.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var pending, confirmed, blocked, undelivered int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE status = 'pending'").Scan(&pending)
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE status = 'confirmed'").Scan(&confirmed)
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM availability_records WHERE is_available = 0").Scan(&blocked)
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications WHERE status != 'sent'").Scan(&undelivered)

		respondJSON(w, http.StatusOK, StatusResponse{
			PendingBookings:     pending,
			ConfirmedBookings:   confirmed,
			BlockedDates:        blocked,
			UndeliveredMessages: undelivered,
			ConnectedClients:    hub.ClientCount(),
		})
	}
}
