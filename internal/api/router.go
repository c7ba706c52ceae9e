// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"github.com/gorilla/mux"

	"github.com/homestay-booking/backend/internal/api/handlers"
	"github.com/homestay-booking/backend/internal/api/middleware"
	"github.com/homestay-booking/backend/internal/booking"
	"github.com/homestay-booking/backend/internal/rating"
	"github.com/homestay-booking/backend/internal/storage"
	"github.com/homestay-booking/backend/internal/websocket"
)

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(
	db *storage.DB,
	hub *websocket.Hub,
	bookingSvc *booking.Service,
	ratingSvc *rating.Service,
	notificationRepo *storage.NotificationRepository,
) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(db)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(db, hub)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(hub)).Methods("GET")

	// Booking endpoints
	api.HandleFunc("/bookings", handlers.ListBookings(bookingSvc)).Methods("GET")
	api.HandleFunc("/bookings", handlers.CreateBooking(bookingSvc)).Methods("POST")
	api.HandleFunc("/bookings/price", handlers.PricePreview(bookingSvc)).Methods("GET")
	api.HandleFunc("/bookings/{id}", handlers.GetBooking(bookingSvc)).Methods("GET")
	api.HandleFunc("/bookings/{id}/status", handlers.UpdateBookingStatus(bookingSvc)).Methods("PATCH")
	api.HandleFunc("/bookings/{id}/payment", handlers.ConfirmPayment(bookingSvc)).Methods("PATCH")
	api.HandleFunc("/bookings/{id}", handlers.DeleteBooking(bookingSvc)).Methods("DELETE")

	// Availability endpoints
	api.HandleFunc("/places/{id}/availability", handlers.PlaceAvailability(bookingSvc)).Methods("GET")

	// Rating endpoints
	api.HandleFunc("/reviews", handlers.CreateReview(ratingSvc)).Methods("POST")
	api.HandleFunc("/places/top-rated", handlers.TopPlaces(ratingSvc)).Methods("GET")

	// Notification endpoints
	api.HandleFunc("/users/{userId}/notifications", handlers.ListNotifications(notificationRepo)).Methods("GET")

	return r
}
