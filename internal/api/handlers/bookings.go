// Package handlers provides HTTP request handlers for the API endpoints.
// Handlers only decode DTOs, call the booking core and map its errors;
// authentication and role enforcement live in front of this service.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/homestay-booking/backend/internal/api/middleware"
	"github.com/homestay-booking/backend/internal/booking"
	"github.com/homestay-booking/backend/internal/storage/models"
)

// bookingRequest is the create-booking DTO. Dates are calendar dates.
type bookingRequest struct {
	TenantID    string `json:"tenant_id"`
	PlaceID     string `json:"place_id"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`   // YYYY-MM-DD, exclusive checkout
	GuestCount  int    `json:"guest_count"`
	VoucherCode string `json:"voucher_code,omitempty"`
}

// statusRequest is the update-status DTO.
type statusRequest struct {
	Status     string  `json:"status"`
	ActingRole string  `json:"acting_role"`
	Reason     *string `json:"reason,omitempty"`
}

// CreateBooking returns a handler that creates a booking.
func CreateBooking(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		start, err := parseDate(req.StartDate)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid start_date")
			return
		}
		end, err := parseDate(req.EndDate)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid end_date")
			return
		}

		b, err := svc.CreateBooking(r.Context(), booking.CreateBookingRequest{
			TenantID:    req.TenantID,
			PlaceID:     req.PlaceID,
			StartDate:   start,
			EndDate:     end,
			GuestCount:  req.GuestCount,
			VoucherCode: req.VoucherCode,
		})
		if err != nil {
			writeBookingError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, b)
	}
}

// GetBooking returns a handler that retrieves a booking by ID.
func GetBooking(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		b, err := svc.GetBooking(r.Context(), id)
		if err != nil {
			writeBookingError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, b)
	}
}

// ListBookings returns a handler that lists bookings with optional filters:
// tenant_id, place_id, status, page, page_size.
func ListBookings(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := models.BookingFilter{
			TenantID: q.Get("tenant_id"),
			PlaceID:  q.Get("place_id"),
			Status:   q.Get("status"),
		}
		filter.Page, _ = strconv.Atoi(q.Get("page"))
		if filter.PageSize, _ = strconv.Atoi(q.Get("page_size")); filter.PageSize <= 0 {
			filter.PageSize = 20
		}

		bookings, err := svc.ListBookings(r.Context(), filter)
		if err != nil {
			writeBookingError(w, err)
			return
		}
		if bookings == nil {
			bookings = []models.Booking{}
		}

		respondJSON(w, http.StatusOK, bookings)
	}
}

// UpdateBookingStatus returns a handler that moves a booking through the
// state machine.
func UpdateBookingStatus(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if err := svc.UpdateStatus(r.Context(), id, req.Status, req.ActingRole, req.Reason); err != nil {
			writeBookingError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// DeleteBooking returns a handler that hard-deletes a booking.
func DeleteBooking(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := svc.DeleteBooking(r.Context(), id); err != nil {
			writeBookingError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// PricePreview returns a handler that quotes a prospective stay without
// reserving anything.
func PricePreview(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		start, err := parseDate(q.Get("start_date"))
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid start_date")
			return
		}
		end, err := parseDate(q.Get("end_date"))
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid end_date")
			return
		}
		guests, _ := strconv.Atoi(q.Get("guest_count"))

		quote, err := svc.PricePreview(r.Context(), q.Get("place_id"), start, end, guests, q.Get("voucher_code"))
		if err != nil {
			writeBookingError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, quote)
	}
}

// ConfirmPayment returns a handler that records a successful payment for a
// confirmed booking.
func ConfirmPayment(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := svc.MarkPaid(r.Context(), id); err != nil {
			writeBookingError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// PlaceAvailability returns a handler that lists a place's blocked dates in
// a range, for calendar rendering.
func PlaceAvailability(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID := mux.Vars(r)["id"]
		q := r.URL.Query()

		start, err := parseDate(q.Get("from"))
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid from date")
			return
		}
		end, err := parseDate(q.Get("to"))
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid to date")
			return
		}

		records, err := svc.ListBlockedDates(r.Context(), placeID, start, end)
		if err != nil {
			writeBookingError(w, err)
			return
		}
		if records == nil {
			records = []models.AvailabilityRecord{}
		}

		respondJSON(w, http.StatusOK, records)
	}
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

// writeBookingError maps the booking error taxonomy to HTTP responses.
func writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidRange):
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrInvalidRange, err.Error())
	case errors.Is(err, booking.ErrPlaceUnavailable):
		middleware.WriteError(w, http.StatusConflict, middleware.ErrPlaceUnavailable, err.Error())
	case errors.Is(err, booking.ErrInvalidTransition):
		middleware.WriteError(w, http.StatusConflict, middleware.ErrInvalidTransition, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "An unexpected error occurred")
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
