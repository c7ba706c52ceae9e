package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/homestay-booking/backend/internal/api/middleware"
	"github.com/homestay-booking/backend/internal/rating"
	"github.com/homestay-booking/backend/internal/storage/models"
)

type reviewRequest struct {
	PlaceID  string  `json:"place_id"`
	TenantID string  `json:"tenant_id"`
	Rating   int     `json:"rating"`
	Comment  *string `json:"comment,omitempty"`
}

// CreateReview returns a handler that records a place review.
func CreateReview(svc *rating.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Rating < 1 || req.Rating > 5 {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Rating must be between 1 and 5")
			return
		}

		review := &models.Review{
			PlaceID:  req.PlaceID,
			TenantID: req.TenantID,
			Rating:   req.Rating,
			Comment:  req.Comment,
		}
		if err := svc.AddReview(r.Context(), review); err != nil {
			writeBookingError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, review)
	}
}

// TopPlaces returns a handler that serves the current top-rated ranking.
func TopPlaces(svc *rating.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		places, err := svc.TopPlaces(r.Context())
		if err != nil {
			writeBookingError(w, err)
			return
		}
		if places == nil {
			places = []models.TopPlace{}
		}

		respondJSON(w, http.StatusOK, places)
	}
}
