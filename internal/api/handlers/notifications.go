package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/homestay-booking/backend/internal/storage"
	"github.com/homestay-booking/backend/internal/storage/models"
)

// ListNotifications returns a handler that lists a user's notifications,
// newest first.
func ListNotifications(repo *storage.NotificationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipientID := mux.Vars(r)["userId"]

		notifications, err := repo.ListByRecipient(r.Context(), recipientID)
		if err != nil {
			writeBookingError(w, err)
			return
		}
		if notifications == nil {
			notifications = []models.Notification{}
		}

		respondJSON(w, http.StatusOK, notifications)
	}
}
