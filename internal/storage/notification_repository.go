package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/homestay-booking/backend/internal/storage/models"
)

// NotificationRepository provides data access for notification records.
type NotificationRepository struct {
	BaseRepository
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a pending notification within the caller's unit of work, so
// the record is committed together with the state change that caused it.
func (r *NotificationRepository) Create(ctx context.Context, q Queryable, n *models.Notification) error {
	if q == nil {
		q = r.DB()
	}
	if n.ID == "" {
		n.ID = GenerateID()
	}
	if n.Status == "" {
		n.Status = models.NotificationStatusPending
	}
	n.CreatedAt = r.Now()
	n.UpdatedAt = n.CreatedAt

	_, err := q.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, type, title, message, action_url, status, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.RecipientID, n.Type, n.Title, n.Message, n.ActionURL, n.Status, n.Attempts, n.CreatedAt, n.UpdatedAt)

	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}

	return nil
}

// ListUndelivered retrieves pending and failed notifications that still have
// delivery attempts left, oldest first.
func (r *NotificationRepository) ListUndelivered(ctx context.Context, maxAttempts int) ([]models.Notification, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, recipient_id, type, title, message, action_url, status, attempts, created_at, updated_at
		FROM notifications
		WHERE status IN (?, ?) AND attempts < ?
		ORDER BY created_at
	`, models.NotificationStatusPending, models.NotificationStatusFailed, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("querying undelivered notifications: %w", err)
	}
	defer rows.Close()

	return r.scanNotifications(rows)
}

// ListByRecipient retrieves a user's notifications, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, recipient_id, type, title, message, action_url, status, attempts, created_at, updated_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC
	`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications by recipient: %w", err)
	}
	defer rows.Close()

	return r.scanNotifications(rows)
}

// MarkDelivery records the outcome of a delivery attempt.
func (r *NotificationRepository) MarkDelivery(ctx context.Context, id, status string) error {
	_, err := r.DB().ExecContext(ctx, `
		UPDATE notifications SET status = ?, attempts = attempts + 1, updated_at = ? WHERE id = ?
	`, status, r.Now(), id)

	if err != nil {
		return fmt.Errorf("updating notification delivery: %w", err)
	}

	return nil
}

func (r *NotificationRepository) scanNotifications(rows *sql.Rows) ([]models.Notification, error) {
	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message, &n.ActionURL,
			&n.Status, &n.Attempts, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
