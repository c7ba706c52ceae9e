package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/homestay-booking/backend/internal/storage/models"
)

// RatingRepository provides access to reviews and the derived top-places
// ranking table.
type RatingRepository struct {
	BaseRepository
}

// NewRatingRepository creates a new rating repository.
func NewRatingRepository(db *DB) *RatingRepository {
	return &RatingRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// AddReview inserts a review.
func (r *RatingRepository) AddReview(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = GenerateID()
	}
	review.CreatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO reviews (id, place_id, tenant_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, review.ID, review.PlaceID, review.TenantID, review.Rating, review.Comment, review.CreatedAt)

	if err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}

	return nil
}

// TopRatedPlaces aggregates reviews into the highest-rated places.
func (r *RatingRepository) TopRatedPlaces(ctx context.Context, limit int) ([]models.TopPlace, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT place_id, AVG(rating), COUNT(*)
		FROM reviews
		GROUP BY place_id
		ORDER BY AVG(rating) DESC, COUNT(*) DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("aggregating reviews: %w", err)
	}
	defer rows.Close()

	var places []models.TopPlace
	rank := 1
	for rows.Next() {
		var p models.TopPlace
		if err := rows.Scan(&p.PlaceID, &p.AvgRating, &p.ReviewCount); err != nil {
			return nil, fmt.Errorf("scanning rating aggregate: %w", err)
		}
		p.Rank = rank
		rank++
		places = append(places, p)
	}

	return places, rows.Err()
}

// ReplaceTopPlaces atomically clears and repopulates the ranking table.
// Concurrent refreshes cannot leave a half-written ranking: the whole swap is
// one transaction.
func (r *RatingRepository) ReplaceTopPlaces(ctx context.Context, places []models.TopPlace) error {
	now := r.Now()

	return r.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM top_places"); err != nil {
			return fmt.Errorf("clearing top places: %w", err)
		}

		for _, p := range places {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO top_places (rank, place_id, avg_rating, review_count, refreshed_at)
				VALUES (?, ?, ?, ?, ?)
			`, p.Rank, p.PlaceID, p.AvgRating, p.ReviewCount, now)
			if err != nil {
				return fmt.Errorf("inserting top place %s: %w", p.PlaceID, err)
			}
		}

		return nil
	})
}

// ListTopPlaces retrieves the current ranking.
func (r *RatingRepository) ListTopPlaces(ctx context.Context) ([]models.TopPlace, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT rank, place_id, avg_rating, review_count, refreshed_at
		FROM top_places ORDER BY rank
	`)
	if err != nil {
		return nil, fmt.Errorf("querying top places: %w", err)
	}
	defer rows.Close()

	var places []models.TopPlace
	for rows.Next() {
		var p models.TopPlace
		if err := rows.Scan(&p.Rank, &p.PlaceID, &p.AvgRating, &p.ReviewCount, &p.RefreshedAt); err != nil {
			return nil, fmt.Errorf("scanning top place: %w", err)
		}
		places = append(places, p)
	}

	return places, rows.Err()
}
