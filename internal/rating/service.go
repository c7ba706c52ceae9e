// Package rating maintains the derived top-rated places ranking.
package rating

import (
	"context"
	"fmt"
	"log"

	"github.com/homestay-booking/backend/internal/storage/models"
)

// Store is the persistence surface the rating service needs.
type Store interface {
	AddReview(ctx context.Context, review *models.Review) error
	TopRatedPlaces(ctx context.Context, limit int) ([]models.TopPlace, error)
	ReplaceTopPlaces(ctx context.Context, places []models.TopPlace) error
	ListTopPlaces(ctx context.Context) ([]models.TopPlace, error)
}

// Service recomputes and serves the top-rated places ranking.
type Service struct {
	store Store
	limit int
}

// NewService creates the rating service. limit caps the ranking size.
func NewService(store Store, limit int) *Service {
	if limit <= 0 {
		limit = 10
	}
	return &Service{store: store, limit: limit}
}

// RefreshTopRated recomputes the ranking and swaps it in atomically. The
// ranking is a best-effort cache: staleness between runs is fine, a torn
// half-written table is not, so the swap is one transaction.
func (s *Service) RefreshTopRated(ctx context.Context) error {
	places, err := s.store.TopRatedPlaces(ctx, s.limit)
	if err != nil {
		return fmt.Errorf("aggregating ratings: %w", err)
	}

	if err := s.store.ReplaceTopPlaces(ctx, places); err != nil {
		return fmt.Errorf("replacing ranking: %w", err)
	}

	log.Printf("Top-rated refresh: %d places ranked", len(places))
	return nil
}

// AddReview records a tenant's rating of a place. The ranking catches up on
// the next refresh.
func (s *Service) AddReview(ctx context.Context, review *models.Review) error {
	return s.store.AddReview(ctx, review)
}

// TopPlaces returns the current ranking.
func (s *Service) TopPlaces(ctx context.Context) ([]models.TopPlace, error) {
	return s.store.ListTopPlaces(ctx)
}
