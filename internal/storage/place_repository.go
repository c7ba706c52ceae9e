package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/homestay-booking/backend/internal/storage/models"
)

// PlaceRepository provides read access to places. The booking core only
// consults a place's base price, occupancy limit and owner.
type PlaceRepository struct {
	BaseRepository
}

// NewPlaceRepository creates a new place repository.
func NewPlaceRepository(db *DB) *PlaceRepository {
	return &PlaceRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// GetByID retrieves a place by its ID. Returns nil, nil when absent.
func (r *PlaceRepository) GetByID(ctx context.Context, id string) (*models.Place, error) {
	p := &models.Place{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, owner_id, name, price_per_night, max_guests, created_at, updated_at
		FROM places WHERE id = ?
	`, id).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.PricePerNight, &p.MaxGuests,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying place: %w", err)
	}

	return p, nil
}

// Create inserts a place. Used by seeding and tests; place management proper
// lives outside the booking core.
func (r *PlaceRepository) Create(ctx context.Context, p *models.Place) error {
	if p.ID == "" {
		p.ID = GenerateID()
	}
	p.CreatedAt = r.Now()
	p.UpdatedAt = p.CreatedAt

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO places (id, owner_id, name, price_per_night, max_guests, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.OwnerID, p.Name, p.PricePerNight, p.MaxGuests, p.CreatedAt, p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("inserting place: %w", err)
	}

	return nil
}
