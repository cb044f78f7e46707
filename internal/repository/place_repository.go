package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	placeDomain "github.com/wayfarer-maps/service-routing/internal/domain/place"
	"github.com/wayfarer-maps/service-routing/internal/domain/shared"
)

// PlaceModel is the GORM model for the places table.
type PlaceModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index:idx_places_owner_name,unique;not null"`
	Name      string    `gorm:"index:idx_places_owner_name,unique;not null;size:100"`
	Address   string    `gorm:"size:255"`
	Latitude  float64   `gorm:"not null"`
	Longitude float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PlaceModel) TableName() string {
	return "places"
}

// GormPlaceRepository is the GORM-based implementation of PlaceRepository.
type GormPlaceRepository struct {
	db *gorm.DB
}

// NewGormPlaceRepository creates a new GormPlaceRepository.
func NewGormPlaceRepository(db *gorm.DB) *GormPlaceRepository {
	return &GormPlaceRepository{db: db}
}

// FindByID retrieves a place by its unique identifier.
func (r *GormPlaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*placeDomain.Place, error) {
	var model PlaceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Place", id.String())
		}
		return nil, fmt.Errorf("failed to find place by ID: %w", err)
	}
	return toDomainPlace(&model), nil
}

// FindByOwnerID retrieves all places saved by an owner.
func (r *GormPlaceRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*placeDomain.Place, error) {
	var models []PlaceModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner places: %w", err)
	}

	places := make([]*placeDomain.Place, len(models))
	for i, m := range models {
		places[i] = toDomainPlace(&m)
	}
	return places, nil
}

// FindByOwnerAndName retrieves a place by its owner-scoped name.
func (r *GormPlaceRepository) FindByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*placeDomain.Place, error) {
	var model PlaceModel
	if err := r.db.WithContext(ctx).Where("owner_id = ? AND name = ?", ownerID, name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Place", name)
		}
		return nil, fmt.Errorf("failed to find place by name: %w", err)
	}
	return toDomainPlace(&model), nil
}

// Save persists a new place.
func (r *GormPlaceRepository) Save(ctx context.Context, p *placeDomain.Place) error {
	model := &PlaceModel{
		ID:        p.ID(),
		OwnerID:   p.OwnerID(),
		Name:      p.Name(),
		Address:   p.Address(),
		Latitude:  p.Latitude(),
		Longitude: p.Longitude(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save place: %w", err)
	}
	return nil
}

// Delete removes a saved place.
func (r *GormPlaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&PlaceModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete place: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Place", id.String())
	}
	return nil
}

func toDomainPlace(m *PlaceModel) *placeDomain.Place {
	return placeDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.Name,
		m.Address,
		m.Latitude,
		m.Longitude,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
