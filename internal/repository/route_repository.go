package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	routeDomain "github.com/wayfarer-maps/service-routing/internal/domain/route"
	"github.com/wayfarer-maps/service-routing/internal/domain/shared"
)

// SavedRouteModel is the GORM model for the saved_routes table.
type SavedRouteModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;index;not null"`
	Name            string    `gorm:"not null;size:100"`
	Origin          string    `gorm:"not null;size:50"`
	Destination     string    `gorm:"not null;size:50"`
	MobilityType    string    `gorm:"size:30"`
	RouteType       string    `gorm:"size:30"`
	DistanceMeters  float64   `gorm:"not null"`
	DurationMinutes float64   `gorm:"not null"`
	Cost            float64   `gorm:""`
	CostCurrency    string    `gorm:"size:10"`
	CreatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (SavedRouteModel) TableName() string {
	return "saved_routes"
}

// GormSavedRouteRepository is the GORM-based implementation of
// SavedRouteRepository.
type GormSavedRouteRepository struct {
	db *gorm.DB
}

// NewGormSavedRouteRepository creates a new GormSavedRouteRepository.
func NewGormSavedRouteRepository(db *gorm.DB) *GormSavedRouteRepository {
	return &GormSavedRouteRepository{db: db}
}

// FindByID retrieves a saved route by its unique identifier.
func (r *GormSavedRouteRepository) FindByID(ctx context.Context, id uuid.UUID) (*routeDomain.SavedRoute, error) {
	var model SavedRouteModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Route", id.String())
		}
		return nil, fmt.Errorf("failed to find route by ID: %w", err)
	}
	return toDomainSavedRoute(&model), nil
}

// FindByUserID retrieves all routes saved by a user, newest first.
func (r *GormSavedRouteRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*routeDomain.SavedRoute, error) {
	var models []SavedRouteModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find user routes: %w", err)
	}

	routes := make([]*routeDomain.SavedRoute, len(models))
	for i, m := range models {
		routes[i] = toDomainSavedRoute(&m)
	}
	return routes, nil
}

// Save persists a new saved route.
func (r *GormSavedRouteRepository) Save(ctx context.Context, route *routeDomain.SavedRoute) error {
	model := toSavedRouteModel(route)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save route: %w", err)
	}
	return nil
}

// Delete removes a saved route.
func (r *GormSavedRouteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&SavedRouteModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete route: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Route", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toSavedRouteModel(route *routeDomain.SavedRoute) *SavedRouteModel {
	return &SavedRouteModel{
		ID:              route.ID(),
		UserID:          route.UserID(),
		Name:            route.Name(),
		Origin:          route.Origin(),
		Destination:     route.Destination(),
		MobilityType:    route.MobilityType(),
		RouteType:       route.RouteType(),
		DistanceMeters:  route.DistanceMeters(),
		DurationMinutes: route.DurationMinutes(),
		Cost:            route.Cost(),
		CostCurrency:    route.CostCurrency(),
		CreatedAt:       route.CreatedAt(),
	}
}

func toDomainSavedRoute(m *SavedRouteModel) *routeDomain.SavedRoute {
	return routeDomain.ReconstructSavedRoute(
		m.ID,
		m.UserID,
		m.Name,
		m.Origin,
		m.Destination,
		m.MobilityType,
		m.RouteType,
		m.DistanceMeters,
		m.DurationMinutes,
		m.Cost,
		m.CostCurrency,
		m.CreatedAt,
	)
}
