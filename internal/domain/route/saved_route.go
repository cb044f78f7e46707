package route

import (
	"time"

	"github.com/google/uuid"

	"github.com/wayfarer-maps/service-routing/internal/domain/shared"
)

// SavedRoute is the aggregate root for a route the user chose to keep.
// It stores the request parameters plus the computed summary so the trip
// list can render without recomputing.
type SavedRoute struct {
	id              uuid.UUID
	userID          uuid.UUID
	name            string
	origin          string
	destination     string
	mobilityType    string
	routeType       string
	distanceMeters  float64
	durationMinutes float64
	cost            float64
	costCurrency    string
	createdAt       time.Time
}

// NewSavedRoute creates a saved route from a computed result.
func NewSavedRoute(
	userID uuid.UUID,
	name, origin, destination, mobilityType, routeType string,
	distanceMeters, durationMinutes, cost float64,
	costCurrency string,
) (*SavedRoute, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("user ID is required")
	}
	if name == "" {
		return nil, shared.NewValidationError("route name is required")
	}
	return &SavedRoute{
		id:              uuid.New(),
		userID:          userID,
		name:            name,
		origin:          origin,
		destination:     destination,
		mobilityType:    mobilityType,
		routeType:       routeType,
		distanceMeters:  distanceMeters,
		durationMinutes: durationMinutes,
		cost:            cost,
		costCurrency:    costCurrency,
		createdAt:       time.Now().UTC(),
	}, nil
}

// ReconstructSavedRoute rebuilds a SavedRoute from persistence data.
func ReconstructSavedRoute(
	id, userID uuid.UUID,
	name, origin, destination, mobilityType, routeType string,
	distanceMeters, durationMinutes, cost float64,
	costCurrency string,
	createdAt time.Time,
) *SavedRoute {
	return &SavedRoute{
		id:              id,
		userID:          userID,
		name:            name,
		origin:          origin,
		destination:     destination,
		mobilityType:    mobilityType,
		routeType:       routeType,
		distanceMeters:  distanceMeters,
		durationMinutes: durationMinutes,
		cost:            cost,
		costCurrency:    costCurrency,
		createdAt:       createdAt,
	}
}

// --- Getters ---

func (r *SavedRoute) ID() uuid.UUID            { return r.id }
func (r *SavedRoute) UserID() uuid.UUID        { return r.userID }
func (r *SavedRoute) Name() string             { return r.name }
func (r *SavedRoute) Origin() string           { return r.origin }
func (r *SavedRoute) Destination() string      { return r.destination }
func (r *SavedRoute) MobilityType() string     { return r.mobilityType }
func (r *SavedRoute) RouteType() string        { return r.routeType }
func (r *SavedRoute) DistanceMeters() float64  { return r.distanceMeters }
func (r *SavedRoute) DurationMinutes() float64 { return r.durationMinutes }
func (r *SavedRoute) Cost() float64            { return r.cost }
func (r *SavedRoute) CostCurrency() string     { return r.costCurrency }
func (r *SavedRoute) CreatedAt() time.Time     { return r.createdAt }

// IsOwnedBy checks if the saved route belongs to the given user.
func (r *SavedRoute) IsOwnedBy(userID uuid.UUID) bool {
	return r.userID == userID
}
