package route

import (
	"context"

	"github.com/google/uuid"
)

// SavedRouteRepository defines persistence operations for saved routes.
type SavedRouteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SavedRoute, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*SavedRoute, error)
	Save(ctx context.Context, route *SavedRoute) error
	Delete(ctx context.Context, id uuid.UUID) error
}
