package place

import (
	"context"

	"github.com/google/uuid"
)

// PlaceRepository defines persistence operations for saved places.
type PlaceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Place, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Place, error)
	FindByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*Place, error)
	Save(ctx context.Context, place *Place) error
	Delete(ctx context.Context, id uuid.UUID) error
}
