package place

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Place is the aggregate root for a saved place (home, work, favorites).
type Place struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	name      string
	address   string
	latitude  float64
	longitude float64
	createdAt time.Time
	updatedAt time.Time
}

// NewPlace creates a new saved place with validated fields.
func NewPlace(ownerID uuid.UUID, name, address string, latitude, longitude float64) (*Place, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("owner ID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("place name is required")
	}
	if latitude < -90 || latitude > 90 {
		return nil, fmt.Errorf("latitude out of range: %f", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return nil, fmt.Errorf("longitude out of range: %f", longitude)
	}

	now := time.Now().UTC()
	return &Place{
		id:        uuid.New(),
		ownerID:   ownerID,
		name:      name,
		address:   address,
		latitude:  latitude,
		longitude: longitude,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Place from persistence data (no validation).
func Reconstruct(id, ownerID uuid.UUID, name, address string, latitude, longitude float64, createdAt, updatedAt time.Time) *Place {
	return &Place{
		id:        id,
		ownerID:   ownerID,
		name:      name,
		address:   address,
		latitude:  latitude,
		longitude: longitude,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Getters.
func (p *Place) ID() uuid.UUID        { return p.id }
func (p *Place) OwnerID() uuid.UUID   { return p.ownerID }
func (p *Place) Name() string         { return p.name }
func (p *Place) Address() string      { return p.address }
func (p *Place) Latitude() float64    { return p.latitude }
func (p *Place) Longitude() float64   { return p.longitude }
func (p *Place) CreatedAt() time.Time { return p.createdAt }
func (p *Place) UpdatedAt() time.Time { return p.updatedAt }

// IsOwnedBy checks if the place belongs to the given owner.
func (p *Place) IsOwnedBy(ownerID uuid.UUID) bool {
	return p.ownerID == ownerID
}

// Coordinates returns the place position as a "lat,lng" request string.
func (p *Place) Coordinates() string {
	return fmt.Sprintf("%g,%g", p.latitude, p.longitude)
}
