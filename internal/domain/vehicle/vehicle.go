package vehicle

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FuelType represents the energy source of a vehicle.
type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelNone     FuelType = ""
)

// IsValid returns true if the fuel type is one of the three known values.
// The empty value is accepted for human-powered vehicles.
func (f FuelType) IsValid() bool {
	switch f {
	case FuelGasoline, FuelDiesel, FuelElectric, FuelNone:
		return true
	}
	return false
}

// IsKnown returns true for the three energy sources that participate in
// cost estimation.
func (f FuelType) IsKnown() bool {
	return f == FuelGasoline || f == FuelDiesel || f == FuelElectric
}

// ConsumptionSpec is the declared consumption of a vehicle, in whatever
// unit the user entered. Canonicalization happens in the routing core.
type ConsumptionSpec struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Vehicle is the aggregate root for a saved vehicle profile. The routing
// core consumes vehicles read-only, deriving consumption overrides and
// energy-source selection from them.
type Vehicle struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	name        string
	vehicleType string
	fuelType    FuelType
	consumption ConsumptionSpec
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewVehicle creates a new vehicle profile with validated fields.
func NewVehicle(
	ownerID uuid.UUID,
	name, vehicleType string,
	fuelType FuelType,
	consumption ConsumptionSpec,
) (*Vehicle, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("owner ID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("vehicle name is required")
	}
	if vehicleType == "" {
		return nil, fmt.Errorf("vehicle type is required")
	}
	if !fuelType.IsValid() {
		return nil, fmt.Errorf("invalid fuel type: %s", fuelType)
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:          uuid.New(),
		ownerID:     ownerID,
		name:        name,
		vehicleType: vehicleType,
		fuelType:    fuelType,
		consumption: consumption,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a Vehicle from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	name, vehicleType string,
	fuelType FuelType,
	consumption ConsumptionSpec,
	version int64,
	createdAt, updatedAt time.Time,
) *Vehicle {
	return &Vehicle{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		vehicleType: vehicleType,
		fuelType:    fuelType,
		consumption: consumption,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (v *Vehicle) ID() uuid.UUID                { return v.id }
func (v *Vehicle) OwnerID() uuid.UUID           { return v.ownerID }
func (v *Vehicle) Name() string                 { return v.name }
func (v *Vehicle) VehicleType() string          { return v.vehicleType }
func (v *Vehicle) FuelType() FuelType           { return v.fuelType }
func (v *Vehicle) Consumption() ConsumptionSpec { return v.consumption }
func (v *Vehicle) Version() int64               { return v.version }
func (v *Vehicle) CreatedAt() time.Time         { return v.createdAt }
func (v *Vehicle) UpdatedAt() time.Time         { return v.updatedAt }

// IsOwnedBy checks if the vehicle belongs to the given owner.
func (v *Vehicle) IsOwnedBy(ownerID uuid.UUID) bool {
	return v.ownerID == ownerID
}

// Update applies partial updates to the vehicle profile.
func (v *Vehicle) Update(name, vehicleType string, fuelType FuelType, consumption *ConsumptionSpec) error {
	if name != "" {
		v.name = name
	}
	if vehicleType != "" {
		v.vehicleType = vehicleType
	}
	if fuelType != FuelNone {
		if !fuelType.IsValid() {
			return fmt.Errorf("invalid fuel type: %s", fuelType)
		}
		v.fuelType = fuelType
	}
	if consumption != nil {
		v.consumption = *consumption
	}
	v.version++
	v.updatedAt = time.Now().UTC()
	return nil
}
